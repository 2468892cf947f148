// Package db keeps the attempt history outside the report files so it can be
// queried across songs and shared between machines.
package db

import (
	"context"
	"fmt"

	"github.com/jsphweid/pianodiff/config"
	"github.com/jsphweid/pianodiff/constants"
	"github.com/jsphweid/pianodiff/model"
	"github.com/pkg/errors"
)

var ErrUnknownStore = errors.New("unknown store kind")

// Store records saved reports and answers history queries. History returns
// the last limit rows, oldest first.
type Store interface {
	SaveReport(ctx context.Context, r model.Report, path string) error
	History(ctx context.Context, songID string, segmentID string, limit int) ([]model.HistoryRow, error)
	Close() error
}

func Open(cfg config.StoreConfig) (Store, error) {
	switch cfg.Kind {
	case "", "sqlite":
		return OpenSQLite(constants.GetDatabasePath())
	case "dynamodb":
		return OpenDynamo(cfg.DynamoTable, cfg.DynamoRegion, cfg.DynamoEndpoint)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownStore, cfg.Kind)
}

// lastN keeps the newest n of rows sorted newest first and flips them to
// oldest first.
func lastN(newestFirst []model.HistoryRow, n int) []model.HistoryRow {
	if len(newestFirst) > n {
		newestFirst = newestFirst[:n]
	}
	res := make([]model.HistoryRow, len(newestFirst))
	for i, row := range newestFirst {
		res[len(newestFirst)-1-i] = row
	}
	return res
}
