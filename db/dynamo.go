package db

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/jsphweid/pianodiff/model"
	"github.com/jsphweid/pianodiff/report"
	"github.com/pkg/errors"
)

// DynamoStore keeps one item per report: PK is the song, SK sorts by
// creation time.
type DynamoStore struct {
	client *dynamodb.DynamoDB
	table  string
}

// OpenDynamo connects to table. A non-empty endpoint points the client at a
// local DynamoDB, e.g. http://localhost:8000.
func OpenDynamo(table string, region string, endpoint string) (*DynamoStore, error) {
	if table == "" {
		return nil, errors.New("dynamodb table is required")
	}
	cfg := &aws.Config{Region: aws.String(region)}
	if endpoint != "" {
		cfg.Endpoint = aws.String(endpoint)
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "could not create a new DynamoDB session")
	}
	return &DynamoStore{client: dynamodb.New(sess), table: table}, nil
}

func sortKey(row model.HistoryRow) string {
	return fmt.Sprintf("%s#%s", row.CreatedAt.UTC().Format(time.RFC3339Nano), row.ReportID)
}

func num(v float64) *dynamodb.AttributeValue {
	return &dynamodb.AttributeValue{N: aws.String(strconv.FormatFloat(v, 'f', -1, 64))}
}

func str(v string) *dynamodb.AttributeValue {
	return &dynamodb.AttributeValue{S: aws.String(v)}
}

func toItem(row model.HistoryRow) map[string]*dynamodb.AttributeValue {
	return map[string]*dynamodb.AttributeValue{
		"PK":        str(row.SongID),
		"SK":        str(sortKey(row)),
		"ReportID":  str(row.ReportID),
		"SegmentID": str(row.SegmentID),
		"Path":      str(row.Path),
		"CreatedAt": str(row.CreatedAt.UTC().Format(time.RFC3339Nano)),
		"MatchRate": num(row.MatchRate),
		"Matched":   num(float64(row.Matched)),
		"RefNotes":  num(float64(row.RefNotes)),
		"Missing":   num(float64(row.Missing)),
		"Extra":     num(float64(row.Extra)),
	}
}

func getS(item map[string]*dynamodb.AttributeValue, key string) string {
	if v, ok := item[key]; ok && v.S != nil {
		return *v.S
	}
	return ""
}

func getN(item map[string]*dynamodb.AttributeValue, key string) float64 {
	if v, ok := item[key]; ok && v.N != nil {
		f, _ := strconv.ParseFloat(*v.N, 64)
		return f
	}
	return 0
}

func fromItem(item map[string]*dynamodb.AttributeValue) model.HistoryRow {
	row := model.HistoryRow{
		ReportID:  getS(item, "ReportID"),
		SongID:    getS(item, "PK"),
		SegmentID: getS(item, "SegmentID"),
		Path:      getS(item, "Path"),
		MatchRate: getN(item, "MatchRate"),
		Matched:   int(getN(item, "Matched")),
		RefNotes:  int(getN(item, "RefNotes")),
		Missing:   int(getN(item, "Missing")),
		Extra:     int(getN(item, "Extra")),
	}
	if t, err := time.Parse(time.RFC3339Nano, getS(item, "CreatedAt")); err == nil {
		row.CreatedAt = t
	}
	return row
}

func (s *DynamoStore) SaveReport(ctx context.Context, r model.Report, path string) error {
	_, err := s.client.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      toItem(report.Row(r, path)),
	})
	return errors.Wrap(err, "error from DynamoDB")
}

func (s *DynamoStore) History(ctx context.Context, songID string, segmentID string, limit int) ([]model.HistoryRow, error) {
	if limit <= 0 {
		return nil, report.ErrInvalidAttempts
	}
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("PK = :song"),
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":song": str(songID),
		},
		ScanIndexForward: aws.Bool(false),
	}
	if segmentID != "" {
		input.FilterExpression = aws.String("SegmentID = :segment")
		input.ExpressionAttributeValues[":segment"] = str(segmentID)
	}

	// Limit applies before the filter, so page until enough rows survive it.
	var res []model.HistoryRow
	err := s.client.QueryPagesWithContext(ctx, input, func(page *dynamodb.QueryOutput, last bool) bool {
		for _, item := range page.Items {
			res = append(res, fromItem(item))
		}
		return len(res) < limit
	})
	if err != nil {
		return nil, errors.Wrap(err, "error from DynamoDB")
	}
	return lastN(res, limit), nil
}

func (s *DynamoStore) Close() error {
	return nil
}
