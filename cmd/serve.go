package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jsphweid/pianodiff/analysis"
	"github.com/jsphweid/pianodiff/config"
	"github.com/jsphweid/pianodiff/constants"
	"github.com/jsphweid/pianodiff/file"
	"github.com/jsphweid/pianodiff/model"
	"github.com/jsphweid/pianodiff/report"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const maxBodyBytes = 8 << 20

var serveFlags struct {
	port    string
	origins []string
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&serveFlags.port, "port", constants.DefaultPort, "port to listen on")
	f.StringSliceVar(&serveFlags.origins, "origin", []string{"*"}, "allowed CORS origins")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the analysis API",
	Long:  `Serves POST /analyze, GET /health and GET /songs/{song}/history.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context(), ":"+serveFlags.port, serveFlags.origins)
	},
}

func NewRouter() *mux.Router {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/analyze", HandleAnalyze).Methods("POST")
	router.HandleFunc("/health", HandleHealth).Methods("GET")
	router.HandleFunc("/songs/{song}/history", HandleHistory).Methods("GET")
	return router
}

func serve(ctx context.Context, addr string, origins []string) error {
	handler := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(NewRouter())

	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logrus.WithField("addr", addr).Info("listening")
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Warn("could not write response")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, model.ErrorResponse{Error: err.Error()})
}

func HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requestMeta is the meta an analysis request runs with. Requests without
// one get a default 4/4, 120 bpm meta using the configured tolerance.
func requestMeta(body model.AnalyzeRequestBody) config.Meta {
	if body.Meta != nil {
		return *body.Meta
	}
	meta := config.DefaultMeta("")
	meta.HandSplit.SplitPitch = cfg.Midi.HandSplit
	meta.Tolerance = cfg.Tolerance
	return meta
}

func HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var body model.AnalyzeRequestBody
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("could not decode request body: "+err.Error()))
		return
	}

	al, err := aligner(body.Method)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	id := uuid.New().String()
	log := logrus.WithFields(logrus.Fields{"id": id, "ref": len(body.Reference), "attempt": len(body.Attempt)})
	res, err := analysis.Analyze(body.Reference, body.Attempt, requestMeta(body), al, analysis.Options{
		SegmentID:       body.SegmentID,
		SegmentRelative: body.SegmentRelative,
	})
	if err != nil {
		log.WithError(err).Info("analysis rejected")
		writeError(w, http.StatusBadRequest, err)
		return
	}
	log.WithField("match_rate", res.MatchRate).Debug("analyzed")

	writeJSON(w, http.StatusOK, model.AnalyzeResponse{
		ID:          id,
		Events:      res.Events,
		Alignment:   res.Alignment,
		MatchRate:   res.MatchRate,
		Matched:     res.Matched,
		QualityTier: res.QualityTier,
		Metrics:     res.Metrics,
	})
}

func HandleHistory(w http.ResponseWriter, r *http.Request) {
	song := mux.Vars(r)["song"]
	attempts := 5
	if v := r.URL.Query().Get("attempts"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, errors.New("attempts must be an integer"))
			return
		}
		attempts = n
	}

	dir := file.DefaultSongs().ReportsDir(song)
	rows, err := report.History(dir, r.URL.Query().Get("segment"), attempts)
	if errors.Is(err, report.ErrInvalidAttempts) {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, model.HistoryResponse{SongID: song, Rows: rows})
}
