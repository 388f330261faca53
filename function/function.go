// Package function exposes the word filter as an HTTP Cloud Function.
package function

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"crosswarped.com/wordfilter"
	"crosswarped.com/wordfilter/internal/logging"
	"crosswarped.com/wordfilter/internal/sources"
	"crosswarped.com/wordfilter/pkg/constraints"
)

const (
	// maxRequestWords bounds the words a request may carry inline.
	maxRequestWords = 100_000
	// maxMatches bounds the matches returned in one response.
	maxMatches = 10_000

	requestSource = "request"
)

// FilterWordsRequest is the JSON body of a filter request. Words are taken
// from Words and, when WordScope is set, from the configured BigQuery table.
type FilterWordsRequest struct {
	Count     int      `json:"count"`
	Pattern   string   `json:"pattern"`
	Excluded  string   `json:"excluded"`
	Required  string   `json:"required"`
	Words     []string `json:"words"`
	WordScope string   `json:"wordScope"`
}

// FilterWordsResponse is the JSON body of a reply. When Truncated is set the
// scan stopped early and Count covers only the returned matches.
type FilterWordsResponse struct {
	Success   bool     `json:"success"`
	Matches   []string `json:"matches"`
	Count     int      `json:"count"`
	Scanned   int      `json:"scanned"`
	Truncated bool     `json:"truncated,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// Config holds the function's deployment settings.
type Config struct {
	// Table is the BigQuery table scoped word lists are read from, as
	// bigquery://project/dataset.table.
	Table    string
	LogLevel string
}

// LoadConfig reads Config from WORDFILTER_* environment variables.
func LoadConfig() Config {
	v := viper.New()
	v.SetEnvPrefix("WORDFILTER")
	v.AutomaticEnv()
	v.SetDefault("BIGQUERY_TABLE", "bigquery://xword-x/FirestoreQuery.all_words")
	return Config{
		Table:    v.GetString("BIGQUERY_TABLE"),
		LogLevel: v.GetString("LOG_LEVEL"),
	}
}

// OpenFunc opens a LineSource for a source path and word length.
type OpenFunc func(ctx context.Context, path string, wordLength int) (sources.LineSource, error)

// Handler serves filter requests.
type Handler struct {
	cfg  Config
	open OpenFunc
	log  *zap.Logger
	// maxMatches bounds the matches held and returned per request.
	maxMatches int
}

// NewHandler returns a Handler. A nil open reads words with sources.Open, a
// nil log writes to stderr at cfg.LogLevel.
func NewHandler(cfg Config, open OpenFunc, log *zap.Logger) *Handler {
	if open == nil {
		open = sources.Open
	}
	if log == nil {
		log = logging.New(os.Stderr, logging.ParseLevel(cfg.LogLevel))
	}
	return &Handler{cfg: cfg, open: open, log: log, maxMatches: maxMatches}
}

var defaultHandler = sync.OnceValue(func() *Handler {
	return NewHandler(LoadConfig(), nil, nil)
})

// FilterWords is the Cloud Function entry point.
func FilterWords(w http.ResponseWriter, r *http.Request) {
	defaultHandler().ServeHTTP(w, r)
}

// badRequest marks errors caused by the request rather than the function.
type badRequest struct{ error }

func (h *Handler) execute(ctx context.Context, req FilterWordsRequest) (FilterWordsResponse, error) {
	if len(req.Words) > maxRequestWords {
		return FilterWordsResponse{}, badRequest{fmt.Errorf("words must not exceed %d entries", maxRequestWords)}
	}

	path := requestSource
	if req.WordScope != "" {
		opts, err := sources.ParseBigQueryURI(h.cfg.Table)
		if err != nil {
			return FilterWordsResponse{}, fmt.Errorf("configured table: %w", err)
		}
		opts.Scope = req.WordScope
		path = opts.URI()
	} else if len(req.Words) == 0 {
		return FilterWordsResponse{}, badRequest{errors.New("words must not be empty without a wordScope")}
	}

	cs, err := constraints.New(constraints.Options{
		WordLength:   req.Count,
		Pattern:      strings.ToLower(req.Pattern),
		Excluded:     strings.ToLower(req.Excluded),
		Required:     strings.ToLower(req.Required),
		WordlistPath: path,
	})
	if err != nil {
		return FilterWordsResponse{}, badRequest{err}
	}

	words := make([]string, len(req.Words))
	for i, word := range req.Words {
		words[i] = strings.ToLower(word)
	}
	srcs := []sources.LineSource{sources.FromLines(words...)}
	switch {
	case path == requestSource:
	case !cs.Satisfiable():
		h.log.Debug("skipping word scope, constraints cannot match", zap.Stringer("constraints", cs))
	default:
		bq, err := h.open(ctx, path, cs.WordLength())
		if err != nil {
			return FilterWordsResponse{}, fmt.Errorf("opening %s: %w", path, err)
		}
		srcs = append(srcs, bq)
	}
	src := sources.Concat(srcs...)
	defer src.Close()

	rep := &wordfilter.CollectingReporter{Limit: h.maxMatches}
	res, err := wordfilter.Scan(ctx, src, cs, rep)
	truncated := errors.Is(err, wordfilter.ErrLimitReached)
	if err != nil && !truncated {
		return FilterWordsResponse{}, err
	}
	h.log.Info("filtered words",
		zap.Stringer("constraints", cs),
		zap.Int("scanned", res.Scanned),
		zap.Int("matches", len(rep.Words)),
		zap.Bool("truncated", truncated),
		zap.Duration("elapsed", res.Elapsed))

	resp := FilterWordsResponse{
		Success:   true,
		Matches:   rep.Words,
		Count:     len(rep.Words),
		Scanned:   res.Scanned,
		Truncated: truncated,
	}
	if resp.Matches == nil {
		resp.Matches = []string{}
	}
	return resp, nil
}

func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Content-Type", "application/json")
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, resp FilterWordsResponse) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.log.Error("writing response", zap.Error(err))
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)

	// Handle OPTIONS request for CORS preflight
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	if r.Method != http.MethodPost {
		h.writeJSON(w, http.StatusMethodNotAllowed, FilterWordsResponse{
			Error: fmt.Sprintf("Method %s not allowed", r.Method),
		})
		return
	}

	var req FilterWordsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug("parsing JSON body", zap.Error(err))
		h.writeJSON(w, http.StatusBadRequest, FilterWordsResponse{
			Error: fmt.Sprintf("Invalid JSON: %v", err),
		})
		return
	}

	resp, err := h.execute(r.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		var br badRequest
		if errors.As(err, &br) {
			status = http.StatusBadRequest
		} else {
			h.log.Error("filtering words", zap.Error(err))
		}
		h.writeJSON(w, status, FilterWordsResponse{Error: err.Error()})
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}
