package function

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"crosswarped.com/wordfilter/internal/sources"
)

const testTable = "bigquery://xword-x/FirestoreQuery.all_words"

type openCall struct {
	path       string
	wordLength int
}

func newTestHandler(t *testing.T, scoped []string, openErr error) (*Handler, *[]openCall) {
	t.Helper()
	var calls []openCall
	open := func(_ context.Context, path string, wordLength int) (sources.LineSource, error) {
		calls = append(calls, openCall{path, wordLength})
		if openErr != nil {
			return nil, openErr
		}
		return sources.FromLines(scoped...), nil
	}
	return NewHandler(Config{Table: testTable}, open, zap.NewNop()), &calls
}

func post(t *testing.T, h http.Handler, body string) (int, FilterWordsResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/filter-words", strings.NewReader(body)))

	var resp FilterWordsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	return rec.Code, resp
}

func TestFilterWords_InlineWords(t *testing.T) {
	h, calls := newTestHandler(t, nil, nil)

	code, resp := post(t, h, `{"count":5,"pattern":"_RO__","excluded":"a","required":"e","words":["Prose","crabs","drove","arose"]}`)
	require.Equal(t, http.StatusOK, code)

	want := FilterWordsResponse{Success: true, Matches: []string{"prose", "drove"}, Count: 2, Scanned: 4}
	if diff := cmp.Diff(want, resp); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
	require.Empty(t, *calls)
}

func TestFilterWords_NoMatches(t *testing.T) {
	h, _ := newTestHandler(t, nil, nil)

	code, resp := post(t, h, `{"count":3,"excluded":"xyz","words":["fox"]}`)
	require.Equal(t, http.StatusOK, code)
	require.True(t, resp.Success)
	require.NotNil(t, resp.Matches)
	require.Empty(t, resp.Matches)
}

func TestFilterWords_WordScope(t *testing.T) {
	h, calls := newTestHandler(t, []string{"bare", "bbbb", "abbe"}, nil)

	code, resp := post(t, h, `{"count":4,"pattern":"____","required":"ab","words":["crab"],"wordScope":"en"}`)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, []string{"crab", "bare", "abbe"}, resp.Matches)
	require.Equal(t, 4, resp.Scanned)

	require.Len(t, *calls, 1)
	require.Equal(t, 4, (*calls)[0].wordLength)
	opts, err := sources.ParseBigQueryURI((*calls)[0].path)
	require.NoError(t, err)
	require.Equal(t, "en", opts.Scope)
	require.Equal(t, "all_words", opts.Table)
}

func TestFilterWords_TruncatesAtLimit(t *testing.T) {
	h, _ := newTestHandler(t, []string{"owl", "ant", "elk"}, nil)
	h.maxMatches = 2

	code, resp := post(t, h, `{"count":3,"words":["fox","cat","dog"],"wordScope":"en"}`)
	require.Equal(t, http.StatusOK, code)

	want := FilterWordsResponse{Success: true, Matches: []string{"fox", "cat"}, Count: 2, Scanned: 3, Truncated: true}
	if diff := cmp.Diff(want, resp); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterWords_UnsatisfiableSkipsWordScope(t *testing.T) {
	h, calls := newTestHandler(t, []string{"bare"}, nil)

	code, resp := post(t, h, `{"count":4,"pattern":"b___","excluded":"a","required":"a","words":["bake"],"wordScope":"en"}`)
	require.Equal(t, http.StatusOK, code)

	want := FilterWordsResponse{Success: true, Matches: []string{}, Scanned: 1}
	if diff := cmp.Diff(want, resp); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
	require.Empty(t, *calls)
}

func TestFilterWords_SourceError(t *testing.T) {
	h, _ := newTestHandler(t, nil, errors.New("bigquery unavailable"))

	code, resp := post(t, h, `{"count":4,"wordScope":"en"}`)
	require.Equal(t, http.StatusInternalServerError, code)
	require.False(t, resp.Success)
	require.Contains(t, resp.Error, "bigquery unavailable")
}

func TestFilterWords_BadRequests(t *testing.T) {
	h, calls := newTestHandler(t, nil, nil)

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"invalid json", `{"count":`, "Invalid JSON"},
		{"no words", `{"count":5}`, "words must not be empty"},
		{"zero count", `{"words":["fox"]}`, "no or 0 count entered"},
		{"count too large", `{"count":17,"words":["fox"]}`, "greater than 16"},
		{"pattern mismatch", `{"count":3,"pattern":"____","words":["fox"]}`, "does not match char-count"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := post(t, h, tt.body)
			require.Equal(t, http.StatusBadRequest, code)
			require.False(t, resp.Success)
			require.Contains(t, resp.Error, tt.wantErr)
		})
	}
	require.Empty(t, *calls)
}

func TestFilterWords_Methods(t *testing.T) {
	h, _ := newTestHandler(t, nil, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/filter-words", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/filter-words", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	require.Contains(t, rec.Body.String(), "Method GET not allowed")
}

func TestLoadConfig(t *testing.T) {
	require.Equal(t, testTable, LoadConfig().Table)

	t.Setenv("WORDFILTER_BIGQUERY_TABLE", "bigquery://other/ds.words")
	t.Setenv("WORDFILTER_LOG_LEVEL", "debug")
	require.Equal(t, Config{Table: "bigquery://other/ds.words", LogLevel: "debug"}, LoadConfig())
}
