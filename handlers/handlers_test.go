package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/poker-leaderboard/leaderboard"
	"github.com/Dosada05/poker-leaderboard/models"
	"github.com/Dosada05/poker-leaderboard/services"
	"github.com/Dosada05/poker-leaderboard/storage"
)

type fakeLeaderboardService struct {
	submitFn  func(raw []models.RawResultRow) (*services.SubmitResult, error)
	rankingFn func(series string) (*services.RankingView, error)
	board     *services.BoardView
	chart     []byte
}

func (f *fakeLeaderboardService) SubmitResults(_ context.Context, raw []models.RawResultRow) (*services.SubmitResult, error) {
	return f.submitFn(raw)
}

func (f *fakeLeaderboardService) SeriesIndex(_ context.Context, preselect string) (leaderboard.SeriesIndex, error) {
	return f.board.Index, nil
}

func (f *fakeLeaderboardService) Ranking(_ context.Context, series string) (*services.RankingView, error) {
	return f.rankingFn(series)
}

func (f *fakeLeaderboardService) Board(context.Context, string) (*services.BoardView, error) {
	if f.board == nil {
		return nil, errors.New("db down")
	}
	return f.board, nil
}

func (f *fakeLeaderboardService) PointsChart(_ context.Context, series string) ([]byte, error) {
	if _, err := f.rankingFn(series); err != nil {
		return nil, err
	}
	return f.chart, nil
}

type fakeExportService struct {
	gotSeries []string
	gotFormat leaderboard.Format
	exportErr error
	publish   func(series []string, format leaderboard.Format) (*storage.UploadResult, error)
}

func (f *fakeExportService) Export(_ context.Context, series []string, format leaderboard.Format) (*services.ExportPayload, error) {
	f.gotSeries, f.gotFormat = series, format
	if f.exportErr != nil {
		return nil, f.exportErr
	}
	return &services.ExportPayload{
		Data:      []byte("name,series,points,results,updated\n"),
		MediaType: "text/csv; charset=utf-8",
		Filename:  "spring-2024-standings.csv",
	}, nil
}

func (f *fakeExportService) Publish(_ context.Context, series []string, format leaderboard.Format) (*storage.UploadResult, error) {
	return f.publish(series, format)
}

func (f *fakeExportService) PublishAll(context.Context) ([]storage.UploadResult, error) {
	return nil, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleBoard() *services.BoardView {
	updated := time.Date(2024, 3, 9, 20, 0, 0, 0, time.UTC)
	alice := models.PlayerStanding{ID: "1", Name: "Alice", Series: "Spring 2024", Points: 15, Results: models.Results{"1st", "3rd"}, Updated: updated}
	bob := models.PlayerStanding{ID: "2", Name: "Bob <b>", Series: "Spring 2024", Points: 8, Results: models.Results{"2nd"}, Updated: updated}
	return &services.BoardView{
		Index: leaderboard.SeriesIndex{
			Series:  []models.SeriesSummary{{Series: "Spring 2024", Key: "spring 2024", LatestUpdated: updated, Players: 2}},
			Default: "Spring 2024",
		},
		Ranking: &services.RankingView{
			Series:        "Spring 2024",
			LatestUpdated: updated,
			UpdatedLabel:  services.UpdatedLabel(updated),
			Rows: []models.RankedStanding{
				{Standing: alice, Rank: 1, Label: "1st"},
				{Standing: bob, Rank: 2, Label: "2nd"},
			},
		},
		Players: []string{"Alice", "Bob <b>"},
		Places:  models.Places,
	}
}

func newTestRouter(ls services.LeaderboardService, es services.ExportService) http.Handler {
	lh := NewLeaderboardHandler(ls, "Fire N Slice - Tournament Series", discardLogger())
	eh := NewExportHandler(es, discardLogger())

	r := chi.NewRouter()
	r.Get("/", lh.Page)
	r.Get("/api/standings", lh.GetStandings)
	r.Get("/api/standings/chart.png", lh.GetChart)
	r.Post("/api/results", lh.SubmitResults)
	r.Get("/api/export", eh.Export)
	r.Post("/api/export/publish", eh.Publish)
	return r
}

func decodeEnvelope(t *testing.T, body *bytes.Buffer) map[string]any {
	t.Helper()
	var env map[string]any
	require.NoError(t, json.Unmarshal(body.Bytes(), &env))
	return env
}

func TestSubmitResults(t *testing.T) {
	t.Run("applies batch", func(t *testing.T) {
		var got []models.RawResultRow
		ls := &fakeLeaderboardService{submitFn: func(raw []models.RawResultRow) (*services.SubmitResult, error) {
			got = raw
			return &services.SubmitResult{Processed: 2, Created: 1, Updated: 1, Series: []string{"Spring 2024"}}, nil
		}}
		body := `[{"place":"1st","name":"Alice","series":"Spring 2024","points":10},
			{"place":"2nd","player":"Bob","series":"Spring 2024","points":"5","extra":true}]`

		rec := httptest.NewRecorder()
		newTestRouter(ls, &fakeExportService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/results", strings.NewReader(body)))

		require.Equal(t, http.StatusOK, rec.Code)
		env := decodeEnvelope(t, rec.Body)
		assert.Equal(t, true, env["ok"])
		assert.EqualValues(t, 2, env["processed"])
		assert.EqualValues(t, 1, env["created"])
		assert.EqualValues(t, 1, env["updated"])

		require.Len(t, got, 2)
		name, ok := got[1].DisplayName()
		assert.True(t, ok)
		assert.Equal(t, "Bob", name)
		assert.JSONEq(t, `"5"`, string(got[1].Points))
	})

	t.Run("malformed json", func(t *testing.T) {
		ls := &fakeLeaderboardService{submitFn: func([]models.RawResultRow) (*services.SubmitResult, error) {
			t.Fatal("service must not be called")
			return nil, nil
		}}
		rec := httptest.NewRecorder()
		newTestRouter(ls, &fakeExportService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/results", strings.NewReader(`[{"name":`)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		env := decodeEnvelope(t, rec.Body)
		assert.Equal(t, false, env["ok"])
		assert.NotEmpty(t, env["error"])
	})

	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"empty batch", leaderboard.ErrEmptyBatch, http.StatusBadRequest},
		{"bad row", &leaderboard.RowError{Index: 0, Field: "points", Reason: "must be a non-negative whole number"}, http.StatusBadRequest},
		{"duplicate", &leaderboard.DuplicateError{Name: "alice", Series: "S", FirstIndex: 0, Index: 1}, http.StatusBadRequest},
		{"conflict", services.ErrStandingConflict, http.StatusConflict},
		{"consistency", leaderboard.ErrInternalConsistency, http.StatusInternalServerError},
		{"storage", errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ls := &fakeLeaderboardService{submitFn: func([]models.RawResultRow) (*services.SubmitResult, error) {
				return nil, tc.err
			}}
			rec := httptest.NewRecorder()
			newTestRouter(ls, &fakeExportService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/results", strings.NewReader(`[]`)))

			assert.Equal(t, tc.status, rec.Code)
			env := decodeEnvelope(t, rec.Body)
			assert.Equal(t, false, env["ok"])
			if tc.status == http.StatusBadRequest {
				assert.Equal(t, tc.err.Error(), env["error"])
			}
		})
	}
}

func TestGetStandings(t *testing.T) {
	ls := &fakeLeaderboardService{rankingFn: func(series string) (*services.RankingView, error) {
		if series == "Winter" {
			return nil, &leaderboard.UnknownSeriesError{Series: []string{"Winter"}}
		}
		return sampleBoard().Ranking, nil
	}}
	router := newTestRouter(ls, &fakeExportService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/standings?series=spring+2024", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var view services.RankingView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "Spring 2024", view.Series)
	assert.Equal(t, "3/9/2024", view.UpdatedLabel)
	require.Len(t, view.Rows, 2)
	assert.Equal(t, "1st", view.Rows[0].Label)
	assert.Equal(t, models.Results{"1st", "3rd"}, view.Rows[0].Standing.Results)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/standings?series=Winter", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetChart(t *testing.T) {
	ls := &fakeLeaderboardService{
		rankingFn: func(string) (*services.RankingView, error) { return sampleBoard().Ranking, nil },
		chart:     []byte("\x89PNG"),
	}
	rec := httptest.NewRecorder()
	newTestRouter(ls, &fakeExportService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/standings/chart.png", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "\x89PNG", rec.Body.String())
}

func TestPage(t *testing.T) {
	t.Run("renders board", func(t *testing.T) {
		ls := &fakeLeaderboardService{board: sampleBoard()}
		rec := httptest.NewRecorder()
		newTestRouter(ls, &fakeExportService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
		html := rec.Body.String()
		assert.Contains(t, html, "Fire N Slice - Tournament Series")
		assert.Contains(t, html, "Updated 3/9/2024")
		assert.Contains(t, html, "1st,3rd")
		assert.Contains(t, html, "Bob &lt;b&gt;")
		assert.NotContains(t, html, "Bob <b>")
		assert.Contains(t, html, "X-Results-Password")
	})

	t.Run("storage failure", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newTestRouter(&fakeLeaderboardService{}, &fakeExportService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "Failed to load tournament data.")
	})
}

func TestExport(t *testing.T) {
	t.Run("defaults to csv", func(t *testing.T) {
		es := &fakeExportService{}
		rec := httptest.NewRecorder()
		newTestRouter(&fakeLeaderboardService{}, es).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/export?series=Spring+2024&series=+Fall+2023+&series=", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"Spring 2024", "Fall 2023"}, es.gotSeries)
		assert.Equal(t, leaderboard.FormatCSV, es.gotFormat)
		assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="spring-2024-standings.csv"`, rec.Header().Get("Content-Disposition"))
		assert.Equal(t, "name,series,points,results,updated\n", rec.Body.String())
	})

	t.Run("unknown format", func(t *testing.T) {
		es := &fakeExportService{}
		rec := httptest.NewRecorder()
		newTestRouter(&fakeLeaderboardService{}, es).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/export?series=S&format=pdf", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Nil(t, es.gotSeries)
	})

	t.Run("no series selected", func(t *testing.T) {
		es := &fakeExportService{exportErr: leaderboard.ErrNoSeriesSelected}
		rec := httptest.NewRecorder()
		newTestRouter(&fakeLeaderboardService{}, es).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/export?format=json", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, leaderboard.FormatJSON, es.gotFormat)
	})

	t.Run("unknown series", func(t *testing.T) {
		es := &fakeExportService{exportErr: &leaderboard.UnknownSeriesError{Series: []string{"Nope"}}}
		rec := httptest.NewRecorder()
		newTestRouter(&fakeLeaderboardService{}, es).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/export?series=Nope", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		env := decodeEnvelope(t, rec.Body)
		assert.Contains(t, env["error"], "Nope")
	})
}

func TestPublish(t *testing.T) {
	t.Run("uploads", func(t *testing.T) {
		es := &fakeExportService{publish: func(series []string, format leaderboard.Format) (*storage.UploadResult, error) {
			assert.Equal(t, []string{"Spring 2024"}, series)
			assert.Equal(t, leaderboard.FormatJSON, format)
			return &storage.UploadResult{Key: "spring-2024-standings.json", Location: "https://cdn.example.com/spring-2024-standings.json"}, nil
		}}
		rec := httptest.NewRecorder()
		body := `{"series":["Spring 2024"],"format":"json"}`
		newTestRouter(&fakeLeaderboardService{}, es).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/export/publish", strings.NewReader(body)))

		require.Equal(t, http.StatusCreated, rec.Code)
		env := decodeEnvelope(t, rec.Body)
		assert.Equal(t, true, env["ok"])
		object, ok := env["object"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "spring-2024-standings.json", object["key"])
	})

	t.Run("disabled", func(t *testing.T) {
		es := &fakeExportService{publish: func([]string, leaderboard.Format) (*storage.UploadResult, error) {
			return nil, services.ErrPublishingDisabled
		}}
		rec := httptest.NewRecorder()
		newTestRouter(&fakeLeaderboardService{}, es).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/export/publish", strings.NewReader(`{"series":["S"]}`)))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestOriginChecker(t *testing.T) {
	req := func(host, origin string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "http://"+host+"/ws/series/s", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		return r
	}

	sameHost := originChecker(nil)
	assert.True(t, sameHost(req("board.example.com", "")))
	assert.True(t, sameHost(req("board.example.com", "https://board.example.com")))
	assert.False(t, sameHost(req("board.example.com", "https://evil.example.com")))

	listed := originChecker([]string{"https://board.example.com/"})
	assert.True(t, listed(req("api.example.com", "https://board.example.com")))
	assert.False(t, listed(req("api.example.com", "https://other.example.com")))

	assert.True(t, originChecker([]string{"*"})(req("a", "https://anything")))
}
