package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestResultsGate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	tests := []struct {
		name     string
		secret   string
		supplied string
		want     int
	}{
		{name: "disabled when unset", secret: "", supplied: "", want: http.StatusNoContent},
		{name: "plain match", secret: "s3cret", supplied: "s3cret", want: http.StatusNoContent},
		{name: "plain mismatch", secret: "s3cret", supplied: "nope", want: http.StatusUnauthorized},
		{name: "missing header", secret: "s3cret", supplied: "", want: http.StatusUnauthorized},
		{name: "bcrypt match", secret: string(hash), supplied: "s3cret", want: http.StatusNoContent},
		{name: "bcrypt mismatch", secret: string(hash), supplied: "S3CRET", want: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := ResultsGate(tt.secret, quietLogger())(okHandler())
			req := httptest.NewRequest(http.MethodPost, "/results", nil)
			if tt.supplied != "" {
				req.Header.Set(PasswordHeader, tt.supplied)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)

			if tt.want == http.StatusUnauthorized {
				var body map[string]interface{}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, false, body["ok"])
				assert.NotEmpty(t, body["error"])
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	limiter := NewIPRateLimiter(1, 2)
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return clock }

	h := RateLimit(limiter)(okHandler())
	do := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/results", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, do("10.0.0.1:1234"))
	assert.Equal(t, http.StatusNoContent, do("10.0.0.1:1235"))
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1:1236"))
	assert.Equal(t, http.StatusNoContent, do("10.0.0.2:1234"), "limits are per IP")

	clock = clock.Add(time.Second)
	assert.Equal(t, http.StatusNoContent, do("10.0.0.1:1237"))
}

func TestRateLimitDisabled(t *testing.T) {
	assert.Nil(t, PerMinute(0))
	h := RateLimit(PerMinute(0))(okHandler())
	for i := 0; i < 10; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	h := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("hi"))
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/series", nil))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "http request", entry["msg"])
	assert.Equal(t, "/api/series", entry["path"])
	assert.Equal(t, float64(http.StatusTeapot), entry["status"])
	assert.Equal(t, float64(2), entry["bytes"])
}
