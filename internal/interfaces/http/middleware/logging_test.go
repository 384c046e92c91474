package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/turtacn/mhtech-dashboard/internal/infrastructure/monitoring/logging"
)

func statusHandler(code int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(code)
		_, _ = w.Write([]byte("body"))
	})
}

func newObservedLogger() (logging.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return logging.NewLoggerFromCore(core), logs
}

func TestRequestLogging_LevelByStatus(t *testing.T) {
	tests := []struct {
		status int
		level  zapcore.Level
	}{
		{http.StatusOK, zapcore.InfoLevel},
		{http.StatusNotFound, zapcore.WarnLevel},
		{http.StatusInternalServerError, zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			logger, logs := newObservedLogger()
			h := RequestLogging(logger, DefaultLoggingConfig())(statusHandler(tt.status))

			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/views?theme=dark", nil))

			require.Equal(t, 1, logs.Len())
			entry := logs.All()[0]
			assert.Equal(t, tt.level, entry.Level)
			fields := entry.ContextMap()
			assert.Equal(t, "/api/v1/views?theme=dark", fields["path"])
			assert.EqualValues(t, tt.status, fields["status"])
			assert.EqualValues(t, 4, fields["bytes"])
		})
	}
}

func TestRequestLogging_SkipPaths(t *testing.T) {
	logger, logs := newObservedLogger()
	h := RequestLogging(logger, DefaultLoggingConfig())(statusHandler(http.StatusOK))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, 0, logs.Len())
}

func TestRequestLogging_Slow(t *testing.T) {
	logger, logs := newObservedLogger()
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(5 * time.Millisecond)
	})
	h := RequestLogging(logger, LoggingConfig{SlowThreshold: time.Millisecond})(slow)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "HTTP request completed (slow)", logs.All()[0].Message)
}

func TestRequestLogging_NilLogger(t *testing.T) {
	h := NewLoggingMiddleware(nil, DefaultLoggingConfig()).Handler(statusHandler(http.StatusTeapot))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
}

func TestWrappedResponseWriter_FirstStatusWins(t *testing.T) {
	rec := httptest.NewRecorder()
	w := newWrappedResponseWriter(rec)
	w.WriteHeader(http.StatusCreated)
	w.WriteHeader(http.StatusBadRequest)
	assert.Equal(t, http.StatusCreated, w.statusCode)
	w.Flush()
	assert.True(t, rec.Flushed)

	_, _, err := w.Hijack()
	assert.Error(t, err)
}
