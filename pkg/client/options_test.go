package client

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOptions(t *testing.T) {
	custom := &http.Client{Timeout: time.Minute}
	logger := &testLogger{}
	c, err := NewClient("http://dash.example.com",
		WithHTTPClient(custom),
		WithLogger(logger),
		WithRetryMax(5),
		WithUserAgent("dash-tests/1"),
	)
	assert.NoError(t, err)
	assert.Same(t, custom, c.httpClient)
	assert.Equal(t, logger, c.logger)
	assert.Equal(t, 5, c.retryMax)
	assert.Equal(t, "dash-tests/1", c.userAgent)
}

func TestOptions_IgnoreInvalid(t *testing.T) {
	c, err := NewClient("http://dash.example.com",
		WithHTTPClient(nil),
		WithLogger(nil),
		WithRetryMax(-1),
		WithUserAgent(""),
	)
	assert.NoError(t, err)
	assert.NotNil(t, c.httpClient)
	assert.NotNil(t, c.logger)
	assert.Equal(t, 3, c.retryMax)
	assert.Contains(t, c.userAgent, "mhdash-go-client/")
}

func TestWithRetryWait(t *testing.T) {
	tests := []struct {
		name             string
		min, max         time.Duration
		wantMin, wantMax time.Duration
	}{
		{"both valid", 10 * time.Millisecond, 20 * time.Millisecond, 10 * time.Millisecond, 20 * time.Millisecond},
		{"max below min keeps max", 10 * time.Millisecond, 5 * time.Millisecond, 10 * time.Millisecond, time.Second},
		{"zero min ignored", 0, 20 * time.Millisecond, time.Millisecond, time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Client{retryWaitMin: time.Millisecond, retryWaitMax: time.Second}
			WithRetryWait(tt.min, tt.max)(c)
			assert.Equal(t, tt.wantMin, c.retryWaitMin)
			assert.Equal(t, tt.wantMax, c.retryWaitMax)
		})
	}
}
