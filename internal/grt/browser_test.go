package grt

import (
	"context"
	"net/http"
	"testing"

	"github.com/chromedp/chromedp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/yourorg/nextride/internal/config"
)

func TestBrowserFetcher_allocatorOptions(t *testing.T) {
	base := len(chromedp.DefaultExecAllocatorOptions) + 6

	cfg := config.Default().Browser
	cfg.Sandbox = true
	cfg.UserAgent = ""
	f := NewBrowserFetcher("https://nextride.grt.ca", "Loading", cfg)
	assert.Len(t, f.allocatorOptions(), base)

	cfg.Sandbox = false
	cfg.UserAgent = "nextride-test"
	cfg.BinaryPath = "/usr/bin/chromium"
	f = NewBrowserFetcher("https://nextride.grt.ca", "Loading", cfg)
	assert.Len(t, f.allocatorOptions(), base+3)
	assert.Equal(t, "browser", f.Name())
}

func TestBrowserFetcher_classify(t *testing.T) {
	f := NewBrowserFetcher("https://nextride.grt.ca", "Loading", config.Default().Browser)
	upstream := UpstreamStatus(http.StatusNotFound, "https://nextride.grt.ca/stops/9")

	tests := []struct {
		name       string
		err        error
		wantKind   ErrorKind
		wantStatus int
	}{
		{"scrape error passes through", upstream, KindUpstream, http.StatusInternalServerError},
		{"wrapped not ready", errors.Wrap(NotReady(NotReadyMessage, nil), "poll title"), KindNotReady, http.StatusServiceUnavailable},
		{"deadline", context.DeadlineExceeded, KindNotReady, http.StatusServiceUnavailable},
		{"other", errors.New("websocket url timeout reached"), KindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.classify(context.Background(), tt.err, "error navigating")
			assert.Equal(t, tt.wantKind, KindOf(got))
			assert.Equal(t, tt.wantStatus, HTTPStatus(got))
		})
	}

	assert.Same(t, upstream, f.classify(context.Background(), upstream, "error navigating"))

	cause := errors.New("cdp: session closed")
	got := f.classify(context.Background(), cause, "error reading rendered page")
	assert.Equal(t, cause, errors.Cause(got))
	assert.Contains(t, got.Error(), "error reading rendered page")
}

func TestBrowserFetcher_classifyExpiredContext(t *testing.T) {
	f := NewBrowserFetcher("https://nextride.grt.ca", "Loading", config.Default().Browser)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := f.classify(ctx, errors.New("context canceled while navigating"), "error navigating")
	assert.Equal(t, KindNotReady, KindOf(got))
	assert.Contains(t, got.Error(), "did not load")
}
