package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ent0n29/realtybot/internal/config"
	"github.com/ent0n29/realtybot/internal/observability"
)

func testConfig() config.Config {
	return config.Config{
		BindAddr:                 ":0",
		SessionInactivityTimeout: time.Minute,
		MetricsNamespace:         "realtybot_test",
		LeadStore:                "memory",
		AIFallbackMode:           "off",
		TTSMode:                  "off",
		SearchTimeout:            time.Second,
		SearchLimit:              10,
		LeadTimeout:              time.Second,
		StorageTimeout:           time.Second,
		TTSTimeout:               time.Second,
	}
}

func TestBuildInMemoryServesChat(t *testing.T) {
	metrics := observability.NewMetricsWithRegistry("realtybot_test", prometheus.NewRegistry())
	res, err := Build(context.Background(), testConfig(), nil, metrics)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			t.Fatalf("Cleanup() error = %v", err)
		}
	}()
	if res.Voice.Mode != "off" {
		t.Fatalf("Voice.Mode = %q, want off", res.Voice.Mode)
	}

	srv := httptest.NewServer(res.API.Router())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/v1/chat/session", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("POST session error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST session status = %d, want 201", resp.StatusCode)
	}
	if got := res.Sessions.ActiveCount(); got != 1 {
		t.Fatalf("ActiveCount() = %d, want 1", got)
	}
}

func TestBuildMockSpeech(t *testing.T) {
	cfg := testConfig()
	cfg.TTSMode = "mock"
	metrics := observability.NewMetricsWithRegistry("realtybot_test", prometheus.NewRegistry())
	res, err := Build(context.Background(), cfg, nil, metrics)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer res.Cleanup()
	if res.Voice.Mode != "mock" {
		t.Fatalf("Voice.Mode = %q, want mock", res.Voice.Mode)
	}
}

func TestBuildRejectsUnknownSpeechMode(t *testing.T) {
	cfg := testConfig()
	cfg.TTSMode = "carrier-pigeon"
	metrics := observability.NewMetricsWithRegistry("realtybot_test", prometheus.NewRegistry())
	if _, err := Build(context.Background(), cfg, nil, metrics); err == nil {
		t.Fatalf("Build() error = nil, want unsupported speech mode")
	}
}
