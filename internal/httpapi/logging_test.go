package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"":      LevelOff,
		"off":   LevelOff,
		"error": LevelError,
		"info":  LevelInfo,
		"debug": LevelDebug,
		"junk":  LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestRequestLogLevelOverrides(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/predictions?log=1", nil)
	if got := requestLogLevel(r); got != LevelDebug {
		t.Fatalf("query log=1: %d", got)
	}
	r = httptest.NewRequest(http.MethodPost, "/api/predictions?log=error", nil)
	if got := requestLogLevel(r); got != LevelError {
		t.Fatalf("query log=error: %d", got)
	}
	r = httptest.NewRequest(http.MethodPost, "/api/predictions", nil)
	r.Header.Set("X-Log-Level", "debug")
	if got := requestLogLevel(r); got != LevelDebug {
		t.Fatalf("header: %d", got)
	}
	r = httptest.NewRequest(http.MethodPost, "/api/predictions", nil)
	if got := requestLogLevel(r); got != defaultLogLevel {
		t.Fatalf("default: %d", got)
	}
}
