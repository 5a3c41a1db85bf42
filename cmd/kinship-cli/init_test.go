package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func fakeServer(t *testing.T, key string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/health", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok", "version": "1.4.0"}) //nolint:errcheck // test server
	})
	mux.HandleFunc("GET /api/v1/stats", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+key {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"code":"unauthorized","message":"invalid api key"}`)) //nolint:errcheck // test server
			return
		}
		w.Write([]byte(`{"people":0}`)) //nolint:errcheck // test server
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv
}

func TestInitInteractive(t *testing.T) {
	home := isolate(t)
	srv := fakeServer(t, "k1")

	var out strings.Builder
	s := setup{in: strings.NewReader(srv.URL + "\nk1\n"), out: &out, interactive: true}

	if err := s.run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if !strings.Contains(out.String(), "Connected (v1.4.0)") {
		t.Errorf("output = %q", out.String())
	}

	raw, err := os.ReadFile(filepath.Join(home, ".kinship", "config.yaml"))
	if err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if !strings.Contains(string(raw), srv.URL) || !strings.Contains(string(raw), "k1") {
		t.Errorf("config = %s", raw)
	}
}

func TestInitFlags(t *testing.T) {
	isolate(t)
	srv := fakeServer(t, "k1")

	var out strings.Builder
	s := setup{out: &out, url: srv.URL, apiKey: "k1"}

	if err := s.run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.HasPrefix(out.String(), "Config saved to ") {
		t.Errorf("output = %q", out.String())
	}
}

func TestInitRejects(t *testing.T) {
	isolate(t)
	srv := fakeServer(t, "k1")

	tests := []struct {
		name string
		s    setup
		want string
	}{
		{"missing key", setup{in: strings.NewReader("\n\n"), interactive: true}, "API key is required"},
		{"wrong key", setup{url: srv.URL, apiKey: "nope"}, "connection failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.s.out = &strings.Builder{}
			err := tt.s.run(context.Background())
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want %q", err, tt.want)
			}
		})
	}
}
