package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/persistorai/kinship/internal/httputil"
	"github.com/persistorai/kinship/internal/middleware"
	"github.com/persistorai/kinship/internal/security"
)

type mockTenantLookup struct {
	keys map[string]string
}

func (m *mockTenantLookup) GetTenantByAPIKey(_ context.Context, apiKey string) (string, error) {
	if tid, ok := m.keys[apiKey]; ok {
		return tid, nil
	}
	return "", errors.New("no such key")
}

func authRouter(guard *security.BruteForceGuard, gotTenant *string) *gin.Engine {
	lookup := &mockTenantLookup{keys: map[string]string{"good-key": "tenant-1"}}

	r := gin.New()
	r.Use(middleware.AuthMiddleware(lookup, quietLogger(), guard))
	r.GET("/people", func(c *gin.Context) {
		if gotTenant != nil {
			*gotTenant = httputil.TenantID(c)
		}
		c.Status(http.StatusOK)
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name        string
		header      string
		wantCode    int
		wantMessage string
	}{
		{"valid key", "Bearer good-key", http.StatusOK, ""},
		{"missing header", "", http.StatusUnauthorized, "missing or invalid authorization header"},
		{"unknown key", "Bearer bad-key", http.StatusUnauthorized, "invalid api key"},
		{"no bearer scheme", "good-key", http.StatusUnauthorized, "missing or invalid authorization header"},
		{"basic scheme", "Basic Z29vZC1rZXk=", http.StatusUnauthorized, "missing or invalid authorization header"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tenant string
			req := httptest.NewRequest(http.MethodGet, "/people", http.NoBody)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			start := time.Now()
			w := httptest.NewRecorder()
			authRouter(nil, &tenant).ServeHTTP(w, req)
			elapsed := time.Since(start)

			if w.Code != tt.wantCode {
				t.Fatalf("got %d, want %d", w.Code, tt.wantCode)
			}

			if tt.wantCode == http.StatusOK {
				if tenant != "tenant-1" {
					t.Errorf("tenant: got %q", tenant)
				}
				return
			}

			if elapsed < 50*time.Millisecond {
				t.Errorf("rejection took %v, want at least 50ms", elapsed)
			}

			var body httputil.ErrorBody
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body.Code != "unauthorized" || body.Message != tt.wantMessage {
				t.Errorf("body: got %+v", body)
			}
		})
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc123", "abc123"},
		{"Bearer  padded ", "padded"},
		{"abc123", ""},
		{"", ""},
		{"Bearer ", ""},
		{"bearer abc", ""},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			if tt.header != "" {
				c.Request.Header.Set("Authorization", tt.header)
			}
			if got := middleware.ExtractBearerToken(c); got != tt.want {
				t.Errorf("ExtractBearerToken(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}
