package httputil_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/persistorai/kinship/internal/httputil"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name      string
		requestID string
	}{
		{"with request id", "req-1"},
		{"without request id", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			if tt.requestID != "" {
				c.Set(httputil.RequestIDKey, tt.requestID)
			}

			httputil.RespondError(c, http.StatusConflict, "conflict", "ada has children")

			if w.Code != http.StatusConflict {
				t.Errorf("status: got %d", w.Code)
			}
			if !c.IsAborted() {
				t.Error("expected the chain to be aborted")
			}

			var body map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body["code"] != "conflict" || body["message"] != "ada has children" {
				t.Errorf("body: got %v", body)
			}
			if _, ok := body["request_id"]; ok != (tt.requestID != "") {
				t.Errorf("request_id presence: got %v", body)
			}
		})
	}
}

func TestTenantID(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if httputil.TenantID(c) != "" {
		t.Error("expected empty tenant before auth")
	}

	c.Set(httputil.TenantIDKey, "t1")
	if httputil.TenantID(c) != "t1" {
		t.Errorf("got %q", httputil.TenantID(c))
	}
}
