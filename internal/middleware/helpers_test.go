package middleware_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// serve runs one request through a router with mw in front of an OK handler.
func serve(t *testing.T, mw gin.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	r := gin.New()
	r.Use(mw)
	r.Any("/people/:id", func(c *gin.Context) {
		if c.Request.Body != nil {
			if _, err := io.ReadAll(c.Request.Body); err != nil {
				c.Status(http.StatusRequestEntityTooLarge)
				return
			}
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func fromIP(ip string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/people/ada", http.NoBody)
	req.RemoteAddr = ip + ":4000"
	return req
}

func withBody(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/people/ada", strings.NewReader(body))
}
