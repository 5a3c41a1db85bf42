package middleware_test

import (
	"net/http"
	"testing"

	"github.com/persistorai/kinship/internal/middleware"
)

func TestRateLimiter(t *testing.T) {
	tests := []struct {
		name  string
		limit float64
		burst int
		ips   []string
		want  []int
	}{
		{
			name:  "burst then throttled",
			limit: 1, burst: 2,
			ips:  []string{"1.2.3.4", "1.2.3.4", "1.2.3.4"},
			want: []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests},
		},
		{
			name:  "buckets are per client",
			limit: 1, burst: 1,
			ips:  []string{"1.1.1.1", "2.2.2.2", "1.1.1.1"},
			want: []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests},
		},
		{
			name:  "fast refill",
			limit: 1_000_000, burst: 1,
			ips:  []string{"5.5.5.5", "5.5.5.5", "5.5.5.5"},
			want: []int{http.StatusOK, http.StatusOK, http.StatusOK},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw := middleware.NewRateLimiter(tt.limit, tt.burst).Handler()
			for i, ip := range tt.ips {
				if got := serve(t, mw, fromIP(ip)).Code; got != tt.want[i] {
					t.Fatalf("request %d from %s: got %d, want %d", i, ip, got, tt.want[i])
				}
			}
		})
	}
}
