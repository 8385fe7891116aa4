package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestTrustedCIDR(t *testing.T) {
	tests := []struct {
		name   string
		cidr   string
		realIP string
		want   int
	}{
		{"empty_allows_all", "", "", http.StatusOK},
		{"inside", "10.0.0.0/24", "10.0.0.42", http.StatusOK},
		{"outside", "10.0.0.0/24", "192.168.1.10", http.StatusForbidden},
		{"missing_header", "10.0.0.0/24", "", http.StatusForbidden},
		{"garbage_header", "10.0.0.0/24", "not-an-ip", http.StatusForbidden},
		{"ipv6", "fd00::/8", "fd00::1", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw, err := TrustedCIDR(tt.cidr)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/chunks", nil)
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			rr := httptest.NewRecorder()
			mw(okHandler()).ServeHTTP(rr, req)
			require.Equal(t, tt.want, rr.Code)
		})
	}
}

func TestTrustedCIDR_Invalid(t *testing.T) {
	_, err := TrustedCIDR("wtf")
	require.Error(t, err)
}
