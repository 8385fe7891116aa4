package middleware

import (
	"bytes"
	"io"
	"net/http"

	"github.com/and161185/stackdriver-sink/internal/utils"
)

// HashHeader carries the hex HMAC-SHA256 of the body as sent on the wire.
const HashHeader = "HashSHA256"

// VerifyHashMiddleware rejects requests whose HashSHA256 header is missing or
// does not match the body, and signs the response body. An empty key turns
// it off.
func VerifyHashMiddleware(key string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if key == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bodyBytes, err := io.ReadAll(r.Body)
			if err != nil {
				http.Error(w, "bad body", http.StatusBadRequest)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))

			if !utils.ValidHash(bodyBytes, key, r.Header.Get(HashHeader)) {
				http.Error(w, "invalid hash", http.StatusBadRequest)
				return
			}

			capture := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(capture, r)
			capture.flush(key)
		})
	}
}

// responseCapture holds the response back until its hash header can be set.
type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (r *responseCapture) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
}

func (r *responseCapture) Write(b []byte) (int, error) {
	return r.body.Write(b)
}

func (r *responseCapture) flush(key string) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.ResponseWriter.Header().Set(HashHeader, utils.CalculateHash(r.body.Bytes(), key))
	r.ResponseWriter.WriteHeader(r.status)
	_, _ = r.ResponseWriter.Write(r.body.Bytes())
}
