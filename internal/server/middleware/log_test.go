package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogMiddleware_TextBody(t *testing.T) {
	core, obs := observer.New(zap.InfoLevel)
	logger := zap.New(core).Sugar()

	h := LogMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("ok"))
	}))

	req := httptest.NewRequest(http.MethodPost, "/test", bytes.NewBufferString("hello"))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	require.Equal(t, "ok", rr.Body.String())

	entries := obs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "POST", fields["method"])
	require.Equal(t, int64(http.StatusCreated), fields["status"])
	require.Equal(t, "hello", fields["body"])
}

func TestLogMiddleware_BinaryBodyAndError(t *testing.T) {
	core, obs := observer.New(zap.InfoLevel)
	logger := zap.New(core).Sugar()

	h := LogMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("resp"))
	}))

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte{0xff, 0x01, 0x02}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, "resp", rr.Body.String())
	require.Len(t, obs.All(), 1)
	require.Equal(t, "<skipped>", obs.All()[0].ContextMap()["body"])
}

func TestLogMiddleware_LongBodyTruncated(t *testing.T) {
	core, obs := observer.New(zap.InfoLevel)
	h := LogMiddleware(zap.New(core).Sugar())(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(bytes.Repeat([]byte("a"), 2*maxLoggedBody)))
	h.ServeHTTP(httptest.NewRecorder(), req)

	body, ok := obs.All()[0].ContextMap()["body"].(string)
	require.True(t, ok)
	require.Len(t, body, maxLoggedBody+3)
}

func TestIsProbablyText(t *testing.T) {
	require.True(t, isProbablyText([]byte("abc")))
	require.False(t, isProbablyText([]byte{0xff}))
	require.False(t, isProbablyText([]byte{0x00}))
}
