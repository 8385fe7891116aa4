package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/and161185/stackdriver-sink/internal/config"
	"github.com/and161185/stackdriver-sink/model"
	"github.com/stretchr/testify/require"
)

func newForwardServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		resp := model.ChunkResponse{Published: 1}
		if status != http.StatusOK {
			resp.Error = "boom"
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestRun_Stdin(t *testing.T) {
	ts := newForwardServer(t, http.StatusOK)
	cfg := &config.ForwardConfig{ServerAddr: ts.URL, Timeout: time.Second, Format: config.FormatJSON, RealIP: "127.0.0.1"}

	var out bytes.Buffer
	err := run(context.Background(), cfg, strings.NewReader(`{"tag":"a","time":1,"record":{"v":1}}`), &out)
	require.NoError(t, err)
	require.JSONEq(t, `{"published":1}`, out.String())
}

func TestRun_File(t *testing.T) {
	ts := newForwardServer(t, http.StatusOK)
	path := filepath.Join(t.TempDir(), "records.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"tag":"a","time":1,"record":{"v":1}}]`), 0o600))
	cfg := &config.ForwardConfig{ServerAddr: ts.URL, Timeout: time.Second, Format: config.FormatMsgpack, RealIP: "127.0.0.1", Input: path}

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, strings.NewReader("ignored"), &out))
}

func TestRun_Errors(t *testing.T) {
	ts := newForwardServer(t, http.StatusUnprocessableEntity)
	cfg := &config.ForwardConfig{ServerAddr: ts.URL, Timeout: time.Second, Format: config.FormatJSON, RealIP: "127.0.0.1"}

	var out bytes.Buffer
	err := run(context.Background(), cfg, strings.NewReader(`[{"tag":"a","time":1,"record":{}}]`), &out)
	require.Error(t, err)
	require.JSONEq(t, `{"published":1,"error":"boom"}`, out.String())

	require.Error(t, run(context.Background(), cfg, strings.NewReader(`[{`), &out))

	missing := *cfg
	missing.Input = filepath.Join(t.TempDir(), "nope.json")
	require.Error(t, run(context.Background(), &missing, nil, &out))
}
