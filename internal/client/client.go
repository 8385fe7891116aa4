// Package client forwards record chunks to the sink ingest server.
package client

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/and161185/stackdriver-sink/internal/config"
	"github.com/and161185/stackdriver-sink/internal/utils"
	"github.com/and161185/stackdriver-sink/model"
	"github.com/vmihailenco/msgpack/v5"
)

const chunksPath = "/chunks"

// Client posts chunks to the sink.
type Client struct {
	config     *config.ForwardConfig
	httpClient *http.Client
	realIP     string
}

// NewClient creates a client with an http.Client bounded by cfg.Timeout.
func NewClient(cfg *config.ForwardConfig) *Client {
	return NewClientWithHTTP(cfg, &http.Client{Timeout: cfg.Timeout})
}

// DI: ready http.Client
func NewClientWithHTTP(cfg *config.ForwardConfig, hc *http.Client) *Client {
	realIP := cfg.RealIP
	if realIP == "" {
		realIP = detectOutboundIP()
	}
	return &Client{config: cfg, httpClient: hc, realIP: realIP}
}

func detectOutboundIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return ""
	}
	defer conn.Close()
	if la, ok := conn.LocalAddr().(*net.UDPAddr); ok {
		return la.IP.String()
	}
	return ""
}

// SendChunk posts records as one chunk and returns the server's answer.
// A non-2xx answer is returned together with an error.
//
// Only connection failures are retried: once a request reached the sink some
// of its records may already be written, and resending would duplicate them.
func (clnt *Client) SendChunk(ctx context.Context, records []model.Record) (model.ChunkResponse, error) {
	raw, contentType, err := encodeChunk(clnt.config.Format, records)
	if err != nil {
		return model.ChunkResponse{}, err
	}

	var body bytes.Buffer
	zw := gzip.NewWriter(&body)
	if _, err = zw.Write(raw); err != nil {
		return model.ChunkResponse{}, fmt.Errorf("gzip write: %w", err)
	}
	if err = zw.Close(); err != nil {
		return model.ChunkResponse{}, fmt.Errorf("gzip close: %w", err)
	}
	payload := body.Bytes()

	var (
		resp model.ChunkResponse
		code int
	)
	err = utils.Retry(ctx, utils.DefaultRetryDelays, utils.IsDialError, func() error {
		req, e := http.NewRequestWithContext(ctx, http.MethodPost, clnt.config.ServerAddr+chunksPath, bytes.NewReader(payload))
		if e != nil {
			return fmt.Errorf("new request: %w", e)
		}
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Content-Encoding", "gzip")
		if clnt.realIP != "" {
			req.Header.Set("X-Real-IP", clnt.realIP)
		}
		if clnt.config.HashKey != "" {
			req.Header.Set("HashSHA256", utils.CalculateHash(payload, clnt.config.HashKey))
		}

		r, e := clnt.httpClient.Do(req)
		if e != nil {
			return e
		}
		defer r.Body.Close()
		code = r.StatusCode
		resp, e = decodeResponse(r.Header.Get("Content-Encoding"), r.Body)
		return e
	})
	if err != nil {
		return resp, fmt.Errorf("send chunk: %w", err)
	}
	if code != http.StatusOK {
		return resp, fmt.Errorf("unexpected status %d: %s", code, resp.Error)
	}
	return resp, nil
}

func decodeResponse(encoding string, body io.Reader) (model.ChunkResponse, error) {
	var resp model.ChunkResponse
	if encoding == "gzip" {
		zr, err := gzip.NewReader(body)
		if err != nil {
			return resp, fmt.Errorf("gzip response: %w", err)
		}
		defer zr.Close()
		body = zr
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return resp, fmt.Errorf("read response: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return resp, nil
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return resp, fmt.Errorf("decode response: %w", err)
	}
	return resp, nil
}

func encodeChunk(format string, records []model.Record) ([]byte, string, error) {
	switch format {
	case config.FormatJSON, "":
		if records == nil {
			records = []model.Record{}
		}
		raw, err := json.Marshal(records)
		if err != nil {
			return nil, "", fmt.Errorf("marshal: %w", err)
		}
		return raw, "application/json", nil
	case config.FormatMsgpack:
		var buf bytes.Buffer
		enc := msgpack.NewEncoder(&buf)
		for _, rec := range records {
			if err := enc.Encode([]any{rec.Tag, rec.Time, msgpackFields(rec.Fields)}); err != nil {
				return nil, "", fmt.Errorf("msgpack %s: %w", rec.Tag, err)
			}
		}
		return buf.Bytes(), "application/x-msgpack", nil
	}
	return nil, "", fmt.Errorf("unknown format %q", format)
}

// msgpackFields turns json.Number values into native numbers so they are
// packed as msgpack ints and floats instead of strings.
func msgpackFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if n, ok := v.(json.Number); ok {
			if i, err := n.Int64(); err == nil {
				v = i
			} else if f, err := n.Float64(); err == nil {
				v = f
			}
		}
		out[k] = v
	}
	return out
}

// ReadRecords reads a JSON array of records or one record per line.
// Numbers stay json.Number.
func ReadRecords(r io.Reader) ([]model.Record, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	if raw[0] == '[' {
		var records []model.Record
		if err := dec.Decode(&records); err != nil {
			return nil, fmt.Errorf("decode records: %w", err)
		}
		if dec.More() {
			return nil, errors.New("decode records: trailing data")
		}
		return records, nil
	}

	var records []model.Record
	for dec.More() {
		var rec model.Record
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("decode record %d: %w", len(records), err)
		}
		records = append(records, rec)
	}
	return records, nil
}
