package server

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"mime"
	"time"

	"github.com/and161185/stackdriver-sink/model"
	"github.com/vmihailenco/msgpack/v5"
)

// Content types a chunk may arrive in.
const (
	ContentTypeJSON    = "application/json"
	ContentTypeMsgpack = "application/x-msgpack"
)

var errUnsupportedContentType = errors.New("unsupported content type")

// eventTimeExt is the msgpack extension id forwarders use for nanosecond timestamps.
const eventTimeExt = 0

// EventTime is the forward protocol timestamp: seconds and nanoseconds,
// both big-endian uint32.
type EventTime struct {
	Sec  uint32
	Nsec uint32
}

func (t *EventTime) MarshalMsgpack() ([]byte, error) {
	b := make([]byte, 8)
	binary.BigEndian.PutUint32(b[:4], t.Sec)
	binary.BigEndian.PutUint32(b[4:], t.Nsec)
	return b, nil
}

func (t *EventTime) UnmarshalMsgpack(b []byte) error {
	if len(b) != 8 {
		return fmt.Errorf("event time: want 8 bytes, got %d", len(b))
	}
	t.Sec = binary.BigEndian.Uint32(b[:4])
	t.Nsec = binary.BigEndian.Uint32(b[4:])
	return nil
}

func init() {
	msgpack.RegisterExt(eventTimeExt, (*EventTime)(nil))
}

// decodeChunk reads a whole chunk body of the given content type.
func decodeChunk(contentType string, body io.Reader) ([]model.Record, error) {
	mt := ContentTypeJSON
	if contentType != "" {
		var err error
		mt, _, err = mime.ParseMediaType(contentType)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", errUnsupportedContentType, contentType)
		}
	}

	switch mt {
	case ContentTypeJSON:
		return decodeJSONChunk(body)
	case ContentTypeMsgpack, "application/msgpack":
		return decodeMsgpackChunk(body)
	}
	return nil, fmt.Errorf("%w: %s", errUnsupportedContentType, mt)
}

// decodeJSONChunk reads [{"tag":..,"time":..,"record":{..}}, ...]. Numbers
// stay json.Number so integers keep their precision.
func decodeJSONChunk(body io.Reader) ([]model.Record, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()

	var records []model.Record
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decode json chunk: %w", err)
	}
	if dec.More() {
		return nil, errors.New("decode json chunk: trailing data")
	}
	return records, nil
}

// decodeMsgpackChunk reads a stream of [tag, time, record] entries.
func decodeMsgpackChunk(body io.Reader) ([]model.Record, error) {
	dec := msgpack.NewDecoder(body)
	dec.UseLooseInterfaceDecoding(true)

	var records []model.Record
	for i := 0; ; i++ {
		n, err := dec.DecodeArrayLen()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decode msgpack entry %d: %w", i, err)
		}
		if n != 3 {
			return nil, fmt.Errorf("decode msgpack entry %d: want 3 elements, got %d", i, n)
		}

		tag, err := dec.DecodeString()
		if err != nil {
			return nil, fmt.Errorf("decode msgpack entry %d tag: %w", i, err)
		}
		raw, err := dec.DecodeInterface()
		if err != nil {
			return nil, fmt.Errorf("decode msgpack entry %d time: %w", i, err)
		}
		ts, err := unixSeconds(raw)
		if err != nil {
			return nil, fmt.Errorf("decode msgpack entry %d time: %w", i, err)
		}
		fields, err := dec.DecodeMap()
		if err != nil {
			return nil, fmt.Errorf("decode msgpack entry %d record: %w", i, err)
		}

		records = append(records, model.Record{Tag: tag, Time: ts, Fields: fields})
	}
}

// unixSeconds accepts the integer, float and EventTime encodings of a timestamp.
func unixSeconds(v any) (int64, error) {
	switch t := v.(type) {
	case int64:
		return t, nil
	case uint64:
		if t > math.MaxInt64 {
			return 0, fmt.Errorf("time %d overflows int64", t)
		}
		return int64(t), nil
	case float64:
		return int64(t), nil
	case *EventTime:
		return int64(t.Sec), nil
	case EventTime:
		return int64(t.Sec), nil
	case time.Time:
		return t.Unix(), nil
	}
	return 0, fmt.Errorf("unsupported time %T", v)
}
