// Package errs holds the sentinel errors shared across the sink.
package errs

import "errors"

var (
	// ErrInvalidConfig marks a configuration the sink refuses to start with.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrUnsupportedValueType is returned for value types the sink cannot publish.
	ErrUnsupportedValueType = errors.New("unsupported value type")
	// ErrDescriptorResolution means the metric descriptor could be neither fetched nor created.
	ErrDescriptorResolution = errors.New("metric descriptor resolution failed")
	// ErrCoercion means a record field could not be converted to the metric value type.
	ErrCoercion = errors.New("value coercion failed")
	// ErrWrite wraps a failed CreateTimeSeries call.
	ErrWrite = errors.New("time series write failed")
	// ErrNotStarted is returned when chunks arrive before Start or after Close.
	ErrNotStarted = errors.New("sink not started")
	// ErrAlreadyStarted is returned by a second Start.
	ErrAlreadyStarted = errors.New("sink already started")
)
