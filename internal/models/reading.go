package models

import (
	"fmt"
	"strings"
)

// StatusOK is the default status reported by devices.
const StatusOK = "OK"

// Reading represents a single telemetry sample from a device.
type Reading struct {
	// Device identifier, e.g. "PV_001". Required.
	DeviceID string `json:"device_id"`

	// ISO-8601 timestamp taken at sample time. Required.
	Timestamp string `json:"timestamp"`

	// Sequence number, monotonic per device (not enforced globally)
	SeqNo int64 `json:"seq_no"`

	// Electrical measurements. Each may be absent.
	VoltageV *float64 `json:"voltage_v,omitempty"`
	CurrentA *float64 `json:"current_a,omitempty"`
	PowerW   *float64 `json:"power_w,omitempty"`
	TempC    *float64 `json:"temp_c,omitempty"`

	// Device-reported status, defaults to "OK"
	Status string `json:"status,omitempty"`
}

// FieldError describes a validation failure on a single field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NewFieldError builds a FieldError for the given field.
func NewFieldError(field, reason string) *FieldError {
	return &FieldError{Field: field, Reason: reason}
}

// Normalize trims identifier fields and applies defaults.
func (r *Reading) Normalize() {
	r.DeviceID = strings.TrimSpace(r.DeviceID)
	r.Timestamp = strings.TrimSpace(r.Timestamp)
	r.Status = strings.TrimSpace(r.Status)
	if r.Status == "" {
		r.Status = StatusOK
	}
}

// Validate checks required fields and field formats. It returns a
// *FieldError naming the offending field, or nil.
func (r *Reading) Validate() error {
	if r.DeviceID == "" {
		return NewFieldError("device_id", "must be a non-empty string")
	}

	if r.Timestamp == "" {
		return NewFieldError("timestamp", "must be a non-empty ISO-8601 string")
	}

	if _, err := ParseTimestamp(r.Timestamp); err != nil {
		return NewFieldError("timestamp", "must be a valid ISO-8601 timestamp")
	}

	if r.SeqNo < 0 {
		return NewFieldError("seq_no", "must be a non-negative integer")
	}

	return nil
}
