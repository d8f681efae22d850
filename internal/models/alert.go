package models

// AlertKindTempHigh is the only alert kind the service raises.
const AlertKindTempHigh = "TEMP_HIGH"

// Alert records a single threshold breach by one reading. Alerts are
// immutable and keyed by the device identifier of the reading that
// triggered them.
type Alert struct {
	// Alert kind, currently always "TEMP_HIGH"
	Kind string `json:"type"`

	// The value that breached the threshold
	Value float64 `json:"value"`

	// Timestamp copied verbatim from the triggering reading
	Timestamp string `json:"timestamp"`
}
