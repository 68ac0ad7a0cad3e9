package domain

import "time"

// SensorReading is one time-series sample, keyed by (time, asset, sensor).
type SensorReading struct {
	Time        time.Time
	AssetID     ID
	SensorID    string
	Temperature *float64
	Humidity    *float64
	VibrationX  *float64
	VibrationY  *float64
	VibrationZ  *float64
	Pressure    *float64
	Power       *float64
	Custom      map[string]float64
	Unit        string
	Quality     string
}

// Fields returns the reading's populated numeric fields by sensor-type
// name, so threshold evaluation can iterate generically instead of one
// branch per field.
func (r SensorReading) Fields() map[string]float64 {
	out := map[string]float64{}
	add := func(name string, v *float64) {
		if v != nil {
			out[name] = *v
		}
	}
	add("temperature", r.Temperature)
	add("humidity", r.Humidity)
	add("vibration_x", r.VibrationX)
	add("vibration_y", r.VibrationY)
	add("vibration_z", r.VibrationZ)
	add("pressure", r.Pressure)
	add("power", r.Power)
	for k, v := range r.Custom {
		v := v
		out[k] = v
	}
	return out
}

// SensorThreshold defines critical/warning bands for one sensor type on
// one asset.
type SensorThreshold struct {
	ID             ID
	AssetID        ID
	SensorType     string
	Min            *float64
	Max            *float64
	WarnMin        *float64
	WarnMax        *float64
	AlertEnabled   bool
	AlertDelaySecs int
}

// AlertSeverity classifies a threshold breach.
type AlertSeverity string

const (
	SeverityNormal   AlertSeverity = "normal"
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

// Evaluate implements the §4.5 evaluation rule for a single value against
// a threshold: critical outside [min,max], else warning outside
// [warn_min,warn_max], else normal.
func (t SensorThreshold) Evaluate(v float64) AlertSeverity {
	if (t.Min != nil && v < *t.Min) || (t.Max != nil && v > *t.Max) {
		return SeverityCritical
	}
	if (t.WarnMin != nil && v < *t.WarnMin) || (t.WarnMax != nil && v > *t.WarnMax) {
		return SeverityWarning
	}
	return SeverityNormal
}

// AlertStatus is the alert lifecycle's state (§4.5).
type AlertStatus string

const (
	AlertActive       AlertStatus = "active"
	AlertAcknowledged AlertStatus = "acknowledged"
	AlertResolved     AlertStatus = "resolved"
)

// SensorAlert is an out-of-band reading that crossed a threshold.
type SensorAlert struct {
	ID              ID
	AssetID         ID
	SensorID        string
	ThresholdID     ID
	Severity        AlertSeverity
	SensorValue     float64
	Status          AlertStatus
	AckByID         *ID
	AckAt           *time.Time
	ResolvedByID    *ID
	ResolvedAt      *time.Time
	ResolutionNotes string
	CreatedAt       time.Time
}
