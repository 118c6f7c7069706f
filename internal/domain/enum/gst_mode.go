package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// GstMode says whether GST is added on top of an amount or already contained in it
type GstMode int

const (
	GstModeAdditive  GstMode = 0
	GstModeInclusive GstMode = 1
)

func (m GstMode) String() string {
	names := [...]string{"additive", "inclusive"}
	if int(m) < 0 || int(m) >= len(names) {
		return "additive"
	}
	return names[m]
}

// ParseGstMode accepts the names used in config and JSON
func ParseGstMode(s string) (GstMode, error) {
	switch s {
	case "additive", "exclusive", "":
		return GstModeAdditive, nil
	case "inclusive":
		return GstModeInclusive, nil
	}
	return GstModeAdditive, fmt.Errorf("unknown gst mode %q", s)
}

func (m GstMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *GstMode) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int64
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		mode, err := gstModeFromInt(i)
		if err != nil {
			return err
		}
		*m = mode
		return nil
	}
	parsed, err := ParseGstMode(str)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func (m GstMode) Value() (driver.Value, error) {
	return int64(m), nil
}

func (m *GstMode) Scan(value interface{}) error {
	if value == nil {
		*m = GstModeAdditive
		return nil
	}
	var i int64
	switch v := value.(type) {
	case int64:
		i = v
	case int32:
		i = int64(v)
	case int:
		i = int64(v)
	default:
		return fmt.Errorf("cannot scan %T into GstMode", value)
	}
	mode, err := gstModeFromInt(i)
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

func gstModeFromInt(i int64) (GstMode, error) {
	switch GstMode(i) {
	case GstModeAdditive, GstModeInclusive:
		return GstMode(i), nil
	}
	return GstModeAdditive, fmt.Errorf("unknown gst mode %d", i)
}
