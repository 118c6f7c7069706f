package enum

import (
	"encoding/json"
	"fmt"
)

// scanString reads a text column written by one of the string enums below
func scanString(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case nil:
		return "", nil
	}
	return "", fmt.Errorf("cannot scan %T into enum", value)
}

// unmarshalEnum decodes a JSON string and checks it against valid
func unmarshalEnum(data []byte, kind string, valid func(string) bool) (string, error) {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", err
	}
	if !valid(s) {
		return "", fmt.Errorf("invalid %s %q", kind, s)
	}
	return s, nil
}
