// Package jsonutil tolerates the loosely typed JSON that language models
// produce, coercing numbers and booleans where a string is expected.
package jsonutil

import (
	"encoding/json"
	"fmt"
)

// FlexibleString unmarshals from a JSON string, number, boolean, or
// null. Model tool arguments occasionally arrive as bare numbers where
// a string was declared.
type FlexibleString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexibleString) UnmarshalJSON(data []byte) error {
	*f = FlexibleString(CoerceString(data))
	return nil
}

// String returns the underlying string value.
func (f FlexibleString) String() string {
	return string(f)
}

// CoerceString converts a raw JSON value to a string. Null and empty
// input become the empty string; integral floats render without a
// decimal point.
func CoerceString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var strVal string
	if err := json.Unmarshal(raw, &strVal); err == nil {
		return strVal
	}

	var numVal float64
	if err := json.Unmarshal(raw, &numVal); err == nil {
		if numVal == float64(int64(numVal)) {
			return fmt.Sprintf("%d", int64(numVal))
		}
		return fmt.Sprintf("%g", numVal)
	}

	var boolVal bool
	if err := json.Unmarshal(raw, &boolVal); err == nil {
		return fmt.Sprintf("%t", boolVal)
	}

	return string(raw)
}
