package model

import "encoding/json"

// JSONMap represents a generic JSON object
type JSONMap map[string]interface{}

// SafeRawMessage returns meta decoded as raw JSON, or nil when the stored
// value is not valid JSON. A malformed stored payload must never poison a
// list read.
func SafeRawMessage(raw []byte) json.RawMessage {
	if len(raw) == 0 || !json.Valid(raw) {
		return nil
	}
	return json.RawMessage(raw)
}
