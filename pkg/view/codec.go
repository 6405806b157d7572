package view

import (
	"bytes"
	"encoding/json"
)

// Encode serializes a state record. An empty stack encodes as "views":[]
// so that the record stays structurally valid.
func Encode(s State) ([]byte, error) {
	if s.Views == nil {
		s.Views = []ViewDef{}
	}
	return json.Marshal(s)
}

// Decode parses a persisted record. It reports false when the record is not
// a structurally valid state: not an object, "id" or "views" missing, or
// "views" not an array.
func Decode(data []byte) (State, bool) {
	var fields map[string]json.RawMessage
	if len(data) == 0 || json.Unmarshal(data, &fields) != nil || fields == nil {
		return State{}, false
	}

	if _, ok := fields["id"]; !ok {
		return State{}, false
	}
	views, ok := fields["views"]
	if !ok || !bytes.HasPrefix(bytes.TrimSpace(views), []byte("[")) {
		return State{}, false
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}, false
	}
	if s.Views == nil {
		s.Views = []ViewDef{}
	}
	return s, true
}
