// Package statejson is the on-disk encoding of the seen-state: one JSON
// object keyed by composite key, indented with two spaces, non-ASCII text
// written verbatim.
package statejson

import (
	"bytes"
	"encoding/json"
	"fmt"

	"rss-monitor/internal/domain/entity"
)

// Marshal encodes state. Keys are sorted by encoding/json, so equal states
// produce identical documents.
func Marshal(state entity.SeenState) ([]byte, error) {
	if state == nil {
		state = entity.SeenState{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(state); err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a state document. Empty input and JSON null decode to an
// empty state.
func Unmarshal(data []byte) (entity.SeenState, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return entity.SeenState{}, nil
	}
	var state entity.SeenState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	if state == nil {
		state = entity.SeenState{}
	}
	return state, nil
}
