// SPDX-License-Identifier: MIT

package runner

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Params is the parameter mapping passed to an update script. It is encoded
// to JSON before the script runs and decoded back from the marker block the
// wrapper emits, so the key set and values must survive a JSON round trip.
// Values are strings or nested Params-shaped objects.
type Params map[string]any

// ParseParams decodes a JSON object into a parameter mapping.
func ParseParams(data []byte) (Params, error) {
	var p Params
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to decode runner params: %w", err)
	}
	return p, nil
}

// Encode serializes the mapping as a compact JSON object.
func (p Params) Encode() ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode runner params: %w", err)
	}
	return data, nil
}

// String returns the string value for key, or "" when the key is absent or
// holds a nested object.
func (p Params) String(key string) string {
	v, ok := p[key]
	if !ok {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64, bool:
		return fmt.Sprint(val)
	default:
		return ""
	}
}

// Child returns the nested mapping for key, or nil when the key is absent or
// holds a plain value.
func (p Params) Child(key string) Params {
	switch val := p[key].(type) {
	case Params:
		return val
	case map[string]any:
		return Params(val)
	default:
		return nil
	}
}

// SetChild stores a nested mapping under key.
func (p Params) SetChild(key string, child Params) {
	p[key] = map[string]any(child)
}

// Keys returns the parameter keys in sorted order.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
