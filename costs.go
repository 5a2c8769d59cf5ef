package ecovalley

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MaterialCost is the cost attributed to one material of a request.
type MaterialCost struct {
	Material string
	CostUSD  float64
}

// MaterialCosts is a cost breakdown keyed by material name. It keeps the
// order in which materials first appeared and encodes as a JSON object in
// that order.
type MaterialCosts []MaterialCost

// Add accumulates cost under name, appending a new entry on first sight.
func (m MaterialCosts) Add(name string, cost float64) MaterialCosts {
	for i := range m {
		if m[i].Material == name {
			m[i].CostUSD += cost
			return m
		}
	}
	return append(m, MaterialCost{Material: name, CostUSD: cost})
}

// Get returns the cost recorded for name.
func (m MaterialCosts) Get(name string) (float64, bool) {
	for _, c := range m {
		if c.Material == name {
			return c.CostUSD, true
		}
	}
	return 0, false
}

// Total sums every entry.
func (m MaterialCosts) Total() float64 {
	var total float64
	for _, c := range m {
		total += c.CostUSD
	}
	return total
}

func (m MaterialCosts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Material)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(c.CostUSD)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (m *MaterialCosts) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*m = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("material costs: expected object, got %v", tok)
	}

	out := MaterialCosts{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("material costs: expected string key, got %v", keyTok)
		}
		var cost float64
		if err := dec.Decode(&cost); err != nil {
			return fmt.Errorf("material costs: value for %q: %w", key, err)
		}
		out = out.Add(key, cost)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*m = out
	return nil
}
