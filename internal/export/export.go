package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Exporter persists a slot -> plate mapping somewhere outside the process.
type Exporter interface {
	Export(ctx context.Context, mapping map[string]string) (Result, error)
}

type Result struct {
	Destinations []string
	Entries      int
}

func (r Result) String() string {
	return fmt.Sprintf("Vehicle to spot mapping with %d entries saved to %s.",
		r.Entries, strings.Join(r.Destinations, ", "))
}

// Encode renders the mapping as indented JSON. encoding/json sorts map keys,
// so equal mappings always encode to identical bytes.
func Encode(mapping map[string]string) ([]byte, error) {
	if mapping == nil {
		mapping = map[string]string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(mapping); err != nil {
		return nil, fmt.Errorf("encode mapping: %w", err)
	}
	return buf.Bytes(), nil
}

type Multi []Exporter

// Export runs each exporter in order and stops at the first failure. The
// returned Result lists the destinations written before the failure.
func (m Multi) Export(ctx context.Context, mapping map[string]string) (Result, error) {
	res := Result{Entries: len(mapping)}
	for _, e := range m {
		r, err := e.Export(ctx, mapping)
		res.Destinations = append(res.Destinations, r.Destinations...)
		if err != nil {
			return res, err
		}
	}
	return res, nil
}
