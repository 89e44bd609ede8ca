package importers

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ColumnMapping maps canonical field keys to CSV header names. A field that
// is absent is unset for every imported row.
type ColumnMapping map[Field]string

// Set maps field to header. Any other field already using the same header is
// unmapped, so the last write wins. An empty header removes the field.
func (m ColumnMapping) Set(field Field, header string) {
	header = strings.TrimSpace(header)
	if header == "" {
		delete(m, field)
		return
	}
	for f, h := range m {
		if f != field && h == header {
			delete(m, f)
		}
	}
	m[field] = header
}

// Header returns the header mapped to field.
func (m ColumnMapping) Header(field Field) (string, bool) {
	h, ok := m[field]
	if !ok || strings.TrimSpace(h) == "" {
		return "", false
	}
	return h, true
}

// MissingRequired lists required fields that have no header.
func (m ColumnMapping) MissingRequired() []Field {
	missing := []Field{}
	for _, f := range RequiredFields() {
		if _, ok := m.Header(f); !ok {
			missing = append(missing, f)
		}
	}
	return missing
}

// Apply overlays user overrides onto a proposed mapping. Overrides are
// applied in canonical field order so the result is deterministic.
func (m ColumnMapping) Apply(overrides ColumnMapping) ColumnMapping {
	out := make(ColumnMapping, len(m))
	for f, h := range m {
		out[f] = h
	}
	for _, spec := range Fields {
		if h, ok := overrides[spec.Key]; ok {
			out.Set(spec.Key, h)
		}
	}
	return out
}

// Normalize drops unknown keys and blank headers and resolves header
// conflicts in canonical field order.
func (m ColumnMapping) Normalize() ColumnMapping {
	return ColumnMapping{}.Apply(m)
}

// ParseMapping decodes a YAML document of the form
//
//	title: Title
//	author: Author
//	my_rating: My Rating
func ParseMapping(data []byte) (ColumnMapping, error) {
	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse column mapping: %w", err)
	}

	var unknown []string
	mapping := make(ColumnMapping, len(raw))
	for key, header := range raw {
		if _, ok := LookupField(Field(key)); !ok {
			unknown = append(unknown, key)
			continue
		}
		mapping[Field(key)] = header
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("unknown fields in column mapping: %s", strings.Join(unknown, ", "))
	}
	return mapping.Normalize(), nil
}

// MarshalMapping encodes a mapping as YAML with keys in sorted order.
func MarshalMapping(m ColumnMapping) ([]byte, error) {
	raw := make(map[string]string, len(m))
	for f, h := range m {
		raw[string(f)] = h
	}
	data, err := yaml.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to encode column mapping: %w", err)
	}
	return data, nil
}
