package httputil

import (
	"bytes"
	"encoding/json"
	"strings"
)

// OptionalString is a PATCH field for nullable columns such as url, external_url,
// custom_url and parent_id. Absent leaves the column alone; null or "" clears it.
type OptionalString struct {
	Present bool
	Value   *string
}

// UnmarshalJSON is only called when the key is in the body
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true
	if string(bytes.TrimSpace(data)) == "null" {
		o.Value = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// Set returns the trimmed value when the field carries non-blank text
func (o OptionalString) Set() (string, bool) {
	if !o.Present || o.Value == nil {
		return "", false
	}
	s := strings.TrimSpace(*o.Value)
	return s, s != ""
}

// ApplyTo writes the field into dst when present. Blank text clears dst.
func (o OptionalString) ApplyTo(dst **string) {
	if !o.Present {
		return
	}
	if s, ok := o.Set(); ok {
		*dst = &s
		return
	}
	*dst = nil
}
