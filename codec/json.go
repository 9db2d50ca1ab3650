package codec

import (
	"encoding/json"
)

// JSON is the standard-library JSON codec.
type JSON struct {
	// Indent pretty-prints with the given indent when not empty.
	Indent string
}

// Marshal encodes the value to JSON.
func (c JSON) Marshal(v any) ([]byte, error) {
	if c.Indent != "" {
		return json.MarshalIndent(v, "", c.Indent)
	}
	return json.Marshal(v)
}

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }

// Default is the codec used by the command line tool.
var Default Codec = GoJSON{}
