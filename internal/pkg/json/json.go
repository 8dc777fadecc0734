// Package json is the single encoding entry point for wire payloads and
// persisted JSON blobs.
package json

import "github.com/bytedance/sonic"

var api = sonic.Config{
	EscapeHTML:     false,
	SortMapKeys:    true,
	CopyString:     true,
	ValidateString: true,
}.Froze()

func Marshal(v any) ([]byte, error) { return api.Marshal(v) }

func Unmarshal(data []byte, v any) error { return api.Unmarshal(data, v) }

func MarshalString(v any) (string, error) { return api.MarshalToString(v) }

func UnmarshalString(data string, v any) error { return api.UnmarshalFromString(data, v) }

func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return api.MarshalIndent(v, prefix, indent)
}

// Valid reports whether data is a syntactically valid JSON document.
func Valid(data []byte) bool { return api.Valid(data) }
