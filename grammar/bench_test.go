//go:build go1.24

package grammar

import "testing"

func BenchmarkBuildRegex(b *testing.B) {
	schema := []byte(`{
		"type": "object",
		"properties": {
			"name": {"type": "string"},
			"age": {"type": "integer", "minimum": 0, "maximum": 130},
			"tags": {"type": "array", "items": {"type": "string"}}
		},
		"required": ["name"]
	}`)

	b.ReportAllocs()
	for b.Loop() {
		if _, err := BuildRegex(schema, ""); err != nil {
			b.Fatalf("BuildRegex: %v", err)
		}
	}
}
