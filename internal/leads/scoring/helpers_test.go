package scoring

import (
	"encoding/json"
	"testing"
)

func mustField(t *testing.T, raw []byte, path ...string) json.RawMessage {
	t.Helper()
	current := json.RawMessage(raw)
	for _, key := range path {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(current, &obj); err != nil {
			t.Fatalf("decode %s: %v", key, err)
		}
		next, ok := obj[key]
		if !ok {
			t.Fatalf("missing key %q in %s", key, current)
		}
		current = next
	}
	return current
}
