package cli

import (
	"fmt"
	"strings"
)

// parseSetValues turns repeated --set key=value flags into a value map.
// Values may contain '=' and ','; only the first '=' separates the key.
// Keys are taken literally, matching placeholder names.
func parseSetValues(pairs []string) (map[string]string, error) {
	values := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --set %q: expected key=value", pair)
		}
		if key == "" {
			return nil, fmt.Errorf("invalid --set %q: empty key", pair)
		}
		values[key] = value
	}
	return values, nil
}
