package entities

import (
	"encoding/json"
	"fmt"
)

// ParseCount normalizes the numeric shapes drivers decode a script's
// count result into. A nil result counts as zero.
func ParseCount(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float32:
		return int(n), nil
	case float64:
		return int(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("unexpected count %q: %w", n, err)
		}
		return int(f), nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("unexpected count type %T", v)
	}
}
