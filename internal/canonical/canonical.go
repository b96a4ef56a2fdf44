// Package canonical produces the deterministic JSON encoding used as signing input:
// object keys sorted lexicographically, no insignificant whitespace, HTML left unescaped.
package canonical

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/apd/v3"
)

var api = sonic.Config{
	SortMapKeys: true,
}.Froze()

// Marshal encodes record canonically. Decimal values are written as plain JSON
// numbers in fixed-point notation.
func Marshal(record map[string]any) ([]byte, error) {
	normalized := make(map[string]any, len(record))
	for k, v := range record {
		n, err := normalize(v)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", k, err)
		}
		normalized[k] = n
	}
	return api.Marshal(normalized)
}

// Unmarshal decodes data keeping numbers as json.Number.
func Unmarshal(data []byte, v any) error {
	return decoder.Unmarshal(data, v)
}

var decoder = sonic.Config{
	UseNumber: true,
}.Froze()

func normalize(v any) (any, error) {
	switch val := v.(type) {
	case apd.Decimal:
		return decimalNumber(&val)
	case *apd.Decimal:
		if val == nil {
			return nil, nil
		}
		return decimalNumber(val)
	case float64:
		return floatNumber(val)
	case float32:
		return floatNumber(float64(val))
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			n, err := normalize(inner)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			n, err := normalize(inner)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	default:
		return v, nil
	}
}

func decimalNumber(d *apd.Decimal) (any, error) {
	if d.Form != apd.Finite {
		return nil, fmt.Errorf("non-finite decimal %s", d.String())
	}
	return json.Number(d.Text('f')), nil
}

func floatNumber(f float64) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("non-finite number %v", f)
	}
	return json.Number(strconv.FormatFloat(f, 'f', -1, 64)), nil
}
