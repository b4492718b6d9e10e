package element

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// formatSelector substitutes values into the placeholders of template the
// way Node's util.format does: %s %d %i %f %j %o %O consume one value each,
// %c consumes one and prints nothing, %% prints a percent sign. Placeholders
// left over keep their text; values left over are appended separated by
// spaces. With no values the template is returned untouched.
func formatSelector(template string, values ...any) string {
	if len(values) == 0 {
		return template
	}

	var b strings.Builder
	next := 0
	for i := 0; i < len(template); i++ {
		c := template[i]
		if c != '%' || i+1 == len(template) {
			b.WriteByte(c)
			continue
		}

		verb := template[i+1]
		if verb == '%' {
			b.WriteByte('%')
			i++
			continue
		}
		if !strings.ContainsRune("sdifjoOc", rune(verb)) {
			b.WriteByte(c)
			continue
		}
		if next >= len(values) {
			b.WriteByte(c)
			continue
		}

		v := values[next]
		next++
		i++
		switch verb {
		case 's':
			b.WriteString(toString(v))
		case 'd':
			b.WriteString(formatNumber(toNumber(v)))
		case 'i':
			b.WriteString(formatNumber(parseInt(v)))
		case 'f':
			b.WriteString(formatNumber(parseFloat(v)))
		case 'j':
			data, err := json.Marshal(v)
			if err != nil {
				b.WriteString("[Circular]")
			} else {
				b.Write(data)
			}
		case 'o', 'O':
			b.WriteString(fmt.Sprintf("%+v", v))
		case 'c':
		}
	}

	for ; next < len(values); next++ {
		b.WriteByte(' ')
		b.WriteString(toString(values[next]))
	}
	return b.String()
}

func toString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float32, float64:
		return formatNumber(toNumber(val))
	case fmt.Stringer:
		return val.String()
	case nil:
		return "null"
	default:
		return fmt.Sprint(val)
	}
}

var (
	decimalLiteral = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?$`)
	floatPrefix    = regexp.MustCompile(`^[+-]?(?:Infinity|(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?)`)
	radixLiteral   = map[byte]int{'x': 16, 'X': 16, 'o': 8, 'O': 8, 'b': 2, 'B': 2}
)

// toNumber converts v the way JavaScript's Number() does for primitives.
// Anything that is not a number, string, bool or nil is NaN.
func toNumber(v any) float64 {
	switch val := v.(type) {
	case int:
		return float64(val)
	case int8:
		return float64(val)
	case int16:
		return float64(val)
	case int32:
		return float64(val)
	case int64:
		return float64(val)
	case uint:
		return float64(val)
	case uint8:
		return float64(val)
	case uint16:
		return float64(val)
	case uint32:
		return float64(val)
	case uint64:
		return float64(val)
	case float32:
		return float64(val)
	case float64:
		return val
	case bool:
		if val {
			return 1
		}
		return 0
	case nil:
		return 0
	case string:
		return stringToNumber(val)
	default:
		return math.NaN()
	}
}

func stringToNumber(s string) float64 {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return 0
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if len(s) > 2 && s[0] == '0' {
		if base, ok := radixLiteral[s[1]]; ok {
			return parseDigits(s[2:], base)
		}
	}
	if !decimalLiteral.MatchString(s) {
		return math.NaN()
	}
	// overflow yields ±Inf together with ErrRange, as Number() does
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

// parseDigits reads an unsigned integer in base; NaN when any digit is invalid.
func parseDigits(digits string, base int) float64 {
	n, ok := new(big.Int).SetString(digits, base)
	if !ok || strings.ContainsAny(digits, "_+-") {
		return math.NaN()
	}
	f, _ := new(big.Float).SetInt(n).Float64()
	return f
}

// parseInt follows JavaScript's parseInt(String(v)): leading digits only,
// with an optional sign and 0x prefix.
func parseInt(v any) float64 {
	s := strings.TrimLeftFunc(jsString(v), unicode.IsSpace)
	sign := 1.0
	if s != "" && (s[0] == '+' || s[0] == '-') {
		if s[0] == '-' {
			sign = -1
		}
		s = s[1:]
	}
	base := 10
	if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base = 16
		s = s[2:]
	}
	end := 0
	for end < len(s) && isDigit(s[end], base) {
		end++
	}
	if end == 0 {
		return math.NaN()
	}
	return sign * parseDigits(s[:end], base)
}

// parseFloat follows JavaScript's parseFloat(String(v)): the longest
// leading decimal literal.
func parseFloat(v any) float64 {
	s := strings.TrimLeftFunc(jsString(v), unicode.IsSpace)
	lit := floatPrefix.FindString(s)
	if lit == "" {
		return math.NaN()
	}
	return stringToNumber(lit)
}

func isDigit(c byte, base int) bool {
	switch {
	case c >= '0' && c <= '9':
		return int(c-'0') < base
	case c >= 'a' && c <= 'f':
		return base == 16
	case c >= 'A' && c <= 'F':
		return base == 16
	}
	return false
}

// jsString is String(v) for the primitives formatSelector accepts
func jsString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(val)
	}
	f := toNumber(v)
	if math.IsNaN(f) {
		return fmt.Sprint(v)
	}
	if f == 0 {
		return "0"
	}
	return formatNumber(f)
}

// formatNumber prints f the way util.format prints numbers: shortest
// round-trip digits, exponent form outside [1e-6, 1e21), and -0 kept.
func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0 && math.Signbit(f):
		return "-0"
	}
	if abs := math.Abs(f); abs != 0 && (abs >= 1e21 || abs < 1e-6) {
		// Go pads the exponent to two digits, JavaScript does not
		mant, exp, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
		sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
		return mant + "e" + sign + digits
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
