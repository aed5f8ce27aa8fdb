package trigger

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var (
	errBodyTooLarge = errors.New("request body too large")
	errInvalidJSON  = errors.New("invalid JSON body")
)

// parseQuery reads cmd, text and action from a raw query string. Pairs are
// split on '&' only and a malformed escape is kept as literal text, so no
// supplied value is silently dropped. The first occurrence of a name wins.
func parseQuery(rawQuery string) Request {
	values := make(map[string]string)
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		name, value, _ := strings.Cut(pair, "=")
		name = decodeQueryComponent(name)
		if _, seen := values[name]; !seen {
			values[name] = decodeQueryComponent(value)
		}
	}

	return Request{
		Cmd: values["cmd"],
		Params: Params{
			Text:   values["text"],
			Action: values["action"],
		},
	}
}

// decodeQueryComponent turns '+' into a space and decodes every well formed
// %XX escape. A '%' not followed by two hex digits stays as is.
func decodeQueryComponent(s string) string {
	if !strings.ContainsAny(s, "+%") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '+':
			b.WriteByte(' ')
		case c == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]):
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
		default:
			b.WriteByte(c)
		}
	}
	return strings.ToValidUTF8(b.String(), "\uFFFD")
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

// readJSONRequest reads at most limit bytes from body and parses them.
func readJSONRequest(body io.Reader, limit int64) (Request, error) {
	data, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return Request{}, fmt.Errorf("failed to read body: %w", err)
	}
	if int64(len(data)) > limit {
		return Request{}, errBodyTooLarge
	}
	return parseJSONRequest(data)
}

// parseJSONRequest treats an empty body as {}. Any valid JSON value that is not
// an object also yields an empty request, which the caller rejects for its
// missing cmd.
func parseJSONRequest(data []byte) (Request, error) {
	if len(data) == 0 {
		return Request{}, nil
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return Request{}, fmt.Errorf("%w: %v", errInvalidJSON, err)
	}

	obj, _ := doc.(map[string]interface{})
	return Request{
		Cmd: coerceString(obj["cmd"]),
		Params: Params{
			Text:   stringField(obj, "text"),
			Action: stringField(obj, "action"),
		},
	}, nil
}

// coerceString renders a decoded JSON value as text. null becomes "", arrays
// are joined with ',' (null elements render empty) and objects render as
// "[object Object]".
func coerceString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return formatNumber(val)
	case []interface{}:
		parts := make([]string, len(val))
		for i, elem := range val {
			parts[i] = coerceString(elem)
		}
		return strings.Join(parts, ",")
	default:
		return "[object Object]"
	}
}

// formatNumber prints f with the shortest round-trip digits, switching to
// exponent form below 1e-6 and from 1e21 up.
func formatNumber(f float64) string {
	if f == 0 {
		return "0"
	}
	if f < 0 {
		return "-" + formatNumber(-f)
	}

	mantissa, exp, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
	digits := strings.Replace(mantissa, ".", "", 1)
	pow, _ := strconv.Atoi(exp)
	k, n := len(digits), pow+1

	switch {
	case k <= n && n <= 21:
		return digits + strings.Repeat("0", n-k)
	case 0 < n && n <= 21:
		return digits[:n] + "." + digits[n:]
	case -6 < n && n <= 0:
		return "0." + strings.Repeat("0", -n) + digits
	}

	sign, e := "+", n-1
	if e < 0 {
		sign, e = "-", -e
	}
	suffix := "e" + sign + strconv.Itoa(e)
	if k == 1 {
		return digits + suffix
	}
	return digits[:1] + "." + digits[1:] + suffix
}

// stringField returns obj[key] only when it is a JSON string.
func stringField(obj map[string]interface{}, key string) string {
	s, _ := obj[key].(string)
	return s
}
