// Package template resolves {{...}} placeholders in node configuration
// against a node's resolved input and prior node outputs.
//
// Resolution is textual substitution only. There is no function call
// syntax, no pipeline, and no code evaluation: a placeholder either names
// the input, a dotted path into it, or another node's recorded output.
// Anything that does not resolve becomes the empty string.
package template

import (
	"encoding/json"
	"strconv"
	"strings"
)

const (
	openMarker  = "{{"
	closeMarker = "}}"
)

// Resolve substitutes every {{...}} placeholder in s. Placeholder forms, in
// precedence order:
//
//	{{input.path.to.field}} / {{result.path.to.field}} — dotted lookup into
//	the input (a JSON-encoded string input is parsed first).
//	{{input}} / {{result}} — the whole input, stringified.
//	{{nodeId.output}} — the named node's recorded output, stringified;
//	empty if that node has not produced output.
//
// Unmatched placeholders and missing path segments resolve to "".
func Resolve(s string, input any, outputs map[string]any) string {
	if !strings.Contains(s, openMarker) {
		return s
	}

	var b strings.Builder

	b.Grow(len(s))

	for {
		start := strings.Index(s, openMarker)
		if start == -1 {
			b.WriteString(s)

			break
		}

		end := strings.Index(s[start:], closeMarker)
		if end == -1 {
			// Unclosed marker: emit the rest verbatim.
			b.WriteString(s)

			break
		}

		end += start

		b.WriteString(s[:start])

		token := strings.TrimSpace(s[start+len(openMarker) : end])
		b.WriteString(resolveToken(token, input, outputs))

		s = s[end+len(closeMarker):]
	}

	return b.String()
}

func resolveToken(token string, input any, outputs map[string]any) string {
	switch token {
	case "":
		return ""
	case "input", "result":
		return Stringify(input)
	}

	if path, ok := strings.CutPrefix(token, "input."); ok {
		return lookupInput(input, path)
	}

	if path, ok := strings.CutPrefix(token, "result."); ok {
		return lookupInput(input, path)
	}

	if nodeID, ok := strings.CutSuffix(token, ".output"); ok && !strings.Contains(nodeID, ".") {
		out, found := outputs[nodeID]
		if !found {
			return ""
		}

		return Stringify(out)
	}

	return ""
}

// lookupInput walks a dotted path into the input. A string input is parsed
// as JSON first; a string that is not JSON is opaque and yields nothing.
func lookupInput(input any, path string) string {
	value := structured(input)

	for _, segment := range strings.Split(path, ".") {
		m, ok := value.(map[string]any)
		if !ok {
			return ""
		}

		value, ok = m[segment]
		if !ok {
			return ""
		}
	}

	return Stringify(value)
}

func structured(input any) any {
	s, ok := input.(string)
	if !ok {
		return input
	}

	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[") {
		return input
	}

	var parsed any
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		return input
	}

	return parsed
}

// Stringify renders a resolved value for embedding into text. Scalars pass
// through; structured values are JSON-serialized; nil is empty.
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return ""
		}

		return string(raw)
	}
}
