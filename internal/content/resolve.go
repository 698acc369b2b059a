package content

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

var tokenPattern = regexp.MustCompile(`\{\{\s*([^{}\s]+)\s*\}\}`)

// ResolvePlaceholders returns a copy of tree with every {{ a.b.c }} token in
// its strings replaced by the value at that path from the root of tree.
//
// Tokens are looked up in the unresolved tree and the substituted text is not
// scanned again, so a token whose value is itself a token stays literal.
// Missing paths resolve to the empty string. Non-string leaves pass through
// unchanged.
func ResolvePlaceholders(tree any) any {
	return resolve(tree, tree)
}

func resolve(node, root any) any {
	switch v := node.(type) {
	case string:
		if !strings.Contains(v, "{{") {
			return v
		}
		return tokenPattern.ReplaceAllStringFunc(v, func(match string) string {
			path := tokenPattern.FindStringSubmatch(match)[1]
			val, ok := lookup(root, path)
			if !ok {
				return ""
			}
			return stringify(val)
		})
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = resolve(elem, root)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, elem := range v {
			out[k] = resolve(elem, root)
		}
		return out
	default:
		return v
	}
}

func lookup(root any, path string) (any, bool) {
	cur := root
	for _, key := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
