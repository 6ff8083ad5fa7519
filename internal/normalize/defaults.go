package normalize

// applyDefaults fills absent object properties that declare a "default"
// in schema. It follows "properties" and "items" only, which covers every
// schema this package is used with.
func applyDefaults(schema map[string]any, doc any) {
	switch v := doc.(type) {
	case map[string]any:
		props, _ := schema["properties"].(map[string]any)
		for name, raw := range props {
			sub, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			if val, present := v[name]; present {
				applyDefaults(sub, val)
				continue
			}
			if def, ok := sub["default"]; ok {
				v[name] = cloneValue(def)
			}
		}
	case []any:
		items, ok := schema["items"].(map[string]any)
		if !ok {
			return
		}
		for _, el := range v {
			applyDefaults(items, el)
		}
	}
}

// cloneValue deep-copies maps and slices so documents never alias the
// shared schema definition.
func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}
