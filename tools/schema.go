package tools

// ObjectSchema builds a JSON schema object with the given properties and
// required property names.
func ObjectSchema(properties map[string]interface{}, required ...string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// ObjectProperty is a nested object property.
func ObjectProperty(description string, properties map[string]interface{}, required ...string) map[string]interface{} {
	prop := ObjectSchema(properties, required...)
	prop["description"] = description
	return prop
}

// StringProperty is a string property.
func StringProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

// NumberProperty is a number property.
func NumberProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "number",
		"description": description,
	}
}

// NumberMapProperty is an object with arbitrary keys and number values.
func NumberMapProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":                 "object",
		"description":          description,
		"additionalProperties": map[string]interface{}{"type": "number"},
	}
}

// ArrayProperty is an array whose items match the given schema.
func ArrayProperty(description string, items map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"description": description,
		"items":       items,
	}
}

// SplitSchema separates an object schema into its properties and required
// list, the shape most provider APIs expect.
func SplitSchema(schema map[string]interface{}) (map[string]interface{}, []string) {
	props, _ := schema["properties"].(map[string]interface{})
	if props == nil {
		props = map[string]interface{}{}
	}
	var required []string
	switch r := schema["required"].(type) {
	case []string:
		required = r
	case []interface{}:
		for _, v := range r {
			if s, ok := v.(string); ok {
				required = append(required, s)
			}
		}
	}
	return props, required
}
