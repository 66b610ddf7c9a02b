package llm

// ToolDefinition defines a tool that can be called by the model.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ParameterProperty defines a parameter property in JSON Schema format.
type ParameterProperty struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
}

// NewToolDefinition creates a new tool definition with standard JSON Schema parameters.
func NewToolDefinition(name, description string, properties map[string]ParameterProperty, required []string) ToolDefinition {
	props := make(map[string]any)
	for k, v := range properties {
		props[k] = map[string]any{
			"type":        v.Type,
			"description": v.Description,
		}
		if len(v.Enum) > 0 {
			props[k].(map[string]any)["enum"] = v.Enum
		}
	}

	return ToolDefinition{
		Name:        name,
		Description: description,
		Parameters: map[string]any{
			"type":       "object",
			"properties": props,
			"required":   required,
		},
	}
}

// GetEnrichmentTools returns the tool definitions available during
// schema enrichment.
func GetEnrichmentTools() []ToolDefinition {
	return []ToolDefinition{
		NewToolDefinition(
			"lookup_column_usage",
			"Search application query logs for lines that reference a column name, to learn how the column is actually used",
			map[string]ParameterProperty{
				"column_name": {
					Type:        "string",
					Description: "The exact column name to search for (matched as a whole word, case-insensitive)",
				},
			},
			[]string{"column_name"},
		),
	}
}
