package models

// ModelEntry maps a display name to a provider model id.
type ModelEntry struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// ModelCatalog lists the selectable language models. The first entry is the
// fallback for unknown values.
var ModelCatalog = []ModelEntry{
	{Name: "gpt-4.5-preview", ID: "gpt-4.5-preview-2025-02-27"},
	{Name: "gpt-4o", ID: "gpt-4o-2024-08-06"},
	{Name: "gpt-4o-mini", ID: "gpt-4o-mini-2024-07-18"},
	{Name: "o1", ID: "o1-2024-12-17"},
	{Name: "o1-mini", ID: "o1-mini-2024-09-12"},
	{Name: "o3-mini", ID: "o3-mini-2025-01-31"},
	{Name: "o1-preview", ID: "o1-preview-2024-09-12"},
	{Name: "Claude 3.7 Sonnet", ID: "claude-3-7-sonnet-20250219"},
	{Name: "Claude 3.5 Haiku", ID: "claude-3-5-haiku-20241022"},
	{Name: "Claude 3.5 Sonnet v2", ID: "claude-3-5-sonnet-20241022"},
	{Name: "Claude 3.5 Sonnet", ID: "claude-3-5-sonnet-20240620"},
	{Name: "Claude 3 Opus", ID: "claude-3-opus-20240229"},
	{Name: "Claude 3 Sonnet", ID: "claude-3-sonnet-20240229"},
	{Name: "Claude 3 Haiku", ID: "claude-3-haiku-20240307"},
}

// DefaultTemperature is used when neither the network nor a node sets one.
const DefaultTemperature = 0.5

// ResolveModelName returns the catalog display name for value, which may be
// either a display name or a model id. Unknown values resolve to the first
// catalog entry.
func ResolveModelName(value string) string {
	for _, entry := range ModelCatalog {
		if entry.Name == value {
			return entry.Name
		}
	}
	for _, entry := range ModelCatalog {
		if entry.ID == value {
			return entry.Name
		}
	}
	return ModelCatalog[0].Name
}

// ModelID returns the provider model id for a display name or id.
func ModelID(value string) string {
	name := ResolveModelName(value)
	for _, entry := range ModelCatalog {
		if entry.Name == name {
			return entry.ID
		}
	}
	return ModelCatalog[0].ID
}

// DefaultLLMConfig returns the catalog default model and temperature.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		ModelName:   ModelCatalog[0].Name,
		Temperature: DefaultTemperature,
	}
}
