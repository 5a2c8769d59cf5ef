package server

import (
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
)

// SuggestInputSchema describes the body accepted by the suggest route. Every
// field is optional; an empty object surveys the whole catalog.
func SuggestInputSchema() *jsonschema.Schema {
	zero := 0.0
	one := 1.0
	priority := func(desc string) *jsonschema.Schema {
		return &jsonschema.Schema{Type: "number", Description: desc, Minimum: &zero, Maximum: &one}
	}

	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"materials": {
				Type:        "array",
				Description: "Catalog material names.",
				Items:       &jsonschema.Schema{Type: "string"},
			},
			"quantities": {
				Type:        "array",
				Description: "Kilograms of each material, paired by position.",
				Items:       &jsonschema.Schema{Type: "number", ExclusiveMinimum: &zero},
			},
			"budget": {
				Type:        "number",
				Description: "Budget in USD.",
				Minimum:     &zero,
			},
			"preferences": {
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"environmental_priority":    priority("Weight of the environmental sub-score."),
					"cost_priority":             priority("Weight of the cost sub-score."),
					"recyclability_priority":    priority("Weight of the recyclability sub-score."),
					"biodegradability_priority": priority("Weight of the biodegradability sub-score."),
				},
			},
		},
	}
}

func (s *Server) handleSuggestSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.suggestSchema)
}
