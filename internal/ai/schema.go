package ai

import (
	"encoding/json"
	"fmt"

	"quote-to-cash/internal/core"

	"github.com/invopop/jsonschema"
)

// draftSchema reflects core.DraftRequest into the map form the Responses API expects.
func draftSchema() (map[string]any, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schemaJSON, err := json.Marshal(reflector.Reflect(&core.DraftRequest{}))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}
	return schemaMap, nil
}
