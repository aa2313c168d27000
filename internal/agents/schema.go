package agents

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// agentOutputSchema constrains what a generated agent response may look
// like. Anything outside it is treated as malformed output and turns
// into an errored report.
const agentOutputSchema = `{
	"type": "object",
	"required": ["score", "findings"],
	"properties": {
		"score": {"type": "integer", "minimum": 0, "maximum": 100},
		"findings": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["title", "detail"],
				"properties": {
					"title": {"type": "string", "minLength": 1},
					"detail": {"type": "string", "minLength": 1},
					"evidence": {"type": "string"}
				}
			}
		}
	}
}`

// validateOutput checks a generated JSON payload against the agent
// output schema.
func validateOutput(payload string) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(agentOutputSchema),
		gojsonschema.NewStringLoader(payload),
	)
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	if !result.Valid() {
		var msgs []string
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return fmt.Errorf("generated output does not match schema: %s", strings.Join(msgs, "; "))
	}
	return nil
}
