package normalize

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// payloadSchemaJSON is the structural contract for collaborator payloads.
// It is deliberately permissive: every field is optional and unknown
// fields pass, but present fields must have the right shape so a garbled
// payload is caught before normalization instead of producing nonsense
// charts.
const payloadSchemaJSON = `{
  "type": "object",
  "properties": {
    "sprint": {"type": "object"},
    "tasks": {
      "type": "array",
      "items": {"type": "object"}
    },
    "added_items": {
      "type": "array",
      "items": {"type": "object"}
    },
    "removed_items": {
      "type": "array",
      "items": {"type": "object"}
    },
    "team_members": {
      "type": "array",
      "items": {"type": "string"}
    },
    "planned_points": {"type": "number"},
    "completed_points": {"type": "number"}
  }
}`

var payloadSchemaLoader = gojsonschema.NewStringLoader(payloadSchemaJSON)

// ValidatePayload checks a raw JSON payload against the collaborator
// contract. It returns an error describing every violation, or nil.
func ValidatePayload(data []byte) error {
	documentLoader := gojsonschema.NewBytesLoader(data)
	result, err := gojsonschema.Validate(payloadSchemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validate payload: %w", err)
	}
	if result.Valid() {
		return nil
	}

	var sb strings.Builder
	sb.WriteString("payload violates contract:")
	for _, desc := range result.Errors() {
		sb.WriteString(" ")
		sb.WriteString(desc.String())
		sb.WriteString(";")
	}
	return fmt.Errorf("%s", strings.TrimSuffix(sb.String(), ";"))
}
