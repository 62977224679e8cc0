package review

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/registrykit/bridge/model/cms"
)

// Request is the strict review payload: the submitted service as it should
// be evaluated, plus the lifecycle version the decision applies to.
type Request struct {
	ID      string          `json:"id"`
	Data    cms.ServiceData `json:"data"`
	Version string          `json:"version"`
}

// requestSchema is the strict schema a review payload must satisfy before
// any business logic runs. A payload failing it is malformed, not merely
// non-compliant, and fails the invocation.
const requestSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": false,
  "required": ["id", "data", "version"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "version": {"type": "string", "minLength": 1},
    "data": {
      "type": "object",
      "required": ["name", "organization"],
      "properties": {
        "name": {"type": "string", "minLength": 1},
        "description": {"type": "string"},
        "organization": {
          "type": "object",
          "required": ["name", "fiscal_code"],
          "properties": {
            "name": {"type": "string", "minLength": 1},
            "fiscal_code": {"type": "string", "minLength": 1}
          }
        },
        "metadata": {"type": "object"},
        "authorized_recipients": {"type": "array", "items": {"type": "string"}},
        "authorized_cidrs": {"type": "array", "items": {"type": "string"}},
        "require_secure_channel": {"type": "boolean"},
        "max_allowed_payment_amount": {"type": "integer", "minimum": 0}
      }
    }
  }
}`

const requestSchemaURL = "bridge://review/request.schema.json"

func compileRequestSchema() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader([]byte(requestSchema)))
	if err != nil {
		return nil, fmt.Errorf("review: parsing request schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(requestSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("review: registering request schema: %w", err)
	}
	schema, err := compiler.Compile(requestSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("review: compiling request schema: %w", err)
	}
	return schema, nil
}

// decodeRequest validates the raw payload against the strict schema and
// decodes it. Any failure is fatal to the invocation.
func (s *Service) decodeRequest(payload []byte) (*Request, error) {
	value, err := jsonschema.UnmarshalJSON(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("review: malformed payload: %w", err)
	}
	if err := s.schema.Validate(value); err != nil {
		return nil, fmt.Errorf("review: payload rejected by schema: %w", err)
	}
	var request Request
	if err := json.Unmarshal(payload, &request); err != nil {
		return nil, fmt.Errorf("review: decoding payload: %w", err)
	}
	return &request, nil
}
