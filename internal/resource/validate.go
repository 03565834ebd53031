package resource

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// UnknownTypeError reports a discriminator value outside the three
// resource variants.
type UnknownTypeError struct {
	Resource string // request-local identifier, empty when unknown
	Type     string
}

func (e *UnknownTypeError) Error() string {
	if e.Resource == "" {
		return fmt.Sprintf("unknown resource type %q: expected api_key, integration or job", e.Type)
	}
	return fmt.Sprintf("resource %q: unknown resource type %q: expected api_key, integration or job", e.Resource, e.Type)
}

// SchemaError reports a structural or cross-field validation failure
// for one resource definition.
type SchemaError struct {
	Resource string // request-local identifier, empty for batch-level failures
	Field    string // JSON path of the offending field, when known
	Detail   string
}

func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("invalid resource")
	if e.Resource != "" {
		fmt.Fprintf(&b, " %q", e.Resource)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, ": field %s", e.Field)
	}
	b.WriteString(": ")
	b.WriteString(e.Detail)
	return b.String()
}

// resourceSchemaJSON structurally validates one resource definition:
// discriminator membership, required fields, value types and the
// closed enums (pipeline roles, monitor names). Cross-field rules that
// JSON Schema cannot express cleanly live in validateCrossField.
const resourceSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["type", "properties"],
  "properties": {
    "type": {"enum": ["api_key", "integration", "job"]},
    "depends_on": {"type": "array", "items": {"type": "string"}},
    "properties": {"type": "object"}
  },
  "allOf": [
    {
      "if": {"properties": {"type": {"const": "api_key"}}},
      "then": {"properties": {"properties": {"$ref": "#/$defs/apiKeyProperties"}}}
    },
    {
      "if": {"properties": {"type": {"const": "integration"}}},
      "then": {"properties": {"properties": {"$ref": "#/$defs/integrationProperties"}}}
    },
    {
      "if": {"properties": {"type": {"const": "job"}}},
      "then": {"properties": {"properties": {"$ref": "#/$defs/jobProperties"}}}
    }
  ],
  "$defs": {
    "apiKeyProperties": {
      "type": "object",
      "required": ["name"],
      "properties": {
        "name": {"type": "string", "minLength": 1},
        "title": {"type": "string"}
      }
    },
    "integrationProperties": {
      "type": "object",
      "required": ["title", "integration_type", "parameters"],
      "properties": {
        "title": {"type": "string", "minLength": 1},
        "integration_type": {"type": "string", "minLength": 1},
        "parameters": {"type": "object"}
      }
    },
    "jobProperties": {
      "type": "object",
      "required": ["title", "category", "decision_points", "pipeline_integrations"],
      "properties": {
        "title": {"type": "string", "minLength": 1},
        "description": {"type": "string"},
        "category": {"type": "string", "minLength": 1},
        "decision_points": {"type": "array", "items": {"type": "string"}},
        "feedback_columns": {"type": "array", "items": {"type": "string"}},
        "advanced_settings": {"$ref": "#/$defs/advancedSettings"},
        "pipeline_integrations": {"type": "array", "items": {"$ref": "#/$defs/pipelineIntegration"}},
        "remove_missing_pipeline_integrations": {"type": "boolean"}
      }
    },
    "advancedSettings": {
      "type": "object",
      "properties": {
        "custom_labels": {"type": "array", "items": {"$ref": "#/$defs/label"}},
        "auto_retrain": {"$ref": "#/$defs/autoRetrain"},
        "monitoring_settings": {"$ref": "#/$defs/monitoringSettings"}
      }
    },
    "label": {
      "type": "object",
      "required": ["name"],
      "properties": {
        "name": {"type": "string", "minLength": 1},
        "hex_color": {"type": "string"}
      }
    },
    "autoRetrain": {
      "type": "object",
      "required": ["enabled", "cron"],
      "properties": {
        "enabled": {"type": "boolean"},
        "cron": {"type": "string"},
        "blockers": {
          "type": "object",
          "properties": {
            "consensus_flipping": {"type": "boolean"},
            "low_confidence_score": {"type": "boolean"},
            "undecided_consensus": {"type": "boolean"},
            "consensus_low_score": {"type": "boolean"},
            "outliers": {"type": "boolean"},
            "consensus_changes": {"type": "boolean"}
          }
        }
      }
    },
    "monitoringSettings": {
      "type": "object",
      "required": ["throttling", "monitors"],
      "properties": {
        "throttling": {"type": "integer"},
        "monitors": {"type": "array", "items": {"$ref": "#/$defs/monitorInfo"}}
      }
    },
    "monitorInfo": {
      "type": "object",
      "required": ["name", "active", "interval_check"],
      "properties": {
        "name": {
          "enum": [
            "results_with_error_logs_in_last_x_minutes",
            "error_job_state_in_last_x_minutes",
            "no_data_processed_in_last_x_minutes"
          ]
        },
        "active": {"type": "boolean"},
        "interval_check": {"type": "integer"}
      }
    },
    "pipelineIntegration": {
      "type": "object",
      "required": ["resource", "integration_type", "enabled", "parameters"],
      "properties": {
        "resource": {"type": "string", "minLength": 1},
        "integration_type": {
          "enum": ["input", "enrichment", "processor", "case_creation", "post_decision", "output"]
        },
        "enabled": {"type": "boolean"},
        "auto_id": {"type": "string"},
        "storage_tag": {"type": "string"},
        "storage_tag_display_name": {"type": "string"},
        "parameters": {"type": "object"}
      }
    }
  }
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
)

func resourceSchema() *jsonschema.Schema {
	schemaOnce.Do(func() {
		var doc any
		if err := json.Unmarshal([]byte(resourceSchemaJSON), &doc); err != nil {
			panic(fmt.Sprintf("resource schema is not valid JSON: %v", err))
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("resource.json", doc); err != nil {
			panic(fmt.Sprintf("adding resource schema: %v", err))
		}
		sch, err := c.Compile("resource.json")
		if err != nil {
			panic(fmt.Sprintf("compiling resource schema: %v", err))
		}
		compiledSchema = sch
	})
	return compiledSchema
}

// DecodeBatch validates and decodes a full upsert batch. The first
// invalid entry fails the whole batch; nothing from a failed batch is
// ever serialized or sent.
func DecodeBatch(data []byte) (Batch, error) {
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &SchemaError{Detail: "resources must be a JSON object: " + err.Error()}
	}
	if len(entries) == 0 {
		return nil, &SchemaError{Detail: "resources must contain at least one entry"}
	}
	batch := make(Batch, len(entries))
	for name, raw := range entries {
		res, err := Decode(name, raw)
		if err != nil {
			return nil, err
		}
		batch[name] = res
	}
	return batch, nil
}

// Decode validates one resource definition and returns its typed form.
// Validation order: discriminator, then structure (required fields,
// types, enum membership), then cross-field invariants. The first
// violation is reported.
func Decode(name string, data []byte) (Resource, error) {
	var head struct {
		Type *string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return Resource{}, &SchemaError{Resource: name, Detail: "resource must be a JSON object: " + err.Error()}
	}
	if head.Type == nil {
		return Resource{}, &SchemaError{Resource: name, Field: "type", Detail: "missing discriminator"}
	}
	if !KnownType(*head.Type) {
		return Resource{}, &UnknownTypeError{Resource: name, Type: *head.Type}
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return Resource{}, &SchemaError{Resource: name, Detail: err.Error()}
	}
	if err := resourceSchema().Validate(doc); err != nil {
		return Resource{}, &SchemaError{Resource: name, Detail: err.Error()}
	}

	var r Resource
	if err := json.Unmarshal(data, &r); err != nil {
		return Resource{}, &SchemaError{Resource: name, Detail: err.Error()}
	}
	if err := r.validateCrossField(name); err != nil {
		return Resource{}, err
	}
	return r, nil
}

// storageTagForbidden are the characters a storage tag may not contain.
const storageTagForbidden = " .*"

func (r Resource) validateCrossField(name string) error {
	job, ok := r.Properties.(JobProperties)
	if !ok {
		return nil
	}
	for i, pi := range job.PipelineIntegrations {
		if pi.StorageTag == "" {
			continue
		}
		field := fmt.Sprintf("pipeline_integrations[%d].storage_tag", i)
		if pi.IntegrationType != RoleInput {
			return &SchemaError{
				Resource: name,
				Field:    field,
				Detail: fmt.Sprintf("storage_tag is only allowed when integration_type is %q, got %q",
					RoleInput, pi.IntegrationType),
			}
		}
		if strings.ContainsAny(pi.StorageTag, storageTagForbidden) {
			return &SchemaError{
				Resource: name,
				Field:    field,
				Detail:   fmt.Sprintf("storage_tag %q must not contain spaces, '.' or '*'", pi.StorageTag),
			}
		}
	}
	return nil
}
