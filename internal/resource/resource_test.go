package resource

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

const validJobDefinition = `{
	"type": "job",
	"depends_on": ["es_input", "ingest_key"],
	"properties": {
		"title": "AWS alerts triage",
		"category": "Decision intelligence",
		"decision_points": ["source.ip", "rule.name"],
		"pipeline_integrations": [
			{
				"resource": "es_input",
				"integration_type": "input",
				"enabled": true,
				"storage_tag": "aws_alerts",
				"parameters": {"index": "alerts-*"}
			}
		]
	}
}`

func TestDecode_ApiKey(t *testing.T) {
	res, err := Decode("ingest_key", []byte(`{"type": "api_key", "properties": {"name": "ingest"}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Type != TypeAPIKey {
		t.Fatalf("expected api_key, got %s", res.Type)
	}
	props, ok := res.Properties.(ApiKeyProperties)
	if !ok {
		t.Fatalf("expected ApiKeyProperties, got %T", res.Properties)
	}
	if props.Name != "ingest" {
		t.Fatalf("expected name ingest, got %s", props.Name)
	}
}

func TestDecode_Job(t *testing.T) {
	res, err := Decode("triage", []byte(validJobDefinition))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	job, ok := res.Properties.(JobProperties)
	if !ok {
		t.Fatalf("expected JobProperties, got %T", res.Properties)
	}
	if job.Title != "AWS alerts triage" {
		t.Fatalf("unexpected title %q", job.Title)
	}
	if len(res.DependsOn) != 2 {
		t.Fatalf("expected 2 dependencies, got %d", len(res.DependsOn))
	}
	if len(job.PipelineIntegrations) != 1 {
		t.Fatalf("expected 1 pipeline integration, got %d", len(job.PipelineIntegrations))
	}
	if job.PipelineIntegrations[0].StorageTag != "aws_alerts" {
		t.Fatalf("unexpected storage tag %q", job.PipelineIntegrations[0].StorageTag)
	}
}

func TestDecode_MissingDiscriminator(t *testing.T) {
	_, err := Decode("x", []byte(`{"properties": {"name": "k"}}`))
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if schemaErr.Field != "type" {
		t.Fatalf("expected field type, got %q", schemaErr.Field)
	}
}

func TestDecode_UnknownType(t *testing.T) {
	_, err := Decode("x", []byte(`{"type": "pipeline", "properties": {}}`))
	var typeErr *UnknownTypeError
	if !errors.As(err, &typeErr) {
		t.Fatalf("expected UnknownTypeError, got %v", err)
	}
	if typeErr.Type != "pipeline" {
		t.Fatalf("expected type pipeline, got %q", typeErr.Type)
	}
	if typeErr.Resource != "x" {
		t.Fatalf("expected resource x, got %q", typeErr.Resource)
	}
}

func TestDecode_MissingRequiredField(t *testing.T) {
	// integration without parameters
	_, err := Decode("es", []byte(`{"type": "integration", "properties": {"title": "ES", "integration_type": "Elasticsearch"}}`))
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
}

func TestDecode_InvalidPipelineRole(t *testing.T) {
	def := strings.Replace(validJobDefinition, `"integration_type": "input"`, `"integration_type": "sink"`, 1)
	_, err := Decode("triage", []byte(def))
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
}

func TestDecode_StorageTagOnNonInputRole(t *testing.T) {
	def := strings.Replace(validJobDefinition, `"integration_type": "input"`, `"integration_type": "output"`, 1)
	_, err := Decode("triage", []byte(def))
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if !strings.Contains(schemaErr.Field, "storage_tag") {
		t.Fatalf("expected storage_tag field, got %q", schemaErr.Field)
	}
}

func TestDecode_StorageTagForbiddenCharacters(t *testing.T) {
	for _, tag := range []string{"aws alerts", "aws.alerts", "aws*"} {
		def := strings.Replace(validJobDefinition, `"storage_tag": "aws_alerts"`, `"storage_tag": "`+tag+`"`, 1)
		_, err := Decode("triage", []byte(def))
		var schemaErr *SchemaError
		if !errors.As(err, &schemaErr) {
			t.Fatalf("tag %q: expected SchemaError, got %v", tag, err)
		}
		if !strings.Contains(schemaErr.Field, "storage_tag") {
			t.Fatalf("tag %q: expected storage_tag field, got %q", tag, schemaErr.Field)
		}
	}
}

func TestDecode_InvalidMonitorName(t *testing.T) {
	def := `{
		"type": "job",
		"properties": {
			"title": "T", "category": "C", "decision_points": ["a"],
			"pipeline_integrations": [],
			"advanced_settings": {
				"monitoring_settings": {
					"throttling": 60,
					"monitors": [{"name": "cpu_usage", "active": true, "interval_check": 10}]
				}
			}
		}
	}`
	_, err := Decode("triage", []byte(def))
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
}

func TestMarshal_ApiKeyDerivesTitle(t *testing.T) {
	res := Resource{Type: TypeAPIKey, Properties: ApiKeyProperties{Name: "ingest"}}
	data, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var out struct {
		DependsOn  []string `json:"depends_on"`
		Properties struct {
			Name  string `json:"name"`
			Title string `json:"title"`
		} `json:"properties"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Properties.Title != "ingest" {
		t.Fatalf("expected derived title ingest, got %q", out.Properties.Title)
	}
	if out.DependsOn == nil || len(out.DependsOn) != 0 {
		t.Fatalf("expected empty depends_on list, got %v", out.DependsOn)
	}
}

func TestMarshal_ApiKeyTitleIgnoredOnInput(t *testing.T) {
	res, err := Decode("k", []byte(`{"type": "api_key", "properties": {"name": "ingest", "title": "something else"}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(data), `"title":"ingest"`) {
		t.Fatalf("expected title to mirror name, got %s", data)
	}
}

func TestDecode_RoundTrip(t *testing.T) {
	res, err := Decode("triage", []byte(validJobDefinition))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	again, err := Decode("triage", data)
	if err != nil {
		t.Fatalf("re-decoding serialized resource: %v", err)
	}
	first := res.Properties.(JobProperties)
	second := again.Properties.(JobProperties)
	if first.Title != second.Title || len(first.PipelineIntegrations) != len(second.PipelineIntegrations) {
		t.Fatal("round trip changed the resource")
	}
}

func TestDecodeBatch_NotAnObject(t *testing.T) {
	_, err := DecodeBatch([]byte(`["a", "b"]`))
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
}

func TestDecodeBatch_Empty(t *testing.T) {
	_, err := DecodeBatch([]byte(`{}`))
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
}

func TestDecodeBatch_OneInvalidEntryFailsAll(t *testing.T) {
	batch := `{
		"good": {"type": "api_key", "properties": {"name": "k"}},
		"bad": {"type": "nope", "properties": {}}
	}`
	_, err := DecodeBatch([]byte(batch))
	var typeErr *UnknownTypeError
	if !errors.As(err, &typeErr) {
		t.Fatalf("expected UnknownTypeError, got %v", err)
	}
	if typeErr.Resource != "bad" {
		t.Fatalf("expected failing resource bad, got %q", typeErr.Resource)
	}
}

func TestDecodeBatch_Valid(t *testing.T) {
	batch := `{
		"ingest_key": {"type": "api_key", "properties": {"name": "ingest"}},
		"es_input": {"type": "integration", "properties": {"title": "ES", "integration_type": "Elasticsearch", "parameters": {"host": "localhost"}}},
		"triage": ` + validJobDefinition + `
	}`
	decoded, err := DecodeBatch([]byte(batch))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(decoded) != 3 {
		t.Fatalf("expected 3 resources, got %d", len(decoded))
	}
	if decoded["es_input"].Type != TypeIntegration {
		t.Fatalf("expected integration, got %s", decoded["es_input"].Type)
	}
}

func TestKnownType(t *testing.T) {
	for _, valid := range []string{"api_key", "integration", "job"} {
		if !KnownType(valid) {
			t.Fatalf("expected %s to be known", valid)
		}
	}
	if KnownType("pipeline") {
		t.Fatal("expected pipeline to be unknown")
	}
}
