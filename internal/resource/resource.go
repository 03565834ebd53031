// Package resource implements the declarative resource model of the
// Arcanna platform: a discriminated union of api_key, integration and
// job definitions, their validation rules, and the client that
// reconciles a named batch of them against remote state.
//
// Resources are transient request payloads. They are decoded from
// caller-supplied JSON, validated, serialized once and discarded; the
// platform owns all persistent state.
package resource

import (
	"encoding/json"
	"fmt"
)

// Type discriminates the three resource variants.
type Type string

const (
	TypeAPIKey      Type = "api_key"
	TypeIntegration Type = "integration"
	TypeJob         Type = "job"
)

// KnownType reports whether t is one of the three resource variants.
func KnownType(t string) bool {
	switch Type(t) {
	case TypeAPIKey, TypeIntegration, TypeJob:
		return true
	}
	return false
}

// Properties is the variant payload of a Resource. Exactly one
// concrete type matches each discriminator value.
type Properties interface {
	resourceType() Type
}

// ApiKeyProperties names an API key. The wire format also carries a
// title field that always mirrors the name; it is derived at
// serialization time and ignored on input, so the two can never
// diverge.
type ApiKeyProperties struct {
	Name string `json:"name"`
}

func (ApiKeyProperties) resourceType() Type { return TypeAPIKey }

func (p ApiKeyProperties) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name  string `json:"name"`
		Title string `json:"title"`
	}{Name: p.Name, Title: p.Name})
}

// IntegrationProperties defines a connection to an external system.
// The integration type and parameter shapes are platform-defined open
// sets; only non-emptiness is checked locally.
type IntegrationProperties struct {
	Title           string         `json:"title"`
	IntegrationType string         `json:"integration_type"`
	Parameters      map[string]any `json:"parameters"`
}

func (IntegrationProperties) resourceType() Type { return TypeIntegration }

// Label is a decision label shown in the platform UI.
type Label struct {
	Name     string `json:"name"`
	HexColor string `json:"hex_color,omitempty"`
}

// AutoRetrainBlockers are the conditions that hold back an automatic
// retrain when present in the knowledge base.
type AutoRetrainBlockers struct {
	ConsensusFlipping  bool `json:"consensus_flipping"`
	LowConfidenceScore bool `json:"low_confidence_score"`
	UndecidedConsensus bool `json:"undecided_consensus"`
	ConsensusLowScore  bool `json:"consensus_low_score"`
	Outliers           bool `json:"outliers"`
	ConsensusChanges   bool `json:"consensus_changes"`
}

// AutoRetrainOptions schedules automatic retraining.
type AutoRetrainOptions struct {
	Enabled  bool                 `json:"enabled"`
	Cron     string               `json:"cron"`
	Blockers *AutoRetrainBlockers `json:"blockers,omitempty"`
}

// Monitor names accepted by the platform.
const (
	MonitorErrorLogs       = "results_with_error_logs_in_last_x_minutes"
	MonitorErrorJobState   = "error_job_state_in_last_x_minutes"
	MonitorNoDataProcessed = "no_data_processed_in_last_x_minutes"
)

// MonitorInfo is one health monitor attached to a job. Name is a
// closed set of three values.
type MonitorInfo struct {
	Name          string `json:"name"`
	Active        bool   `json:"active"`
	IntervalCheck int    `json:"interval_check"`
}

// MonitoringSettings groups a job's monitors under one alert throttle.
type MonitoringSettings struct {
	Throttling int           `json:"throttling"`
	Monitors   []MonitorInfo `json:"monitors"`
}

// AdvancedSettings are the optional job tuning knobs.
type AdvancedSettings struct {
	CustomLabels       []Label             `json:"custom_labels,omitempty"`
	AutoRetrain        *AutoRetrainOptions `json:"auto_retrain,omitempty"`
	MonitoringSettings *MonitoringSettings `json:"monitoring_settings,omitempty"`
}

// Pipeline integration roles. Unlike IntegrationProperties.IntegrationType,
// this is a closed set: any other value is rejected locally.
const (
	RoleInput        = "input"
	RoleEnrichment   = "enrichment"
	RoleProcessor    = "processor"
	RoleCaseCreation = "case_creation"
	RolePostDecision = "post_decision"
	RoleOutput       = "output"
)

// PipelineIntegration binds one integration into a job's pipeline
// under a given role. Resource is an opaque reference: an identifier
// from the same batch, an existing remote title, or a query-expression
// placeholder such as {{integrations(title='X')}}. It is carried
// through serialization verbatim and never resolved locally.
type PipelineIntegration struct {
	Resource              string         `json:"resource"`
	IntegrationType       string         `json:"integration_type"`
	Enabled               bool           `json:"enabled"`
	AutoID                string         `json:"auto_id,omitempty"`
	StorageTag            string         `json:"storage_tag,omitempty"`
	StorageTagDisplayName string         `json:"storage_tag_display_name,omitempty"`
	Parameters            map[string]any `json:"parameters"`
}

// JobProperties configures an alert-triage pipeline. Category is a
// platform-defined open string (e.g. "Decision intelligence");
// decision points are the field paths used as model features.
//
// RemoveMissingPipelineIntegrations governs the remote merge policy on
// update: integrations absent from this request are removed when true
// and retained when false. The flag is forwarded unmodified.
type JobProperties struct {
	Title                             string                `json:"title"`
	Description                       string                `json:"description,omitempty"`
	Category                          string                `json:"category"`
	DecisionPoints                    []string              `json:"decision_points"`
	FeedbackColumns                   []string              `json:"feedback_columns,omitempty"`
	AdvancedSettings                  *AdvancedSettings     `json:"advanced_settings,omitempty"`
	PipelineIntegrations              []PipelineIntegration `json:"pipeline_integrations"`
	RemoveMissingPipelineIntegrations bool                  `json:"remove_missing_pipeline_integrations"`
}

func (JobProperties) resourceType() Type { return TypeJob }

// Resource is one named configuration unit inside an upsert batch. The
// request-local identifier lives in the enclosing map, not here.
// DependsOn lists other identifiers from the same batch; it is
// pass-through ordering metadata for the platform.
type Resource struct {
	Type       Type
	DependsOn  []string
	Properties Properties
}

func (r Resource) MarshalJSON() ([]byte, error) {
	dependsOn := r.DependsOn
	if dependsOn == nil {
		dependsOn = []string{}
	}
	return json.Marshal(struct {
		Type       Type       `json:"type"`
		DependsOn  []string   `json:"depends_on"`
		Properties Properties `json:"properties"`
	}{Type: r.Type, DependsOn: dependsOn, Properties: r.Properties})
}

func (r *Resource) UnmarshalJSON(data []byte) error {
	var head struct {
		Type       string          `json:"type"`
		DependsOn  []string        `json:"depends_on"`
		Properties json.RawMessage `json:"properties"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	r.Type = Type(head.Type)
	r.DependsOn = head.DependsOn

	switch r.Type {
	case TypeAPIKey:
		var p ApiKeyProperties
		if err := json.Unmarshal(head.Properties, &p); err != nil {
			return fmt.Errorf("decoding api_key properties: %w", err)
		}
		r.Properties = p
	case TypeIntegration:
		var p IntegrationProperties
		if err := json.Unmarshal(head.Properties, &p); err != nil {
			return fmt.Errorf("decoding integration properties: %w", err)
		}
		r.Properties = p
	case TypeJob:
		var p JobProperties
		if err := json.Unmarshal(head.Properties, &p); err != nil {
			return fmt.Errorf("decoding job properties: %w", err)
		}
		r.Properties = p
	default:
		return &UnknownTypeError{Type: head.Type}
	}
	return nil
}

// Batch is a request-scoped mapping of caller-chosen identifiers to
// resource definitions.
type Batch map[string]Resource
