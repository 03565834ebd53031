package resource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/arcanna-ai/arcanna-mcp/internal/arcanna"
)

// Resource CRUD endpoints. The resource client owns these paths; the
// rest of the platform surface lives in internal/arcanna.
const (
	crudPath              = "/api/v2/resources"
	integrationSchemaPath = "/api/v2/resources/integration/parameters/schema"
)

// API is the slice of the platform client the resource client needs.
// All resource administration uses the management key.
type API interface {
	Get(ctx context.Context, path string, key arcanna.KeyKind, params url.Values) (json.RawMessage, error)
	Post(ctx context.Context, path string, key arcanna.KeyKind, params url.Values, body any) (json.RawMessage, error)
	Delete(ctx context.Context, path string, key arcanna.KeyKind, params url.Values) (json.RawMessage, error)
}

// Result is one created or updated entry from the upsert envelope.
// InternalID is a string for api_key resources and a number for
// integrations and jobs, so it stays untyped. Value carries an API key
// secret and is only ever present on first creation.
type Result struct {
	Type         string `json:"type"`
	ResourceName string `json:"resource_name"`
	Title        string `json:"title"`
	InternalID   any    `json:"internal_id"`
	URL          string `json:"url"`
	Value        string `json:"value,omitempty"`
}

// UpsertResponse is the platform's reconciliation envelope. It is
// decoded best-effort for logging; callers receive the raw body.
type UpsertResponse struct {
	Request struct {
		Status string `json:"status"`
	} `json:"request"`
	Created []Result `json:"created"`
	Updated []Result `json:"updated"`
}

// Client reconciles resource batches against the platform.
type Client struct {
	api    API
	logger *zap.Logger
}

func NewClient(api API, logger *zap.Logger) *Client {
	return &Client{api: api, logger: logger}
}

// Upsert validates the raw batch and submits it for reconciliation.
// The whole batch is validated locally before any network call: one
// invalid entry rejects the batch with no partial submission. With
// overwrite false the platform refuses to mutate any pre-existing
// resource and the batch fails atomically server-side; the flag is
// forwarded as given.
//
// The success envelope is returned verbatim.
func (c *Client) Upsert(ctx context.Context, rawBatch []byte, overwrite bool) (json.RawMessage, error) {
	batch, err := DecodeBatch(rawBatch)
	if err != nil {
		return nil, err
	}

	body := map[string]any{"resources": batch}
	params := url.Values{"overwrite": {strconv.FormatBool(overwrite)}}
	raw, err := c.api.Post(ctx, crudPath, arcanna.ManagementKey, params, body)
	if err != nil {
		return nil, err
	}

	var envelope UpsertResponse
	if json.Unmarshal(raw, &envelope) == nil {
		c.logger.Info("resources reconciled",
			zap.String("status", envelope.Request.Status),
			zap.Int("created", len(envelope.Created)),
			zap.Int("updated", len(envelope.Updated)),
		)
	}
	return raw, nil
}

// Get lists resources, or fetches one resource's full detail when a
// title or id filter is present. Title and id are mutually exclusive;
// when both are given title wins and id is silently dropped, matching
// the platform contract.
func (c *Client) Get(ctx context.Context, resourceType, title, id string) (json.RawMessage, error) {
	if resourceType != "" && !KnownType(resourceType) {
		return nil, &UnknownTypeError{Type: resourceType}
	}
	params := url.Values{}
	if resourceType != "" {
		params.Set("resource_type", resourceType)
	}
	if title != "" {
		params.Set("title", title)
	} else if id != "" {
		params.Set("id", id)
	}
	return c.api.Get(ctx, crudPath, arcanna.ManagementKey, params)
}

// Delete removes a resource. resourceType is mandatory here, unlike
// Get; title/id follow the same precedence rule. Deletion is
// irreversible and has no local confirmation step.
func (c *Client) Delete(ctx context.Context, resourceType, title, id string) (json.RawMessage, error) {
	if resourceType == "" {
		return nil, fmt.Errorf("resource_type is required")
	}
	if !KnownType(resourceType) {
		return nil, &UnknownTypeError{Type: resourceType}
	}
	params := url.Values{"resource_type": {resourceType}}
	if title != "" {
		params.Set("title", title)
	} else if id != "" {
		params.Set("id", id)
	}
	return c.api.Delete(ctx, crudPath, arcanna.ManagementKey, params)
}

// IntegrationParametersSchema fetches the JSON Schema describing the
// parameters of all integration types, one type, or one (type, role)
// pair. The schema is platform-defined and returned verbatim.
func (c *Client) IntegrationParametersSchema(ctx context.Context, integrationType, role string) (json.RawMessage, error) {
	params := url.Values{}
	if integrationType != "" {
		params.Set("integration_type", integrationType)
	}
	if role != "" {
		params.Set("role", role)
	}
	return c.api.Get(ctx, integrationSchemaPath, arcanna.ManagementKey, params)
}
