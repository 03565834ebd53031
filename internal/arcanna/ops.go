package arcanna

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// SendEvent submits a raw event for a decision; the platform assigns
// the event ID.
func (c *Client) SendEvent(ctx context.Context, jobID int, event map[string]any) (json.RawMessage, error) {
	body := map[string]any{
		"job_id":   jobID,
		"raw_body": event,
	}
	return c.Post(ctx, sendEventPath, InputKey, nil, body)
}

// SendEventWithID submits a raw event under a caller-chosen event ID.
func (c *Client) SendEventWithID(ctx context.Context, jobID int, eventID string, event map[string]any) (json.RawMessage, error) {
	if eventID == "" {
		return nil, fmt.Errorf("event ID is required")
	}
	body := map[string]any{
		"job_id":   jobID,
		"raw_body": event,
	}
	return c.Post(ctx, fmt.Sprintf(sendEventWithIDPath, eventID), InputKey, nil, body)
}

// SendFeedback records a decision label for a previously ingested
// event. The username is prefixed with "MCP-" so platform audit trails
// distinguish agent feedback from human feedback.
func (c *Client) SendFeedback(ctx context.Context, jobID int, eventID, label, user string) (json.RawMessage, error) {
	if eventID == "" {
		return nil, fmt.Errorf("event ID is required")
	}
	body := map[string]any{
		"cortex_user": "MCP-" + user,
		"feedback":    label,
	}
	return c.Put(ctx, fmt.Sprintf(eventFeedbackPath, jobID, eventID), InputKey, nil, body)
}

// GetEventByID fetches one event with the platform's decision fields.
func (c *Client) GetEventByID(ctx context.Context, jobID int, eventID string) (json.RawMessage, error) {
	if eventID == "" {
		return nil, fmt.Errorf("event ID is required")
	}
	return c.Get(ctx, fmt.Sprintf(eventByIDPath, jobID, eventID), InputKey, nil)
}

// GetJobs lists the jobs visible to the configured API key.
func (c *Client) GetJobs(ctx context.Context) (json.RawMessage, error) {
	return c.Get(ctx, jobsPath, InputKey, nil)
}

// GetJobByID fetches one job's status and configuration summary.
func (c *Client) GetJobByID(ctx context.Context, jobID int) (json.RawMessage, error) {
	return c.Get(ctx, fmt.Sprintf(jobByIDPath, jobID), InputKey, nil)
}

// GetJobByName fetches one job by its title.
func (c *Client) GetJobByName(ctx context.Context, jobName string) (json.RawMessage, error) {
	return c.Post(ctx, jobByNamePath, InputKey, nil, map[string]any{"job_name": jobName})
}

// GetJobLabels returns the decision labels configured for a job.
func (c *Client) GetJobLabels(ctx context.Context, jobID int) (json.RawMessage, error) {
	return c.Get(ctx, fmt.Sprintf(jobLabelsPath, jobID), InputKey, nil)
}

// GetJobLabelsByName returns the decision labels of a job found by title.
func (c *Client) GetJobLabelsByName(ctx context.Context, jobName string) (json.RawMessage, error) {
	return c.Post(ctx, jobLabelsByNamePath, InputKey, nil, map[string]any{"job_name": jobName})
}

// StartJob enables event ingestion for a job.
func (c *Client) StartJob(ctx context.Context, jobID int, user string) (json.RawMessage, error) {
	return c.Post(ctx, fmt.Sprintf(startJobPath, jobID), InputKey, url.Values{"username": {user}}, nil)
}

// StopJob disables event ingestion for a job.
func (c *Client) StopJob(ctx context.Context, jobID int, user string) (json.RawMessage, error) {
	return c.Post(ctx, fmt.Sprintf(stopJobPath, jobID), InputKey, url.Values{"username": {user}}, nil)
}

// TrainJob starts a training run from the feedback collected so far.
func (c *Client) TrainJob(ctx context.Context, jobID int, user string) (json.RawMessage, error) {
	return c.Post(ctx, fmt.Sprintf(trainJobPath, jobID), InputKey, url.Values{"username": {user}}, nil)
}

// HealthCheck verifies the platform is reachable and the key is valid.
func (c *Client) HealthCheck(ctx context.Context) (json.RawMessage, error) {
	return c.Get(ctx, healthCheckPath, InputKey, nil)
}

// TokenScopes returns the scope strings attached to the management key.
func (c *Client) TokenScopes(ctx context.Context) ([]string, error) {
	raw, err := c.Get(ctx, tokenScopesPath, ManagementKey, nil)
	if err != nil {
		return nil, err
	}
	var scopes []string
	if err := json.Unmarshal(raw, &scopes); err != nil {
		return nil, fmt.Errorf("decoding token scopes: %w", err)
	}
	return scopes, nil
}

// QueryEvents runs an event query; the body is shaped by the caller
// (see internal/query).
func (c *Client) QueryEvents(ctx context.Context, body any) (json.RawMessage, error) {
	return c.Post(ctx, queryEventsPath, ManagementKey, nil, body)
}

// FilterFields lists the queryable fields and their valid operators.
func (c *Client) FilterFields(ctx context.Context) (json.RawMessage, error) {
	return c.Get(ctx, filterFieldsPath, ManagementKey, nil)
}

// JobMetrics fetches job metrics, optionally bounded to a date range.
// Empty bounds mean all-time metrics.
func (c *Client) JobMetrics(ctx context.Context, jobID int, startDate, endDate string) (json.RawMessage, error) {
	params := url.Values{"job_id": {fmt.Sprint(jobID)}}
	if startDate != "" {
		params.Set("start_datetime", startDate)
	}
	if endDate != "" {
		params.Set("end_datetime", endDate)
	}
	return c.Get(ctx, jobMetricsPath, ManagementKey, params)
}

// ListWorkflows lists the agentic workflows available on the platform.
func (c *Client) ListWorkflows(ctx context.Context) (json.RawMessage, error) {
	return c.Get(ctx, listWorkflowsPath, ManagementKey, nil)
}

// RunWorkflow runs an agentic workflow and waits for completion. A
// non-empty sessionID continues a previous conversation.
func (c *Client) RunWorkflow(ctx context.Context, workflowID, input, sessionID string) (json.RawMessage, error) {
	body := map[string]any{
		"input":               input,
		"wait_for_completion": true,
	}
	if sessionID != "" {
		body["session_id"] = sessionID
	}
	return c.Post(ctx, fmt.Sprintf(runWorkflowPath, workflowID), ManagementKey, nil, body)
}

// RAGQuery runs a semantic search over the platform's document
// collections. Empty collection means all collections.
func (c *Client) RAGQuery(ctx context.Context, queryText, collection string) (json.RawMessage, error) {
	body := map[string]any{"query": queryText}
	if collection != "" {
		body["collection_name"] = collection
	}
	return c.Post(ctx, ragQueryPath, ManagementKey, nil, body)
}

// CodeExecution describes a custom code block run or save request.
type CodeExecution struct {
	Title            string         `json:"title,omitempty"`
	Description      string         `json:"description,omitempty"`
	SourceCode       string         `json:"source_code"`
	JobID            int            `json:"job_id,omitempty"`
	ReprocessEventID string         `json:"reprocess_event_id,omitempty"`
	InputTest        map[string]any `json:"input_test"`
	EnvVariables     []any          `json:"env_variables,omitempty"`
	Settings         map[string]any `json:"settings,omitempty"`
}

// ExecuteCode runs a custom code block against a test input on the
// platform sandbox.
func (c *Client) ExecuteCode(ctx context.Context, req CodeExecution) (json.RawMessage, error) {
	return c.Post(ctx, customCodeTestPath, ManagementKey, nil, req)
}

// SaveCode attaches a custom code block integration to a job.
func (c *Client) SaveCode(ctx context.Context, req CodeExecution) (json.RawMessage, error) {
	return c.Post(ctx, customCodeSavePath, ManagementKey, nil, req)
}
