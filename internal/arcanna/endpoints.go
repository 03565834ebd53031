package arcanna

// REST endpoint paths on the Arcanna platform. Paths with placeholders
// take identifiers through fmt.Sprintf. The resource CRUD paths live in
// internal/resource, next to the client that owns them.

const (
	// Event ingestion and retrieval (v1, input key).
	sendEventPath       = "/api/v1/events"
	sendEventWithIDPath = "/api/v1/events/%s"
	eventByIDPath       = "/api/v1/events/%d/%s"
	eventFeedbackPath   = "/api/v1/events/%d/%s/feedback"

	// Job control (v1, input key).
	jobsPath            = "/api/v1/jobs"
	jobByIDPath         = "/api/v1/jobs/%d"
	jobLabelsPath       = "/api/v1/jobs/%d/labels"
	startJobPath        = "/api/v1/jobs/%d/start"
	stopJobPath         = "/api/v1/jobs/%d/stop"
	trainJobPath        = "/api/v1/jobs/%d/train"
	jobByNamePath       = "/api/v1/jobs/get_by_name"
	jobLabelsByNamePath = "/api/v1/jobs/get_by_name/labels"
	healthCheckPath     = "/api/v1/health/"
	tokenScopesPath     = "/api/v1/token/scopes"

	// Platform v2 APIs (management key).
	queryEventsPath    = "/api/v2/events/query"
	filterFieldsPath   = "/api/v2/filters/fields"
	jobMetricsPath     = "/api/v2/metrics/job"
	listWorkflowsPath  = "/api/v2/workflows"
	runWorkflowPath    = "/api/v2/workflows/%s/run"
	ragQueryPath       = "/api/v2/rag/query"
	customCodeTestPath = "/api/v2/custom_code_execution/test"
	customCodeSavePath = "/api/v2/custom_code_execution/save"
)
