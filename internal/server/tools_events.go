package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/arcanna-ai/arcanna-mcp/internal/query"
)

func (s *Server) eventTools() []toolDef {
	return []toolDef{
		{
			scope: scopeWriteEvents,
			tool: mcp.NewTool("send_event",
				mcp.WithDescription("Send a raw event to an Arcanna job for a decision. The platform assigns the event id; the response carries it so the decision can be fetched later with get_event_by_id."),
				mcp.WithNumber("job_id", mcp.Required(), mcp.Description("Arcanna job id to ingest into")),
				mcp.WithObject("event", mcp.Required(), mcp.Description("Raw event payload as a JSON object")),
			),
			handler: s.handleSendEvent,
		},
		{
			scope: scopeWriteEvents,
			tool: mcp.NewTool("send_event_with_id",
				mcp.WithDescription("Send a raw event to an Arcanna job under a caller-chosen event id. Sending again with the same id overwrites the earlier event."),
				mcp.WithNumber("job_id", mcp.Required(), mcp.Description("Arcanna job id to ingest into")),
				mcp.WithString("event_id", mcp.Required(), mcp.Description("Caller-chosen event id")),
				mcp.WithObject("event", mcp.Required(), mcp.Description("Raw event payload as a JSON object")),
			),
			handler: s.handleSendEventWithID,
		},
		{
			scope: scopeWriteEvents,
			tool: mcp.NewTool("send_feedback_for_event",
				mcp.WithDescription("Record a decision label as feedback on an event. The label must be one of the job's configured decision labels (see get_job_labels). Feedback drives the next training run."),
				mcp.WithNumber("job_id", mcp.Required(), mcp.Description("Arcanna job id the event belongs to")),
				mcp.WithString("event_id", mcp.Required(), mcp.Description("Event id to label")),
				mcp.WithString("label", mcp.Required(), mcp.Description("Decision label, e.g. Escalate")),
			),
			handler: s.handleSendFeedback,
		},
		{
			scope: scopeReadEvents,
			tool: mcp.NewTool("get_event_by_id",
				mcp.WithDescription("Fetch one event with Arcanna's decision fields (result, confidence score, outlier flag and similar)."),
				mcp.WithNumber("job_id", mcp.Required(), mcp.Description("Arcanna job id the event belongs to")),
				mcp.WithString("event_id", mcp.Required(), mcp.Description("Event id to fetch")),
			),
			handler: s.handleGetEventByID,
		},
		{
			scope: scopeReadEvents,
			tool: mcp.NewTool("query_arcanna_events",
				mcp.WithDescription(`Query events across Arcanna jobs with filtering, sorting and paging.

The request argument is a JSON object; every field is optional:
- job_ids: job id or list of job ids
- job_titles: job title or list of job titles
- event_ids: event id or list of event ids
- decision_points_only: return only decision point fields
- start_date / end_date: ISO timestamps bounding the event time
- size: maximum number of events to return
- sort_by_column / sort_order: sorting (sort_order is asc or desc)
- filters: list of {"field", "operator", "value"} conditions; valid
  operators are ` + queryOperatorsDoc + `. The exists and not exists
  operators take no value; every other operator requires one.

Use get_filter_fields to discover filterable fields per job.`),
				mcp.WithObject("request", mcp.Description("Query request object; omit for the default query")),
			),
			handler: s.handleQueryEvents,
		},
		{
			scope: scopeReadEvents,
			tool: mcp.NewTool("get_filter_fields",
				mcp.WithDescription("List the event fields that can be used in query_arcanna_events filters, with the operators each field supports."),
			),
			handler: func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				raw, err := s.client.FilterFields(ctx)
				if err != nil {
					return toolError(err), nil
				}
				return toolJSON(raw), nil
			},
		},
	}
}

var queryOperatorsDoc = `"is", "is not", "is one of", "is not one of", "starts with", "not starts with", "contains", "not contains", "exists", "not exists", "lt", "lte", "gte"`

func (s *Server) handleSendEvent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jobID, err := request.RequireInt("job_id")
	if err != nil {
		return toolError(fmt.Errorf("missing required argument: job_id")), nil
	}
	event, err := objectArgument(request, "event")
	if err != nil {
		return toolError(err), nil
	}
	raw, err := s.client.SendEvent(ctx, jobID, event)
	if err != nil {
		return toolError(err), nil
	}
	return toolJSON(raw), nil
}

func (s *Server) handleSendEventWithID(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jobID, err := request.RequireInt("job_id")
	if err != nil {
		return toolError(fmt.Errorf("missing required argument: job_id")), nil
	}
	eventID, err := request.RequireString("event_id")
	if err != nil {
		return toolError(fmt.Errorf("missing required argument: event_id")), nil
	}
	event, err := objectArgument(request, "event")
	if err != nil {
		return toolError(err), nil
	}
	raw, err := s.client.SendEventWithID(ctx, jobID, eventID, event)
	if err != nil {
		return toolError(err), nil
	}
	return toolJSON(raw), nil
}

func (s *Server) handleSendFeedback(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jobID, err := request.RequireInt("job_id")
	if err != nil {
		return toolError(fmt.Errorf("missing required argument: job_id")), nil
	}
	eventID, err := request.RequireString("event_id")
	if err != nil {
		return toolError(fmt.Errorf("missing required argument: event_id")), nil
	}
	label, err := request.RequireString("label")
	if err != nil {
		return toolError(fmt.Errorf("missing required argument: label")), nil
	}
	raw, err := s.client.SendFeedback(ctx, jobID, eventID, label, s.cfg.User)
	if err != nil {
		return toolError(err), nil
	}
	return toolJSON(raw), nil
}

func (s *Server) handleGetEventByID(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jobID, err := request.RequireInt("job_id")
	if err != nil {
		return toolError(fmt.Errorf("missing required argument: job_id")), nil
	}
	eventID, err := request.RequireString("event_id")
	if err != nil {
		return toolError(fmt.Errorf("missing required argument: event_id")), nil
	}
	raw, err := s.client.GetEventByID(ctx, jobID, eventID)
	if err != nil {
		return toolError(err), nil
	}
	return toolJSON(raw), nil
}

func (s *Server) handleQueryEvents(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data := []byte("{}")
	if arg, ok := request.GetArguments()["request"]; ok && arg != nil {
		var err error
		data, err = json.Marshal(arg)
		if err != nil {
			return toolError(fmt.Errorf("serializing request: %w", err)), nil
		}
	}
	req, err := query.DecodeEventsRequest(data)
	if err != nil {
		return toolError(err), nil
	}
	raw, err := s.client.QueryEvents(ctx, req)
	if err != nil {
		return toolError(err), nil
	}
	return toolJSON(raw), nil
}

// objectArgument extracts a required JSON object argument.
func objectArgument(request mcp.CallToolRequest, key string) (map[string]any, error) {
	arg, ok := request.GetArguments()[key]
	if !ok || arg == nil {
		return nil, fmt.Errorf("missing required argument: %s", key)
	}
	obj, ok := arg.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("argument %s must be a JSON object", key)
	}
	return obj, nil
}
