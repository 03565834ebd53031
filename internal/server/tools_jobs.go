package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) jobTools() []toolDef {
	return []toolDef{
		{
			scope: scopeReadJobs,
			tool: mcp.NewTool("get_jobs",
				mcp.WithDescription("List all Arcanna jobs visible to the configured API key, with their status and configuration summary."),
			),
			handler: func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				raw, err := s.client.GetJobs(ctx)
				if err != nil {
					return toolError(err), nil
				}
				return toolJSON(raw), nil
			},
		},
		{
			scope: scopeReadJobs,
			tool: mcp.NewTool("get_job_by_id",
				mcp.WithDescription("Fetch one Arcanna job by its numeric id."),
				mcp.WithNumber("job_id", mcp.Required(), mcp.Description("Arcanna job id")),
			),
			handler: s.jobByID(func(ctx context.Context, jobID int) (json.RawMessage, error) {
				return s.client.GetJobByID(ctx, jobID)
			}),
		},
		{
			scope: scopeReadJobs,
			tool: mcp.NewTool("get_job_by_name",
				mcp.WithDescription("Fetch one Arcanna job by its title."),
				mcp.WithString("job_name", mcp.Required(), mcp.Description("Job title")),
			),
			handler: s.jobByName(func(ctx context.Context, jobName string) (json.RawMessage, error) {
				return s.client.GetJobByName(ctx, jobName)
			}),
		},
		{
			scope: scopeReadJobs,
			tool: mcp.NewTool("get_job_labels",
				mcp.WithDescription("Return the decision labels configured on a job, e.g. Escalate and Drop. Feedback sent with send_feedback_for_event must use one of these labels."),
				mcp.WithNumber("job_id", mcp.Required(), mcp.Description("Arcanna job id")),
			),
			handler: s.jobByID(func(ctx context.Context, jobID int) (json.RawMessage, error) {
				return s.client.GetJobLabels(ctx, jobID)
			}),
		},
		{
			scope: scopeReadJobs,
			tool: mcp.NewTool("get_labels_of_job_by_name",
				mcp.WithDescription("Return the decision labels configured on a job, looked up by title."),
				mcp.WithString("job_name", mcp.Required(), mcp.Description("Job title")),
			),
			handler: s.jobByName(func(ctx context.Context, jobName string) (json.RawMessage, error) {
				return s.client.GetJobLabelsByName(ctx, jobName)
			}),
		},
		{
			scope: scopeWriteJobs,
			tool: mcp.NewTool("start_job",
				mcp.WithDescription("Start an Arcanna job so it begins accepting and processing events."),
				mcp.WithNumber("job_id", mcp.Required(), mcp.Description("Arcanna job id")),
			),
			handler: s.jobByID(func(ctx context.Context, jobID int) (json.RawMessage, error) {
				return s.client.StartJob(ctx, jobID, s.cfg.User)
			}),
		},
		{
			scope: scopeWriteJobs,
			tool: mcp.NewTool("stop_job",
				mcp.WithDescription("Stop an Arcanna job so it no longer accepts events."),
				mcp.WithNumber("job_id", mcp.Required(), mcp.Description("Arcanna job id")),
			),
			handler: s.jobByID(func(ctx context.Context, jobID int) (json.RawMessage, error) {
				return s.client.StopJob(ctx, jobID, s.cfg.User)
			}),
		},
		{
			scope: scopeWriteJobs,
			tool: mcp.NewTool("train_job",
				mcp.WithDescription("Start a training run for a job using the feedback collected so far. Training is asynchronous; poll the job status with get_job_by_id."),
				mcp.WithNumber("job_id", mcp.Required(), mcp.Description("Arcanna job id")),
			),
			handler: s.jobByID(func(ctx context.Context, jobID int) (json.RawMessage, error) {
				return s.client.TrainJob(ctx, jobID, s.cfg.User)
			}),
		},
	}
}

// jobByID adapts an operation keyed by job id into a tool handler.
func (s *Server) jobByID(op func(ctx context.Context, jobID int) (json.RawMessage, error)) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jobID, err := request.RequireInt("job_id")
		if err != nil {
			return toolError(fmt.Errorf("missing required argument: job_id")), nil
		}
		raw, err := op(ctx, jobID)
		if err != nil {
			return toolError(err), nil
		}
		return toolJSON(raw), nil
	}
}

// jobByName adapts an operation keyed by job title into a tool handler.
func (s *Server) jobByName(op func(ctx context.Context, jobName string) (json.RawMessage, error)) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jobName, err := request.RequireString("job_name")
		if err != nil {
			return toolError(fmt.Errorf("missing required argument: job_name")), nil
		}
		raw, err := op(ctx, jobName)
		if err != nil {
			return toolError(err), nil
		}
		return toolJSON(raw), nil
	}
}
