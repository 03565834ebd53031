package server

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/arcanna-ai/arcanna-mcp/internal/arcanna"
)

func (s *Server) platformTools() []toolDef {
	return []toolDef{
		{
			scope: scopeReadMetrics,
			tool: mcp.NewTool("job_metrics",
				mcp.WithDescription("Fetch decision metrics for a job: confusion matrix, accuracy, F1 score and consensus overlap. Omit the date bounds for all-time metrics."),
				mcp.WithNumber("job_id", mcp.Required(), mcp.Description("Arcanna job id")),
				mcp.WithString("start_datetime", mcp.Description("Start of the metrics window, ISO timestamp")),
				mcp.WithString("end_datetime", mcp.Description("End of the metrics window, ISO timestamp")),
			),
			handler: s.handleJobMetrics,
		},
		{
			scope: scopeReadWorkflows,
			tool: mcp.NewTool("list_agentic_workflows",
				mcp.WithDescription("List the agentic workflows configured on the Arcanna platform, with their ids and descriptions."),
			),
			handler: func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				raw, err := s.client.ListWorkflows(ctx)
				if err != nil {
					return toolError(err), nil
				}
				return toolJSON(raw), nil
			},
		},
		{
			scope: scopeRunWorkflows,
			tool: mcp.NewTool("run_agentic_workflow",
				mcp.WithDescription("Run an agentic workflow and wait for its result. Pass the session_id from a previous run to continue that conversation."),
				mcp.WithString("workflow_id", mcp.Required(), mcp.Description("Workflow id from list_agentic_workflows")),
				mcp.WithString("input", mcp.Required(), mcp.Description("Input text for the workflow")),
				mcp.WithString("session_id", mcp.Description("Session id of a previous run to continue")),
			),
			handler: s.handleRunWorkflow,
		},
		{
			scope: scopeReadDocuments,
			tool: mcp.NewTool("search_document",
				mcp.WithDescription("Semantic search over the document collections indexed in Arcanna. Omit collection_name to search every collection."),
				mcp.WithString("query", mcp.Required(), mcp.Description("Natural-language search query")),
				mcp.WithString("collection_name", mcp.Description("Restrict the search to one collection")),
			),
			handler: s.handleSearchDocument,
		},
		{
			scope: scopeExecuteCode,
			tool: mcp.NewTool("execute_code",
				mcp.WithDescription(`Run a Python code block in the Arcanna sandbox against a test input.

The source code must define handle(input_record, settings) and return a
dict; the returned dict is merged into the event. Use this to validate a
code block before attaching it to a job with save_code. Provide either
input_test (an inline test event) or reprocess_event_id with job_id to run
against a stored event.`),
				mcp.WithString("source_code", mcp.Required(), mcp.Description("Python source defining handle(input_record, settings)")),
				mcp.WithObject("input_test", mcp.Description("Inline test event")),
				mcp.WithNumber("job_id", mcp.Description("Job owning the event referenced by reprocess_event_id")),
				mcp.WithString("reprocess_event_id", mcp.Description("Stored event id to run against instead of input_test")),
				mcp.WithArray("env_variables", mcp.Description("Environment variables visible to the code block")),
				mcp.WithObject("settings", mcp.Description("Settings object passed to handle")),
			),
			handler: s.handleExecuteCode,
		},
		{
			scope: scopeWriteCode,
			tool: mcp.NewTool("save_code",
				mcp.WithDescription("Attach a custom code block integration to a job. Validate the code with execute_code first; saving does not run it."),
				mcp.WithString("title", mcp.Required(), mcp.Description("Title of the code block integration")),
				mcp.WithString("source_code", mcp.Required(), mcp.Description("Python source defining handle(input_record, settings)")),
				mcp.WithNumber("job_id", mcp.Required(), mcp.Description("Job to attach the code block to")),
				mcp.WithString("description", mcp.Description("What the code block does")),
				mcp.WithObject("input_test", mcp.Description("Test event stored with the code block")),
				mcp.WithArray("env_variables", mcp.Description("Environment variables visible to the code block")),
				mcp.WithObject("settings", mcp.Description("Settings object passed to handle")),
			),
			handler: s.handleSaveCode,
		},
		{
			scope: scopePublic,
			tool: mcp.NewTool("health_check",
				mcp.WithDescription("Verify the Arcanna platform is reachable and the configured API key is valid."),
			),
			handler: func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				raw, err := s.client.HealthCheck(ctx)
				if err != nil {
					return toolError(err), nil
				}
				return toolJSON(raw), nil
			},
		},
		{
			scope: scopePublic,
			tool: mcp.NewTool("get_system_timestamp",
				mcp.WithDescription("Return the current UTC timestamp. Use it to build relative date ranges for queries and metrics."),
			),
			handler: func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return mcp.NewToolResultText(time.Now().UTC().Format("2006-01-02T15:04:05Z")), nil
			},
		},
	}
}

func (s *Server) handleJobMetrics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jobID, err := request.RequireInt("job_id")
	if err != nil {
		return toolError(fmt.Errorf("missing required argument: job_id")), nil
	}
	raw, err := s.client.JobMetrics(ctx, jobID,
		request.GetString("start_datetime", ""),
		request.GetString("end_datetime", ""),
	)
	if err != nil {
		return toolError(err), nil
	}
	return toolJSON(raw), nil
}

func (s *Server) handleRunWorkflow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workflowID, err := request.RequireString("workflow_id")
	if err != nil {
		return toolError(fmt.Errorf("missing required argument: workflow_id")), nil
	}
	input, err := request.RequireString("input")
	if err != nil {
		return toolError(fmt.Errorf("missing required argument: input")), nil
	}
	raw, err := s.client.RunWorkflow(ctx, workflowID, input, request.GetString("session_id", ""))
	if err != nil {
		return toolError(err), nil
	}
	return toolJSON(raw), nil
}

func (s *Server) handleSearchDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	queryText, err := request.RequireString("query")
	if err != nil {
		return toolError(fmt.Errorf("missing required argument: query")), nil
	}
	raw, err := s.client.RAGQuery(ctx, queryText, request.GetString("collection_name", ""))
	if err != nil {
		return toolError(err), nil
	}
	return toolJSON(raw), nil
}

func (s *Server) handleExecuteCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sourceCode, err := request.RequireString("source_code")
	if err != nil {
		return toolError(fmt.Errorf("missing required argument: source_code")), nil
	}
	req := arcanna.CodeExecution{
		SourceCode:       sourceCode,
		JobID:            request.GetInt("job_id", 0),
		ReprocessEventID: request.GetString("reprocess_event_id", ""),
	}
	if err := fillCodeObjects(request, &req); err != nil {
		return toolError(err), nil
	}
	raw, err := s.client.ExecuteCode(ctx, req)
	if err != nil {
		return toolError(err), nil
	}
	return toolJSON(raw), nil
}

func (s *Server) handleSaveCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := request.RequireString("title")
	if err != nil {
		return toolError(fmt.Errorf("missing required argument: title")), nil
	}
	sourceCode, err := request.RequireString("source_code")
	if err != nil {
		return toolError(fmt.Errorf("missing required argument: source_code")), nil
	}
	jobID, err := request.RequireInt("job_id")
	if err != nil {
		return toolError(fmt.Errorf("missing required argument: job_id")), nil
	}
	req := arcanna.CodeExecution{
		Title:       title,
		Description: request.GetString("description", ""),
		SourceCode:  sourceCode,
		JobID:       jobID,
	}
	if err := fillCodeObjects(request, &req); err != nil {
		return toolError(err), nil
	}
	raw, err := s.client.SaveCode(ctx, req)
	if err != nil {
		return toolError(err), nil
	}
	return toolJSON(raw), nil
}

// fillCodeObjects copies the optional structured arguments shared by
// execute_code and save_code.
func fillCodeObjects(request mcp.CallToolRequest, req *arcanna.CodeExecution) error {
	args := request.GetArguments()
	if arg, ok := args["input_test"]; ok && arg != nil {
		obj, ok := arg.(map[string]any)
		if !ok {
			return fmt.Errorf("argument input_test must be a JSON object")
		}
		req.InputTest = obj
	}
	if arg, ok := args["settings"]; ok && arg != nil {
		obj, ok := arg.(map[string]any)
		if !ok {
			return fmt.Errorf("argument settings must be a JSON object")
		}
		req.Settings = obj
	}
	if arg, ok := args["env_variables"]; ok && arg != nil {
		list, ok := arg.([]any)
		if !ok {
			return fmt.Errorf("argument env_variables must be a JSON array")
		}
		req.EnvVariables = list
	}
	return nil
}
