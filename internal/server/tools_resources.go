package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) resourceTools() []toolDef {
	return []toolDef{
		{
			scope: scopeWriteResources,
			tool: mcp.NewTool("upsert_resources",
				mcp.WithDescription(`Create or update a batch of Arcanna resources declaratively.

The resources argument is a JSON object: keys are caller-chosen identifiers
(request-local, never stored) and values are resource definitions. Three
resource types exist:

- api_key: {"type": "api_key", "properties": {"name": "<key name>"}}
- integration: {"type": "integration", "properties": {"title": "...",
  "integration_type": "<e.g. Elasticsearch>", "parameters": {...}}}
- job: {"type": "job", "properties": {"title": "...", "category":
  "Decision intelligence", "decision_points": ["source.ip", ...],
  "pipeline_integrations": [{"resource": "<ref>", "integration_type":
  "input|enrichment|processor|case_creation|post_decision|output",
  "enabled": true, "parameters": {...}}, ...]}}

A pipeline integration's "resource" field may reference an identifier from
this same batch, the title of an integration already saved in Arcanna, or a
query expression like {{integrations(title='Elastic')}}; it is passed
through verbatim and resolved by the platform.

Discover valid integration types and their parameters with
integration_parameters_schema; pass its role argument to discover the
job <-> integration parameters for pipeline_integrations.

With overwrite=false the call fails if any named resource already exists
and nothing is changed. When updating an existing job, call get_resources
by title first so parameters already on the job are not overwritten by
mistake, and confirm with the user before upserting.

Newly created api_key resources return their secret in the "value" field
of the response exactly once; it is never returned again, so show it to
the user or store it immediately.`),
				mcp.WithObject("resources",
					mcp.Required(),
					mcp.Description("Mapping of resource identifier to resource definition"),
				),
				mcp.WithBoolean("overwrite",
					mcp.Description("Allow mutating resources that already exist remotely"),
					mcp.DefaultBool(false),
				),
			),
			handler: s.handleUpsertResources,
		},
		{
			scope: scopeReadResources,
			tool: mcp.NewTool("get_resources",
				mcp.WithDescription(`List Arcanna resources, or fetch one resource's full detail.

With no filters, returns a minimal-detail listing of all resources. Provide
title or id to fetch a single resource's full definition. title and id are
mutually exclusive; when both are given title wins.`),
				mcp.WithString("resource_type",
					mcp.Description("Restrict to one resource type"),
					mcp.Enum("api_key", "integration", "job"),
				),
				mcp.WithString("title",
					mcp.Description("Title or name of the resource (mutually exclusive with id)"),
				),
				mcp.WithString("id",
					mcp.Description("Arcanna internal id of the resource (mutually exclusive with title)"),
				),
			),
			handler: s.handleGetResources,
		},
		{
			scope: scopeDeleteResources,
			tool: mcp.NewTool("delete_resources",
				mcp.WithDescription(`Delete an Arcanna resource. Irreversible; confirm with the user first.

resource_type is required. Identify the resource by title or id; they are
mutually exclusive and title wins when both are given.`),
				mcp.WithString("resource_type",
					mcp.Required(),
					mcp.Description("Type of the resource to delete"),
					mcp.Enum("api_key", "integration", "job"),
				),
				mcp.WithString("title",
					mcp.Description("Title or name of the resource (mutually exclusive with id)"),
				),
				mcp.WithString("id",
					mcp.Description("Arcanna internal id of the resource (mutually exclusive with title)"),
				),
			),
			handler: s.handleDeleteResources,
		},
		{
			scope: scopeReadResources,
			tool: mcp.NewTool("integration_parameters_schema",
				mcp.WithDescription(`Return the parameter definitions of Arcanna integrations as a JSON schema.

Without arguments, covers every integration type. Pass integration_type to
select one. Pass role (input, enrichment, processor, case_creation,
post_decision, output) to get the parameters expected on a job's
pipeline_integrations entry for that role instead of the connection
parameters.`),
				mcp.WithString("integration_type",
					mcp.Description("Integration type to describe, e.g. Elasticsearch"),
				),
				mcp.WithString("role",
					mcp.Description("Pipeline role whose job <-> integration parameters to describe"),
				),
			),
			handler: s.handleIntegrationParametersSchema,
		},
	}
}

func (s *Server) handleUpsertResources(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawResources, ok := request.GetArguments()["resources"]
	if !ok || rawResources == nil {
		return upsertError(fmt.Errorf("missing required argument: resources")), nil
	}
	data, err := json.Marshal(rawResources)
	if err != nil {
		return upsertError(fmt.Errorf("serializing resources: %w", err)), nil
	}

	raw, err := s.resources.Upsert(ctx, data, request.GetBool("overwrite", false))
	if err != nil {
		return upsertError(err), nil
	}
	return toolJSON(raw), nil
}

func (s *Server) handleGetResources(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := s.resources.Get(ctx,
		request.GetString("resource_type", ""),
		request.GetString("title", ""),
		request.GetString("id", ""),
	)
	if err != nil {
		return toolError(err), nil
	}
	return toolJSON(raw), nil
}

func (s *Server) handleDeleteResources(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resourceType, err := request.RequireString("resource_type")
	if err != nil {
		return toolError(fmt.Errorf("missing required argument: resource_type")), nil
	}
	raw, err := s.resources.Delete(ctx,
		resourceType,
		request.GetString("title", ""),
		request.GetString("id", ""),
	)
	if err != nil {
		return toolError(err), nil
	}
	return toolJSON(raw), nil
}

func (s *Server) handleIntegrationParametersSchema(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := s.resources.IntegrationParametersSchema(ctx,
		request.GetString("integration_type", ""),
		request.GetString("role", ""),
	)
	if err != nil {
		return toolError(err), nil
	}
	return toolJSON(raw), nil
}
