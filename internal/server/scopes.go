package server

import (
	"context"
	"strings"
)

// Tool scopes. The platform grants scopes of the form
// action:resource_category[:resource_type[:resource_id]]; tools only
// discriminate on the action:resource_category base. Tools marked
// public are always registered.
const (
	scopePublic = "public"

	scopeReadResources   = "read:resources"
	scopeWriteResources  = "write:resources"
	scopeDeleteResources = "delete:resources"
	scopeReadJobs        = "read:jobs"
	scopeWriteJobs       = "write:jobs"
	scopeReadEvents      = "read:events"
	scopeWriteEvents     = "write:events"
	scopeReadMetrics     = "read:metrics"
	scopeReadWorkflows   = "read:workflows"
	scopeRunWorkflows    = "execute:workflows"
	scopeReadDocuments   = "read:documents"
	scopeWriteCode       = "write:code"
	scopeExecuteCode     = "execute:code"
)

// scopeSet is the reduced set of base scopes granted to the key.
type scopeSet map[string]struct{}

func (s scopeSet) permits(scope string) bool {
	if scope == scopePublic {
		return true
	}
	_, ok := s[scope]
	return ok
}

// baseScope reduces a granted scope string to action:resource_category.
func baseScope(scope string) string {
	parts := strings.SplitN(scope, ":", 3)
	if len(parts) < 2 {
		return scope
	}
	return parts[0] + ":" + parts[1]
}

// fetchScopes asks the platform which scopes the management key holds
// and reduces them for tool filtering. A failure here is a startup
// failure: serving an unfiltered tool set would advertise tools the
// key cannot use.
func (s *Server) fetchScopes(ctx context.Context) (scopeSet, error) {
	granted, err := s.client.TokenScopes(ctx)
	if err != nil {
		return nil, err
	}
	set := make(scopeSet, len(granted))
	for _, scope := range granted {
		set[baseScope(scope)] = struct{}{}
	}
	return set, nil
}
