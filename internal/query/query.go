// Package query models the event filter and query request shapes
// shared by the event query, reprocess and metrics tools.
package query

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Operators accepted in a Filter. The platform documents this set with
// "gte" listed twice and no "gt"; the duplicate is collapsed here but
// "gt" is not added, pending upstream clarification.
var operators = map[string]struct{}{
	"is":              {},
	"is not":          {},
	"is one of":       {},
	"is not one of":   {},
	"starts with":     {},
	"not starts with": {},
	"contains":        {},
	"not contains":    {},
	"exists":          {},
	"not exists":      {},
	"lt":              {},
	"lte":             {},
	"gte":             {},
}

// Filter matches one field against a value. Filters in a list combine
// with AND semantics; the platform has no OR combinator.
//
// "exists" and "not exists" take no value; every other operator
// requires one.
type Filter struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    any    `json:"value,omitempty"`
}

// Validate reports the first invariant violation on the filter.
func (f Filter) Validate() error {
	if f.Field == "" {
		return fmt.Errorf("filter field is required")
	}
	if _, ok := operators[f.Operator]; !ok {
		return fmt.Errorf("unknown filter operator %q: expected one of %s", f.Operator, operatorList())
	}
	switch f.Operator {
	case "exists", "not exists":
		if f.Value != nil {
			return fmt.Errorf("filter operator %q does not take a value", f.Operator)
		}
	default:
		if f.Value == nil {
			return fmt.Errorf("filter operator %q requires a value", f.Operator)
		}
	}
	return nil
}

func operatorList() string {
	names := make([]string, 0, len(operators))
	for op := range operators {
		names = append(names, op)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// StringOrList accepts either a JSON string or an array of strings and
// normalizes to a list. Normalizing an already-normalized value is a
// no-op.
type StringOrList []string

func (s *StringOrList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*s = StringOrList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("expected string or list of strings: %w", err)
	}
	*s = many
	return nil
}

// IntOrList accepts either a JSON number or an array of numbers and
// normalizes to a list.
type IntOrList []int

func (s *IntOrList) UnmarshalJSON(data []byte) error {
	var one int
	if err := json.Unmarshal(data, &one); err == nil {
		*s = IntOrList{one}
		return nil
	}
	var many []int
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("expected integer or list of integers: %w", err)
	}
	*s = many
	return nil
}

// EventsRequest shapes the POST /api/v2/events/query body. Scalar
// job/event selectors normalize to single-element lists before
// serialization; absent fields stay absent on the wire. Without job
// selectors the query spans all jobs visible to the key.
//
// Date bounds accept ISO 8601 strings or Elasticsearch date math such
// as "now-1d".
type EventsRequest struct {
	JobIDs             IntOrList    `json:"job_ids,omitempty"`
	JobTitles          StringOrList `json:"job_titles,omitempty"`
	EventIDs           StringOrList `json:"event_ids,omitempty"`
	DecisionPointsOnly bool         `json:"decision_points_only,omitempty"`
	StartDate          string       `json:"start_date,omitempty"`
	EndDate            string       `json:"end_date,omitempty"`
	Size               int          `json:"size,omitempty"`
	SortByColumn       string       `json:"sort_by_column,omitempty"`
	SortOrder          string       `json:"sort_order,omitempty"`
	Filters            []Filter     `json:"filters,omitempty"`
}

// Validate checks every filter. A request with no selectors at all is
// valid: it queries events across all jobs.
func (r EventsRequest) Validate() error {
	for i, f := range r.Filters {
		if err := f.Validate(); err != nil {
			return fmt.Errorf("filters[%d]: %w", i, err)
		}
	}
	return nil
}

// DecodeEventsRequest parses and validates a query request from raw
// tool arguments.
func DecodeEventsRequest(data []byte) (EventsRequest, error) {
	var req EventsRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return EventsRequest{}, fmt.Errorf("invalid query request: %w", err)
	}
	if err := req.Validate(); err != nil {
		return EventsRequest{}, err
	}
	return req, nil
}
