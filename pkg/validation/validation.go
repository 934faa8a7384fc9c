// Package validation checks external layout documents against the bundled
// JSON schema and reports structural problems in internal layouts.
package validation

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/goliatone/go-formlayout/pkg/layout"
)

// SchemaIssue represents a validation error with optional location metadata.
type SchemaIssue struct {
	Path    string `json:"path,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// SchemaValidationResult captures validation outcomes.
type SchemaValidationResult struct {
	Valid  bool          `json:"valid"`
	Issues []SchemaIssue `json:"issues,omitempty"`
}

func (r *SchemaValidationResult) add(issue SchemaIssue) {
	r.Valid = false
	r.Issues = append(r.Issues, issue)
}

// Options configures structural validation.
type Options struct {
	// MaxDepth bounds container nesting. Zero uses layout.MaxNestedGroupLevel.
	MaxDepth      int
	LayoutOptions []layout.Option
}

var (
	compileOnce sync.Once
	compiled    *gojsonschema.Schema
	compileErr  error
)

func layoutSchemaValidator() (*gojsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiled, compileErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(layoutSchema))
	})
	return compiled, compileErr
}

// ValidateDocument checks raw JSON against the layout schema only.
func ValidateDocument(raw []byte) SchemaValidationResult {
	result := SchemaValidationResult{Valid: true}

	validator, err := layoutSchemaValidator()
	if err != nil {
		result.add(SchemaIssue{Message: fmt.Sprintf("schema unavailable: %v", err)})
		return result
	}

	res, err := validator.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		result.add(SchemaIssue{Message: strings.TrimSpace(err.Error())})
		return result
	}
	for _, resErr := range res.Errors() {
		result.add(issueFromResultError(resErr))
	}
	if !res.Valid() && result.Valid {
		result.add(SchemaIssue{Message: "document does not match the layout schema"})
	}
	sortIssues(result.Issues)
	return result
}

// ValidateExternal runs the schema check and, when it passes, converts the
// document and checks the resulting internal layout.
func ValidateExternal(raw []byte, opts Options) SchemaValidationResult {
	result := ValidateDocument(raw)
	if !result.Valid {
		return result
	}

	external, err := layout.ParseExternal(raw)
	if err != nil {
		result.add(issueFromError(err))
		return result
	}
	internal, err := layout.ToInternal(external, opts.LayoutOptions...)
	if err != nil {
		result.add(issueFromError(err))
		return result
	}
	return ValidateLayout(internal, opts)
}

// ValidateLayout reports unknown references, items with more than one
// parent, orphaned items and excessive nesting.
func ValidateLayout(l layout.Layout, opts Options) SchemaValidationResult {
	result := SchemaValidationResult{Valid: true}

	for _, id := range layout.UnknownReferences(l) {
		parent, _ := layout.FindParentID(l, id)
		result.add(SchemaIssue{
			Path:    "/" + parent,
			Field:   id,
			Message: fmt.Sprintf("reference to unknown item %q", id),
		})
	}

	parents := map[string][]string{}
	for _, containerID := range sortedOrderKeys(l) {
		for _, childID := range l.Order[containerID] {
			parents[childID] = append(parents[childID], containerID)
		}
	}
	for _, id := range layout.AllItemIDs(l) {
		switch owners := parents[id]; {
		case len(owners) > 1:
			result.add(SchemaIssue{
				Path:    "/" + id,
				Field:   id,
				Message: fmt.Sprintf("item is listed by %s", strings.Join(owners, ", ")),
			})
		case len(owners) == 0:
			result.add(SchemaIssue{
				Path:    "/" + id,
				Field:   id,
				Message: "item is not reachable from any container",
			})
		}
	}

	limit := opts.MaxDepth
	if limit <= 0 {
		limit = layout.MaxNestedGroupLevel
	}
	if depth := layout.GetDepth(l); depth > limit {
		result.add(SchemaIssue{
			Message: fmt.Sprintf("container nesting depth %d exceeds limit %d", depth, limit),
		})
	}

	sortIssues(result.Issues)
	return result
}

func sortedOrderKeys(l layout.Layout) []string {
	keys := make([]string, 0, len(l.Order))
	for key := range l.Order {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func issueFromResultError(resErr gojsonschema.ResultError) SchemaIssue {
	pointer := pointerFromContext(resErr.Context().String())
	field := resErr.Field()
	if field == "(root)" {
		field = ""
	}
	return SchemaIssue{
		Path:    pointer,
		Field:   field,
		Message: strings.TrimSpace(resErr.Description()),
	}
}

func issueFromError(err error) SchemaIssue {
	if err == nil {
		return SchemaIssue{Message: "unknown error"}
	}
	msg := strings.TrimSpace(err.Error())
	msg = strings.TrimPrefix(msg, "layout: ")
	issue := SchemaIssue{Message: msg}
	switch {
	case errors.Is(err, layout.ErrDuplicateID), errors.Is(err, layout.ErrInvalidID):
		issue.Field = "id"
	case errors.Is(err, layout.ErrInvalidPageIndex), errors.Is(err, layout.ErrMultipleParents), errors.Is(err, layout.ErrCycle):
		issue.Field = "children"
	}
	return issue
}

// pointerFromContext turns "(root).data.layout.0.id" into "/data/layout/0/id".
func pointerFromContext(context string) string {
	trimmed := strings.TrimPrefix(context, "(root)")
	trimmed = strings.TrimPrefix(trimmed, ".")
	if trimmed == "" {
		return ""
	}
	parts := strings.Split(trimmed, ".")
	for idx, part := range parts {
		part = strings.ReplaceAll(part, "~", "~0")
		parts[idx] = strings.ReplaceAll(part, "/", "~1")
	}
	return "/" + strings.Join(parts, "/")
}

func sortIssues(issues []SchemaIssue) {
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Path != issues[j].Path {
			return issues[i].Path < issues[j].Path
		}
		return issues[i].Message < issues[j].Message
	})
}
