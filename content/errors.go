package content

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrInvalidDocument is matched by every *ValidationError.
var ErrInvalidDocument = errors.New("invalid document")

// ErrorKind names the class of a validation issue.
type ErrorKind string

const (
	MissingRequiredField ErrorKind = "MissingRequiredField"
	InvalidEnumValue     ErrorKind = "InvalidEnumValue"
	ConstraintViolation  ErrorKind = "ConstraintViolation"
	TypeMismatch         ErrorKind = "TypeMismatch"
	InvalidURL           ErrorKind = "InvalidURL"
)

// rule error codes, mapped onto ErrorKind by kindForCode
const (
	codeEnum       = "content_enum_invalid"
	codeConstraint = "content_constraint_violation"
	codeURL        = "content_url_invalid"
)

// Issue is a single failing field.
type Issue struct {
	Field   string
	Kind    ErrorKind
	Message string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s (%s)", i.Field, i.Message, i.Kind)
}

// ValidationError carries every issue found in one document.
type ValidationError struct {
	ID     string
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.String())
	}
	return fmt.Sprintf("%s: %s", e.ID, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidDocument
}

// Has reports whether the error contains an issue of kind for field.
func (e *ValidationError) Has(field string, kind ErrorKind) bool {
	for _, issue := range e.Issues {
		if issue.Field == field && issue.Kind == kind {
			return true
		}
	}
	return false
}

// Issues extracts validation issues from an error. Errors that are not
// validation errors come back as a single issue without a field.
func Issues(err error) []Issue {
	if err == nil {
		return nil
	}
	var verr *ValidationError
	if errors.As(err, &verr) && verr != nil {
		return verr.Issues
	}
	return []Issue{{Message: err.Error()}}
}

func kindForCode(code string) ErrorKind {
	switch code {
	case validation.ErrNotNilRequired.Code(), validation.ErrRequired.Code():
		return MissingRequiredField
	case codeEnum:
		return InvalidEnumValue
	case codeURL:
		return InvalidURL
	case codeConstraint:
		return ConstraintViolation
	default:
		return TypeMismatch
	}
}

// issueCollector accumulates issues for one document and orders them by the
// schema's field declaration order.
type issueCollector struct {
	order  []string
	issues []Issue
	failed map[string]struct{}
}

func newIssueCollector(order []string) *issueCollector {
	return &issueCollector{order: order, failed: map[string]struct{}{}}
}

func (c *issueCollector) add(field string, kind ErrorKind, msg string) {
	c.issues = append(c.issues, Issue{Field: field, Kind: kind, Message: msg})
	c.failed[rootField(field)] = struct{}{}
}

func (c *issueCollector) mismatch(field, want string, got any) {
	c.add(field, TypeMismatch, fmt.Sprintf("expected %s, received %s", want, describe(got)))
}

// merge folds ozzo rule errors in, skipping fields that already failed to
// decode so a field is never reported twice.
func (c *issueCollector) merge(err error) error {
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return err
	}
	for field, ferr := range errs {
		if _, ok := c.failed[field]; ok {
			continue
		}
		var verr validation.Error
		if errors.As(ferr, &verr) {
			c.add(field, kindForCode(verr.Code()), verr.Error())
			continue
		}
		c.add(field, TypeMismatch, ferr.Error())
	}
	return nil
}

func (c *issueCollector) result(id string) error {
	if len(c.issues) == 0 {
		return nil
	}
	rank := make(map[string]int, len(c.order))
	for i, f := range c.order {
		rank[f] = i
	}
	sort.SliceStable(c.issues, func(i, j int) bool {
		ri, rj := rank[rootField(c.issues[i].Field)], rank[rootField(c.issues[j].Field)]
		if ri != rj {
			return ri < rj
		}
		return c.issues[i].Field < c.issues[j].Field
	})
	return &ValidationError{ID: id, Issues: c.issues}
}

func rootField(field string) string {
	if i := strings.IndexByte(field, '.'); i >= 0 {
		return field[:i]
	}
	return field
}
