package commands

import (
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/util/validation/field"
)

// ValidationError reports every missing or malformed field of a command payload.
type ValidationError struct {
	Kind   Kind
	Errors field.ErrorList
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		msgs = append(msgs, fe.Error())
	}
	return fmt.Sprintf("invalid %s command: %s", e.Kind, strings.Join(msgs, "; "))
}

// Fields returns the paths of the offending fields.
func (e *ValidationError) Fields() []string {
	out := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		out = append(out, fe.Field)
	}
	return out
}

// HasField reports whether path is one of the offending fields.
func (e *ValidationError) HasField(path string) bool {
	for _, fe := range e.Errors {
		if fe.Field == path {
			return true
		}
	}
	return false
}

// checker accumulates field errors for one payload.
type checker struct {
	kind Kind
	errs field.ErrorList
}

func newChecker(k Kind) *checker {
	return &checker{kind: k}
}

func (c *checker) requireString(name, value string) {
	if strings.TrimSpace(value) == "" {
		c.errs = append(c.errs, field.Required(field.NewPath(name), fmt.Sprintf("'%s' is required", name)))
	}
}

func (c *checker) requirePresent(name string, present bool) {
	if !present {
		c.errs = append(c.errs, field.Required(field.NewPath(name), fmt.Sprintf("'%s' is required", name)))
	}
}

func (c *checker) invalid(name string, value interface{}, detail string) {
	c.errs = append(c.errs, field.Invalid(field.NewPath(name), value, detail))
}

func (c *checker) result() *ValidationError {
	if len(c.errs) == 0 {
		return nil
	}
	return &ValidationError{Kind: c.kind, Errors: c.errs}
}

// RequireEntity reports a missing entity id at path as a ValidationError for kind.
func RequireEntity(kind Kind, path, entityID string) error {
	c := newChecker(kind)
	c.requireString(path, entityID)
	if verr := c.result(); verr != nil {
		return verr
	}
	return nil
}
