package store

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/diewo77/cashpro/validation"
)

// ErrNotFound is returned when an update or delete targets an unknown id.
var ErrNotFound = errors.New("not found")

// ValidationError carries the field violations that rejected a mutation.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Violations))
	for f, code := range e.Violations {
		fields = append(fields, f+": "+code)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

func invalid(v validation.Violations) error {
	if v.Empty() {
		return nil
	}
	return &ValidationError{Violations: v}
}

func notFound(entity, id string) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, entity, id)
}
