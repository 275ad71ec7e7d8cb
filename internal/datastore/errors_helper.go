// Package datastore provides error handling helpers for database operations
package datastore

import (
	"fmt"

	"github.com/rcanovic/restaurant-reviews/internal/errors"
	"gorm.io/gorm"
)

// errorsIsRecordNotFound reports whether err is GORM's record-not-found.
func errorsIsRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// dbError creates a properly categorized database error with context. The
// underlying store fault stays reachable through errors.Is/As.
func dbError(err error, operation, priority string, context ...any) error {
	builder := errors.New(err).
		Component("datastore").
		Category(errors.CategoryDatabase).
		Context("operation", operation)

	if priority != "" {
		builder = builder.Priority(priority)
	}

	// Add context pairs
	for i := 0; i < len(context)-1; i += 2 {
		if key, ok := context[i].(string); ok {
			builder = builder.Context(key, context[i+1])
		}
	}

	return builder.Build()
}

// validationError creates a validation error
func validationError(message, field string, value any) error {
	return errors.Newf("%s", message).
		Component("datastore").
		Category(errors.CategoryValidation).
		Context("field", field).
		Context("value", fmt.Sprintf("%v", value)).
		Build()
}

// stateError creates a state management error
func stateError(err error, operation, stateType string, context ...any) error {
	builder := errors.New(err).
		Component("datastore").
		Category(errors.CategoryState).
		Priority(errors.PriorityMedium).
		Context("operation", operation).
		Context("state_type", stateType)

	for i := 0; i < len(context)-1; i += 2 {
		if key, ok := context[i].(string); ok {
			builder = builder.Context(key, context[i+1])
		}
	}

	return builder.Build()
}

// notFoundError creates a not found error (low priority)
func notFoundError(resource string, identifier any) error {
	return errors.Newf("%s not found", resource).
		Component("datastore").
		Category(errors.CategoryNotFound).
		Priority(errors.PriorityLow).
		Context("resource", resource).
		Context("identifier", fmt.Sprintf("%v", identifier)).
		Build()
}
