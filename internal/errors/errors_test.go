package errors

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderCarriesMetadata(t *testing.T) {
	base := NewStd("record missing")
	err := New(base).
		Component("datastore").
		Category(CategoryNotFound).
		Priority(PriorityLow).
		Context("operation", "get_review").
		Context("review_id", 42).
		Build()

	assert.Equal(t, "record missing", err.Error())
	assert.Equal(t, "datastore", err.GetComponent())
	assert.Equal(t, string(CategoryNotFound), err.GetCategory())
	assert.Equal(t, PriorityLow, err.GetPriority())
	assert.WithinDuration(t, time.Now(), err.GetTimestamp(), time.Second)

	ctx := err.GetContext()
	require.NotNil(t, ctx)
	assert.Equal(t, "get_review", ctx["operation"])
	assert.Equal(t, 42, ctx["review_id"])

	// The returned context is a copy.
	ctx["operation"] = "mutated"
	assert.Equal(t, "get_review", err.GetContext()["operation"])
}

func TestUnwrapPreservesChain(t *testing.T) {
	sentinel := NewStd("boom")
	wrapped := fmt.Errorf("query failed: %w", sentinel)
	err := New(wrapped).Category(CategoryDatabase).Build()

	assert.True(t, Is(err, sentinel))

	var ee *EnhancedError
	require.True(t, As(err, &ee))
	assert.Equal(t, CategoryDatabase, ee.Category)
}

func TestCategoryChecks(t *testing.T) {
	notFound := Newf("review %d not found", 7).Category(CategoryNotFound).Build()
	conflict := Newf("duplicate username").Category(CategoryConflict).Build()
	validation := ValidationError("city must not be empty")

	assert.True(t, IsNotFound(notFound))
	assert.False(t, IsNotFound(conflict))
	assert.True(t, IsConflict(conflict))
	assert.True(t, IsValidation(validation))
	assert.False(t, IsValidation(notFound))

	// Category checks see through plain wrapping.
	wrapped := fmt.Errorf("handler: %w", notFound)
	assert.True(t, IsNotFound(wrapped))
	assert.True(t, IsCategory(wrapped, CategoryNotFound))

	assert.False(t, IsNotFound(NewStd("plain")))
	assert.False(t, IsNotFound(nil))
}

func TestDefaults(t *testing.T) {
	err := New(NewStd("x")).Build()

	assert.Equal(t, CategoryGeneric, err.Category)
	assert.Equal(t, ComponentUnknown, err.GetComponent())
	assert.Empty(t, err.GetPriority())
	assert.Nil(t, err.GetContext())
}
