package logger

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestWithContext(t *testing.T) {
	actor := uuid.New()
	org := uuid.New()

	ctx := ContextWithActor(context.Background(), actor)
	ctx = ContextWithOrganization(ctx, org)
	ctx = ContextWithRequestID(ctx, "req-1")

	l := WithContext(ctx)
	assert.Equal(t, actor.String(), l.Data["actor"])
	assert.Equal(t, org.String(), l.Data["organization"])
	assert.Equal(t, "req-1", l.Data["request_id"])
}

func TestWithContextUnknownActor(t *testing.T) {
	l := WithContext(context.Background())
	assert.Equal(t, "unknown", l.Data["actor"])
	assert.NotContains(t, l.Data, "organization")
}

func TestWithFields(t *testing.T) {
	l := New().WithField("a", 1).WithFields(map[string]interface{}{"b": 2})
	assert.Equal(t, 1, l.Data["a"])
	assert.Equal(t, 2, l.Data["b"])
}
