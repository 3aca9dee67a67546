package contextkeys

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextKey_String(t *testing.T) {
	key := contextKey("testKey")
	assert.Equal(t, "showcase-cms context key testKey", key.String())
}

func TestContextKeys_Usage(t *testing.T) {
	ctx := context.Background()
	ctx = context.WithValue(ctx, UserIDKey, "user-123")
	ctx = context.WithValue(ctx, UserEmailKey, "ops@example.com")
	ctx = context.WithValue(ctx, RequestIDKey, "req-456")
	ctx = context.WithValue(ctx, ParentIDKey, "event-2024")
	ctx = context.WithValue(ctx, CollectionKeyKey, "partners")
	ctx = context.WithValue(ctx, ComponentKey, "content")
	ctx = context.WithValue(ctx, OperationKey, "replace")

	assert.Equal(t, "user-123", ctx.Value(UserIDKey))
	assert.Equal(t, "ops@example.com", ctx.Value(UserEmailKey))
	assert.Equal(t, "req-456", ctx.Value(RequestIDKey))
	assert.Equal(t, "event-2024", ctx.Value(ParentIDKey))
	assert.Equal(t, "partners", ctx.Value(CollectionKeyKey))
	assert.Equal(t, "content", ctx.Value(ComponentKey))
	assert.Equal(t, "replace", ctx.Value(OperationKey))
}
