package utils

import (
	"context"
	"errors"

	"showcase-cms/internal/shared/contextkeys"
)

var (
	ErrUserIDNotFound    = errors.New("userID not found in context")
	ErrUserIDNotString   = errors.New("userID in context is not a string")
	ErrUserEmailNotFound = errors.New("userEmail not found in context")
	ErrRequestIDNotFound = errors.New("requestID not found in context")
	errNotString         = errors.New("context value is not a string")
)

func stringValue(ctx context.Context, key interface{}, notFound error) (string, error) {
	val := ctx.Value(key)
	if val == nil {
		return "", notFound
	}
	s, ok := val.(string)
	if !ok {
		return "", errNotString
	}
	if s == "" {
		return "", notFound
	}
	return s, nil
}

// GetUserIDFromContext returns the authenticated operator's ID.
func GetUserIDFromContext(ctx context.Context) (string, error) {
	val := ctx.Value(contextkeys.UserIDKey)
	if val == nil {
		return "", ErrUserIDNotFound
	}
	userID, ok := val.(string)
	if !ok {
		return "", ErrUserIDNotString
	}
	if userID == "" {
		return "", ErrUserIDNotFound
	}
	return userID, nil
}

func GetUserEmailFromContext(ctx context.Context) (string, error) {
	return stringValue(ctx, contextkeys.UserEmailKey, ErrUserEmailNotFound)
}

func GetRequestIDFromContext(ctx context.Context) (string, error) {
	return stringValue(ctx, contextkeys.RequestIDKey, ErrRequestIDNotFound)
}

// withString stores value under key; empty values leave ctx unchanged.
func withString(ctx context.Context, key interface{}, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return withString(ctx, contextkeys.UserIDKey, userID)
}

func WithUserEmail(ctx context.Context, email string) context.Context {
	return withString(ctx, contextkeys.UserEmailKey, email)
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return withString(ctx, contextkeys.RequestIDKey, requestID)
}

// WithParentID records the parent document a request operates on.
func WithParentID(ctx context.Context, parentID string) context.Context {
	return withString(ctx, contextkeys.ParentIDKey, parentID)
}

func WithCollectionKey(ctx context.Context, key string) context.Context {
	return withString(ctx, contextkeys.CollectionKeyKey, key)
}

func WithComponent(ctx context.Context, component string) context.Context {
	return withString(ctx, contextkeys.ComponentKey, component)
}

func WithOperation(ctx context.Context, operation string) context.Context {
	return withString(ctx, contextkeys.OperationKey, operation)
}

// GetUserIDOrDefault returns the operator ID or def.
func GetUserIDOrDefault(ctx context.Context, def string) string {
	if id, err := GetUserIDFromContext(ctx); err == nil {
		return id
	}
	return def
}

// Actor names whoever made a change: the operator's email, else their ID, else "".
func Actor(ctx context.Context) string {
	if email, err := GetUserEmailFromContext(ctx); err == nil {
		return email
	}
	return GetUserIDOrDefault(ctx, "")
}
