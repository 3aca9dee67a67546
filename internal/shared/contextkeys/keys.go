package contextkeys

// contextKey is an unexported type to prevent collisions with context keys defined in
// other packages.
type contextKey string

// String makes contextKey satisfy the Stringer interface to assist with debugging.
func (c contextKey) String() string {
	return "showcase-cms context key " + string(c)
}

const (
	// UserIDKey carries the authenticated operator's ID.
	UserIDKey = contextKey("userID")
	// UserEmailKey carries the authenticated operator's email.
	UserEmailKey = contextKey("userEmail")
	// RequestIDKey carries the X-Request-ID of the current request.
	RequestIDKey = contextKey("requestID")
	// ParentIDKey carries the parent document the request operates on.
	ParentIDKey = contextKey("parentID")
	// CollectionKeyKey carries the collection key ("partners", "gallery", ...).
	CollectionKeyKey = contextKey("collectionKey")
	// ComponentKey names the component emitting a log line.
	ComponentKey = contextKey("component")
	// OperationKey names the operation in progress.
	OperationKey = contextKey("operation")
)
