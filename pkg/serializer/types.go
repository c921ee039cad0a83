package serializer

import "context"

// Serializer writes a complete document. Implementations choose the format
// and the destination.
type Serializer interface {
	Serialize(ctx context.Context, data any) error
}

// Closer is an optional interface that Serializers can implement
// if they need to release resources (e.g., close file handles).
type Closer interface {
	Close() error
}

var (
	_ Serializer = (*Writer)(nil)
	_ Closer     = (*Writer)(nil)
	_ Closer     = (*ArrayWriter)(nil)
)
