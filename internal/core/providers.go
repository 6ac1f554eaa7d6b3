package core

import (
	"context"
	"time"
)

// Embedder produces a fixed-dimensionality vector for a text. The
// dimensionality never changes within a process lifetime.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// TextBackend is a chat-completion backend for one model tier.
// SupportsSystemRole reports whether the backend accepts system-role
// messages as-is; when false the router merges them into a single
// leading user message.
type TextBackend interface {
	Generate(ctx context.Context, messages []Message) (string, error)
	SupportsSystemRole() bool
}

// MultimodalBackend additionally accepts raw attachment bytes inlined
// into the request.
type MultimodalBackend interface {
	GenerateMultimodal(ctx context.Context, messages []Message, attachments []InlineAttachment) (string, error)
	SupportsSystemRole() bool
}

// InlineAttachment carries fetched attachment bytes into a multimodal call.
type InlineAttachment struct {
	MimeType string
	FileName string
	Data     []byte
}

// MemoryStore is the external memory store contract. All queries are
// scoped by author; implementations must never leak another author's
// records.
type MemoryStore interface {
	QuerySemantic(ctx context.Context, authorID string, embedding []float32, limit int) ([]MemoryRecord, error)
	QueryTemporal(ctx context.Context, authorID string, from, to time.Time, limit int) ([]MemoryRecord, error)
	QueryRecent(ctx context.Context, authorID string, limit int) ([]MemoryRecord, error)
	Insert(ctx context.Context, authorID, content string, embedding []float32, createdAt time.Time) (MemoryRecord, error)
}
