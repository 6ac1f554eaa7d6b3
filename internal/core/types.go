package core

import "time"

const (
	BotName      = "MemBot"
	BotUserAgent = "MemBot/0.1"
	BotVersion   = "0.1.0"
)

// Role is an explicit message role. Callers always supply the tagged
// struct; no duck-typed inspection of message payloads happens anywhere.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
	RoleModel  Role = "model"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// AttachmentRef points at an uploaded file. Bytes are fetched at most
// once per pipeline run, inside the router.
type AttachmentRef struct {
	URL      string
	MimeType string
	FileName string
}

// Query is the immutable input of one pipeline run.
type Query struct {
	RawText     string
	AuthorID    string
	Attachments []AttachmentRef
}

// MemoryRecord is one persisted conversation turn scoped to an author.
// Created exactly once per successful turn, immutable afterwards.
type MemoryRecord struct {
	ID        int64
	AuthorID  string
	Content   string
	Embedding []float32
	CreatedAt time.Time
}

// TemporalMode tags the classified temporal intent of a query.
type TemporalMode int

const (
	TemporalNone TemporalMode = iota
	TemporalLastThing
	TemporalLastTime
	TemporalRange
)

func (m TemporalMode) String() string {
	switch m {
	case TemporalLastThing:
		return "last_thing"
	case TemporalLastTime:
		return "last_time"
	case TemporalRange:
		return "range"
	default:
		return "none"
	}
}

// TemporalIntent is produced fresh per query and never persisted.
// From and To are set only when Mode is TemporalRange, with From <= To.
type TemporalIntent struct {
	Mode TemporalMode
	From time.Time
	To   time.Time
}

func (t TemporalIntent) HasRange() bool {
	return t.Mode == TemporalRange
}

// HybridResult merges semantic and temporal lookups. Memories are unique
// by ID; SemanticCount and TemporalCount keep the raw per-lookup counts
// before deduplication, for observability.
type HybridResult struct {
	Memories      []MemoryRecord
	SemanticCount int
	TemporalCount int
}

func (r HybridResult) HasTemporalMatches() bool { return r.TemporalCount > 0 }
func (r HybridResult) HasSemanticMatches() bool { return r.SemanticCount > 0 }

// Tier is the backend selected to answer a query.
type Tier string

const (
	TierFast          Tier = "fast"
	TierDeepReasoning Tier = "deep_reasoning"
	TierMultimodal    Tier = "multimodal"
)

// RoutingDecision records which tier answered and which attachments
// were left out of the multimodal request.
type RoutingDecision struct {
	Tier               Tier
	SkippedAttachments []string
}
