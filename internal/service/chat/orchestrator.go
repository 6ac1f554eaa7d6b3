package chat

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sandevgo/membot/internal/core"
	"github.com/sandevgo/membot/internal/query"
	"github.com/sandevgo/membot/internal/service/memory"
	"github.com/sandevgo/membot/internal/service/router"
	"github.com/sandevgo/membot/pkg/log"
)

// Recall depths for the last-thing / last-time intents.
const (
	lastThingRecallDepth = 1
	lastTimeRecallDepth  = 5
)

const emptyQueryResponse = "Say something and I'll do my best to help."

var mentionRe = regexp.MustCompile(`(?i)@membot\w*`)

// Orchestrator runs the full pipeline for one trigger message. One
// instance is shared across transports; per-query state lives on the
// stack of HandleQuery.
type Orchestrator struct {
	embedder  core.Embedder
	retriever *memory.Retriever
	router    *router.Router
}

func NewOrchestrator(embedder core.Embedder, retriever *memory.Retriever, r *router.Router) *Orchestrator {
	return &Orchestrator{embedder: embedder, retriever: retriever, router: r}
}

// HandleQuery answers one query and persists the turn. Embedding and
// retrieval failures abort the turn with an error; backend failures have
// already been converted to a fallback answer by the router.
func (o *Orchestrator) HandleQuery(ctx context.Context, q core.Query) (string, error) {
	logger := log.FromCtx(ctx).With().
		Str("trace_id", uuid.NewString()).
		Str("author", q.AuthorID).
		Logger()
	ctx = logger.WithContext(ctx)

	if err := ctx.Err(); err != nil {
		return "", err
	}

	text := strings.TrimSpace(mentionRe.ReplaceAllString(q.RawText, ""))
	if text == "" && len(q.Attachments) == 0 {
		return emptyQueryResponse, nil
	}

	embedding, err := o.embedder.Embed(ctx, text)
	if err != nil {
		return "", err
	}

	intent := query.DetectTemporalIntent(text, time.Now())
	logger.Debug().Str("temporal_mode", intent.Mode.String()).Msg("temporal intent")

	res, err := o.retriever.Retrieve(ctx, q.AuthorID, embedding, intent)
	if err != nil {
		return "", err
	}

	var recent []core.MemoryRecord
	switch intent.Mode {
	case core.TemporalLastThing:
		recent, err = o.retriever.Recent(ctx, q.AuthorID, lastThingRecallDepth)
	case core.TemporalLastTime:
		recent, err = o.retriever.Recent(ctx, q.AuthorID, lastTimeRecallDepth)
	}
	if err != nil {
		return "", err
	}

	messages := memory.BuildMessages(text, intent, res, recent)
	answer, decision := o.router.Route(ctx, text, messages, q.Attachments)

	// the turn is persisted only once a response exists
	if _, err := o.retriever.Persist(ctx, q.AuthorID, text, embedding); err != nil {
		logger.Error().Err(err).Msg("failed to persist turn, response delivered anyway")
	}

	logger.Info().
		Str("tier", string(decision.Tier)).
		Int("memories", len(res.Memories)).
		Int("skipped_attachments", len(decision.SkippedAttachments)).
		Msg("turn complete")

	return answer, nil
}
