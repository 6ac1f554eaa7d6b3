package router

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/membot/internal/core"
)

type fakeText struct {
	system   bool
	answer   string
	err      error
	messages []core.Message
	calls    int
}

func (f *fakeText) Generate(_ context.Context, messages []core.Message) (string, error) {
	f.calls++
	f.messages = messages
	return f.answer, f.err
}

func (f *fakeText) SupportsSystemRole() bool { return f.system }

type fakeMulti struct {
	fakeText
	attachments []core.InlineAttachment
}

func (f *fakeMulti) GenerateMultimodal(_ context.Context, messages []core.Message, attachments []core.InlineAttachment) (string, error) {
	f.calls++
	f.messages = messages
	f.attachments = attachments
	return f.answer, f.err
}

type fakeFetcher struct {
	sizes     map[string]int
	failNames map[string]bool
}

func (f *fakeFetcher) Fetch(_ context.Context, ref core.AttachmentRef) (core.InlineAttachment, error) {
	if f.failNames[ref.FileName] {
		return core.InlineAttachment{}, errors.New("fetch failed")
	}
	return core.InlineAttachment{
		MimeType: ref.MimeType,
		FileName: ref.FileName,
		Data:     make([]byte, f.sizes[ref.FileName]),
	}, nil
}

func conversation() []core.Message {
	return []core.Message{
		{Role: core.RoleSystem, Content: "persona"},
		{Role: core.RoleUser, Content: "[Memory from 2024-03-10 12:00] note"},
		{Role: core.RoleUser, Content: "hello"},
	}
}

func TestRoutePicksFastForSimpleText(t *testing.T) {
	fast := &fakeText{system: true, answer: "hi"}
	deep := &fakeText{system: false}
	multi := &fakeMulti{}
	r := NewRouter(fast, deep, multi, &fakeFetcher{})

	answer, decision := r.Route(context.Background(), "hello there", conversation(), nil)

	assert.Equal(t, "hi", answer)
	assert.Equal(t, core.TierFast, decision.Tier)
	assert.Equal(t, 1, fast.calls)
	assert.Zero(t, deep.calls)
}

func TestRoutePicksDeepForComplexText(t *testing.T) {
	fast := &fakeText{system: true}
	deep := &fakeText{system: false, answer: "long answer"}
	r := NewRouter(fast, deep, &fakeMulti{}, &fakeFetcher{})

	answer, decision := r.Route(context.Background(), "please compare these two options", conversation(), nil)

	assert.Equal(t, "long answer", answer)
	assert.Equal(t, core.TierDeepReasoning, decision.Tier)
	assert.Zero(t, fast.calls)
}

func TestRouteAttachmentsWinOverComplexity(t *testing.T) {
	multi := &fakeMulti{fakeText: fakeText{answer: "described"}}
	r := NewRouter(&fakeText{system: true}, &fakeText{}, multi, &fakeFetcher{sizes: map[string]int{"a.png": 100}})

	refs := []core.AttachmentRef{{URL: "u", FileName: "a.png", MimeType: "image/png"}}
	answer, decision := r.Route(context.Background(), "analyze this image?", conversation(), refs)

	assert.Equal(t, "described", answer)
	assert.Equal(t, core.TierMultimodal, decision.Tier)
	require.Len(t, multi.attachments, 1)
	assert.Equal(t, "a.png", multi.attachments[0].FileName)
}

func TestRouteBackendFailureFallsBack(t *testing.T) {
	fast := &fakeText{system: true, err: core.NewBackendStatusError("status 500")}
	r := NewRouter(fast, &fakeText{}, &fakeMulti{}, &fakeFetcher{})

	answer, decision := r.Route(context.Background(), "hello", conversation(), nil)

	assert.Equal(t, fallbackResponse, answer)
	assert.Equal(t, core.TierFast, decision.Tier)
}

func TestRouteMergesSystemForBackendsWithoutSystemRole(t *testing.T) {
	deep := &fakeText{system: false, answer: "ok"}
	r := NewRouter(&fakeText{system: true}, deep, &fakeMulti{}, &fakeFetcher{})

	r.Route(context.Background(), "explain this to me", conversation(), nil)

	require.NotEmpty(t, deep.messages)
	first := deep.messages[0]
	assert.Equal(t, core.RoleUser, first.Role)
	assert.Contains(t, first.Content, systemMergeHeader)
	assert.Contains(t, first.Content, "persona")
	for _, m := range deep.messages {
		assert.NotEqual(t, core.RoleSystem, m.Role)
	}
}

func TestRouteDisclosesSkippedAttachments(t *testing.T) {
	const mib = 1024 * 1024
	multi := &fakeMulti{fakeText: fakeText{answer: "partial look"}}
	fetcher := &fakeFetcher{sizes: map[string]int{
		"a.png": 9 * mib,
		"b.png": 9 * mib,
		"c.png": 7 * mib,
	}}
	r := NewRouter(&fakeText{system: true}, &fakeText{}, multi, fetcher)

	refs := []core.AttachmentRef{
		{URL: "u1", FileName: "a.png"},
		{URL: "u2", FileName: "b.png"},
		{URL: "u3", FileName: "c.png"},
	}
	answer, decision := r.Route(context.Background(), "what is in these?", conversation(), refs)

	assert.Equal(t, []string{"c.png"}, decision.SkippedAttachments)
	require.Len(t, multi.attachments, 2)
	assert.Contains(t, answer, "Skipped attachments over the size limit: c.png")
}

func TestRouteSkipNoteReachesBackend(t *testing.T) {
	const mib = 1024 * 1024
	multi := &fakeMulti{fakeText: fakeText{answer: "looked at one"}}
	fetcher := &fakeFetcher{sizes: map[string]int{
		"a.png": 19 * mib,
		"b.png": 5 * mib,
	}}
	r := NewRouter(&fakeText{system: true}, &fakeText{}, multi, fetcher)

	refs := []core.AttachmentRef{
		{URL: "u1", FileName: "a.png"},
		{URL: "u2", FileName: "b.png"},
	}
	r.Route(context.Background(), "what is in these?", conversation(), refs)

	require.Len(t, multi.attachments, 1)

	// the request itself tells the model which files were dropped
	joined := joinContents(multi.messages)
	assert.Contains(t, joined, "b.png")
	assert.Contains(t, joined, "skipped")
	assert.NotContains(t, multi.attachments[0].FileName, "b.png")
}

func TestRouteFallbackDisclosesSkipped(t *testing.T) {
	const mib = 1024 * 1024
	multi := &fakeMulti{fakeText: fakeText{err: core.NewBackendStatusError("status 500")}}
	fetcher := &fakeFetcher{sizes: map[string]int{
		"a.png": 19 * mib,
		"b.png": 5 * mib,
	}}
	r := NewRouter(&fakeText{system: true}, &fakeText{}, multi, fetcher)

	refs := []core.AttachmentRef{
		{URL: "u1", FileName: "a.png"},
		{URL: "u2", FileName: "b.png"},
	}
	answer, decision := r.Route(context.Background(), "what is in these?", conversation(), refs)

	assert.Contains(t, answer, fallbackResponse)
	assert.Contains(t, answer, "1 of the 2 attachments")
	assert.Equal(t, []string{"b.png"}, decision.SkippedAttachments)
}

func TestCollectAttachmentsFetchFailureNonFatal(t *testing.T) {
	fetcher := &fakeFetcher{
		sizes:     map[string]int{"ok1.png": 100, "ok2.png": 100},
		failNames: map[string]bool{"bad.png": true},
	}
	refs := []core.AttachmentRef{
		{URL: "u1", FileName: "bad.png"},
		{URL: "u2", FileName: "ok1.png"},
		{URL: "u3", FileName: "ok2.png"},
	}

	included, skipped := collectAttachments(context.Background(), fetcher, refs)

	require.Len(t, included, 2)
	assert.Equal(t, "ok1.png", included[0].FileName)
	assert.Equal(t, "ok2.png", included[1].FileName)
	assert.Equal(t, []string{"bad.png"}, skipped)
}

func joinContents(messages []core.Message) string {
	parts := make([]string, 0, len(messages))
	for _, m := range messages {
		parts = append(parts, m.Content)
	}
	return strings.Join(parts, "\n")
}

func TestCollectAttachmentsBudgetOrder(t *testing.T) {
	const mib = 1024 * 1024
	fetcher := &fakeFetcher{sizes: map[string]int{
		"one": 12 * mib,
		"two": 10 * mib,
		"tre": 3 * mib,
	}}
	refs := []core.AttachmentRef{
		{URL: "u1", FileName: "one"},
		{URL: "u2", FileName: "two"},
		{URL: "u3", FileName: "tre"},
	}

	included, skipped := collectAttachments(context.Background(), fetcher, refs)

	// admission stops at the first overflow; later files are not revisited
	require.Len(t, included, 1)
	assert.Equal(t, "one", included[0].FileName)
	assert.Equal(t, []string{"two", "tre"}, skipped)
}
