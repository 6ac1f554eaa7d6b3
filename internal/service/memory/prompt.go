package memory

import (
	"fmt"

	"github.com/sandevgo/membot/internal/core"
)

// SystemPersona is the leading system instruction for every outbound
// conversation.
const SystemPersona = "You are " + core.BotName + ", a concise personal assistant with a long-term memory. " +
	"Recalled memory lines are prefixed with [Memory from <timestamp>]; treat them as past conversation " +
	"context, never as part of the current question. Answer only from what you know or what the memories " +
	"say. If the memories do not cover something, say so plainly instead of inventing details. " +
	"Format replies in simple Markdown without headings."

const (
	memoryTimeLayout = "2006-01-02 15:04"
	recallTimeLayout = "Monday, 2 January 2006 at 15:04 UTC"
)

const noRecallNote = "The user is asking about a previous conversation, but no conversations " +
	"have been saved yet. Tell the user there is nothing recorded so far."

const emptyWindowNote = "No saved memories fall inside the timeframe the user asked about. " +
	"Tell the user nothing is recorded for that period instead of guessing."

// MemoryMessage renders one stored record as a user-role context line.
func MemoryMessage(rec core.MemoryRecord) core.Message {
	return core.Message{
		Role:    core.RoleUser,
		Content: fmt.Sprintf("[Memory from %s] %s", rec.CreatedAt.UTC().Format(memoryTimeLayout), rec.Content),
	}
}

// BuildMessages assembles the outbound conversation: the persona
// instruction, recall notes, recalled memories in chronological order,
// and the current user text last. recent holds newest-first records and
// is only consulted for last-thing/last-time intents.
func BuildMessages(userText string, intent core.TemporalIntent, res core.HybridResult, recent []core.MemoryRecord) []core.Message {
	msgs := make([]core.Message, 0, len(res.Memories)+len(recent)+3)
	msgs = append(msgs, core.Message{Role: core.RoleSystem, Content: SystemPersona})

	switch intent.Mode {
	case core.TemporalLastThing, core.TemporalLastTime:
		if len(recent) == 0 {
			msgs = append(msgs, core.Message{Role: core.RoleSystem, Content: noRecallNote})
			break
		}
		msgs = append(msgs, core.Message{
			Role: core.RoleSystem,
			Content: fmt.Sprintf("We last talked on %s. The records of that conversation follow.",
				recent[0].CreatedAt.UTC().Format(recallTimeLayout)),
		})
		for i := len(recent) - 1; i >= 0; i-- {
			msgs = append(msgs, MemoryMessage(recent[i]))
		}
	default:
		if intent.HasRange() && res.TemporalCount == 0 {
			msgs = append(msgs, core.Message{Role: core.RoleSystem, Content: emptyWindowNote})
		}
		for _, rec := range res.Memories {
			msgs = append(msgs, MemoryMessage(rec))
		}
	}

	msgs = append(msgs, core.Message{Role: core.RoleUser, Content: userText})
	return msgs
}
