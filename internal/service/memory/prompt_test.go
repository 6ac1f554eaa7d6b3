package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/membot/internal/core"
)

func TestBuildMessagesChronologicalMemories(t *testing.T) {
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	res := core.HybridResult{
		Memories: []core.MemoryRecord{
			{ID: 1, Content: "bought a kayak", CreatedAt: base},
			{ID: 2, Content: "paddled the lake", CreatedAt: base.Add(time.Hour)},
		},
		SemanticCount: 2,
	}

	msgs := BuildMessages("what did I do?", core.TemporalIntent{}, res, nil)
	require.Len(t, msgs, 4)

	assert.Equal(t, core.RoleSystem, msgs[0].Role)
	assert.Equal(t, SystemPersona, msgs[0].Content)

	assert.Equal(t, core.RoleUser, msgs[1].Role)
	assert.Equal(t, "[Memory from 2024-03-10 12:00] bought a kayak", msgs[1].Content)
	assert.Equal(t, "[Memory from 2024-03-10 13:00] paddled the lake", msgs[2].Content)

	assert.Equal(t, core.RoleUser, msgs[3].Role)
	assert.Equal(t, "what did I do?", msgs[3].Content)
}

func TestBuildMessagesEmptyTemporalWindow(t *testing.T) {
	intent := core.TemporalIntent{
		Mode: core.TemporalRange,
		From: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
	}
	res := core.HybridResult{SemanticCount: 1, Memories: []core.MemoryRecord{
		{ID: 7, Content: "older note", CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}}

	msgs := BuildMessages("what happened yesterday?", intent, res, nil)
	require.Len(t, msgs, 4)
	assert.Equal(t, core.RoleSystem, msgs[1].Role)
	assert.Equal(t, emptyWindowNote, msgs[1].Content)
}

func TestBuildMessagesLastThingRecall(t *testing.T) {
	recent := []core.MemoryRecord{
		{ID: 2, Content: "newest", CreatedAt: time.Date(2024, 3, 13, 9, 30, 0, 0, time.UTC)},
		{ID: 1, Content: "older", CreatedAt: time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)},
	}
	intent := core.TemporalIntent{Mode: core.TemporalLastThing}

	msgs := BuildMessages("what was the last thing we discussed?", intent, core.HybridResult{}, recent)
	require.Len(t, msgs, 5)

	assert.Equal(t, core.RoleSystem, msgs[1].Role)
	assert.Contains(t, msgs[1].Content, "Wednesday, 13 March 2024 at 09:30 UTC")

	// recall records replay oldest first
	assert.Contains(t, msgs[2].Content, "older")
	assert.Contains(t, msgs[3].Content, "newest")
}

func TestBuildMessagesLastThingNoHistory(t *testing.T) {
	intent := core.TemporalIntent{Mode: core.TemporalLastTime}
	msgs := BuildMessages("when did we last talk?", intent, core.HybridResult{}, nil)
	require.Len(t, msgs, 3)
	assert.Equal(t, noRecallNote, msgs[1].Content)
}
