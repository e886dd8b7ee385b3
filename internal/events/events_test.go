package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/opencode-ai/netforge/internal/models"
	"github.com/stretchr/testify/require"
)

func TestLogRequiresRepository(t *testing.T) {
	err := Log(context.Background(), nil, models.EventTypeNodeAdded, models.EntityTypeNode, "n1", nil)
	require.Error(t, err)
}

func TestLogRejectsIncompleteEvent(t *testing.T) {
	j := NewJournal(10)
	err := Log(context.Background(), j, models.EventTypeNodeAdded, models.EntityTypeNode, "", nil)
	require.Error(t, err)
	require.Zero(t, j.Len())
}

func TestLogPayload(t *testing.T) {
	j := NewJournal(10)
	ctx := context.Background()

	require.NoError(t, Log(ctx, j, models.EventTypeNodeRenamed, models.EntityTypeNode, "n1",
		models.RenamedPayload{OldName: "a", NewName: "b"}))
	require.NoError(t, LogNetwork(ctx, j, models.EventTypeNetworkImported,
		models.DocumentPayload{Source: "net.hocon"}))

	list := j.List(0)
	require.Len(t, list, 2)
	require.NotEmpty(t, list[0].ID)
	require.False(t, list[0].Timestamp.IsZero())

	var renamed models.RenamedPayload
	require.NoError(t, json.Unmarshal(list[0].Payload, &renamed))
	require.Equal(t, "b", renamed.NewName)

	require.Equal(t, models.EntityTypeNetwork, list[1].EntityType)
	require.Equal(t, "network", list[1].EntityID)
}

func TestJournalKeepsNewest(t *testing.T) {
	j := NewJournal(3)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, Log(ctx, j, models.EventTypeNodeAdded, models.EntityTypeNode, id, nil))
	}

	require.Equal(t, 3, j.Len())
	ids := func(events []models.Event) []string {
		out := make([]string, len(events))
		for i, e := range events {
			out[i] = e.EntityID
		}
		return out
	}
	require.Equal(t, []string{"c", "d", "e"}, ids(j.List(0)))
	require.Equal(t, []string{"d", "e"}, ids(j.List(2)))
}

func TestJournalCanceledContext(t *testing.T) {
	j := NewJournal(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Error(t, j.Create(ctx, &models.Event{}))
}
