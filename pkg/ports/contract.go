package ports

import (
	"context"
	"testing"
	"time"

	"github.com/nexsupply/nexi/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunConversationStoreContract runs a suite of tests to verify that a
// ConversationStore implementation adheres to the interface contract.
func RunConversationStoreContract(t *testing.T, store ConversationStore) {
	ctx := context.Background()
	id := "contract-test-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewConversationState(id, "product")
		state.Answers["product"] = domain.TextAnswer("mug")
		state.Answers["certifications"] = domain.MultiAnswer("fda", "ce")
		state.Answers["volume"] = domain.NumberAnswer(1200)
		state.Answers["origin"] = domain.NotSureAnswer()
		state.Order = []string{"product", "origin", "volume", "certifications"}
		state.Messages = append(state.Messages, domain.Message{Role: domain.RoleUser, NodeID: "product", Content: "mug"})

		require.NoError(t, store.Save(ctx, id, state), "Save should not return error")

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, state.CurrentNodeID, loaded.CurrentNodeID)
		assert.Equal(t, state.Answers, loaded.Answers, "answer variants survive a round trip")
		assert.Equal(t, state.Order, loaded.Order)
		assert.Equal(t, state.Messages, loaded.Messages)
	})

	t.Run("Load returns a copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		loaded.Answers["product"] = domain.TextAnswer("changed")

		again, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.TextAnswer("mug"), again.Answers["product"])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+id)
		assert.ErrorIs(t, err, domain.ErrConversationNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, id, domain.NewConversationState(id, "product")))
		require.NoError(t, store.Delete(ctx, id), "Delete should not return error")

		_, err := store.Load(ctx, id)
		assert.ErrorIs(t, err, domain.ErrConversationNotFound, "Load after Delete should return ErrConversationNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1, id2 := id+"-1", id+"-2"
		_ = store.Save(ctx, id1, domain.NewConversationState(id1, "product"))
		_ = store.Save(ctx, id2, domain.NewConversationState(id2, "product"))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
