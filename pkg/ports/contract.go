package ports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/assist/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract verifies that a SessionStore implementation honours the interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	profile := fmt.Sprintf("contract-%d", time.Now().UnixNano())

	t.Run("Save and Load", func(t *testing.T) {
		sess := &domain.Session{
			Token:    "tok",
			UserID:   "u1",
			UserRole: domain.RoleHelpSeeker,
			UserData: &domain.User{ID: "u1", FirstName: "Ada", Email: "ada@example.org", Role: domain.RoleHelpSeeker},
		}

		require.NoError(t, store.Save(ctx, profile, sess), "Save should not return error")

		loaded, err := store.Load(ctx, profile)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, sess, loaded)
	})

	t.Run("Loaded copy is independent", func(t *testing.T) {
		loaded, err := store.Load(ctx, profile)
		require.NoError(t, err)
		loaded.Token = "mutated"

		again, err := store.Load(ctx, profile)
		require.NoError(t, err)
		assert.Equal(t, "tok", again.Token)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "missing-"+profile)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, profile, &domain.Session{Token: "x"}))

		require.NoError(t, store.Delete(ctx, profile), "Delete should not return error")

		_, err := store.Load(ctx, profile)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
		assert.NoError(t, store.Delete(ctx, profile), "Delete is idempotent")
	})

	t.Run("List", func(t *testing.T) {
		p1, p2 := profile+"-1", profile+"-2"
		require.NoError(t, store.Save(ctx, p1, &domain.Session{Token: "a"}))
		require.NoError(t, store.Save(ctx, p2, &domain.Session{Token: "b"}))
		defer func() {
			_ = store.Delete(ctx, p1)
			_ = store.Delete(ctx, p2)
		}()

		profiles, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, profiles, p1)
		assert.Contains(t, profiles, p2)
	})
}
