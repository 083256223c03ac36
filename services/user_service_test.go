package services

import (
	"context"
	"fmt"
	"testing"

	"coliseumAPI/internal/docstore"
	"coliseumAPI/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchUsersByPrefixAndEmail(t *testing.T) {
	store := docstore.NewMemoryStore()
	seedUser(t, store, "me", "Mara Me", "me@example.com", "")
	seedUser(t, store, "u1", "marcus", "marcus@example.com", "")
	seedUser(t, store, "u2", "Maria", "maria@example.com", "")
	seedUser(t, store, "u3", "Bob", "bob@example.com", "")
	svc := NewUserService(store, testLogger())
	ctx := context.Background()

	found, err := svc.SearchUsers(ctx, "me", "mar")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "u1", found[0].ID)
	assert.Equal(t, "u2", found[1].ID)

	found, err = svc.SearchUsers(ctx, "me", " BOB@example.com ")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "u3", found[0].ID)
}

func TestSearchUsersPagesPastFirstPage(t *testing.T) {
	store := docstore.NewMemoryStore()
	for i := 0; i < directoryPageSize+5; i++ {
		seedUser(t, store, fmt.Sprintf("a-%04d", i), fmt.Sprintf("Filler %d", i), "", "")
	}
	seedUser(t, store, "z-last", "Zelda", "zelda@example.com", "")

	found, err := NewUserService(store, testLogger()).SearchUsers(context.Background(), "me", "zel")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "z-last", found[0].ID)
}

func TestEachUserVisitsEveryDocument(t *testing.T) {
	store := docstore.NewMemoryStore()
	for i := 0; i < directoryPageSize*2+1; i++ {
		seedUser(t, store, fmt.Sprintf("u-%04d", i), "", "", "")
	}

	count := 0
	err := NewUserService(store, testLogger()).EachUser(context.Background(), func(u user.User) error {
		assert.NotEmpty(t, u.ID)
		count++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, directoryPageSize*2+1, count)
}
