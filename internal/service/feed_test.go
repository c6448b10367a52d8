package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devlink/server/internal/models"
	"devlink/server/internal/store/memory"
)

func strPtr(s string) *string { return &s }

func feedIDs(feed []models.UserResponse) []string {
	ids := make([]string, 0, len(feed))
	for _, u := range feed {
		ids = append(ids, u.ID)
	}
	return ids
}

func TestFeed(t *testing.T) {
	ctx := context.Background()

	t.Run("hides self and already-swiped users", func(t *testing.T) {
		mem, svc, _ := newTestServices(t, "alice", "bob", "carol", "dave", "erin")
		_, _, err := svc.SendRequest(ctx, "alice", "bob", models.StatusInterested)
		require.NoError(t, err)
		_, _, err = svc.SendRequest(ctx, "alice", "carol", models.StatusIgnore)
		require.NoError(t, err)

		alice, err := mem.Users.FindByID(ctx, "alice")
		require.NoError(t, err)

		feed, err := svc.Feed(ctx, alice, 1, 0)
		require.NoError(t, err)
		ids := feedIDs(feed)
		assert.NotContains(t, ids, "alice")
		assert.NotContains(t, ids, "bob")
		assert.NotContains(t, ids, "carol")
		assert.Contains(t, ids, "dave")
		assert.Contains(t, ids, "erin")
	})

	t.Run("hides accepted and blocked pairs both ways", func(t *testing.T) {
		mem, svc, _ := newTestServices(t, "alice", "bob", "carol", "dave")
		connect(t, svc, "alice", "bob")
		_, err := svc.Block(ctx, "carol", "alice")
		require.NoError(t, err)

		alice, err := mem.Users.FindByID(ctx, "alice")
		require.NoError(t, err)

		feed, err := svc.Feed(ctx, alice, 1, 0)
		require.NoError(t, err)
		ids := feedIDs(feed)
		assert.NotContains(t, ids, "bob")
		assert.NotContains(t, ids, "carol")
		assert.Contains(t, ids, "dave")
	})

	t.Run("users who rejected the caller stay visible", func(t *testing.T) {
		mem, svc, _ := newTestServices(t, "alice", "bob")
		req, _, err := svc.SendRequest(ctx, "bob", "alice", models.StatusInterested)
		require.NoError(t, err)
		_, err = svc.Review(ctx, "alice", req.ID, models.StatusRejected)
		require.NoError(t, err)

		// Bob's feed: alice rejected him but he never swiped on her.
		bob, err := mem.Users.FindByID(ctx, "bob")
		require.NoError(t, err)
		feed, err := svc.Feed(ctx, bob, 1, 0)
		require.NoError(t, err)
		assert.Contains(t, feedIDs(feed), "alice")
	})

	t.Run("ranks by profile affinity", func(t *testing.T) {
		mem := memory.New()
		mem.AddUser(models.User{
			ID:      "viewer",
			College: strPtr("MIT"),
			Course:  strPtr("B.Tech"),
			Branch:  strPtr("CSE"),
			Skills:  []string{"go", "sql"},
		})
		// Same college: 100.
		mem.AddUser(models.User{ID: "collegemate", College: strPtr("mit")})
		// Same course and branch: 80.
		mem.AddUser(models.User{ID: "coursemate", Course: strPtr("B.Tech"), Branch: strPtr("CSE")})
		// Two shared skills: 20.
		mem.AddUser(models.User{ID: "skillmate", Skills: []string{"Go", "SQL"}})
		// Nothing in common.
		mem.AddUser(models.User{ID: "stranger"})

		svc := NewConnectionService(mem.Connections, mem.Messages, mem.Users)
		viewer, err := mem.Users.FindByID(ctx, "viewer")
		require.NoError(t, err)

		feed, err := svc.Feed(ctx, viewer, 1, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"collegemate", "coursemate", "skillmate", "stranger"}, feedIDs(feed))
	})

	t.Run("filters by gender preference", func(t *testing.T) {
		mem := memory.New()
		mem.AddUser(models.User{ID: "viewer", InterestedToConnectWith: strPtr("female")})
		mem.AddUser(models.User{ID: "her", Gender: strPtr("female")})
		mem.AddUser(models.User{ID: "him", Gender: strPtr("male")})
		mem.AddUser(models.User{ID: "unset"})

		svc := NewConnectionService(mem.Connections, mem.Messages, mem.Users)
		viewer, err := mem.Users.FindByID(ctx, "viewer")
		require.NoError(t, err)

		feed, err := svc.Feed(ctx, viewer, 1, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"her"}, feedIDs(feed))
	})

	t.Run("paginates and caps the limit", func(t *testing.T) {
		mem := memory.New()
		mem.AddUser(models.User{ID: "viewer"})
		for _, id := range []string{"u1", "u2", "u3", "u4", "u5"} {
			mem.AddUser(models.User{ID: id})
		}
		svc := NewConnectionService(mem.Connections, mem.Messages, mem.Users)
		viewer, err := mem.Users.FindByID(ctx, "viewer")
		require.NoError(t, err)

		page1, err := svc.Feed(ctx, viewer, 1, 2)
		require.NoError(t, err)
		assert.Len(t, page1, 2)

		page3, err := svc.Feed(ctx, viewer, 3, 2)
		require.NoError(t, err)
		assert.Len(t, page3, 1)

		beyond, err := svc.Feed(ctx, viewer, 10, 2)
		require.NoError(t, err)
		assert.Empty(t, beyond)

		capped, err := svc.Feed(ctx, viewer, 1, 500)
		require.NoError(t, err)
		assert.Len(t, capped, 5)
	})
}
