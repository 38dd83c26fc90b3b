package repositories

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/resonate/internal/models"
	"github.com/desertthunder/resonate/internal/shared"
)

// setupRedis connects to REDIS_ADDR and skips the test when it is unset or unreachable.
// Keys are written under a per-test prefix and removed on cleanup.
func setupRedis(t *testing.T) *RedisSessionRepository {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	client, err := shared.NewRedisClient(shared.RedisConfig{Addr: addr, Password: os.Getenv("REDIS_PASSWORD")})
	if err != nil {
		t.Skipf("redis unavailable: %v", err)
	}

	repo := NewRedisSessionRepository(client)
	repo.prefix = RedisKeyPrefix + "test:" + shared.GenerateID() + ":"

	t.Cleanup(func() {
		ctx := context.Background()
		keys, _ := client.Keys(ctx, repo.prefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return repo
}

func TestRedisSessionRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Key Prefix", func(t *testing.T) {
		repo := NewRedisSessionRepository(nil)
		if got := repo.key("B7K9QZ"); got != "resonate:session:B7K9QZ" {
			t.Errorf("unexpected key %q", got)
		}
	})

	t.Run("Lifecycle", func(t *testing.T) {
		repo := setupRedis(t)

		if err := repo.Create(ctx, models.NewSession("B7K9QZ")); err != nil {
			t.Fatalf("failed to create session: %v", err)
		}
		if err := repo.Create(ctx, models.NewSession("B7K9QZ")); !errors.Is(err, shared.ErrSessionExists) {
			t.Errorf("expected ErrSessionExists, got %v", err)
		}

		if err := repo.SaveSlot(ctx, "B7K9QZ", models.UserA, slotData(`[1]`, `[2]`)); err != nil {
			t.Fatalf("failed to save slot: %v", err)
		}

		got, err := repo.Get(ctx, "B7K9QZ")
		if err != nil {
			t.Fatalf("failed to get session: %v", err)
		}
		if got.UserA == nil || string(got.UserA.Tracks) != `[1]` || got.UserB != nil {
			t.Errorf("unexpected session %+v", got)
		}

		got.UserB = slotData(`[3]`, `[4]`)
		got.UpdatedAt = got.CreatedAt.Add(-time.Hour)
		stale := got.UpdatedAt
		if err := repo.Update(ctx, got); err != nil {
			t.Fatalf("failed to update session: %v", err)
		}

		updated, err := repo.Get(ctx, "B7K9QZ")
		if err != nil {
			t.Fatalf("failed to get session: %v", err)
		}
		if !updated.UpdatedAt.After(stale) {
			t.Errorf("expected updatedAt to move past %v, got %v", stale, updated.UpdatedAt)
		}
		if updated.UserB == nil || string(updated.UserB.Tracks) != `[3]` {
			t.Errorf("expected userB to be stored, got %+v", updated.UserB)
		}

		if err := repo.Delete(ctx, "B7K9QZ"); err != nil {
			t.Fatalf("failed to delete session: %v", err)
		}
		if _, err := repo.Get(ctx, "B7K9QZ"); !errors.Is(err, shared.ErrSessionNotFound) {
			t.Errorf("expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("Not Found", func(t *testing.T) {
		repo := setupRedis(t)

		if err := repo.Update(ctx, models.NewSession("ZZZZZZ")); !errors.Is(err, shared.ErrSessionNotFound) {
			t.Errorf("expected ErrSessionNotFound on update, got %v", err)
		}
		if err := repo.SaveSlot(ctx, "ZZZZZZ", models.UserA, slotData(`[]`, `[]`)); !errors.Is(err, shared.ErrSessionNotFound) {
			t.Errorf("expected ErrSessionNotFound on save, got %v", err)
		}
	})

	t.Run("Concurrent SaveSlot", func(t *testing.T) {
		repo := setupRedis(t)
		repo.Create(ctx, models.NewSession("C8L0RA"))

		var wg sync.WaitGroup
		for i := range 10 {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				user := models.UserA
				if i%2 == 1 {
					user = models.UserB
				}
				repo.SaveSlot(ctx, "C8L0RA", user, slotData(`[]`, `[]`))
			}(i)
		}
		wg.Wait()

		got, err := repo.Get(ctx, "C8L0RA")
		if err != nil {
			t.Fatalf("failed to get session: %v", err)
		}
		if !got.Complete() {
			t.Error("expected both slots to survive concurrent saves")
		}
	})
}
