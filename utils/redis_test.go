package utils_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"todolist/models"
	"todolist/utils"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	s, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(s.Close)

	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return s, rdb
}

func testSession(id string, userID int64) models.Session {
	now := time.Now().UTC().Truncate(time.Second)
	return models.Session{
		ID:        id,
		UserID:    userID,
		CSRFToken: "csrf-" + id,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
		UserAgent: "test-agent",
		IPAddress: "127.0.0.1",
	}
}

func TestStoreAndGetSession(t *testing.T) {
	s, rdb := newTestRedis(t)
	ctx := context.Background()

	want := testSession("abc", 7)
	if err := utils.StoreSession(ctx, rdb, want, time.Hour); err != nil {
		t.Fatalf("StoreSession() error = %v", err)
	}

	got, err := utils.GetSession(ctx, rdb, "abc")
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if got.UserID != want.UserID || got.CSRFToken != want.CSRFToken || got.UserAgent != want.UserAgent {
		t.Errorf("GetSession() = %+v, want %+v", got, want)
	}
	if !got.ExpiresAt.Equal(want.ExpiresAt) {
		t.Errorf("ExpiresAt = %v, want %v", got.ExpiresAt, want.ExpiresAt)
	}
	if ttl := s.TTL("session:abc"); ttl != time.Hour {
		t.Errorf("ttl = %v, want 1h", ttl)
	}
	if !s.Exists("user_sessions:7") {
		t.Error("user session index was not written")
	}
}

func TestGetSession_Missing(t *testing.T) {
	_, rdb := newTestRedis(t)

	_, err := utils.GetSession(context.Background(), rdb, "nope")
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("GetSession() error = %v, want ErrNotFound", err)
	}
}

func TestGetSession_Expired(t *testing.T) {
	_, rdb := newTestRedis(t)
	ctx := context.Background()

	session := testSession("old", 1)
	session.ExpiresAt = time.Now().Add(-time.Minute).UTC()
	if err := utils.StoreSession(ctx, rdb, session, time.Hour); err != nil {
		t.Fatalf("StoreSession() error = %v", err)
	}

	_, err := utils.GetSession(ctx, rdb, "old")
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("GetSession() error = %v, want ErrNotFound", err)
	}
}

func TestDeleteSession(t *testing.T) {
	s, rdb := newTestRedis(t)
	ctx := context.Background()

	if err := utils.StoreSession(ctx, rdb, testSession("a", 3), time.Hour); err != nil {
		t.Fatalf("StoreSession() error = %v", err)
	}
	if err := utils.StoreSession(ctx, rdb, testSession("b", 3), time.Hour); err != nil {
		t.Fatalf("StoreSession() error = %v", err)
	}

	if err := utils.DeleteSession(ctx, rdb, "a"); err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}
	if s.Exists("session:a") {
		t.Error("session:a still exists")
	}
	count, err := utils.CountUserSessions(ctx, rdb, 3)
	if err != nil {
		t.Fatalf("CountUserSessions() error = %v", err)
	}
	if count != 1 {
		t.Errorf("CountUserSessions() = %d, want 1", count)
	}

	// deleting twice is not an error
	if err := utils.DeleteSession(ctx, rdb, "a"); err != nil {
		t.Errorf("second DeleteSession() error = %v", err)
	}
}

func TestCountUserSessions_PrunesExpired(t *testing.T) {
	s, rdb := newTestRedis(t)
	ctx := context.Background()

	if err := utils.StoreSession(ctx, rdb, testSession("short", 9), time.Minute); err != nil {
		t.Fatalf("StoreSession() error = %v", err)
	}
	if err := utils.StoreSession(ctx, rdb, testSession("long", 9), time.Hour); err != nil {
		t.Fatalf("StoreSession() error = %v", err)
	}

	s.FastForward(2 * time.Minute)

	count, err := utils.CountUserSessions(ctx, rdb, 9)
	if err != nil {
		t.Fatalf("CountUserSessions() error = %v", err)
	}
	if count != 1 {
		t.Errorf("CountUserSessions() = %d, want 1", count)
	}
	members, _ := s.Members("user_sessions:9")
	if len(members) != 1 {
		t.Errorf("index members = %v, want one entry", members)
	}
}

// failingCommand makes every call of the named redis command fail.
type failingCommand string

func (f failingCommand) DialHook(next redis.DialHook) redis.DialHook { return next }

func (f failingCommand) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		if cmd.Name() == string(f) {
			err := errors.New(string(f) + " refused")
			cmd.SetErr(err)
			return err
		}
		return next(ctx, cmd)
	}
}

func (f failingCommand) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func TestCountUserSessions_PruneFailure(t *testing.T) {
	s, rdb := newTestRedis(t)
	ctx := context.Background()

	if err := utils.StoreSession(ctx, rdb, testSession("gone", 4), time.Minute); err != nil {
		t.Fatalf("StoreSession() error = %v", err)
	}
	s.FastForward(2 * time.Minute)

	rdb.AddHook(failingCommand("srem"))
	if _, err := utils.CountUserSessions(ctx, rdb, 4); err == nil {
		t.Fatal("CountUserSessions() error = nil, want prune failure")
	}
	if members, _ := s.Members("user_sessions:4"); len(members) != 1 {
		t.Errorf("index members = %v, want the stale entry kept", members)
	}
}
