package session_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/assist/pkg/adapters/memory"
	"github.com/aretw0/assist/pkg/adapters/redis"
	"github.com/aretw0/assist/pkg/domain"
	"github.com/aretw0/assist/pkg/session"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SlowStore simulates latency to provoke lost updates if locking is missing.
type SlowStore struct {
	*memory.Store
}

func (s SlowStore) Save(ctx context.Context, profile string, sess *domain.Session) error {
	time.Sleep(2 * time.Millisecond)
	return s.Store.Save(ctx, profile, sess)
}

func (s SlowStore) Load(ctx context.Context, profile string) (*domain.Session, error) {
	time.Sleep(2 * time.Millisecond)
	return s.Store.Load(ctx, profile)
}

type failingStore struct {
	*memory.Store
}

func (failingStore) Load(context.Context, string) (*domain.Session, error) {
	return nil, errors.New("disk on fire")
}

func TestProfile_GetSetClear(t *testing.T) {
	ctx := context.Background()
	sc := session.NewManager(memory.NewStore()).Profile("")

	assert.Equal(t, session.DefaultProfile, sc.Name())

	empty, err := sc.GetSession(ctx)
	require.NoError(t, err)
	assert.False(t, empty.Authenticated(), "missing session reads as signed out")

	_, err = sc.SetSession(ctx, domain.Session{Token: "t1", UserID: "u1", UserRole: domain.RoleHelpSeeker})
	require.NoError(t, err)
	merged, err := sc.SetSession(ctx, domain.Session{UserData: &domain.User{ID: "u1", FirstName: "Ada"}})
	require.NoError(t, err)

	assert.Equal(t, "t1", merged.Token, "partial writes keep untouched fields")
	assert.Equal(t, "Ada", merged.UserData.FirstName)

	got, err := sc.GetSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, merged, got)

	require.NoError(t, sc.ClearSession(ctx))
	got, err = sc.GetSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Session{}, got)
}

func TestProfile_ReadsThroughToStore(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	sc := session.NewManager(store).Profile("default")

	before, err := sc.GetSession(ctx)
	require.NoError(t, err)
	assert.False(t, before.Authenticated())

	// Another component writes behind the profile's back.
	require.NoError(t, store.Save(ctx, "default", &domain.Session{Token: "late"}))

	after, err := sc.GetSession(ctx)
	require.NoError(t, err)
	assert.True(t, after.Authenticated())
}

func TestManager_StoreErrorsSurface(t *testing.T) {
	mgr := session.NewManager(failingStore{memory.NewStore()})

	_, err := mgr.Get(context.Background(), "default")
	assert.ErrorContains(t, err, "disk on fire")
}

func TestManager_ConcurrentSetsDoNotLoseFields(t *testing.T) {
	ctx := context.Background()
	mgr := session.NewManager(SlowStore{memory.NewStore()})

	var wg sync.WaitGroup
	wg.Add(3)
	go func() { defer wg.Done(); _, _ = mgr.Set(ctx, "p", domain.Session{Token: "tok"}) }()
	go func() { defer wg.Done(); _, _ = mgr.Set(ctx, "p", domain.Session{UserID: "uid"}) }()
	go func() { defer wg.Done(); _, _ = mgr.Set(ctx, "p", domain.Session{UserRole: domain.RoleHelpCreator}) }()
	wg.Wait()

	got, err := mgr.Get(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, domain.Session{Token: "tok", UserID: "uid", UserRole: domain.RoleHelpCreator}, got)
}

func TestManager_DistributedLockAcrossManagers(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	defer client.Close()

	store := redis.NewFromClient(client)
	ctx := context.Background()

	// Two managers model two processes sharing one backend.
	managers := []*session.Manager{
		session.NewManager(store, session.WithLocker(redis.NewLocker(client, "test:")), session.WithLockTTL(5*time.Second)),
		session.NewManager(store, session.WithLocker(redis.NewLocker(client, "test:")), session.WithLockTTL(5*time.Second)),
	}

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := managers[i%2].Set(ctx, "shared", domain.Session{UserID: fmt.Sprintf("u%d", i)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := managers[0].Get(ctx, "shared")
	require.NoError(t, err)
	assert.NotEmpty(t, got.UserID)
	assert.False(t, mr.Exists("test:lock:shared"), "lock released after use")
}
