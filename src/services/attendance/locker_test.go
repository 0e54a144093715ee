package attendance

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedMutexSerialisesSameKey(t *testing.T) {
	k := NewKeyedMutex()
	ctx := context.Background()

	var mu sync.Mutex
	inside, maxInside := 0, 0
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := k.Lock(ctx, "u1")
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			inside++
			if inside > maxInside {
				maxInside = inside
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			inside--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInside)
	assert.Empty(t, k.locks)
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	k := NewKeyedMutex()
	ctx := context.Background()

	unlockA, err := k.Lock(ctx, "a")
	require.NoError(t, err)
	defer unlockA()

	unlockB, err := k.Lock(ctx, "b")
	require.NoError(t, err)
	unlockB()
}

func TestKeyedMutexHonoursContext(t *testing.T) {
	k := NewKeyedMutex()
	unlock, err := k.Lock(context.Background(), "u1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = k.Lock(ctx, "u1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	unlock()
	assert.Empty(t, k.locks)
}

func newRedisLocker(t *testing.T, ttl time.Duration) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLocker(client, ttl), mr
}

func TestRedisLockerWaitsForRelease(t *testing.T) {
	l, mr := newRedisLocker(t, 30*time.Second)
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, mr.Exists("attendance:lock:u1"))

	acquired := make(chan func(), 1)
	go func() {
		second, err := l.Lock(ctx, "u1")
		if assert.NoError(t, err) {
			acquired <- second
		}
	}()

	select {
	case <-acquired:
		t.Fatal("second lock acquired while first is held")
	case <-time.After(150 * time.Millisecond):
	}

	unlock()
	select {
	case second := <-acquired:
		second()
	case <-time.After(2 * time.Second):
		t.Fatal("second lock not acquired after release")
	}
	assert.False(t, mr.Exists("attendance:lock:u1"))
}

func TestRedisLockerTimesOut(t *testing.T) {
	l, _ := newRedisLocker(t, 30*time.Second)

	unlock, err := l.Lock(context.Background(), "u1")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "u1")
	assert.ErrorIs(t, err, ErrLockTimeout)

	other, err := l.Lock(context.Background(), "u2")
	require.NoError(t, err)
	other()
}

func TestRedisLockerStaleUnlockKeepsNewHolder(t *testing.T) {
	l, mr := newRedisLocker(t, time.Second)
	ctx := context.Background()

	stale, err := l.Lock(ctx, "u1")
	require.NoError(t, err)
	first, err := mr.Get("attendance:lock:u1")
	require.NoError(t, err)

	// TTL หมด แล้วมีคนอื่นได้ lock ไป
	mr.FastForward(2 * time.Second)
	require.False(t, mr.Exists("attendance:lock:u1"))

	current, err := l.Lock(ctx, "u1")
	require.NoError(t, err)
	holder, err := mr.Get("attendance:lock:u1")
	require.NoError(t, err)
	assert.NotEqual(t, first, holder)

	stale()
	got, err := mr.Get("attendance:lock:u1")
	require.NoError(t, err)
	assert.Equal(t, holder, got)

	current()
	assert.False(t, mr.Exists("attendance:lock:u1"))
}
