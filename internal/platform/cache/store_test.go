package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_SetAndGet(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	ctx := context.Background()

	store.Set(ctx, "club:list", "v1")
	store.Set(ctx, "club:list", "v2")

	got, ok := store.Get(ctx, "club:list")
	if !ok {
		t.Fatalf("expected hit for club:list")
	}
	if got != "v2" {
		t.Fatalf("got %v, want v2", got)
	}

	if _, ok := store.Get(ctx, "elo:history:Brighton"); ok {
		t.Fatalf("expected miss for unset key")
	}
}

func TestStore_Get_EvictsExpiredEntries(t *testing.T) {
	t.Parallel()

	store := NewStore(5 * time.Millisecond)
	ctx := context.Background()
	store.Set(ctx, "elo:formatted:all", 1874.5)

	time.Sleep(20 * time.Millisecond)

	if _, ok := store.Get(ctx, "elo:formatted:all"); ok {
		t.Fatalf("expected expired entry to miss")
	}
	store.mu.RLock()
	_, still := store.items["elo:formatted:all"]
	store.mu.RUnlock()
	if still {
		t.Fatalf("expected expired entry to be removed from the map")
	}
}

func TestStore_GetOrLoad_SharesOneLoad(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return 1874.5, nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "elo:history:Brighton", loader)
			if err != nil {
				errCh <- err
				return
			}
			if got, _ := v.(float64); got != 1874.5 {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_ServesCacheAfterFirstLoad(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		return "rows", nil
	}

	if _, err := store.GetOrLoad(context.Background(), "club:list", loader); err != nil {
		t.Fatalf("first GetOrLoad error: %v", err)
	}
	if _, err := store.GetOrLoad(context.Background(), "club:list", loader); err != nil {
		t.Fatalf("second GetOrLoad error: %v", err)
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_DoesNotCacheLoaderErrors(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	ctx := context.Background()
	var calls atomic.Int32
	loadErr := errors.New("elo feed unavailable")

	loader := func(context.Context) (any, error) {
		if calls.Add(1) == 1 {
			return nil, loadErr
		}
		return "history", nil
	}

	if _, err := store.GetOrLoad(ctx, "elo:history:Feyenoord", loader); !errors.Is(err, loadErr) {
		t.Fatalf("got %v, want %v", err, loadErr)
	}

	got, err := store.GetOrLoad(ctx, "elo:history:Feyenoord", loader)
	if err != nil {
		t.Fatalf("retry after loader error: %v", err)
	}
	if got != "history" {
		t.Fatalf("got %v, want history", got)
	}
	if calls.Load() != 2 {
		t.Fatalf("loader called %d times, want 2", calls.Load())
	}
}

func TestStore_GetOrLoad_EmptyKeySkipsCache(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	ctx := context.Background()
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		return "uncached", nil
	}

	for i := 0; i < 3; i++ {
		if _, err := store.GetOrLoad(ctx, "", loader); err != nil {
			t.Fatalf("GetOrLoad with empty key: %v", err)
		}
	}

	if got := calls.Load(); got != 3 {
		t.Fatalf("loader called %d times, want 3", got)
	}
}

func TestStore_DeleteAndDeletePrefix(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	ctx := context.Background()
	store.Set(ctx, "elo:formatted:GB1", "premier-league")
	store.Set(ctx, "elo:formatted:ES1", "la-liga")
	store.Set(ctx, "elo:history:Brighton", "history")
	store.Set(ctx, "club:list", "clubs")

	store.Delete(ctx, "elo:history:Brighton")
	store.DeletePrefix(ctx, "elo:formatted:")

	for _, key := range []string{"elo:formatted:GB1", "elo:formatted:ES1", "elo:history:Brighton"} {
		if _, ok := store.Get(ctx, key); ok {
			t.Fatalf("expected %s to be deleted", key)
		}
	}
	if _, ok := store.Get(ctx, "club:list"); !ok {
		t.Fatalf("expected club:list to survive")
	}
}

var errUnexpectedValue = errors.New("unexpected loaded value")
