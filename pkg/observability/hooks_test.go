package observability

import (
	"context"
	"testing"
	"time"
)

type recordingLayoutHooks struct {
	starts    int
	completes int
	cancels   int
}

func (h *recordingLayoutHooks) OnRunStart(context.Context, int, int) { h.starts++ }
func (h *recordingLayoutHooks) OnRunComplete(context.Context, int, time.Duration, error) {
	h.completes++
}
func (h *recordingLayoutHooks) OnRunCancelled(context.Context, int) { h.cancels++ }

type recordingCacheHooks struct {
	hits, misses, sets int
}

func (h *recordingCacheHooks) OnCacheHit(context.Context, string)      { h.hits++ }
func (h *recordingCacheHooks) OnCacheMiss(context.Context, string)     { h.misses++ }
func (h *recordingCacheHooks) OnCacheSet(context.Context, string, int) { h.sets++ }

func TestLayoutHooksDispatch(t *testing.T) {
	defer Reset()

	rec := &recordingLayoutHooks{}
	SetLayoutHooks(rec)

	ctx := context.Background()
	Layout().OnRunStart(ctx, 10, 5)
	Layout().OnRunComplete(ctx, 100, time.Second, nil)
	Layout().OnRunCancelled(ctx, 40)

	if rec.starts != 1 || rec.completes != 1 || rec.cancels != 1 {
		t.Errorf("dispatch counts = %+v, want 1 each", rec)
	}
}

func TestCacheHooksDispatch(t *testing.T) {
	defer Reset()

	rec := &recordingCacheHooks{}
	SetCacheHooks(rec)

	ctx := context.Background()
	Cache().OnCacheHit(ctx, "file")
	Cache().OnCacheMiss(ctx, "file")
	Cache().OnCacheMiss(ctx, "redis")
	Cache().OnCacheSet(ctx, "file", 128)

	if rec.hits != 1 || rec.misses != 2 || rec.sets != 1 {
		t.Errorf("dispatch counts = %+v", rec)
	}
}

func TestSetNilKeepsCurrent(t *testing.T) {
	defer Reset()

	rec := &recordingLayoutHooks{}
	SetLayoutHooks(rec)
	SetLayoutHooks(nil)

	Layout().OnRunStart(context.Background(), 1, 0)
	if rec.starts != 1 {
		t.Error("nil registration replaced the active hooks")
	}
}

func TestResetRestoresNoops(t *testing.T) {
	rec := &recordingLayoutHooks{}
	SetLayoutHooks(rec)
	Reset()

	Layout().OnRunStart(context.Background(), 1, 0)
	if rec.starts != 0 {
		t.Error("Reset() did not detach custom hooks")
	}
	if _, ok := Layout().(NoopLayoutHooks); !ok {
		t.Error("Layout() not restored to NoopLayoutHooks")
	}
}
