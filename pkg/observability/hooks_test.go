package observability

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	s := NoopStoreHooks{}
	s.OnMutation(ctx, "add", 3)
	s.OnRejected(ctx, "reorder", nil)
	s.OnHistory(ctx, "undo", 1, 4)

	b := NoopBoardHooks{}
	b.OnCompression(ctx, "continuous", 1, 1.25)
	b.OnLayout(ctx, 3, time.Millisecond)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "colorize")
	c.OnCacheMiss(ctx, "colorize")
	c.OnCacheSet(ctx, "colorize", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "cdn.example.com", "/person.svg")
	h.OnResponse(ctx, "GET", "cdn.example.com", "/person.svg", 200, time.Second)
	h.OnError(ctx, "GET", "cdn.example.com", "/person.svg", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Store() should return NoopStoreHooks by default")
	}
	if _, ok := Board().(NoopBoardHooks); !ok {
		t.Error("Board() should return NoopBoardHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customStore := &testStoreHooks{}
	SetStoreHooks(customStore)
	if Store() != customStore {
		t.Error("SetStoreHooks should set custom hooks")
	}

	customBoard := &testBoardHooks{}
	SetBoardHooks(customBoard)
	if Board() != customBoard {
		t.Error("SetBoardHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Reset() should restore NoopStoreHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testStoreHooks{}
	SetStoreHooks(custom)
	SetStoreHooks(nil)

	if Store() != custom {
		t.Error("SetStoreHooks(nil) should keep the previous hooks")
	}
}

func TestCustomHooksReceiveEvents(t *testing.T) {
	Reset()
	defer Reset()

	h := &testStoreHooks{}
	SetStoreHooks(h)
	Store().OnMutation(context.Background(), "add", 1)
	Store().OnMutation(context.Background(), "remove", 0)

	if h.mutations != 2 {
		t.Errorf("mutations = %d, want 2", h.mutations)
	}
}

func TestConcurrentSetAndEmit(t *testing.T) {
	Reset()
	defer Reset()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			SetBoardHooks(&testBoardHooks{})
			SetCacheHooks(&testCacheHooks{})
		}()
		go func() {
			defer wg.Done()
			Board().OnLayout(context.Background(), 2, time.Microsecond)
			Cache().OnCacheMiss(context.Background(), "colorize")
		}()
	}
	wg.Wait()

	// setting one category leaves the others alone
	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("store hooks changed by unrelated setters")
	}
}

type testStoreHooks struct {
	NoopStoreHooks
	mutations int
}

func (h *testStoreHooks) OnMutation(context.Context, string, int) { h.mutations++ }

type testBoardHooks struct{ NoopBoardHooks }

type testCacheHooks struct{ NoopCacheHooks }

type testHTTPHooks struct{ NoopHTTPHooks }
