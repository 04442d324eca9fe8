package share

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/heightchart/pkg/avatar"
	"github.com/matzehuels/heightchart/pkg/cache"
	"github.com/matzehuels/heightchart/pkg/errors"
	"github.com/matzehuels/heightchart/pkg/store"
)

var quiet = log.New(io.Discard)

func sample() []avatar.Avatar {
	return []avatar.Avatar{
		{ID: "a", Kind: avatar.KindPerson, Name: "Ana", Height: 165, Color: "#f00"},
		{ID: "b", Kind: avatar.KindObject, Name: "Door", Height: 200},
	}
}

// fakeClient counts Create calls and hands out sequential ids.
type fakeClient struct {
	calls atomic.Int32
	err   error
	gate  chan struct{}
}

func (c *fakeClient) Create(ctx context.Context, data string) (ItemID, error) {
	n := c.calls.Add(1)
	if c.gate != nil {
		<-c.gate
	}
	if c.err != nil {
		return "", c.err
	}
	return ItemID(fmt.Sprint(n)), nil
}

func (c *fakeClient) Fetch(context.Context, ItemID) (string, error) { return "", nil }

func TestItemIDUnmarshal(t *testing.T) {
	tests := []struct {
		in      string
		want    ItemID
		wantErr bool
	}{
		{`42`, "42", false},
		{`"abc-1"`, "abc-1", false},
		{` 7 `, "7", false},
		{`true`, "", true},
	}
	for _, tt := range tests {
		var id ItemID
		err := json.Unmarshal([]byte(tt.in), &id)
		if (err != nil) != tt.wantErr || id != tt.want {
			t.Errorf("Unmarshal(%s) = %q, %v", tt.in, id, err)
		}
	}

	b, _ := json.Marshal(createResponse{Success: true, ItemID: "17"})
	if string(b) != `{"success":true,"item_id":17}` {
		t.Errorf("numeric id marshaled as %s", b)
	}
}

func TestLink(t *testing.T) {
	tests := []struct {
		name string
		id   ItemID
		want string
	}{
		{"numeric", "42", "https://heightchart.app/?share=42"},
		{"uuid", "0b6e7c1a-1f2d-4c1e-9a0a-3f5a2c9d7e10", "https://heightchart.app/?share=0b6e7c1a-1f2d-4c1e-9a0a-3f5a2c9d7e10"},
		{"reserved characters", "a&b#c d", "https://heightchart.app/?share=a%26b%23c+d"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Link("https://heightchart.app/", tt.id)
			if got != tt.want {
				t.Errorf("Link() = %q, want %q", got, tt.want)
			}
			u, err := url.Parse(got)
			if err != nil || u.Query().Get("share") != string(tt.id) {
				t.Errorf("share param of %q does not round-trip: %v", got, err)
			}
		})
	}
}

func TestEncodeDecode(t *testing.T) {
	if _, err := Encode(nil); !errors.Is(err, errors.ErrCodeNothingToShare) {
		t.Errorf("Encode(nil) error = %v", err)
	}
	data, err := Encode(sample())
	if err != nil {
		t.Fatal(err)
	}
	got, err := Decode(data)
	if err != nil || len(got) != 2 || got[1].Kind != avatar.KindObject {
		t.Errorf("Decode() = %+v, %v", got, err)
	}
	if _, err := Decode(`[{"height":-5}]`); !errors.Is(err, errors.ErrCodeInvalidAvatar) {
		t.Errorf("invalid avatar error = %v", err)
	}
	if _, err := Decode(`nope`); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("malformed payload error = %v", err)
	}
}

func TestSharerReusesLinkUntilChange(t *testing.T) {
	c := &fakeClient{}
	s := NewSharer(c, "https://chart.example", WithSharerLogger(quiet))
	ctx := context.Background()
	avs := sample()

	first, err := s.Share(ctx, avs)
	if err != nil {
		t.Fatal(err)
	}
	if first != "https://chart.example?share=1" {
		t.Errorf("link = %q", first)
	}
	second, _ := s.Share(ctx, avs)
	if second != first || c.calls.Load() != 1 {
		t.Errorf("unchanged set: link %q, calls %d, want reuse", second, c.calls.Load())
	}

	avs[0].Height = 170
	third, _ := s.Share(ctx, avs)
	if third == first || c.calls.Load() != 2 {
		t.Errorf("changed set: link %q, calls %d, want a new call", third, c.calls.Load())
	}
	if st := s.Status(); st.Phase != Succeeded || st.Link != third {
		t.Errorf("Status() = %+v", st)
	}
}

func TestSharerNothingToShare(t *testing.T) {
	c := &fakeClient{}
	s := NewSharer(c, "o", WithSharerLogger(quiet))
	if _, err := s.Share(context.Background(), nil); !errors.Is(err, errors.ErrCodeNothingToShare) {
		t.Errorf("error = %v", err)
	}
	if c.calls.Load() != 0 || s.Status().Phase != Idle {
		t.Error("an empty share should not call the endpoint or change state")
	}
}

func TestSharerFailureAllowsRetry(t *testing.T) {
	c := &fakeClient{err: errors.New(errors.ErrCodeShareFailed, "boom")}
	s := NewSharer(c, "o", WithSharerLogger(quiet))
	ctx := context.Background()

	if _, err := s.Share(ctx, sample()); !errors.Is(err, errors.ErrCodeShareFailed) {
		t.Fatalf("error = %v", err)
	}
	if st := s.Status(); st.Phase != Failed || st.Err == nil {
		t.Errorf("Status() = %+v, want failed", st)
	}

	c.err = nil
	if _, err := s.Share(ctx, sample()); err != nil {
		t.Fatal(err)
	}
	if c.calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", c.calls.Load())
	}
}

func TestSharerInFlightNotReissued(t *testing.T) {
	c := &fakeClient{gate: make(chan struct{})}
	s := NewSharer(c, "o", WithSharerLogger(quiet))

	var wg sync.WaitGroup
	links := make([]string, 4)
	for i := range links {
		wg.Add(1)
		go func() {
			defer wg.Done()
			links[i], _ = s.Share(context.Background(), sample())
		}()
	}
	time.Sleep(30 * time.Millisecond)
	if s.Status().Phase != InFlight {
		t.Errorf("Phase = %v, want in flight", s.Status().Phase)
	}
	close(c.gate)
	wg.Wait()

	if c.calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", c.calls.Load())
	}
	for _, l := range links {
		if l != links[0] {
			t.Errorf("links differ: %v", links)
		}
	}
}

func TestSharerBindResetsOnChange(t *testing.T) {
	st := store.New(store.WithLogger(quiet), store.WithInitial(sample()))
	c := &fakeClient{}
	s := NewSharer(c, "o", WithSharerLogger(quiet))
	unbind := s.Bind(st)
	defer unbind()
	ctx := context.Background()

	s.Share(ctx, st.Avatars())
	st.SetZoom(2)
	if s.Status().Phase != Succeeded {
		t.Error("a zoom change should keep the link")
	}

	st.Add(avatar.Avatar{Kind: avatar.KindPerson, Name: "Cy", Height: 180})
	if s.Status().Phase != Idle {
		t.Errorf("Phase after add = %v, want idle", s.Status().Phase)
	}
	st.Undo()
	s.Share(ctx, st.Avatars())
	if c.calls.Load() != 2 {
		t.Errorf("calls = %d, want 2 after the set changed", c.calls.Load())
	}
}

func TestSharerLinkCache(t *testing.T) {
	mem := cache.NewMemoryCache()
	c := &fakeClient{}
	ctx := context.Background()

	NewSharer(c, "o", WithLinkCache(mem), WithSharerLogger(quiet)).Share(ctx, sample())
	link, err := NewSharer(c, "o", WithLinkCache(mem), WithSharerLogger(quiet)).Share(ctx, sample())
	if err != nil || link != "o?share=1" {
		t.Errorf("Share() = %q, %v", link, err)
	}
	if c.calls.Load() != 1 {
		t.Errorf("calls = %d, want the cached id reused", c.calls.Load())
	}
}

func newTestServer(t *testing.T, st Store) *httptest.Server {
	t.Helper()
	n := 0
	h := NewHandler(st, WithHandlerLogger(quiet), WithItemIDFunc(func() ItemID { n++; return ItemID(fmt.Sprint(n)) }))
	r := chi.NewRouter()
	h.RegisterHTTP(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientServerRoundTrip(t *testing.T) {
	srv := newTestServer(t, NewMemoryStore())
	c := NewHTTPClient(srv.URL+"/api/share", srv.Client())
	ctx := context.Background()

	data, _ := Encode(sample())
	id, err := c.Create(ctx, data)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if id != "1" {
		t.Errorf("id = %q", id)
	}
	got, err := c.Fetch(ctx, id)
	if err != nil || got != data {
		t.Errorf("Fetch() = %q, %v", got, err)
	}
	if _, err := c.Fetch(ctx, "nope"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Fetch(unknown) error = %v", err)
	}
	if _, err := c.Create(ctx, `[{"height":0}]`); !errors.Is(err, errors.ErrCodeShareFailed) {
		t.Errorf("Create(invalid) error = %v", err)
	}
}

func TestClientResponses(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		want     ItemID
		wantCode errors.Code
	}{
		{"numeric id", 200, `{"success":true,"item_id":17}`, "17", ""},
		{"string id", 200, `{"success":true,"item_id":"x9"}`, "x9", ""},
		{"unsuccessful", 200, `{"success":false}`, "", errors.ErrCodeShareFailed},
		{"server error", 500, `oops`, "", errors.ErrCodeShareFailed},
		{"garbage", 200, `<html>`, "", errors.ErrCodeShareFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var req createRequest
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Data == "" {
					t.Errorf("request body: %+v, %v", req, err)
				}
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			id, err := NewHTTPClient(srv.URL, srv.Client()).Create(context.Background(), `[]`)
			if tt.wantCode != "" {
				if !errors.Is(err, tt.wantCode) {
					t.Errorf("error = %v, want %s", err, tt.wantCode)
				}
				return
			}
			if err != nil || id != tt.want {
				t.Errorf("Create() = %q, %v", id, err)
			}
		})
	}
}

func TestStores(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	stores := map[string]Store{"memory": NewMemoryStore(), "file": fs}
	if addr := os.Getenv("HEIGHTCHART_TEST_REDIS"); addr != "" {
		rs, err := NewRedisStore(context.Background(), RedisConfig{Addr: addr, Prefix: "test-share:"})
		if err != nil {
			t.Fatal(err)
		}
		stores["redis"] = rs
	}

	for name, st := range stores {
		t.Run(name, func(t *testing.T) {
			defer st.Close()
			ctx := context.Background()
			now := time.Now()

			if err := st.Put(ctx, Item{ID: "live", Data: "[1]", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}); err != nil {
				t.Fatal(err)
			}
			got, err := st.Get(ctx, "live")
			if err != nil || got.Data != "[1]" {
				t.Errorf("Get(live) = %+v, %v", got, err)
			}

			st.Put(ctx, Item{ID: "old", Data: "[2]", ExpiresAt: now.Add(-time.Second)})
			if _, err := st.Get(ctx, "old"); err != ErrNotFound {
				t.Errorf("Get(expired) error = %v", err)
			}
			if _, err := st.Get(ctx, "missing"); err != ErrNotFound {
				t.Errorf("Get(missing) error = %v", err)
			}
		})
	}
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	fs, _ := NewFileStore(t.TempDir())
	if err := fs.Put(context.Background(), Item{ID: "../x"}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Put(../x) error = %v", err)
	}
	if _, err := fs.Get(context.Background(), "a/b"); err != ErrNotFound {
		t.Errorf("Get(a/b) error = %v", err)
	}
}
