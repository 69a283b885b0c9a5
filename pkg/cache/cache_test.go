package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// fileCacheAt returns a file cache whose clock reads *now.
func fileCacheAt(t *testing.T, now *time.Time, opts ...FileOption) *FileCache {
	t.Helper()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "burrow"), opts...)
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	c.now = func() time.Time { return *now }
	return c
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	c := fileCacheAt(t, &now)
	defer c.Close()

	key := NewDefaultKeyer().SolveKey(SolveKeyOpts{Board: "classic", Types: "A:1,B:10,C:100,D:1000"})
	if _, hit, err := c.Get(ctx, key); err != nil || hit {
		t.Fatalf("Get on empty cache = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, key, []byte(`{"cost":12521}`), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, key)
	if err != nil || !hit {
		t.Fatalf("Get after Set = hit %v, err %v", hit, err)
	}
	if string(data) != `{"cost":12521}` {
		t.Errorf("Get = %s", data)
	}
	if !strings.HasPrefix(c.path(key), filepath.Join(c.Dir(), KindSolve)+string(filepath.Separator)) {
		t.Errorf("answer stored at %s, want under the solve directory", c.path(key))
	}

	if err := c.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, key); hit {
		t.Error("Get after Delete should miss")
	}
	if err := c.Delete(ctx, key); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestFileCacheKindDirectories(t *testing.T) {
	now := time.Now()
	c := fileCacheAt(t, &now)
	k := NewDefaultKeyer()

	tests := []struct {
		key  string
		kind string
	}{
		{k.SolveKey(SolveKeyOpts{Board: "b"}), KindSolve},
		{k.RenderKey("h", RenderKeyOpts{Format: "svg"}), KindRender},
		{NewScopedKeyer(k, "staging:").RenderKey("h", RenderKeyOpts{Format: "svg"}), KindRender},
		{"scratch", otherKind},
	}
	for _, tt := range tests {
		rel, err := filepath.Rel(c.Dir(), c.path(tt.key))
		if err != nil {
			t.Fatal(err)
		}
		if got := strings.Split(rel, string(filepath.Separator))[0]; got != tt.kind {
			t.Errorf("%s stored under %q, want %q", tt.key, got, tt.kind)
		}
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	c := fileCacheAt(t, &now)

	if err := c.Set(ctx, "solve:old", []byte("x"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Set(ctx, "solve:forever", []byte("x"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	now = now.Add(2 * time.Minute)

	if _, hit, _ := c.Get(ctx, "solve:old"); hit {
		t.Error("expired entry should be a miss")
	}
	if _, err := os.Stat(c.path("solve:old")); !os.IsNotExist(err) {
		t.Error("expired entry was not removed")
	}
	if _, hit, _ := c.Get(ctx, "solve:forever"); !hit {
		t.Error("entry without ttl should not expire")
	}
}

func TestFileCacheMaxAgePerKind(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	c := fileCacheAt(t, &now, WithMaxAge(KindRender, time.Hour), WithMaxAge(KindSolve, 0))

	k := NewDefaultKeyer()
	answer := k.SolveKey(SolveKeyOpts{Board: "b"})
	drawing := k.RenderKey(Digest([]byte("digraph {}")), RenderKeyOpts{Format: "svg", Detailed: true})
	for _, key := range []string{answer, drawing} {
		if err := c.Set(ctx, key, []byte("x"), SolveTTL); err != nil {
			t.Fatalf("Set(%s): %v", key, err)
		}
	}

	now = now.Add(2 * time.Hour)
	if _, hit, _ := c.Get(ctx, drawing); hit {
		t.Error("drawing older than its kind's max age should miss")
	}
	if _, hit, _ := c.Get(ctx, answer); !hit {
		t.Error("answer within its TTL should hit")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	c := fileCacheAt(t, &now)
	if err := c.Set(ctx, "solve:k", []byte("x"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := os.WriteFile(c.path("solve:k"), []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "solve:k"); hit || err != nil {
		t.Errorf("corrupt entry: hit %v, err %v, want clean miss", hit, err)
	}
	if _, err := os.Stat(c.path("solve:k")); !os.IsNotExist(err) {
		t.Error("corrupt entry was not removed")
	}
}

func TestFileCacheUsageAndPrune(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	c := fileCacheAt(t, &now)

	sets := []struct {
		key string
		ttl time.Duration
	}{
		{"solve:a", time.Minute},
		{"solve:b", 0},
		{"render:c", time.Minute},
		{"render:d", time.Hour},
	}
	for _, s := range sets {
		if err := c.Set(ctx, s.key, []byte(s.key), s.ttl); err != nil {
			t.Fatalf("Set(%s): %v", s.key, err)
		}
	}
	now = now.Add(10 * time.Minute)

	usage, err := c.Usage()
	if err != nil {
		t.Fatalf("Usage: %v", err)
	}
	if u := usage[KindSolve]; u.Entries != 2 || u.Expired != 1 || u.Bytes == 0 {
		t.Errorf("solve usage = %+v, want 2 entries, 1 expired", u)
	}
	if u := usage[KindRender]; u.Entries != 2 || u.Expired != 1 {
		t.Errorf("render usage = %+v, want 2 entries, 1 expired", u)
	}
	if _, ok := usage[otherKind]; ok {
		t.Error("empty kind reported")
	}

	n, err := c.Prune(KindSolve)
	if err != nil || n != 1 {
		t.Fatalf("Prune(solve) = %d, %v, want 1", n, err)
	}
	if _, hit, _ := c.Get(ctx, "solve:b"); !hit {
		t.Error("Prune removed a live answer")
	}
	if n, _ := c.Prune(); n != 1 {
		t.Errorf("Prune() = %d, want the one expired drawing", n)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	c := fileCacheAt(t, &now)
	for _, k := range []string{"solve:a", "solve:b", "render:c", "loose"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatalf("Set(%s): %v", k, err)
		}
	}

	n, err := c.Clear(KindRender)
	if err != nil || n != 1 {
		t.Fatalf("Clear(render) = %d, %v, want 1", n, err)
	}
	if _, hit, _ := c.Get(ctx, "solve:a"); !hit {
		t.Error("Clear(render) removed an answer")
	}

	n, err = c.Clear()
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d, want 3", n)
	}
	entries, _ := os.ReadDir(c.Dir())
	if len(entries) != 0 {
		t.Errorf("cache dir has %d entries after Clear", len(entries))
	}

	missing := &FileCache{dir: filepath.Join(t.TempDir(), "nope")}
	if n, err := missing.Clear(); n != 0 || err != nil {
		t.Errorf("Clear of missing dir = %d, %v", n, err)
	}
}

func TestDigest(t *testing.T) {
	if Digest([]byte("digraph {}")) != Digest([]byte("digraph {}")) {
		t.Error("Digest should be deterministic")
	}
	if Digest([]byte("digraph {}")) == Digest([]byte("digraph { a }")) {
		t.Error("different graphs should digest differently")
	}
	if got := len(Digest(nil)); got != 64 {
		t.Errorf("Digest length = %d, want 64", got)
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	sk1 := k.SolveKey(SolveKeyOpts{Board: "board-1", Types: "A:1,B:10"})
	sk2 := k.SolveKey(SolveKeyOpts{Board: "board-1", Types: "A:1,B:10"})
	if sk1 != sk2 {
		t.Error("SolveKey should be deterministic")
	}
	if !strings.HasPrefix(sk1, KindSolve+":") {
		t.Errorf("SolveKey = %s, want solve: prefix", sk1)
	}
	if sk1 == k.SolveKey(SolveKeyOpts{Board: "board-2", Types: "A:1,B:10"}) {
		t.Error("different boards should produce different keys")
	}
	if sk1 == k.SolveKey(SolveKeyOpts{Board: "board-1", Types: "A:1,B:20"}) {
		t.Error("different multipliers should produce different keys")
	}
	// A character moved across the field boundary is a different puzzle.
	if k.SolveKey(SolveKeyOpts{Board: "abA", Types: ":1"}) == k.SolveKey(SolveKeyOpts{Board: "ab", Types: "A:1"}) {
		t.Error("field boundary is not part of the key")
	}

	rk1 := k.RenderKey("hash123", RenderKeyOpts{Format: "svg"})
	if rk1 == k.RenderKey("hash123", RenderKeyOpts{Format: "dot"}) {
		t.Error("different formats should produce different keys")
	}
	if rk1 == k.RenderKey("hash123", RenderKeyOpts{Format: "svg", Detailed: true}) {
		t.Error("detailed drawings should have their own key")
	}
}

func TestKindOf(t *testing.T) {
	k := NewDefaultKeyer()
	tests := []struct {
		key  string
		want string
	}{
		{k.SolveKey(SolveKeyOpts{}), KindSolve},
		{k.RenderKey("h", RenderKeyOpts{}), KindRender},
		{"staging:" + k.SolveKey(SolveKeyOpts{}), KindSolve},
		{"burrow:render:abc", KindRender},
		{"plain", ""},
		{"tower:abc", ""},
	}
	for _, tt := range tests {
		if got := KindOf(tt.key); got != tt.want {
			t.Errorf("KindOf(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "staging:")

	opts := SolveKeyOpts{Board: "b", Types: "A:1"}
	if got, want := scoped.SolveKey(opts), "staging:"+inner.SolveKey(opts); got != want {
		t.Errorf("ScopedKeyer SolveKey = %s, want %s", got, want)
	}

	renderKey := scoped.RenderKey("h", RenderKeyOpts{Format: "svg"})
	if !strings.HasPrefix(renderKey, "staging:render:") {
		t.Errorf("ScopedKeyer RenderKey should be prefixed: %s", renderKey)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "prefix:")
	key := scoped.SolveKey(SolveKeyOpts{})
	if !strings.HasPrefix(key, "prefix:solve:") {
		t.Errorf("unexpected key with nil inner: %s", key)
	}
}

// fastPings swaps in b for the duration of the test.
func fastPings(t *testing.T, b backoff.BackOff) {
	t.Helper()
	orig := connectBackOff
	connectBackOff = func() backoff.BackOff { return b }
	t.Cleanup(func() { connectBackOff = orig })
}

func TestPing(t *testing.T) {
	fastPings(t, backoff.NewConstantBackOff(time.Millisecond))
	ctx := context.Background()
	refused := errors.New("connection refused")

	calls := 0
	err := ping(ctx, "redis", func(context.Context) error {
		calls++
		if calls < connectTries {
			return refused
		}
		return nil
	})
	if err != nil || calls != connectTries {
		t.Errorf("recovering backend: err = %v after %d pings", err, calls)
	}

	calls = 0
	err = ping(ctx, "mongo", func(context.Context) error {
		calls++
		return refused
	})
	if !errors.Is(err, ErrBackend) || !errors.Is(err, refused) {
		t.Errorf("err = %v, want ErrBackend wrapping the last ping error", err)
	}
	if calls != connectTries {
		t.Errorf("down backend pinged %d times, want %d", calls, connectTries)
	}
	if !strings.Contains(err.Error(), "ping mongo") {
		t.Errorf("err = %q, want the backend named", err)
	}

	calls = 0
	err = ping(ctx, "redis", func(context.Context) error {
		calls++
		return backoff.Permanent(refused)
	})
	if !errors.Is(err, refused) || calls != 1 {
		t.Errorf("permanent failure: err = %v after %d pings, want 1", err, calls)
	}
}

func TestPingContextCancel(t *testing.T) {
	fastPings(t, backoff.NewConstantBackOff(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := ping(ctx, "redis", func(context.Context) error {
		calls++
		return errors.New("connection refused")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if calls > 1 {
		t.Errorf("pinged %d times after cancel, want at most 1", calls)
	}
}
