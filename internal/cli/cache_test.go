package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/burrow/pkg/cache"
	errs "github.com/matzehuels/burrow/pkg/errors"
)

// seedCache writes answers and drawings into the default file cache.
func seedCache(t *testing.T, xdg string, answers, drawings int, ttl time.Duration) *cache.FileCache {
	t.Helper()
	fc, err := cache.NewFileCache(filepath.Join(xdg, appName))
	if err != nil {
		t.Fatal(err)
	}
	k := cache.NewDefaultKeyer()
	ctx := context.Background()
	for i := 0; i < answers; i++ {
		key := k.SolveKey(cache.SolveKeyOpts{Board: strings.Repeat(".", i+1)})
		if err := fc.Set(ctx, key, []byte(`{"cost":46}`), ttl); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < drawings; i++ {
		key := k.RenderKey(cache.Digest([]byte(strings.Repeat("digraph ", i+1))), cache.RenderKeyOpts{Format: formatSVG})
		if err := fc.Set(ctx, key, []byte("<svg/>"), ttl); err != nil {
			t.Fatal(err)
		}
	}
	return fc
}

func TestCachePathCommand(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)
	t.Setenv(configEnv, "")

	out, err := runCLI(t, "cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if want := filepath.Join(xdg, appName); strings.TrimSpace(out) != want {
		t.Errorf("cache path = %q, want %q", out, want)
	}
}

func TestCacheClearCommand(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)
	t.Setenv(configEnv, "")

	out, err := runCLI(t, "cache", "clear")
	if err != nil {
		t.Fatalf("cache clear on missing dir: %v", err)
	}
	if !strings.Contains(out, "Cache is empty") {
		t.Errorf("output = %q, want empty notice", out)
	}

	seedCache(t, xdg, 3, 2, time.Hour)

	out, err = runCLI(t, "cache", "clear", "--kind", "render")
	if err != nil {
		t.Fatalf("cache clear --kind render: %v", err)
	}
	if !strings.Contains(out, "Cleared 2 cached entries") {
		t.Errorf("output = %q", out)
	}

	out, err = runCLI(t, "cache", "clear")
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if !strings.Contains(out, "Cleared 3 cached entries") {
		t.Errorf("output = %q", out)
	}
}

func TestCacheClearExpired(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)
	t.Setenv(configEnv, "")

	seedCache(t, xdg, 2, 0, time.Nanosecond)
	seedCache(t, xdg, 0, 1, 0)
	time.Sleep(time.Millisecond)

	out, err := runCLI(t, "cache", "clear", "--expired")
	if err != nil {
		t.Fatalf("cache clear --expired: %v", err)
	}
	if !strings.Contains(out, "Pruned 2 cached entries") {
		t.Errorf("output = %q", out)
	}
}

func TestCacheClearUnknownKind(t *testing.T) {
	isolate(t)
	_, err := runCLI(t, "cache", "clear", "--kind", "tower")
	if !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
}

func TestCacheStatsCommand(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)
	t.Setenv(configEnv, "")

	seedCache(t, xdg, 2, 1, time.Hour)
	out, err := runCLI(t, "cache", "stats")
	if err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	for _, want := range []string{"2 entries", "1 entries"} {
		if !strings.Contains(out, want) {
			t.Errorf("stats missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "expired") {
		t.Errorf("fresh cache reported expired entries:\n%s", out)
	}
}

func TestCacheStatsRenderTTL(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)
	cfgPath := filepath.Join(t.TempDir(), "burrow.toml")
	if err := os.WriteFile(cfgPath, []byte("[cache]\nrender_ttl = \"1ms\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(configEnv, cfgPath)

	seedCache(t, xdg, 1, 1, 0)
	time.Sleep(5 * time.Millisecond)

	out, err := runCLI(t, "cache", "stats")
	if err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	if !strings.Contains(out, "1 expired") || !strings.Contains(out, "cache clear --expired") {
		t.Errorf("drawing past render_ttl not reported:\n%s", out)
	}
}

func TestSolveWithoutCacheLeavesNoEntries(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)
	t.Setenv(configEnv, "")

	if _, err := runCLI(t, "solve", writeBoard(t, twoRooms), "--no-cache"); err != nil {
		t.Fatalf("solve: %v", err)
	}
	if _, err := os.Stat(filepath.Join(xdg, appName, cache.KindSolve)); !os.IsNotExist(err) {
		t.Errorf("--no-cache wrote answers: %v", err)
	}
}

func TestCacheClearRemoteBackend(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "burrow.toml")
	if err := os.WriteFile(cfgPath, []byte("[cache]\nbackend = \"redis\"\nredis_url = \"redis://localhost:6379\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := runCLI(t, "--config", cfgPath, "cache", "clear")
	if !errs.Is(err, errs.ErrCodeUnsupported) {
		t.Errorf("err = %v, want UNSUPPORTED", err)
	}
}
