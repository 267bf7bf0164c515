package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/custom-cache")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join("/tmp/custom-cache", appName); dir != want {
		t.Errorf("cacheDir() with XDG_CACHE_HOME = %q, want %q", dir, want)
	}
}

func TestDirs(t *testing.T) {
	t.Chdir(t.TempDir())

	c := New(os.Stderr, LogInfo)
	if got := c.dirs(); got != nil {
		t.Errorf("dirs() = %v, want none", got)
	}

	if err := os.Mkdir(localFiltersDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if got := c.dirs(); len(got) != 1 || got[0] != localFiltersDir {
		t.Errorf("dirs() = %v, want [%s]", got, localFiltersDir)
	}

	c.profile.FiltersDirs = []string{"/profile"}
	if got := c.dirs(); got[0] != "/profile" {
		t.Errorf("dirs() = %v, want the profile directory", got)
	}

	c.filtersDirs = []string{"/flag"}
	if got := c.dirs(); got[0] != "/flag" {
		t.Errorf("dirs() = %v, want the flag directory", got)
	}
}
