package appdirs

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestResolvePortable(t *testing.T) {
	deps := resolveDeps{
		goos:       "linux",
		getenv:     func(string) string { return "1" },
		executable: func() (string, error) { return filepath.Join("opt", "clipforge", "clipforge"), nil },
	}

	paths, err := resolve(deps)
	if err != nil {
		t.Fatalf("resolve() returned error: %v", err)
	}
	if !paths.Portable {
		t.Fatal("resolve() Portable = false, want true")
	}

	wantConfig := filepath.Join("opt", "clipforge", "data", "config", "config.toml")
	if paths.ConfigFile != wantConfig {
		t.Fatalf("ConfigFile = %q, want %q", paths.ConfigFile, wantConfig)
	}
}

func TestResolvePortableExecutableError(t *testing.T) {
	deps := resolveDeps{
		goos:       "linux",
		getenv:     func(string) string { return "true" },
		executable: func() (string, error) { return "", errors.New("no executable") },
	}

	if _, err := resolve(deps); err == nil {
		t.Fatal("resolve() returned nil error, want executable error")
	}
}

func TestResolveNonWindowsDefaults(t *testing.T) {
	deps := resolveDeps{
		goos:   "linux",
		getenv: func(string) string { return "" },
	}

	paths, err := resolve(deps)
	if err != nil {
		t.Fatalf("resolve() returned error: %v", err)
	}
	if paths.ConfigFile != filepath.Join("config", "config.toml") {
		t.Fatalf("ConfigFile = %q, want config/config.toml", paths.ConfigFile)
	}
	if paths.OutputDir != "output" {
		t.Fatalf("OutputDir = %q, want %q", paths.OutputDir, "output")
	}
}

func TestResolveWindowsEmptyConfigDir(t *testing.T) {
	deps := resolveDeps{
		goos:          "windows",
		getenv:        func(string) string { return "" },
		userConfigDir: func() (string, error) { return "  ", nil },
		userCacheDir:  func() (string, error) { return "cache-root", nil },
	}

	if _, err := resolve(deps); err == nil {
		t.Fatal("resolve() returned nil error, want empty config dir error")
	}
}

func TestIsPortableEnabled(t *testing.T) {
	for _, enabled := range []string{"1", "true", "YES", " on "} {
		if !isPortableEnabled(enabled) {
			t.Fatalf("isPortableEnabled(%q) = false, want true", enabled)
		}
	}
	for _, disabled := range []string{"", "0", "false", "off", "maybe"} {
		if isPortableEnabled(disabled) {
			t.Fatalf("isPortableEnabled(%q) = true, want false", disabled)
		}
	}
}

func TestRuntimePaths(t *testing.T) {
	paths := Paths{OutputDir: "out", CacheDir: "cachedir"}

	if got, want := ClipsDirFor(paths, "apex"), filepath.Join("out", "clips", "apex"); got != want {
		t.Fatalf("ClipsDirFor() = %q, want %q", got, want)
	}
	if got, want := MetadataDirFor(paths, "apex"), filepath.Join("out", "metadata", "apex"); got != want {
		t.Fatalf("MetadataDirFor() = %q, want %q", got, want)
	}
	if got, want := DBPathFor(paths), filepath.Join("cachedir", "clipforge.db"); got != want {
		t.Fatalf("DBPathFor() = %q, want %q", got, want)
	}

	// Empty dirs fall back to safe defaults
	if got, want := ClipsRootFor(Paths{}), filepath.Join(".", "clips"); got != filepath.Clean(want) && got != "clips" {
		t.Fatalf("ClipsRootFor(empty) = %q", got)
	}
	if got, want := DBPathFor(Paths{}), filepath.Join("cache", "clipforge.db"); got != want {
		t.Fatalf("DBPathFor(empty) = %q, want %q", got, want)
	}
}
