package archive

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/nao1215/gopherdl/internal/gopher"
)

// testLogger returns a logger that stays quiet during tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func fileResource(selector string) *gopher.Resource {
	return &gopher.Resource{
		Type:     gopher.TypeTextFile,
		Text:     "file",
		Selector: selector,
		Host:     "example.org",
		Port:     70,
	}
}

func menuResource(selector string) *gopher.Resource {
	return &gopher.Resource{
		Type:     gopher.TypeMenu,
		Text:     "menu",
		Selector: selector,
		Host:     "example.org",
		Port:     70,
	}
}

// TestStorePath tests mirror tree locations.
func TestStorePath(t *testing.T) {
	t.Parallel()

	t.Run("file resolves under its host directory", func(t *testing.T) {
		t.Parallel()

		store := NewStore("/tmp/archive", WithLogger(testLogger()))
		got := store.Path(fileResource("/docs/readme.txt"))
		want := filepath.Join("/tmp/archive", "example.org", "docs", "readme.txt")
		if got != want {
			t.Errorf("Path() = %q, want %q", got, want)
		}
	})

	t.Run("menu resolves to a gophermap file", func(t *testing.T) {
		t.Parallel()

		store := NewStore("/tmp/archive", WithLogger(testLogger()))
		got := store.Path(menuResource("/docs"))
		want := filepath.Join("/tmp/archive", "example.org", "docs", "gophermap")
		if got != want {
			t.Errorf("Path() = %q, want %q", got, want)
		}
	})
}

// TestStorePersist tests writing content into the tree.
func TestStorePersist(t *testing.T) {
	t.Parallel()

	t.Run("writes file and parent directories", func(t *testing.T) {
		t.Parallel()

		store := NewStore(t.TempDir(), WithLogger(testLogger()))
		res := fileResource("/deep/nested/doc.txt")

		written, err := store.Persist(res, []byte("hello gopher"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !written {
			t.Fatal("expected content to be written")
		}

		data, err := os.ReadFile(store.Path(res))
		if err != nil {
			t.Fatalf("failed to read back: %v", err)
		}
		if string(data) != "hello gopher" {
			t.Errorf("content = %q, want %q", data, "hello gopher")
		}
	})

	t.Run("keeps existing file without clobber", func(t *testing.T) {
		t.Parallel()

		store := NewStore(t.TempDir(), WithLogger(testLogger()))
		res := fileResource("/doc.txt")

		if _, err := store.Persist(res, []byte("first")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		written, err := store.Persist(res, []byte("second"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if written {
			t.Error("expected existing file to be kept")
		}

		data, err := os.ReadFile(store.Path(res))
		if err != nil {
			t.Fatalf("failed to read back: %v", err)
		}
		if string(data) != "first" {
			t.Errorf("content = %q, want %q", data, "first")
		}
	})

	t.Run("clobber overwrites existing file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		res := fileResource("/doc.txt")

		if _, err := NewStore(dir, WithLogger(testLogger())).Persist(res, []byte("first")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		store := NewStore(dir, WithClobber(true), WithLogger(testLogger()))
		written, err := store.Persist(res, []byte("second"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !written {
			t.Fatal("expected clobber to overwrite")
		}

		data, err := os.ReadFile(store.Path(res))
		if err != nil {
			t.Fatalf("failed to read back: %v", err)
		}
		if string(data) != "second" {
			t.Errorf("content = %q, want %q", data, "second")
		}
	})

	t.Run("empty content is not written", func(t *testing.T) {
		t.Parallel()

		store := NewStore(t.TempDir(), WithLogger(testLogger()))
		res := fileResource("/empty.txt")

		written, err := store.Persist(res, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if written {
			t.Error("expected empty content to be skipped")
		}
		if store.Exists(res) {
			t.Error("expected no file on disk")
		}
	})

	t.Run("menu persists as gophermap inside its directory", func(t *testing.T) {
		t.Parallel()

		store := NewStore(t.TempDir(), WithLogger(testLogger()))
		res := menuResource("/docs")

		written, err := store.Persist(res, []byte("1Sub\t/docs/sub\texample.org\t70\r\n"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !written {
			t.Fatal("expected menu to be written")
		}

		if filepath.Base(store.Path(res)) != gopher.GophermapFileName {
			t.Errorf("expected gophermap filename, got %q", store.Path(res))
		}
		if _, err := os.Stat(store.Path(res)); err != nil {
			t.Errorf("expected gophermap on disk: %v", err)
		}
	})
}

// TestStoreExists tests presence checks.
func TestStoreExists(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir(), WithLogger(testLogger()))
	res := fileResource("/doc.txt")

	if store.Exists(res) {
		t.Error("expected Exists to be false before persisting")
	}
	if _, err := store.Persist(res, []byte("content")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !store.Exists(res) {
		t.Error("expected Exists to be true after persisting")
	}
}

// TestStoreReadLocal tests reading persisted content back.
func TestStoreReadLocal(t *testing.T) {
	t.Parallel()

	t.Run("round-trips persisted bytes", func(t *testing.T) {
		t.Parallel()

		store := NewStore(t.TempDir(), WithLogger(testLogger()))
		res := menuResource("/")

		menu := []byte("0File\t/file.txt\texample.org\t70\r\n")
		if _, err := store.Persist(res, menu); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := store.ReadLocal(res)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(data) != string(menu) {
			t.Errorf("content = %q, want %q", data, menu)
		}
	})

	t.Run("missing file returns an error", func(t *testing.T) {
		t.Parallel()

		store := NewStore(t.TempDir(), WithLogger(testLogger()))
		if _, err := store.ReadLocal(fileResource("/missing.txt")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}
