package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

type record struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func backendsForTest(t *testing.T) map[string]Backend {
	t.Helper()

	file, err := NewFileBackend(filepath.Join(t.TempDir(), "docs"))
	if err != nil {
		t.Fatalf("open file backend: %v", err)
	}
	sqlite, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite backend: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Backend{
		BackendMemory: NewMemoryBackend(),
		BackendFile:   file,
		BackendSQLite: sqlite,
	}
}

func TestStorageRoundTrip(t *testing.T) {
	for name, backend := range backendsForTest(t) {
		t.Run(name, func(t *testing.T) {
			st := NewJSONStorage(backend)
			ctx := context.Background()

			items := []record{{Name: "a", Count: 1}, {Name: "b", Count: 2}}
			if err := st.Save(ctx, "tasks", items); err != nil {
				t.Fatalf("save: %v", err)
			}

			var got []record
			found, err := st.Load(ctx, "tasks", &got)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if !found {
				t.Fatal("expected document to be found")
			}
			if len(got) != 2 || got[1].Name != "b" || got[1].Count != 2 {
				t.Fatalf("unexpected items: %+v", got)
			}

			if err := st.Save(ctx, "tasks", []record{{Name: "c"}}); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			got = nil
			if _, err := st.Load(ctx, "tasks", &got); err != nil {
				t.Fatalf("reload: %v", err)
			}
			if len(got) != 1 || got[0].Name != "c" {
				t.Fatalf("expected overwritten document, got %+v", got)
			}
		})
	}
}

func TestStorageLoadMissingKeepsDefault(t *testing.T) {
	for name, backend := range backendsForTest(t) {
		t.Run(name, func(t *testing.T) {
			st := NewJSONStorage(backend)
			got := []record{{Name: "default"}}

			found, err := st.Load(context.Background(), "missing", &got)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if found {
				t.Fatal("expected missing document")
			}
			if len(got) != 1 || got[0].Name != "default" {
				t.Fatalf("expected default to be kept, got %+v", got)
			}
		})
	}
}

func TestStorageRemoveAndClear(t *testing.T) {
	for name, backend := range backendsForTest(t) {
		t.Run(name, func(t *testing.T) {
			st := NewJSONStorage(backend)
			ctx := context.Background()

			for _, key := range []string{"tasks", "users", "sessions"} {
				if err := st.Save(ctx, key, record{Name: key}); err != nil {
					t.Fatalf("save %s: %v", key, err)
				}
			}

			if err := st.Remove(ctx, "tasks"); err != nil {
				t.Fatalf("remove: %v", err)
			}
			if err := st.Remove(ctx, "tasks"); err != nil {
				t.Fatalf("remove missing should succeed: %v", err)
			}
			var got record
			if found, _ := st.Load(ctx, "tasks", &got); found {
				t.Fatal("expected tasks to be removed")
			}
			if found, _ := st.Load(ctx, "users", &got); !found {
				t.Fatal("expected users to remain")
			}

			if err := st.Clear(ctx); err != nil {
				t.Fatalf("clear: %v", err)
			}
			for _, key := range []string{"users", "sessions"} {
				if found, _ := st.Load(ctx, key, &got); found {
					t.Fatalf("expected %s to be cleared", key)
				}
			}
		})
	}
}

func TestStorageRejectsInvalidKeys(t *testing.T) {
	st := NewMemoryStorage()
	ctx := context.Background()
	for _, key := range []string{"", "../etc", "Tasks", "a/b"} {
		if err := st.Save(ctx, key, record{}); err == nil {
			t.Fatalf("expected invalid key %q to be rejected", key)
		}
	}
}

func TestMemoryBackendCopiesData(t *testing.T) {
	backend := NewMemoryBackend()
	ctx := context.Background()
	data := []byte(`{"name":"a"}`)
	if err := backend.Put(ctx, "doc", data); err != nil {
		t.Fatalf("put: %v", err)
	}
	data[2] = 'X'

	got, ok, err := backend.Get(ctx, "doc")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if string(got) != `{"name":"a"}` {
		t.Fatalf("expected stored copy, got %s", got)
	}
}

func TestFileBackendLeavesNoTempFiles(t *testing.T) {
	root := filepath.Join(t.TempDir(), "docs")
	backend, err := NewFileBackend(root)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := backend.Put(context.Background(), "tasks", []byte("[]")); err != nil {
		t.Fatalf("put: %v", err)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "tasks.json" {
		names := make([]string, 0, len(entries))
		for _, entry := range entries {
			names = append(names, entry.Name())
		}
		t.Fatalf("expected only tasks.json, got %v", names)
	}
}

func TestSQLiteMigrationPlan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.db")

	plan, err := SQLiteMigrationPlan(path)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if plan.CurrentVersion != 0 || len(plan.Pending) != len(migrations) {
		t.Fatalf("expected all migrations pending, got %+v", plan)
	}

	backend, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	backend.Close()

	plan, err = SQLiteMigrationPlan(path)
	if err != nil {
		t.Fatalf("plan after open: %v", err)
	}
	if plan.CurrentVersion != plan.AvailableVersion || len(plan.Pending) != 0 {
		t.Fatalf("expected no pending migrations, got %+v", plan)
	}
}

func TestOpenBackendUnknown(t *testing.T) {
	if _, err := OpenBackend(context.Background(), Options{Backend: "redis"}); err == nil {
		t.Fatal("expected unknown backend error")
	}
	backend, err := OpenBackend(context.Background(), Options{})
	if err != nil {
		t.Fatalf("default backend: %v", err)
	}
	if _, ok := backend.(*MemoryBackend); !ok {
		t.Fatalf("expected memory backend by default, got %T", backend)
	}
}
