package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStore(t *testing.T) {
	tests := []struct {
		name    string
		ttl     time.Duration
		actions func(dir string, s *Store, t *testing.T)
	}{
		{
			name: "save and load",
			ttl:  time.Minute,
			actions: func(dir string, s *Store, t *testing.T) {
				if err := s.Save("Orders", json.RawMessage(`[{"id":"1"}]`)); err != nil {
					t.Fatalf("save: %v", err)
				}
				data, ok := s.Load("Orders")
				if !ok || string(data) != `[{"id":"1"}]` {
					t.Errorf("expected saved snapshot, got %s ok=%v", data, ok)
				}
			},
		},
		{
			name: "missing collection",
			ttl:  time.Minute,
			actions: func(dir string, s *Store, t *testing.T) {
				if _, ok := s.Load("Clients"); ok {
					t.Errorf("expected missing collection to report ok=false")
				}
			},
		},
		{
			name: "stale entry not served",
			ttl:  time.Millisecond * 30,
			actions: func(dir string, s *Store, t *testing.T) {
				s.Save("Orders", json.RawMessage(`[]`))
				time.Sleep(time.Millisecond * 40)
				if _, ok := s.Load("Orders"); ok {
					t.Errorf("expected stale entry to report ok=false")
				}
			},
		},
		{
			name: "survives reopen",
			ttl:  time.Minute,
			actions: func(dir string, s *Store, t *testing.T) {
				s.Save("Orders", json.RawMessage(`[{"id":"a"}]`))
				reopened, err := Open(dir, "ordersync_", time.Minute)
				if err != nil {
					t.Fatalf("reopen: %v", err)
				}
				data, ok := reopened.Load("Orders")
				if !ok || string(data) != `[{"id":"a"}]` {
					t.Errorf("expected snapshot after reopen, got %s ok=%v", data, ok)
				}
			},
		},
		{
			name: "corrupt file falls back to empty",
			ttl:  time.Minute,
			actions: func(dir string, s *Store, t *testing.T) {
				path := filepath.Join(dir, "ordersync_Orders.json")
				if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
					t.Fatal(err)
				}
				reopened, err := Open(dir, "ordersync_", time.Minute)
				if err != nil {
					t.Fatalf("reopen: %v", err)
				}
				if _, ok := reopened.Load("Orders"); ok {
					t.Errorf("expected corrupt entry to report ok=false")
				}
			},
		},
		{
			name: "patch inserts and replaces by id",
			ttl:  time.Minute,
			actions: func(dir string, s *Store, t *testing.T) {
				s.Save("Orders", json.RawMessage(`[{"id":"1","status":"NEW"}]`))
				s.Patch("Orders", "2", json.RawMessage(`{"id":"2","status":"NEW"}`))
				s.Patch("Orders", "1", json.RawMessage(`{"id":"1","status":"ORDERED"}`))
				data, _ := s.Load("Orders")
				want := `[{"id":"1","status":"ORDERED"},{"id":"2","status":"NEW"}]`
				if string(data) != want {
					t.Errorf("expected %s, got %s", want, data)
				}
			},
		},
		{
			name: "remove deletes by id",
			ttl:  time.Minute,
			actions: func(dir string, s *Store, t *testing.T) {
				s.Save("Orders", json.RawMessage(`[{"id":"1"},{"id":"2"}]`))
				s.Remove("Orders", "1")
				data, _ := s.Load("Orders")
				if string(data) != `[{"id":"2"}]` {
					t.Errorf("expected row removed, got %s", data)
				}
			},
		},
		{
			name: "clear wipes entries and files",
			ttl:  time.Minute,
			actions: func(dir string, s *Store, t *testing.T) {
				s.Save("Orders", json.RawMessage(`[]`))
				if err := s.Clear(); err != nil {
					t.Fatalf("clear: %v", err)
				}
				if _, ok := s.Load("Orders"); ok {
					t.Errorf("expected cleared store to be empty")
				}
				if _, err := os.Stat(filepath.Join(dir, "ordersync_Orders.json")); !os.IsNotExist(err) {
					t.Errorf("expected cache file removed")
				}
			},
		},
		{
			name: "subscribers notified on change",
			ttl:  time.Minute,
			actions: func(dir string, s *Store, t *testing.T) {
				var got []string
				s.Subscribe(func(collection string) { got = append(got, collection) })
				s.Save("Orders", json.RawMessage(`[]`))
				s.Patch("Orders", "1", json.RawMessage(`{"id":"1"}`))
				if len(got) != 2 || got[0] != "Orders" {
					t.Errorf("expected two notifications for Orders, got %v", got)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			s, err := Open(dir, "ordersync_", tt.ttl)
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			tt.actions(dir, s, t)
		})
	}
}
