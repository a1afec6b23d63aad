package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Entry — снапшот коллекции на диске: {timestamp, data}.
type Entry struct {
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Store — локальный кеш снапшотов коллекций, переживающий рестарт.
// Ключ файла: <prefix><CollectionName>.json. Битые и устаревшие
// записи не отдаются: читатель получает ok=false и делает полный
// перезапрос из удалённого хранилища.
type Store struct {
	dir    string
	prefix string
	ttl    time.Duration

	mu        sync.Mutex
	entries   map[string]Entry
	listeners []func(collection string)
}

func Open(dir, prefix string, ttl time.Duration) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	s := &Store{
		dir:     dir,
		prefix:  prefix,
		ttl:     ttl,
		entries: make(map[string]Entry),
	}
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache dir: %w", err)
	}
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		name := f.Name()
		if len(name) <= len(prefix)+len(".json") || name[:len(prefix)] != prefix {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		var e Entry
		// Битый файл просто пропускаем: коллекция начнёт с пустого состояния.
		if err := json.Unmarshal(raw, &e); err != nil {
			continue
		}
		collection := name[len(prefix) : len(name)-len(".json")]
		s.entries[collection] = e
	}
	return s, nil
}

// Subscribe регистрирует читателя, которому сообщается об изменении коллекции.
func (s *Store) Subscribe(fn func(collection string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Load возвращает снапшот коллекции. ok=false для отсутствующей
// или устаревшей записи.
func (s *Store) Load(collection string) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[collection]
	if !ok {
		return nil, false
	}
	if s.ttl > 0 && time.Since(e.Timestamp) > s.ttl {
		return nil, false
	}
	return e.Data, true
}

// Save заменяет снапшот коллекции целиком и сбрасывает его на диск.
func (s *Store) Save(collection string, data json.RawMessage) error {
	s.mu.Lock()
	e := Entry{Timestamp: time.Now(), Data: data}
	s.entries[collection] = e
	listeners := make([]func(string), len(s.listeners))
	copy(listeners, s.listeners)
	err := s.flush(collection, e)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(collection)
	}
	return err
}

type row struct {
	ID string `json:"id"`
}

// Patch применяет построчное изменение: вставку или замену по id,
// без полного перезапроса коллекции.
func (s *Store) Patch(collection, id string, payload json.RawMessage) error {
	return s.rewrite(collection, func(rows []json.RawMessage) []json.RawMessage {
		for i, r := range rows {
			if rowID(r) == id {
				rows[i] = payload
				return rows
			}
		}
		return append(rows, payload)
	})
}

// Remove удаляет строку по id.
func (s *Store) Remove(collection, id string) error {
	return s.rewrite(collection, func(rows []json.RawMessage) []json.RawMessage {
		out := rows[:0]
		for _, r := range rows {
			if rowID(r) != id {
				out = append(out, r)
			}
		}
		return out
	})
}

func rowID(raw json.RawMessage) string {
	var r row
	if err := json.Unmarshal(raw, &r); err != nil {
		return ""
	}
	return r.ID
}

func (s *Store) rewrite(collection string, fn func([]json.RawMessage) []json.RawMessage) error {
	s.mu.Lock()
	var rows []json.RawMessage
	if e, ok := s.entries[collection]; ok && len(e.Data) > 0 {
		// Нечитаемый снапшот заменяется пустой коллекцией.
		_ = json.Unmarshal(e.Data, &rows)
	}
	rows = fn(rows)
	data, err := json.Marshal(rows)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	e := Entry{Timestamp: time.Now(), Data: data}
	s.entries[collection] = e
	listeners := make([]func(string), len(s.listeners))
	copy(listeners, s.listeners)
	err = s.flush(collection, e)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(collection)
	}
	return err
}

// Clear очищает кеш и удаляет файлы. Вызывается при завершении сессии.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []error
	for collection := range s.entries {
		if err := os.Remove(s.path(collection)); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	s.entries = make(map[string]Entry)
	return errors.Join(errs...)
}

func (s *Store) path(collection string) string {
	return filepath.Join(s.dir, s.prefix+collection+".json")
}

// flush пишет снапшот атомарно: во временный файл с переименованием.
func (s *Store) flush(collection string, e Entry) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	tmp := s.path(collection) + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return os.Rename(tmp, s.path(collection))
}
