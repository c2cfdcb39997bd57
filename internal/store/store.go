package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/mmcdole/reel/internal/domain"
)

// Bucket names
var (
	bucketSettings = []byte("settings")
	bucketRecent   = []byte("recent")
)

const recentKey = "preset"

// SettingsStore persists player settings per timeline using BoltDB.
type SettingsStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte
}

// NewSettingsStore opens the settings database in dir. An empty dir keeps
// settings in memory only.
func NewSettingsStore(dir string) (*SettingsStore, error) {
	if dir == "" {
		// Memory-only mode (no persistence)
		return &SettingsStore{cache: make(map[string][]byte)}, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "reel.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	// Create buckets
	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketSettings, bucketRecent} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &SettingsStore{db: db, cache: make(map[string][]byte)}, nil
}

func (s *SettingsStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Generic helpers ===

func (s *SettingsStore) get(bucket []byte, key string, dest any) bool {
	cacheKey := string(bucket) + ":" + key

	// Check memory cache first
	s.mu.RLock()
	if data, ok := s.cache[cacheKey]; ok {
		s.mu.RUnlock()
		return json.Unmarshal(data, dest) == nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return false
	}

	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})

	if data == nil {
		return false
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	return json.Unmarshal(data, dest) == nil
}

func (s *SettingsStore) set(bucket []byte, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	cacheKey := string(bucket) + ":" + key

	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil // Memory-only mode
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		return b.Put([]byte(key), data)
	})
}

func (s *SettingsStore) delete(bucket []byte, key string) error {
	cacheKey := string(bucket) + ":" + key

	s.mu.Lock()
	delete(s.cache, cacheKey)
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	})
}

func settingsKey(preset string) string {
	return strings.ToLower(strings.TrimSpace(preset))
}

// === Settings ===

// Load returns the settings saved for a preset
func (s *SettingsStore) Load(preset string) (domain.PlayerSettings, bool) {
	var settings domain.PlayerSettings
	ok := s.get(bucketSettings, settingsKey(preset), &settings)
	return settings, ok
}

// Save stores the settings for a preset and remembers it as the most
// recently played one.
func (s *SettingsStore) Save(preset string, settings domain.PlayerSettings) error {
	if err := s.set(bucketSettings, settingsKey(preset), settings); err != nil {
		return fmt.Errorf("save settings for %q: %w", preset, err)
	}
	return s.set(bucketRecent, recentKey, preset)
}

// Forget removes the settings of a preset
func (s *SettingsStore) Forget(preset string) error {
	return s.delete(bucketSettings, settingsKey(preset))
}

// LastPreset returns the most recently saved preset name
func (s *SettingsStore) LastPreset() (string, bool) {
	var name string
	ok := s.get(bucketRecent, recentKey, &name)
	return name, ok && name != ""
}

// Presets lists every preset with stored settings
func (s *SettingsStore) Presets() ([]string, error) {
	if s.db == nil {
		s.mu.RLock()
		defer s.mu.RUnlock()
		var names []string
		prefix := string(bucketSettings) + ":"
		for k := range s.cache {
			if name, ok := strings.CutPrefix(k, prefix); ok {
				names = append(names, name)
			}
		}
		return names, nil
	}

	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSettings)
		if b == nil {
			return errors.New("settings bucket missing")
		}
		return b.ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	return names, err
}
