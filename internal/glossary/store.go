package glossary

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	// SchemaVersion marks the on-disk envelope layout. Any stored envelope
	// carrying a different marker is discarded wholesale; there is no
	// migration path.
	SchemaVersion = "2"

	cacheEnvVar   = "TERMLENS_CACHE_DIR"
	cacheSubdir   = "termlens"
	cacheFileName = "glossary.json"
	defaultMaxAge = 30 * 24 * time.Hour
)

// Storage is the whole-value persistence contract for the cache envelope.
// There is no partial-update capability: Save always receives the full
// serialized envelope.
type Storage interface {
	Load() ([]byte, error)
	Save(data []byte) error
}

type fileStorage struct {
	path string
}

// NewFileStorage returns a Storage backed by a single file at path.
func NewFileStorage(path string) Storage {
	return &fileStorage{path: path}
}

func (f *fileStorage) Load() ([]byte, error) {
	return os.ReadFile(f.path)
}

func (f *fileStorage) Save(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0o644)
}

// DefaultStorePath resolves the cache file location, honoring the
// TERMLENS_CACHE_DIR override before falling back to the user cache dir.
func DefaultStorePath() string {
	dir := os.Getenv(cacheEnvVar)
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			base = filepath.Join(os.TempDir(), "termlens-cache")
		}
		dir = filepath.Join(base, cacheSubdir)
	}
	return filepath.Join(dir, cacheFileName)
}

type envelope struct {
	SchemaVersion string                 `json:"schemaVersion"`
	Explanations  map[string]Explanation `json:"explanations"`
	Detections    map[string]Detection   `json:"detections"`
	LastUpdated   time.Time              `json:"lastUpdated"`
}

func emptyEnvelope() envelope {
	return envelope{
		SchemaVersion: SchemaVersion,
		Explanations:  map[string]Explanation{},
		Detections:    map[string]Detection{},
	}
}

// Stats summarizes cache occupancy for the session meter.
type Stats struct {
	ExplanationCount     int
	DetectionCount       int
	ApproximateSizeBytes int
}

// Store keeps the explanation and detection caches, persisting the whole
// envelope on every mutation. The in-memory envelope stays authoritative for
// the session even when a persist attempt fails: storage errors are logged
// and swallowed, never surfaced to callers.
type Store struct {
	mu      sync.Mutex
	storage Storage
	env     envelope
	maxAge  time.Duration
	now     func() time.Time
}

// NewStore builds an empty store bound to storage. Call Load before first use
// to pick up a previously persisted envelope.
func NewStore(storage Storage) *Store {
	return &Store{
		storage: storage,
		env:     emptyEnvelope(),
		maxAge:  defaultMaxAge,
		now:     time.Now,
	}
}

// Load reads the persisted envelope. A missing file, unreadable payload, or
// schema-version mismatch all yield a fresh empty envelope; intentional data
// loss beats a migration layer here.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.storage.Load()
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[glossary] cache load failed, starting empty: %v", err)
		}
		return
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Printf("[glossary] cache payload corrupt, starting empty: %v", err)
		return
	}
	if env.SchemaVersion != SchemaVersion {
		log.Printf("[glossary] cache schema %q != %q, discarding envelope", env.SchemaVersion, SchemaVersion)
		return
	}
	if env.Explanations == nil {
		env.Explanations = map[string]Explanation{}
	}
	if env.Detections == nil {
		env.Detections = map[string]Detection{}
	}
	s.env = env
}

// Explanation returns the cached record for term, if a fresh one exists.
// A record older than the max age counts as absent and is purged on the spot.
func (s *Store) Explanation(term string) (Explanation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := NormalizeTerm(term)
	rec, ok := s.env.Explanations[key]
	if !ok {
		return Explanation{}, false
	}
	if s.expired(rec.CreatedAt) {
		delete(s.env.Explanations, key)
		s.persistLocked()
		return Explanation{}, false
	}
	return rec, true
}

// PutExplanation stores rec under the normalized term, stamping CreatedAt,
// and persists synchronously before returning. Stale records across the whole
// cache are swept opportunistically on the way.
func (s *Store) PutExplanation(term string, rec Explanation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.Term = strings.TrimSpace(term)
	rec.CreatedAt = s.now()
	s.sweepLocked()
	s.env.Explanations[NormalizeTerm(term)] = rec
	s.persistLocked()
}

// Detection returns the cached term list for fingerprint, honoring the same
// age bound as explanations.
func (s *Store) Detection(fp string) ([]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.env.Detections[fp]
	if !ok {
		return nil, false
	}
	if s.expired(rec.CachedAt) {
		delete(s.env.Detections, fp)
		s.persistLocked()
		return nil, false
	}
	return append([]string(nil), rec.Terms...), true
}

// PutDetection stores the detected term list keyed by fingerprint.
func (s *Store) PutDetection(fp string, terms []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.env.Detections[fp] = Detection{
		Fingerprint: fp,
		Terms:       append([]string(nil), terms...),
		CachedAt:    s.now(),
	}
	s.persistLocked()
}

// Stats reports current cache occupancy.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	size := 0
	if data, err := json.Marshal(s.env); err == nil {
		size = len(data)
	}
	return Stats{
		ExplanationCount:     len(s.env.Explanations),
		DetectionCount:       len(s.env.Detections),
		ApproximateSizeBytes: size,
	}
}

// Clear resets both record families and persists immediately.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.env = emptyEnvelope()
	s.persistLocked()
}

func (s *Store) expired(createdAt time.Time) bool {
	return createdAt.IsZero() || s.now().Sub(createdAt) > s.maxAge
}

func (s *Store) sweepLocked() {
	for key, rec := range s.env.Explanations {
		if s.expired(rec.CreatedAt) {
			delete(s.env.Explanations, key)
		}
	}
	for key, rec := range s.env.Detections {
		if s.expired(rec.CachedAt) {
			delete(s.env.Detections, key)
		}
	}
}

func (s *Store) persistLocked() {
	s.env.LastUpdated = s.now()
	data, err := json.MarshalIndent(s.env, "", "  ")
	if err != nil {
		log.Printf("[glossary] cache marshal failed: %v", err)
		return
	}
	if err := s.storage.Save(data); err != nil {
		log.Printf("[glossary] cache persist failed, staying in-memory: %v", err)
	}
}
