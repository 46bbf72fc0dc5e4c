// Package storage keeps an on-disk archive of screenshot captures so
// automation runs can be reviewed after the fact. Each capture is a
// single JSON file named by a sortable timestamped id; the archive
// prunes itself down to a configured number of entries.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// CaptureRecord is the on-disk form of one archived capture.
type CaptureRecord struct {
	ID           string    `json:"id"`
	WindowLabel  string    `json:"window_label"`
	Strategy     string    `json:"strategy"`
	Degraded     bool      `json:"degraded"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	ImageDataURL string    `json:"image_data_url"`
	Timestamp    time.Time `json:"timestamp"`
}

// CaptureInfo is the listing form of a capture, without the image payload.
type CaptureInfo struct {
	ID          string    `json:"id"`
	WindowLabel string    `json:"window_label"`
	Strategy    string    `json:"strategy"`
	Degraded    bool      `json:"degraded"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	Timestamp   time.Time `json:"timestamp"`
}

var safeNamePattern = regexp.MustCompile(`^[A-Za-z0-9_\-\.]+$`)

// Archive stores capture records under a single directory, keeping at
// most maxEntries of them.
type Archive struct {
	mu         sync.Mutex
	dir        string
	maxEntries int
}

// NewArchive creates the archive directory if needed.
func NewArchive(dir string, maxEntries int) (*Archive, error) {
	if dir == "" {
		return nil, errors.New("capture archive dir is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	if maxEntries <= 0 {
		maxEntries = 50
	}
	return &Archive{dir: dir, maxEntries: maxEntries}, nil
}

// Save assigns rec a fresh id, writes it, and prunes the oldest entries
// past the cap. The assigned id is returned.
func (a *Archive) Save(rec CaptureRecord) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	uid := time.Now().Format("2006-01-02_15-04-05") + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	rec.ID = uid
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(a.dir, uid+".json"), data, 0o644); err != nil {
		return "", err
	}
	return uid, a.prune()
}

// List returns capture metadata, newest first. Unreadable entries are
// skipped rather than failing the whole listing.
func (a *Archive) List() ([]CaptureInfo, error) {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return nil, err
	}
	list := []CaptureInfo{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		rec, err := readCapture(filepath.Join(a.dir, entry.Name()))
		if err != nil {
			continue
		}
		list = append(list, CaptureInfo{
			ID:          rec.ID,
			WindowLabel: rec.WindowLabel,
			Strategy:    rec.Strategy,
			Degraded:    rec.Degraded,
			Width:       rec.Width,
			Height:      rec.Height,
			Timestamp:   rec.Timestamp,
		})
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Timestamp.After(list[j].Timestamp)
	})
	return list, nil
}

// Get returns one record by id. A missing record wraps fs.ErrNotExist.
func (a *Archive) Get(id string) (CaptureRecord, error) {
	path, err := a.capturePath(id)
	if err != nil {
		return CaptureRecord{}, err
	}
	return readCapture(path)
}

// Delete removes one record by id.
func (a *Archive) Delete(id string) error {
	path, err := a.capturePath(id)
	if err != nil {
		return err
	}
	return os.Remove(path)
}

func (a *Archive) capturePath(id string) (string, error) {
	if !safeNamePattern.MatchString(id) {
		return "", fmt.Errorf("invalid capture id %q", id)
	}
	return filepath.Join(a.dir, id+".json"), nil
}

// prune removes the oldest entries until at most maxEntries remain. The
// timestamped id prefix makes lexicographic order chronological.
func (a *Archive) prune() error {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return err
	}
	names := []string{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	if len(names) <= a.maxEntries {
		return nil
	}
	sort.Strings(names)
	for _, name := range names[:len(names)-a.maxEntries] {
		if err := os.Remove(filepath.Join(a.dir, name)); err != nil {
			return err
		}
	}
	return nil
}

func readCapture(path string) (CaptureRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return CaptureRecord{}, fmt.Errorf("capture not found: %w", fs.ErrNotExist)
		}
		return CaptureRecord{}, err
	}
	var rec CaptureRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return CaptureRecord{}, err
	}
	return rec, nil
}
