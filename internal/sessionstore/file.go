package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/angelmondragon/shopdash/pkg/logger"
)

// File stores every profile's fields in one JSON document:
//
//	{"profiles": {"default": {"token": "...", "user": "{...}"}}}
type File struct {
	path    string
	profile string
	logg    *logger.Logger
	mu      sync.Mutex
}

type fileDocument struct {
	Profiles map[string]map[string]string `json:"profiles"`
}

func NewFile(path, profile string, logg *logger.Logger) (*File, error) {
	if path == "" {
		return nil, fmt.Errorf("session path is required")
	}
	if profile == "" {
		profile = "default"
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &File{path: path, profile: profile, logg: logg}, nil
}

func (f *File) Get(ctx context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.readDocument(ctx)
	if err != nil {
		return "", false, err
	}
	v, ok := doc.Profiles[f.profile][key]
	return v, ok, nil
}

func (f *File) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.readDocument(ctx)
	if err != nil {
		return err
	}
	fields := doc.Profiles[f.profile]
	if fields == nil {
		fields = map[string]string{}
		doc.Profiles[f.profile] = fields
	}
	fields[key] = value
	return f.writeDocument(doc)
}

func (f *File) Delete(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.readDocument(ctx)
	if err != nil {
		return err
	}
	fields := doc.Profiles[f.profile]
	if len(fields) == 0 {
		return nil
	}
	for _, k := range keys {
		delete(fields, k)
	}
	if len(fields) == 0 {
		delete(doc.Profiles, f.profile)
	}
	return f.writeDocument(doc)
}

// readDocument treats a missing or corrupt file as empty.
func (f *File) readDocument(ctx context.Context) (fileDocument, error) {
	doc := fileDocument{Profiles: map[string]map[string]string{}}
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return doc, fmt.Errorf("reading session file: %w", err)
	}
	if len(raw) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		f.logg.Warn(f.logg.WithField(ctx, "path", f.path), "session file is corrupt, starting empty")
		return fileDocument{Profiles: map[string]map[string]string{}}, nil
	}
	if doc.Profiles == nil {
		doc.Profiles = map[string]map[string]string{}
	}
	return doc, nil
}

func (f *File) writeDocument(doc fileDocument) error {
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session file: %w", err)
	}
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".session-*.json")
	if err != nil {
		return fmt.Errorf("creating temp session file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing session file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("securing session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing session file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("replacing session file: %w", err)
	}
	return nil
}
