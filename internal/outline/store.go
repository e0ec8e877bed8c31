package outline

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dgallion1/docoutline/internal/layout"
)

// ErrNotFound is returned by Store.Load when no outline is persisted for a
// document.
var ErrNotFound = errors.New("outline not found")

// Store persists outlines as indented JSON files, one per document, named
// after the document's full base name plus .json ("report.pdf.json") so
// documents differing only by extension do not collide.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create outline dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory the store writes to.
func (s *Store) Dir() string { return s.dir }

// PathFor returns the JSON path for a document filename.
func (s *Store) PathFor(filename string) string {
	return filepath.Join(s.dir, filepath.Base(filename)+".json")
}

// Save writes o under its Filename, replacing any previous version.
func (s *Store) Save(o Outline) error {
	if o.Filename == "" {
		return fmt.Errorf("save outline: missing filename")
	}
	data, err := Marshal(o)
	if err != nil {
		return fmt.Errorf("save outline: %w", err)
	}

	path := s.PathFor(o.Filename)
	tmp, err := os.CreateTemp(s.dir, ".outline-*.json")
	if err != nil {
		return fmt.Errorf("save outline: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("save outline: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("save outline: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("save outline: %w", err)
	}
	return nil
}

// Load reads the outline persisted for filename. A file recorded under a
// different document name is reported as ErrNotFound.
func (s *Store) Load(filename string) (Outline, error) {
	name := filepath.Base(filename)
	o, err := readOutline(s.PathFor(name))
	if errors.Is(err, os.ErrNotExist) {
		return Outline{}, fmt.Errorf("%s: %w", filename, ErrNotFound)
	}
	if err != nil {
		return Outline{}, fmt.Errorf("load outline %s: %w", filename, err)
	}
	if o.Filename == "" {
		o.Filename = name
	}
	if o.Filename != name {
		return Outline{}, fmt.Errorf("%s: stored as %s: %w", filename, o.Filename, ErrNotFound)
	}
	return o, nil
}

func readOutline(path string) (Outline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Outline{}, err
	}
	var o Outline
	if err := json.Unmarshal(data, &o); err != nil {
		return Outline{}, fmt.Errorf("decode: %w", err)
	}
	if o.Outline == nil {
		o.Outline = []layout.Heading{}
	}
	return o, nil
}

// Summary describes one persisted outline without its headings.
type Summary struct {
	Filename   string `json:"filename"`
	Title      string `json:"title"`
	Headings   int    `json:"headings"`
	TotalPages int    `json:"total_pages"`
	Success    bool   `json:"success"`
}

// List summarizes every persisted outline, sorted by filename. Files that
// fail to decode are skipped.
func (s *Store) List() ([]Summary, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list outlines: %w", err)
	}
	out := []Summary{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".json" || strings.HasPrefix(name, ".") {
			continue
		}
		o, err := readOutline(filepath.Join(s.dir, name))
		if err != nil {
			continue
		}
		if o.Filename == "" {
			o.Filename = strings.TrimSuffix(name, ".json")
		}
		out = append(out, Summary{
			Filename:   o.Filename,
			Title:      o.Title,
			Headings:   len(o.Outline),
			TotalPages: o.TotalPages,
			Success:    o.Success,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Filename < out[j].Filename })
	return out, nil
}

// Delete removes the outline persisted for filename.
func (s *Store) Delete(filename string) error {
	err := os.Remove(s.PathFor(filename))
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s: %w", filename, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("delete outline: %w", err)
	}
	return nil
}

// Marshal renders an outline as indented JSON without HTML escaping.
func Marshal(o Outline) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(o); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
