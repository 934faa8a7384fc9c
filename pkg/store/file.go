package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goliatone/go-formlayout/pkg/layout"
	"github.com/goliatone/go-formlayout/pkg/layoutset"
)

const (
	layoutExt        = ".json"
	settingsFileName = "Settings.json"
)

// FileStore keeps layouts as JSON files under
// <root>/<org>/<app>/App/ui/<set>/layouts/<name>.json.
type FileStore struct {
	root string
	opts options
}

var _ Store = (*FileStore)(nil)

// NewFileStore returns a FileStore rooted at root.
func NewFileStore(root string, opts ...Option) *FileStore {
	return &FileStore{root: filepath.Clean(root), opts: resolve(opts)}
}

// SetDir returns the directory holding the layout set.
func (s *FileStore) SetDir(ref Ref) string {
	return filepath.Join(s.root, ref.Org, ref.App, "App", "ui", ref.LayoutSet)
}

func (s *FileStore) layoutsDir(ref Ref) string {
	return filepath.Join(s.SetDir(ref), "layouts")
}

func (s *FileStore) layoutPath(ref Ref, name string) string {
	return filepath.Join(s.layoutsDir(ref), name+layoutExt)
}

// LoadLayout reads and decodes a single layout.
func (s *FileStore) LoadLayout(ctx context.Context, ref Ref, name string) (*layout.ExternalFormLayout, error) {
	if err := checkLayoutRef(ref, name); err != nil {
		return nil, err
	}
	data, err := s.read(ctx, s.layoutPath(ref, name))
	if err != nil {
		return nil, fmt.Errorf("store: load layout %q: %w", name, err)
	}
	external, err := layout.ParseExternal(data)
	if err != nil {
		return nil, fmt.Errorf("store: load layout %q: %w", name, err)
	}
	return external, nil
}

// SaveLayout writes the layout as indented JSON.
func (s *FileStore) SaveLayout(ctx context.Context, ref Ref, name string, external *layout.ExternalFormLayout) error {
	if err := checkLayoutRef(ref, name); err != nil {
		return err
	}
	data, err := encodeDocument(external)
	if err != nil {
		return fmt.Errorf("store: save layout %q: %w", name, err)
	}
	if err := s.write(ctx, s.layoutPath(ref, name), data); err != nil {
		return fmt.Errorf("store: save layout %q: %w", name, err)
	}
	s.opts.logger.Debug("layout saved", slog.String("ref", ref.String()), slog.String("layout", name))
	return nil
}

// DeleteLayout removes the layout file.
func (s *FileStore) DeleteLayout(ctx context.Context, ref Ref, name string) error {
	if err := checkLayoutRef(ref, name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(s.layoutPath(ref, name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("store: delete layout %q: %w", name, ErrNotFound)
		}
		return fmt.Errorf("store: delete layout %q: %w", name, err)
	}
	s.opts.logger.Debug("layout deleted", slog.String("ref", ref.String()), slog.String("layout", name))
	return nil
}

// ListLayouts returns the layout names of the set, sorted.
func (s *FileStore) ListLayouts(ctx context.Context, ref Ref) ([]string, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.layoutsDir(ref))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("store: list layouts: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), layoutExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), layoutExt))
	}
	sort.Strings(names)
	return names, nil
}

// LoadRaw returns every layout document of the set without decoding it.
func (s *FileStore) LoadRaw(ctx context.Context, ref Ref) (map[string][]byte, error) {
	names, err := s.ListLayouts(ctx, ref)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(names))
	for _, name := range names {
		data, err := s.read(ctx, s.layoutPath(ref, name))
		if err != nil {
			return nil, fmt.Errorf("store: load layout %q: %w", name, err)
		}
		out[name] = data
	}
	return out, nil
}

// LoadSettings reads Settings.json for the set.
func (s *FileStore) LoadSettings(ctx context.Context, ref Ref) (layoutset.Settings, error) {
	if err := ref.Validate(); err != nil {
		return layoutset.Settings{}, err
	}
	data, err := s.read(ctx, filepath.Join(s.SetDir(ref), settingsFileName))
	if err != nil {
		return layoutset.Settings{}, fmt.Errorf("store: load settings: %w", err)
	}
	var settings layoutset.Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return layoutset.Settings{}, fmt.Errorf("store: load settings: %w", err)
	}
	return settings, nil
}

// SaveSettings writes Settings.json for the set.
func (s *FileStore) SaveSettings(ctx context.Context, ref Ref, settings layoutset.Settings) error {
	if err := ref.Validate(); err != nil {
		return err
	}
	data, err := encodeDocument(settings)
	if err != nil {
		return fmt.Errorf("store: save settings: %w", err)
	}
	if err := s.write(ctx, filepath.Join(s.SetDir(ref), settingsFileName), data); err != nil {
		return fmt.Errorf("store: save settings: %w", err)
	}
	return nil
}

func (s *FileStore) read(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// write replaces path atomically through a temp file in the same directory.
func (s *FileStore) write(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

func encodeDocument(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
