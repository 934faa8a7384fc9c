// Package loader reads layout documents from files, fs.FS entries or HTTP
// endpoints. Documents may be JSON or YAML.
package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formlayout/pkg/layout"
)

// Options configures a Loader.
type Options struct {
	FileSystem     fs.FS
	HTTPClient     *http.Client
	AllowHTTP      bool
	RequestTimeout time.Duration
}

// Loader fetches raw documents and decodes them into external layouts.
type Loader struct {
	fs      fs.FS
	http    *http.Client
	timeout time.Duration
}

// New constructs a Loader. HTTP sources are only served when a client is
// supplied or AllowHTTP is set.
func New(options Options) *Loader {
	var client *http.Client
	switch {
	case options.HTTPClient != nil:
		clone := *options.HTTPClient
		if options.RequestTimeout > 0 && clone.Timeout == 0 {
			clone.Timeout = options.RequestTimeout
		}
		client = &clone
	case options.AllowHTTP:
		client = &http.Client{Timeout: options.RequestTimeout}
	}
	return &Loader{fs: options.FileSystem, http: client, timeout: options.RequestTimeout}
}

// Read returns the raw bytes behind src.
func (l *Loader) Read(ctx context.Context, src Source) ([]byte, error) {
	if src == nil {
		return nil, errors.New("loader: source is nil")
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	switch src.Kind() {
	case SourceKindFile:
		return readFile(src.Location())
	case SourceKindFS:
		if l.fs == nil {
			return nil, errors.New("loader: fs is nil")
		}
		return fs.ReadFile(l.fs, src.Location())
	case SourceKindURL:
		if l.http == nil {
			return nil, errors.New("loader: http support disabled")
		}
		return readHTTP(ctx, l.http, src.Location(), l.timeout)
	default:
		return nil, fmt.Errorf("loader: unsupported source kind %q", src.Kind())
	}
}

// Load reads and decodes a layout document.
func (l *Loader) Load(ctx context.Context, src Source) (*layout.ExternalFormLayout, error) {
	data, err := l.Read(ctx, src)
	if err != nil {
		return nil, err
	}
	external, err := Decode(data, src.Location())
	if err != nil {
		return nil, err
	}
	return external, nil
}

// Decode parses JSON, falling back to YAML. YAML documents are normalised
// through JSON so both produce identical values.
func Decode(data []byte, name string) (*layout.ExternalFormLayout, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("loader: %s is empty", name)
	}
	if json.Valid(data) {
		external, err := layout.ParseExternal(data)
		if err != nil {
			return nil, fmt.Errorf("loader: parse %s: %w", name, err)
		}
		return external, nil
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("loader: parse %s: invalid JSON or YAML", name)
	}
	normalised, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("loader: parse %s: %w", name, err)
	}
	external, err := layout.ParseExternal(normalised)
	if err != nil {
		return nil, fmt.Errorf("loader: parse %s: %w", name, err)
	}
	return external, nil
}

func readFile(path string) ([]byte, error) {
	if path == "" {
		return nil, errors.New("loader: file path is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(abs)
}

func readHTTP(ctx context.Context, client *http.Client, url string, timeout time.Duration) ([]byte, error) {
	reqCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.New("loader: unexpected status " + resp.Status)
	}
	return io.ReadAll(resp.Body)
}
