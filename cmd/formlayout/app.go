package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formlayout/internal/config"
	"github.com/goliatone/go-formlayout/internal/loader"
	applog "github.com/goliatone/go-formlayout/internal/log"
	"github.com/goliatone/go-formlayout/pkg/layout"
	"github.com/goliatone/go-formlayout/pkg/store"
)

type app struct {
	out    io.Writer
	errOut io.Writer

	configPath string
	logLevel   string
	cfg        config.Config
	logger     *slog.Logger
	loader     *loader.Loader

	prompts     promptDriver
	interactive func() bool
}

func newApp(out, errOut io.Writer) *app {
	return &app{
		out:         out,
		errOut:      errOut,
		cfg:         config.Defaults(),
		logger:      applog.Discard(),
		prompts:     surveyDriver{},
		interactive: stdinIsTerminal,
	}
}

func stdinIsTerminal() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	a.cfg = cfg
	a.logger = applog.New(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
		Output:    a.errOut,
	}).With(slog.String("command", cmd.Name()))
	a.loader = loader.New(loader.Options{AllowHTTP: true, RequestTimeout: 30 * time.Second})
	return nil
}

func (a *app) maxDepth() int {
	if a.cfg.Editor.MaxDepth > 0 {
		return a.cfg.Editor.MaxDepth
	}
	return layout.MaxNestedGroupLevel
}

// readExternal loads a layout document from a path or URL.
func (a *app) readExternal(ctx context.Context, arg string) (*layout.ExternalFormLayout, error) {
	src, err := loader.ParseSource(arg)
	if err != nil {
		return nil, err
	}
	external, err := a.loader.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("layout loaded", slog.String("source", src.Location()))
	return external, nil
}

func (a *app) readInternal(ctx context.Context, arg string) (layout.Layout, error) {
	external, err := a.readExternal(ctx, arg)
	if err != nil {
		return layout.Layout{}, err
	}
	internal, err := layout.ToInternal(external)
	if err != nil {
		return layout.Layout{}, fmt.Errorf("%s: %w", arg, err)
	}
	return internal, nil
}

// writeLayout prints the external form of l, or replaces path when inPlace.
func (a *app) writeLayout(l layout.Layout, path string, inPlace bool) error {
	if depth := layout.GetDepth(l); depth > a.maxDepth() {
		return fmt.Errorf("nesting depth %d exceeds limit %d", depth, a.maxDepth())
	}
	return a.writeJSON(layout.ToExternal(l), path, inPlace)
}

func (a *app) writeJSON(value any, path string, inPlace bool) error {
	data, err := encodeIndented(value)
	if err != nil {
		return err
	}
	if inPlace {
		src, err := loader.ParseSource(path)
		if err != nil {
			return err
		}
		if src.Kind() != loader.SourceKindFile {
			return fmt.Errorf("cannot write %s in place", path)
		}
		if err := os.WriteFile(src.Location(), data, 0o644); err != nil {
			return err
		}
		a.logger.Info("layout written", slog.String("path", src.Location()))
		return nil
	}
	_, err = a.out.Write(data)
	return err
}

func encodeIndented(value any) ([]byte, error) {
	raw, err := json.Marshal(value)
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

// openStore builds the configured store. The returned close func is never nil.
func (a *app) openStore(ctx context.Context) (store.Store, func() error, error) {
	opts := []store.Option{store.WithLogger(a.logger)}
	switch a.cfg.Store.Driver {
	case config.DriverSQLite, config.DriverPostgres:
		dialect := store.DialectSQLite
		if a.cfg.Store.Driver == config.DriverPostgres {
			dialect = store.DialectPostgres
		}
		s, err := store.OpenSQL(ctx, dialect, a.cfg.Store.DSN, opts...)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return store.NewFileStore(a.cfg.Store.Root, opts...), func() error { return nil }, nil
	}
}
