package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formlayout/internal/loader"
	"github.com/goliatone/go-formlayout/pkg/editor"
	"github.com/goliatone/go-formlayout/pkg/layout"
	"github.com/goliatone/go-formlayout/pkg/layoutset"
	"github.com/goliatone/go-formlayout/pkg/store"
)

func newSyncNavCommand(a *app) *cobra.Command {
	var receipt, current string
	cmd := &cobra.Command{
		Use:   "sync-nav DIR",
		Short: "Add or remove navigation buttons across the layouts in DIR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
			if err != nil {
				return err
			}
			sort.Strings(paths)

			externals := make(map[string]*layout.ExternalFormLayout, len(paths))
			files := make(map[string]string, len(paths))
			for _, path := range paths {
				name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
				external, err := a.loader.Load(cmd.Context(), loader.SourceFromFile(path))
				if err != nil {
					return err
				}
				externals[name] = external
				files[name] = path
			}

			conversion := layoutset.ConvertExternalLayouts(externals, layoutset.WithLogger(a.logger))
			for _, name := range conversion.Invalid {
				fmt.Fprintf(a.errOut, "skipping %s: %v\n", name, conversion.Errors[name])
			}
			save := func(name string, updated layout.Layout) error {
				data, err := encodeIndented(layout.ToExternal(updated))
				if err != nil {
					return err
				}
				if err := os.WriteFile(files[name], data, 0o644); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "updated %s\n", name)
				return nil
			}
			_, err = layoutset.AddOrRemoveNavigationButtons(conversion.Converted, save, current, receipt, layoutset.WithLogger(a.logger))
			return err
		},
	}
	cmd.Flags().StringVar(&receipt, "receipt", "", "receipt layout name, never given navigation buttons")
	cmd.Flags().StringVar(&current, "current", "", "layout to update first")
	return cmd
}

type pageFlags struct {
	org       string
	app       string
	layoutSet string
}

func (f pageFlags) ref(a *app) store.Ref {
	ref := store.Ref{Org: f.org, App: f.app, LayoutSet: f.layoutSet}
	if ref.Org == "" {
		ref.Org = a.cfg.Org
	}
	if ref.App == "" {
		ref.App = a.cfg.App
	}
	return ref
}

func newPageCommand(a *app) *cobra.Command {
	var flags pageFlags
	cmd := &cobra.Command{
		Use:   "page",
		Short: "Manage the pages of a stored layout set",
	}
	cmd.PersistentFlags().StringVar(&flags.org, "org", "", "organisation (defaults to the configured org)")
	cmd.PersistentFlags().StringVar(&flags.app, "app", "", "app (defaults to the configured app)")
	cmd.PersistentFlags().StringVar(&flags.layoutSet, "set", "form", "layout set")

	// run opens the configured store and hands an editor to fn.
	run := func(cmd *cobra.Command, fn func(svc *editor.Service, ref store.Ref) error) error {
		s, closeStore, err := a.openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer func() {
			if err := closeStore(); err != nil {
				a.logger.Warn("close store", slog.Any("err", err))
			}
		}()
		svc := editor.New(s, editor.WithLogger(a.logger), editor.WithMaxDepth(a.maxDepth()))
		return fn(svc, flags.ref(a))
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List pages in order and report invalid layouts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(svc *editor.Service, ref store.Ref) error {
				set, err := svc.Open(cmd.Context(), ref)
				if err != nil {
					return err
				}
				for _, name := range set.Settings.Pages.Order {
					marker := ""
					if name == set.Settings.Pages.ReceiptLayoutName {
						marker = " (receipt)"
					}
					if _, ok := set.Errors[name]; ok {
						marker += " (invalid)"
					}
					fmt.Fprintf(a.out, "%s%s\n", name, marker)
				}
				for _, name := range set.Invalid {
					fmt.Fprintf(a.errOut, "%s: %v\n", name, set.Errors[name])
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add NAME",
		Short: "Create an empty page and sync navigation buttons",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(svc *editor.Service, ref store.Ref) error {
				settings, err := svc.AddLayout(cmd.Context(), ref, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(a.out, strings.Join(settings.Pages.Order, "\n"))
				return nil
			})
		},
	})

	var current string
	deleteCmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a page and print the page to show next",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(svc *editor.Service, ref store.Ref) error {
				if current == "" {
					current = args[0]
				}
				next, err := svc.DeleteLayout(cmd.Context(), ref, args[0], current)
				if err != nil {
					return err
				}
				fmt.Fprintln(a.out, next)
				return nil
			})
		},
	}
	deleteCmd.Flags().StringVar(&current, "current", "", "page currently shown (defaults to NAME)")
	cmd.AddCommand(deleteCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "rename OLD NEW",
		Short: "Rename a page",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(svc *editor.Service, ref store.Ref) error {
				_, err := svc.RenameLayout(cmd.Context(), ref, args[0], args[1])
				return err
			})
		},
	})
	return cmd
}
