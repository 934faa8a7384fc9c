package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formlayout/internal/loader"
	"github.com/goliatone/go-formlayout/pkg/layout"
	"github.com/goliatone/go-formlayout/pkg/validation"
)

func newConvertCommand(a *app) *cobra.Command {
	var to string
	cmd := &cobra.Command{
		Use:   "convert FILE",
		Short: "Convert a layout between its external and internal forms",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch to {
			case "internal":
				internal, err := a.readInternal(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return a.writeJSON(internal, "", false)
			case "external":
				internal, err := readInternalDocument(args[0])
				if err != nil {
					return err
				}
				return a.writeLayout(internal, "", false)
			default:
				return fmt.Errorf("unknown target %q, want internal or external", to)
			}
		},
	}
	cmd.Flags().StringVar(&to, "to", "internal", "target representation: internal or external")
	return cmd
}

// readInternalDocument decodes the JSON written by "convert --to internal".
func readInternalDocument(path string) (layout.Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return layout.Layout{}, err
	}
	internal := layout.CreateEmptyLayout()
	if err := json.Unmarshal(data, &internal); err != nil {
		return layout.Layout{}, fmt.Errorf("%s: %w", path, err)
	}
	if _, ok := internal.Containers[layout.BaseContainerID]; !ok {
		return layout.Layout{}, fmt.Errorf("%s: %w: missing %s", path, layout.ErrContainerNotFound, layout.BaseContainerID)
	}
	return internal, nil
}

func newNormalizeCommand(a *app) *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "normalize FILE",
		Short: "Rewrite a layout in canonical order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			internal, err := a.readInternal(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.writeLayout(internal, args[0], write)
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the result back to FILE")
	return cmd
}

func newValidateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE...",
		Short: "Check layouts against the layout schema and structural rules",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, arg := range args {
				src, err := parseAndRead(a, cmd, arg)
				if err != nil {
					return err
				}
				result := validation.ValidateExternal(src, validation.Options{MaxDepth: a.maxDepth()})
				if result.Valid {
					fmt.Fprintf(a.out, "%s: ok\n", arg)
					continue
				}
				failed++
				for _, issue := range result.Issues {
					location := issue.Path
					if location == "" {
						location = "/"
					}
					fmt.Fprintf(a.out, "%s: %s: %s\n", arg, location, issue.Message)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d layouts are invalid", failed, len(args))
			}
			return nil
		},
	}
}

// parseAndRead returns the document as JSON. YAML input is converted so
// schema validation sees the same shape either way.
func parseAndRead(a *app, cmd *cobra.Command, arg string) ([]byte, error) {
	src, err := loader.ParseSource(arg)
	if err != nil {
		return nil, err
	}
	raw, err := a.loader.Read(cmd.Context(), src)
	if err != nil {
		return nil, err
	}
	if json.Valid(raw) {
		return raw, nil
	}
	external, err := loader.Decode(raw, arg)
	if err != nil {
		return nil, err
	}
	return json.Marshal(external)
}

func newQueryCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "query EXPR FILE",
		Short: "Evaluate a JSONPath expression against a layout",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			external, err := a.readExternal(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			results, err := layout.Query(external, args[0])
			if err != nil {
				return err
			}
			for _, result := range results {
				fmt.Fprintln(a.out, oj.JSON(result, &oj.Options{Sort: true}))
			}
			return nil
		},
	}
}

// errLayoutsDiffer is returned by diff when the layouts are not equivalent.
var errLayoutsDiffer = errors.New("layouts differ")

func newDiffCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "diff A B",
		Short: "Compare two layouts after normalisation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			left, err := a.readInternal(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			right, err := a.readInternal(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			diff := cmp.Diff(left, right, cmpopts.EquateEmpty())
			if diff == "" {
				fmt.Fprintln(a.out, "layouts are equivalent")
				return nil
			}
			fmt.Fprintf(a.out, "--- %s\n+++ %s\n%s", args[0], args[1], diff)
			return errLayoutsDiffer
		},
	}
}

func newDepthCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "depth FILE",
		Short: "Report the container nesting depth of a layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			internal, err := a.readInternal(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			depth := layout.GetDepth(internal)
			fmt.Fprintf(a.out, "depth %d (limit %d)\n", depth, a.maxDepth())
			if !layout.ValidateDepthLimit(internal, a.maxDepth()) {
				return fmt.Errorf("depth %d exceeds limit %d", depth, a.maxDepth())
			}
			return nil
		},
	}
}
