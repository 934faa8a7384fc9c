package main

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formlayout/pkg/components"
	"github.com/goliatone/go-formlayout/pkg/layout"
)

type addFlags struct {
	typeName string
	id       string
	parent   string
	position int
	write    bool
}

func newAddCommand(a *app) *cobra.Command {
	var flags addFlags
	cmd := &cobra.Command{
		Use:   "add FILE",
		Short: "Add a component or container to a layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			internal, err := a.readInternal(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := a.completeAddFlags(cmd.Context(), internal, &flags); err != nil {
				return err
			}
			id := flags.id
			if id == "" {
				id = components.GenerateID(flags.typeName, func(candidate string) bool {
					return layout.IDExists(candidate, internal)
				})
			}
			updated, err := layout.AddItemOfType(internal, flags.typeName, id, flags.parent, flags.position)
			if err != nil {
				return err
			}
			a.logger.Debug("item added", "id", id, "type", flags.typeName, "parent", flags.parent)
			return a.writeLayout(updated, args[0], flags.write)
		},
	}
	cmd.Flags().StringVar(&flags.typeName, "type", "", "component type, for example Input or Group")
	cmd.Flags().StringVar(&flags.id, "id", "", "item id (generated when empty)")
	cmd.Flags().StringVar(&flags.parent, "parent", "", "target container (defaults to the base container)")
	cmd.Flags().IntVar(&flags.position, "position", layout.Append, "insert position, negative appends")
	cmd.Flags().BoolVarP(&flags.write, "write", "w", false, "write the result back to FILE")
	return cmd
}

// completeAddFlags prompts for the type and parent when they were not given
// and a terminal is attached.
func (a *app) completeAddFlags(ctx context.Context, l layout.Layout, flags *addFlags) error {
	prompt := a.interactive != nil && a.interactive()
	if flags.typeName == "" {
		if !prompt {
			return errors.New("--type is required")
		}
		types := components.Default().Types()
		idx, err := a.prompts.Select(ctx, selectConfig{
			Message:  "Component type",
			Options:  types,
			PageSize: 12,
		})
		if err != nil {
			return err
		}
		if idx < 0 {
			return errors.New("no component type selected")
		}
		flags.typeName = types[idx]
	}
	if flags.parent == "" {
		flags.parent = layout.BaseContainerID
		if prompt && len(l.Containers) > 1 {
			parents := containerIDs(l)
			idx, err := a.prompts.Select(ctx, selectConfig{Message: "Parent container", Options: parents})
			if err != nil {
				return err
			}
			if idx >= 0 {
				flags.parent = parents[idx]
			}
		}
	}
	if flags.id == "" && prompt {
		id, err := a.prompts.Input(ctx, inputConfig{
			Message: "Id (leave empty to generate)",
			Validator: func(value string) error {
				if value != "" && layout.IDExists(value, l) {
					return fmt.Errorf("id %q is already in use", value)
				}
				return nil
			},
		})
		if err != nil {
			return err
		}
		flags.id = id
	}
	return nil
}

// containerIDs lists the base container first, then the rest by id.
func containerIDs(l layout.Layout) []string {
	ids := make([]string, 0, len(l.Containers))
	for id := range l.Containers {
		if id != layout.BaseContainerID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return append([]string{layout.BaseContainerID}, ids...)
}

func newMoveCommand(a *app) *cobra.Command {
	var (
		target   string
		position int
		write    bool
	)
	cmd := &cobra.Command{
		Use:   "move FILE ID",
		Short: "Move an item to another container or position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			internal, err := a.readInternal(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			updated, err := layout.MoveLayoutItem(internal, args[1], target, position)
			if err != nil {
				return err
			}
			return a.writeLayout(updated, args[0], write)
		},
	}
	cmd.Flags().StringVar(&target, "to", layout.BaseContainerID, "target container")
	cmd.Flags().IntVar(&position, "position", layout.Append, "insert position, negative appends")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the result back to FILE")
	return cmd
}

func newRemoveCommand(a *app) *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "remove FILE ID",
		Short: "Remove an item, and everything inside it for containers",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			internal, err := a.readInternal(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			var updated layout.Layout
			if layout.IsContainer(internal, args[1]) {
				updated, err = layout.RemoveItem(internal, args[1])
			} else {
				updated, err = layout.RemoveComponent(internal, args[1])
			}
			if err != nil {
				return err
			}
			return a.writeLayout(updated, args[0], write)
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the result back to FILE")
	return cmd
}
