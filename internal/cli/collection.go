package cli

import (
	"fmt"
	"strconv"
	"strings"

	"showcase-cms/internal/content/domain/model"
	"showcase-cms/internal/content/editor"

	"github.com/spf13/cobra"
)

// parseAssignments turns field=value pairs into a buffer update. Unknown fields land in Extra;
// an empty value clears the field.
func parseAssignments(pairs []string) (func(*model.CollectionItem), error) {
	type assignment struct{ field, value string }
	parsed := make([]assignment, 0, len(pairs))
	for _, pair := range pairs {
		field, value, ok := strings.Cut(pair, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			return nil, fmt.Errorf("invalid --set %q: expected field=value", pair)
		}
		parsed = append(parsed, assignment{field: field, value: value})
	}
	return func(item *model.CollectionItem) {
		for _, a := range parsed {
			setField(item, a.field, a.value)
		}
	}, nil
}

func setField(item *model.CollectionItem, field, value string) {
	switch strings.ToLower(field) {
	case "name":
		item.Name = value
	case "title":
		item.Title = value
	case "description":
		item.Description = value
	case "url":
		item.URL = value
	case "image":
		item.Image = value
	case "role":
		item.Role = value
	case "city":
		item.City = value
	case "organization":
		item.Organization = value
	case "date":
		item.Date = value
	default:
		if value == "" {
			delete(item.Extra, field)
			return
		}
		if item.Extra == nil {
			item.Extra = make(map[string]string)
		}
		item.Extra[field] = value
	}
}

func parseIndex(s string) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("invalid index %q: must be a non-negative integer", s)
	}
	return i, nil
}

// NewListCommand prints a collection as the site renders it.
func NewListCommand(opts *RootOptions) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "list <parent> <key>",
		Short: "Show a collection",
		Long: `Show a collection merged with its built-in defaults, with resolved asset paths.
--raw prints the stored array only.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := model.ParseCollectionKey(args[1])
			if err != nil {
				return err
			}
			client := opts.client()
			if raw {
				snap, err := client.Fetch(cmd.Context(), args[0], key)
				if err != nil {
					return err
				}
				return printItems(cmd.OutOrStdout(), opts.Format, collectionView{
					ParentID: snap.ParentID, Key: snap.Key, Version: snap.Version, Items: snap.Items,
				})
			}
			view, err := client.Reconciled(cmd.Context(), args[0], key)
			if err != nil {
				return err
			}
			return printReconciled(cmd.OutOrStdout(), opts.Format, view)
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "print the stored array without defaults")
	return cmd
}

// NewAddCommand appends a record.
func NewAddCommand(opts *RootOptions) *cobra.Command {
	var (
		sets  []string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "add <parent> <key>",
		Short: "Append a record to a collection",
		Example: `  contentctl add summit-2024 guests --set name="Laila Ollapally" --set image=/images/guests/laila.jpg
  contentctl add summit-2024 coverage --set title="Summit recap" --set url=https://news.example/recap`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			update, err := parseAssignments(sets)
			if err != nil {
				return err
			}
			s, err := openSession(cmd.Context(), opts, args[0], args[1], force)
			if err != nil {
				return err
			}
			s.ed.BeginAdd()
			if err := s.ed.UpdateBuffer(update); err != nil {
				return err
			}
			if err := s.ed.Commit(cmd.Context()); err != nil {
				return describeValidation(cmd.ErrOrStderr(), err)
			}
			return s.finish(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts.Format)
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "field=value (repeatable)")
	cmd.Flags().BoolVar(&force, "force", false, "edit the defaults when the collection cannot be loaded")
	return cmd
}

// NewEditCommand changes fields of an existing record.
func NewEditCommand(opts *RootOptions) *cobra.Command {
	var (
		sets  []string
		force bool
	)

	cmd := &cobra.Command{
		Use:           "edit <parent> <key> <index>",
		Short:         "Change fields of a record",
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(sets) == 0 {
				return fmt.Errorf("nothing to change: pass at least one --set")
			}
			update, err := parseAssignments(sets)
			if err != nil {
				return err
			}
			index, err := parseIndex(args[2])
			if err != nil {
				return err
			}
			s, err := openSession(cmd.Context(), opts, args[0], args[1], force)
			if err != nil {
				return err
			}
			if err := s.ed.BeginEdit(index); err != nil {
				return err
			}
			if err := s.ed.UpdateBuffer(update); err != nil {
				return err
			}
			if err := s.ed.Commit(cmd.Context()); err != nil {
				return describeValidation(cmd.ErrOrStderr(), err)
			}
			return s.finish(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts.Format)
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "field=value (repeatable)")
	cmd.Flags().BoolVar(&force, "force", false, "edit the defaults when the collection cannot be loaded")
	return cmd
}

// NewRemoveCommand deletes a record.
func NewRemoveCommand(opts *RootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:           "remove <parent> <key> <index>",
		Aliases:       []string{"rm"},
		Short:         "Delete a record",
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[2])
			if err != nil {
				return err
			}
			s, err := openSession(cmd.Context(), opts, args[0], args[1], force)
			if err != nil {
				return err
			}
			if err := s.ed.Remove(cmd.Context(), index); err != nil {
				return err
			}
			return s.finish(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts.Format)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "edit the defaults when the collection cannot be loaded")
	return cmd
}

// NewMoveCommand shifts a record up or down and saves once.
func NewMoveCommand(opts *RootOptions) *cobra.Command {
	var (
		force bool
		steps int
	)

	cmd := &cobra.Command{
		Use:   "move <parent> <key> <index> up|down",
		Short: "Move a record up or down",
		Long: `Move a record up or down by --steps places (default 1). The record stops at the
top or bottom of the list; the new order is saved once.`,
		Args:          cobra.ExactArgs(4),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps < 1 {
				return fmt.Errorf("invalid --steps %d: must be at least 1", steps)
			}
			index, err := parseIndex(args[2])
			if err != nil {
				return err
			}
			dir, err := editor.ParseDirection(args[3])
			if err != nil {
				return err
			}
			s, err := openSession(cmd.Context(), opts, args[0], args[1], force, editor.WithPersistOnMove(false))
			if err != nil {
				return err
			}
			moved := 0
			for ; moved < steps && s.ed.Move(cmd.Context(), index, dir); moved++ {
				if dir == editor.Up {
					index--
				} else {
					index++
				}
			}
			if moved < steps {
				fmt.Fprintf(cmd.ErrOrStderr(), "record %d cannot move %s; moved %d of %d\n", index, dir, moved, steps)
			}
			if !s.ed.Save(cmd.Context()) {
				fmt.Fprintln(cmd.ErrOrStderr(), "nothing saved")
			}
			return s.finish(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts.Format)
		},
	}

	cmd.Flags().IntVar(&steps, "steps", 1, "places to move")
	cmd.Flags().BoolVar(&force, "force", false, "edit the defaults when the collection cannot be loaded")
	return cmd
}
