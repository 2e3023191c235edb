package main

import (
	"fmt"
	"strings"

	"pdfmerge/internal/store"

	"github.com/spf13/cobra"
)

func (a *app) configCmd() *cobra.Command {
	var byName bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage saved merge orders",
		Long: `Manage saved merge orders.

By default orders are keyed by the main directory's path and apply to every
subdirectory in whole-root mode. With --by-name they are keyed by a
subdirectory name and used in per-directory mode by any subdirectory of
that name.`,
	}
	cmd.PersistentFlags().BoolVar(&byName, "by-name", false, "use orders keyed by subdirectory name")

	table := func() (*store.Store, error) {
		stores, err := a.stores()
		if err != nil {
			return nil, err
		}
		return stores.For(byName), nil
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <DIR:COMP1,COMP2,...>... | set <DIR> <COMP1,COMP2,...>",
		Short: "Save a merge order",
		Example: `  pdfmerge config set ~/scans:intro,body,conclusion
  pdfmerge config set --by-name "Reports:beginning,middle,end"
  pdfmerge config set ~/scans intro,body,conclusion`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := table()
			if err != nil {
				return err
			}
			assignments := args
			if len(args) == 2 && !strings.Contains(args[1], ":") {
				assignments = []string{args[0] + ":" + args[1]}
			}
			for _, arg := range assignments {
				key, stems, err := parseAssignment(arg)
				if err != nil {
					return err
				}
				if err := s.Set(key, stems); err != nil {
					return err
				}
				stored, _ := s.Key(key)
				a.out.Success("Set components for '%s': %s", stored, strings.Join(stems, ", "))
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <DIR>",
		Short: "Show one merge order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := table()
			if err != nil {
				return err
			}
			stems, ok := s.Get(args[0])
			if !ok {
				return fmt.Errorf("no merge order saved for %q", args[0])
			}
			a.out.Plain("%s", strings.Join(stems, ", "))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "delete <DIR>...",
		Aliases: []string{"rm"},
		Short:   "Remove merge orders",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := table()
			if err != nil {
				return err
			}
			for _, key := range args {
				removed, err := s.Delete(key)
				if err != nil {
					return err
				}
				if removed {
					a.out.Success("Removed merge order for '%s'", key)
				} else {
					a.out.Muted("No merge order saved for '%s'", key)
				}
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved merge orders",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := table()
			if err != nil {
				return err
			}
			orders := s.List()
			if len(orders) == 0 {
				a.out.Muted("No %s merge orders found in %s.", s.Keyspace(), s.Path())
				return nil
			}
			a.out.Header(fmt.Sprintf("Merge orders (%s)", s.Keyspace()))
			for _, key := range s.Keys() {
				a.out.Plain("  %s: %s", key, strings.Join(orders[key], ", "))
			}
			return nil
		},
	})

	return cmd
}
