package main

import (
	"fmt"
	"io"
	"os"

	"github.com/leizm/cedar"
	"github.com/spf13/cobra"
)

func keysCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "keys [prefix]",
		Short: "List collections, optionally restricted to a key prefix",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var prefix []byte
			if len(args) > 0 {
				prefix = []byte(args[0])
			}
			w := cmd.OutOrStdout()
			_, err := a.db.ForEachKeys(prefix, func(userKey []byte, m *cedar.MetaRecord) bool {
				fmt.Fprintf(w, "%s\t%v\t%d\n", userKey, m.Type, m.Count)
				return true
			})
			return err
		},
	}
}

func dumpCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print every collection with its raw entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.db.Dump()
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), s)
			return err
		},
	}
}

func getCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print the contents of one collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := []byte(args[0])
			m, found, err := a.db.Meta(key)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("%s: no such collection", args[0])
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "# %v\n", m)
			switch m.Type {
			case cedar.TypeMap:
				_, err = a.db.MapForEach(key, func(field, value []byte) bool {
					fmt.Fprintf(w, "%s\t%s\n", field, value)
					return true
				})
			case cedar.TypeSet:
				_, err = a.db.SetForEach(key, func(member []byte) bool {
					fmt.Fprintf(w, "%s\n", member)
					return true
				})
			case cedar.TypeList:
				_, err = a.db.ListForEach(key, func(index int64, value []byte) bool {
					fmt.Fprintf(w, "%d\t%s\n", index, value)
					return true
				})
			case cedar.TypeSortedList:
				_, err = a.db.SortedListForEach(key, func(score, value []byte) bool {
					fmt.Fprintf(w, "%x\t%s\n", score, value)
					return true
				})
			case cedar.TypeAscSortedList:
				_, err = a.db.AscSortedListForEach(key, func(score, value []byte) bool {
					fmt.Fprintf(w, "%x\t%s\n", score, value)
					return true
				})
			}
			return err
		},
	}
}

func exportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write every collection to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			n, err := a.db.Export(f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d collections\n", n)
			return nil
		},
	}
}

func importCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Load collections written by export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			n, err := a.db.Import(f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d collections\n", n)
			return nil
		},
	}
}

func compactCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "compact",
		Short: "Reclaim space held by deleted entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.db.Compact()
		},
	}
}

func pruneCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "prune <key>",
		Short: "Physically delete popped entries of an ascending sorted list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.db.AscSortedListPrune([]byte(args[0]))
		},
	}
}

func statsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print database counters in Prometheus format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			size, err := a.db.Size()
			if err != nil {
				return err
			}
			s := a.db.Stats()
			fmt.Fprintf(w, "# engine=%s size=%d next_object_id=%d cached=%d\n", a.db.Engine(), size, s.NextObjectID, s.CachedRecords)
			a.db.WriteMetrics(w)
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of cedar",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cedar v%s\n", Version)
		},
	}
}
