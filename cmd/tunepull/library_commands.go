package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"tunepull/internal/library"
)

func newLibraryCommand(ctx *commandContext) *cobra.Command {
	libraryCmd := &cobra.Command{
		Use:   "library",
		Short: "Inspect and maintain stored tracks",
	}
	libraryCmd.AddCommand(newLibraryTreeCommand(ctx))
	libraryCmd.AddCommand(newLibraryArchiveCommand(ctx))
	libraryCmd.AddCommand(newLibraryClearCommand(ctx))
	return libraryCmd
}

func newLibraryTreeCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "List stored tracks grouped by collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			collections, err := library.Tree(cfg.Paths.OutputDir)
			if err != nil {
				return err
			}
			if asJSON {
				if collections == nil {
					collections = []library.Collection{}
				}
				return writeJSON(cmd, collections)
			}

			out := cmd.OutOrStdout()
			if len(collections) == 0 {
				fmt.Fprintf(out, "No tracks stored in %s\n", cfg.Paths.OutputDir)
				return nil
			}
			fmt.Fprintln(out, cfg.Paths.OutputDir)
			var files int
			var total int64
			for _, c := range collections {
				fmt.Fprintf(out, "%s/ (%s, %s)\n", c.Name, plural(len(c.Entries), "track", "tracks"), humanBytes(c.Size()))
				for i, entry := range c.Entries {
					branch := "├── "
					if i == len(c.Entries)-1 {
						branch = "└── "
					}
					fmt.Fprintf(out, "%s%s  %s\n", branch, entry.Name, humanBytes(entry.Size))
				}
				files += len(c.Entries)
				total += c.Size()
			}
			fmt.Fprintf(out, "%s in %s, %s\n", plural(files, "file", "files"),
				plural(len(collections), "collection", "collections"), humanBytes(total))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newLibraryArchiveCommand(ctx *commandContext) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Bundle stored tracks into a zip file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			dest := strings.TrimSpace(outputPath)
			if dest == "" {
				dest = filepath.Join(cfg.Paths.StateDir, cfg.Library.ArchiveName)
			}
			lock, err := acquireLibraryLock(cfg.LockPath(), cfg.Paths.OutputDir)
			if err != nil {
				return err
			}
			defer lock.Release()

			count, err := library.Archive(cfg.Paths.OutputDir, dest)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Archived %s to %s\n", plural(count, "file", "files"), dest)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Archive destination (default <state_dir>/<archive_name>)")
	return cmd
}

func newLibraryClearCommand(ctx *commandContext) *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every stored track",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !confirm {
				return fmt.Errorf("refusing to delete %s without --yes", cfg.Paths.OutputDir)
			}
			lock, err := acquireLibraryLock(cfg.LockPath(), cfg.Paths.OutputDir)
			if err != nil {
				return err
			}
			defer lock.Release()

			if err := library.Clear(cfg.Paths.OutputDir); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", cfg.Paths.OutputDir)
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirm, "yes", false, "Confirm deletion")
	return cmd
}

func acquireLibraryLock(lockPath, outputDir string) (*library.Lock, error) {
	lock, err := library.AcquireLock(lockPath)
	if errors.Is(err, library.ErrLocked) {
		return nil, fmt.Errorf("another tunepull fetch is writing to %s", outputDir)
	}
	return lock, err
}
