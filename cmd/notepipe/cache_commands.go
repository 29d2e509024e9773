package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or remove per-folder split caches",
	}
	cacheCmd.AddCommand(newCacheStatusCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	return cacheCmd
}

func newCacheStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status <folder>",
		Short: "Report whether the folder's split cache is current",
		Args:  folderArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			folder, err := resolveFolder(args[0])
			if err != nil {
				return err
			}
			cfg, logger, err := ctx.environment()
			if err != nil {
				return err
			}
			st, err := newSplitCache(cmd, cfg, logger).Status(folder)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, line := range cacheStatusLines(st, cfg.Cache.Enabled, isTerminal(out)) {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <folder>",
		Short: "Delete the folder's split cache",
		Args:  folderArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			folder, err := resolveFolder(args[0])
			if err != nil {
				return err
			}
			cfg, logger, err := ctx.environment()
			if err != nil {
				return err
			}
			cache := newSplitCache(cmd, cfg, logger)
			removed, err := cache.Clear(cmd.Context(), folder)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if removed {
				fmt.Fprintf(out, "Removed split cache %s\n", cache.Path(folder))
			} else {
				fmt.Fprintf(out, "No split cache at %s\n", cache.Path(folder))
			}
			return nil
		},
	}
}
