package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"notepipe/internal/corpus"
)

func newDatasetCommand(ctx *commandContext) *cobra.Command {
	datasetCmd := &cobra.Command{
		Use:   "dataset",
		Short: "Build and inspect dataset splits",
	}
	datasetCmd.AddCommand(newDatasetBuildCommand(ctx))
	datasetCmd.AddCommand(newDatasetInspectCommand(ctx))
	return datasetCmd
}

func newDatasetBuildCommand(ctx *commandContext) *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "build <folder>",
		Short: "Decode a folder and write its split cache",
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
			split, _, err := cache.LoadOrBuild(cmd.Context(), folder, cfg.Cache.Enabled && !noCache)
			if err != nil {
				return err
			}
			train, test := split.Sizes()
			fmt.Fprintf(cmd.OutOrStdout(), "Split ready: %d train / %d test recordings, %d labels (%s)\n",
				train, test, split.Vocabulary.Size(), cache.Path(folder))
			return nil
		},
	}
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Ignore any existing cache and rebuild")
	return cmd
}

func newDatasetInspectCommand(ctx *commandContext) *cobra.Command {
	var listSources bool

	cmd := &cobra.Command{
		Use:   "inspect <folder>",
		Short: "Show split sizes, label vocabulary and cache status",
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
			split, _, err := cache.LoadOrBuild(cmd.Context(), folder, cfg.Cache.Enabled)
			if err != nil {
				return err
			}
			st, err := cache.Status(folder)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := isTerminal(out)
			train, test := split.Sizes()
			lines := renderSectionHeader("Dataset", colorize)
			lines = append(lines,
				renderValueLine("Folder", folder),
				renderValueLine("Split", fmt.Sprintf("%d train / %d test (seed %d, ratio %g)", train, test, split.Seed, split.TestRatio)),
				renderValueLine("Window", fmt.Sprintf("%d values (block %d / downsample %d)", cfg.WindowLength(), cfg.Dataset.BlockSize, cfg.Dataset.Downsample)),
				renderValueLine("Labels", formatLabels(split.Vocabulary.Labels)),
			)
			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Cache", colorize)...)
			lines = append(lines, cacheStatusLines(st, cfg.Cache.Enabled, colorize)...)
			for _, line := range lines {
				fmt.Fprintln(out, line)
			}
			if listSources {
				fmt.Fprintln(out)
				fmt.Fprintln(out, renderSourceTable(split))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&listSources, "sources", false, "List every recording with its split")
	return cmd
}

func formatLabels(labels []int) string {
	if len(labels) == 0 {
		return "(none)"
	}
	parts := make([]string, len(labels))
	for i, label := range labels {
		parts[i] = strconv.Itoa(label)
	}
	return fmt.Sprintf("%d: %s", len(labels), strings.Join(parts, " "))
}

func renderSourceTable(split *corpus.Split) string {
	rows := make([][]string, 0, len(split.TrainSources)+len(split.TestSources))
	for i, src := range split.TestSources {
		rows = append(rows, []string{"test", src, strconv.Itoa(len(split.YTest[i]))})
	}
	for i, src := range split.TrainSources {
		rows = append(rows, []string{"train", src, strconv.Itoa(len(split.YTrain[i]))})
	}
	return renderTable([]string{"Split", "Recording", "Events"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight})
}
