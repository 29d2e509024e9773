package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"notepipe/internal/align"
	"notepipe/internal/combiner"
	"notepipe/internal/config"
	"notepipe/internal/evaluate"
	"notepipe/internal/logging"
	"notepipe/internal/model"
	"notepipe/internal/runstore"
	"notepipe/internal/window"
)

const predictorName = "centroid"

func newRunCommand(ctx *commandContext) *cobra.Command {
	var noCache bool
	var skipTrainEval bool

	cmd := &cobra.Command{
		Use:   "run <folder>",
		Short: "Build the split, train the reference predictor and score both sets",
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

			run := runstore.Run{
				ID:        runstore.NewRunID(),
				Folder:    folder,
				StartedAt: time.Now(),
				Seed:      cfg.Dataset.Seed,
				TestRatio: cfg.Dataset.TestRatio,
				Params:    runParams(cfg),
			}
			runCtx := logging.WithRunID(cmd.Context(), run.ID)
			logger = logging.WithContext(runCtx, logger)
			cache := newSplitCache(cmd, cfg, logger)

			useCache := cfg.Cache.Enabled && !noCache
			split, cached, err := cache.LoadOrBuild(logging.WithStage(runCtx, "dataset"), folder, useCache)
			if err != nil {
				logging.ErrorWithContext(logger, "dataset preparation failed", "dataset_failed",
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check the folder with `notepipe dataset inspect` or set dataset.decode_errors"))
				return err
			}
			run.CacheHit = cached
			run.Train, run.Test = split.Sizes()

			pipe := &model.Pipeline{
				Predictor: model.NewCentroid(),
				Combiner:  combiner.New(combiner.ConfigFromSettings(cfg)),
				Params:    window.Params{BlockSize: cfg.Dataset.BlockSize, Downsample: cfg.Dataset.Downsample},
				Logger:    logger,
			}
			if err := pipe.Train(logging.WithStage(runCtx, "train"), split.XTrain, split.YTrain); err != nil {
				return err
			}

			registry := evaluate.NewRegistry()
			evalCtx := logging.WithStage(runCtx, "evaluate")
			if !skipTrainEval {
				scores, err := scoreSet(evalCtx, pipe, registry, cfg.Evaluation.Metrics, runstore.SplitTrain, split.XTrain, split.YTrain)
				if err != nil {
					return err
				}
				run.Scores = append(run.Scores, scores...)
			}
			scores, err := scoreSet(evalCtx, pipe, registry, cfg.Evaluation.Metrics, runstore.SplitTest, split.XTest, split.YTest)
			if err != nil {
				return err
			}
			run.Scores = append(run.Scores, scores...)
			run.FinishedAt = time.Now()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %s: %d train / %d test recordings\n", run.ID, run.Train, run.Test)
			fmt.Fprintln(out, renderScoreTable(run.Scores))

			if cfg.Evaluation.RecordRuns {
				if err := ctx.recordRun(runCtx, run, logger); err != nil {
					return err
				}
			}
			logger.Info("run complete",
				logging.String(logging.FieldEventType, "run_complete"),
				logging.Duration(logging.FieldDuration, run.Duration()),
				logging.Int("train", run.Train),
				logging.Int("test", run.Test),
				logging.Int64("seed", run.Seed),
				logging.Bool("cache_hit", run.CacheHit))
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Rebuild the split instead of loading the cache")
	cmd.Flags().BoolVar(&skipTrainEval, "skip-train-eval", false, "Only score the test set")
	return cmd
}

func scoreSet(ctx context.Context, pipe *model.Pipeline, registry *evaluate.Registry, metrics []string, split string, series []align.Series, truths []align.EventSequence) ([]runstore.Score, error) {
	preds, err := pipe.PredictSet(ctx, series, truths)
	if err != nil {
		return nil, fmt.Errorf("predict %s set: %w", split, err)
	}
	scores, err := registry.Evaluate(metrics, truths, preds)
	if err != nil {
		return nil, fmt.Errorf("evaluate %s set: %w", split, err)
	}
	out := make([]runstore.Score, len(scores))
	for i, sc := range scores {
		out[i] = runstore.Score{Split: split, Metric: sc.Name, Mean: sc.Mean, StdDev: sc.StdDev, Count: sc.Count}
	}
	return out, nil
}

func runParams(cfg *config.Config) runstore.Params {
	return runstore.Params{
		SampleRate:   cfg.Dataset.SampleRate,
		Subsample:    cfg.Dataset.Subsample,
		BlockSize:    cfg.Dataset.BlockSize,
		Downsample:   cfg.Dataset.Downsample,
		LeftEpsilon:  cfg.Combiner.LeftEpsilon,
		RightEpsilon: cfg.Combiner.RightEpsilon,
		OnlyPositive: cfg.Combiner.OnlyPositive,
		Predictor:    predictorName,
	}
}

func (c *commandContext) recordRun(ctx context.Context, run runstore.Run, logger *slog.Logger) error {
	store, err := c.openRunStore()
	if err != nil {
		return err
	}
	defer store.Close()
	if _, err := store.Record(ctx, run); err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	logger.Debug("run recorded", logging.String("runs_db", store.Path()))
	return nil
}
