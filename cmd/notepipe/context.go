package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"notepipe/internal/config"
	"notepipe/internal/corpus"
	"notepipe/internal/logging"
	"notepipe/internal/runstore"
	"notepipe/internal/splitcache"
)

// errFolderRequired is returned by commands that operate on a dataset folder.
var errFolderRequired = errors.New("dataset folder path is required")

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Logging.Level = strings.ToLower(strings.TrimSpace(*c.logLevelFlag))
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = fmt.Errorf("create logger: %w", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// environment returns the config and logger every dataset command needs.
func (c *commandContext) environment() (*config.Config, *slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// newSplitCache wires a corpus pipeline behind a split cache. Progress goes
// to a bar on an interactive stderr and to sampled log lines otherwise.
func newSplitCache(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) *splitcache.Cache {
	opts := corpus.OptionsFromConfig(cfg, logger)
	opts.Progress = progressReporter(cmd.ErrOrStderr(), logger)
	return splitcache.New(splitcache.OptionsFromConfig(cfg, logger), corpus.NewPipeline(opts))
}

func (c *commandContext) openRunStore() (*runstore.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := runstore.Open(cfg.Paths.RunsDB)
	if err != nil {
		return nil, fmt.Errorf("open run history: %w", err)
	}
	return store, nil
}

func progressReporter(w io.Writer, logger *slog.Logger) corpus.Reporter {
	if isTerminal(w) {
		return corpus.NewBarReporter(w)
	}
	return corpus.NewLogReporter(logger)
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func folderArg(cmd *cobra.Command, args []string) error {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return errFolderRequired
	}
	return cobra.MaximumNArgs(1)(cmd, args)
}

func resolveFolder(arg string) (string, error) {
	folder, err := config.ExpandPath(strings.TrimSpace(arg))
	if err != nil {
		return "", fmt.Errorf("resolve dataset folder: %w", err)
	}
	info, err := os.Stat(folder)
	if err != nil {
		return "", fmt.Errorf("inspect dataset folder: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("dataset folder %s is not a directory", folder)
	}
	return folder, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
