package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"crclear/internal/config"
	"crclear/internal/logging"
	"crclear/internal/preflight"
)

type commandContext struct {
	configFlag    *string
	logLevelFlag  *string
	logFormatFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, logLevelFlag, logFormatFlag *string) *commandContext {
	return &commandContext{
		configFlag:    configFlag,
		logLevelFlag:  logLevelFlag,
		logFormatFlag: logFormatFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, _, err := config.Load(flagValue(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		if level := flagValue(c.logLevelFlag); level != "" {
			cfg.Logging.Level = strings.ToLower(level)
		}
		if format := flagValue(c.logFormatFlag); format != "" {
			cfg.Logging.Format = strings.ToLower(format)
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = path
	})
	return c.config, c.configErr
}

// stageLogger returns the shared logger narrowed to stage's configured level.
func (c *commandContext) stageLogger(stage string) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	c.loggerOnce.Do(func() {
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
		if c.loggerErr != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", c.loggerErr)
		}
	})
	if c.loggerErr != nil {
		return nil, c.loggerErr
	}
	return logging.ForStage(c.logger, stage, cfg.Logging.Level, cfg.Logging.StageOverrides), nil
}

func flagValue(flag *string) string {
	if flag == nil {
		return ""
	}
	return strings.TrimSpace(*flag)
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

// runPreflight refuses to start a stage whose inputs or outputs are unusable.
func runPreflight(cfg *config.Config, plan preflight.Plan) error {
	return preflight.Err(preflight.RunAll(cfg, plan))
}
