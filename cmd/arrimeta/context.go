package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"arrimeta/internal/config"
	"arrimeta/internal/extract"
	"arrimeta/internal/logging"
	"arrimeta/internal/schema"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	schemaOnce sync.Once
	schema     *schema.Schema
	schemaErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil {
			if level := strings.TrimSpace(*c.logLevelFlag); level != "" {
				if _, err := logging.ParseLevel(level); err != nil {
					c.configErr = err
					return
				}
				cfg.Logging.Level = level
			}
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// ensureSchema builds the field schema once per invocation. A field set
// naming an undefined field fails here, before any file is read.
func (c *commandContext) ensureSchema() (*schema.Schema, error) {
	c.schemaOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.schemaErr = err
			return
		}
		c.schema, c.schemaErr = cfg.Schema()
	})
	return c.schema, c.schemaErr
}

// logger writes console logs to the command's stderr so stdout stays clean
// for metadata output.
func (c *commandContext) logger(cmd *cobra.Command) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.NewFromConfig(cfg, cmd.ErrOrStderr())
}

func (c *commandContext) extractor(cmd *cobra.Command) (*extract.Extractor, *slog.Logger, error) {
	s, err := c.ensureSchema()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.logger(cmd)
	if err != nil {
		return nil, nil, err
	}
	return extract.New(s, logger), logger, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
