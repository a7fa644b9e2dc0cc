package main

import (
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"statspub/internal/config"
	"statspub/internal/logging"
	"statspub/internal/msgq"
	"statspub/internal/publisher"
	"statspub/internal/status"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
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
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// withStore opens the status store, runs fn, and closes the store.
func (c *commandContext) withStore(fn func(*config.Config, *status.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := status.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(cfg, store)
}

// withPublisher wires the status store and message channel into a publisher
// for commands that mutate publishing state.
func (c *commandContext) withPublisher(fn func(*config.Config, *publisher.Publisher) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := status.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	queue, err := msgq.Open(cfg)
	if err != nil {
		return err
	}
	defer queue.Close()
	return fn(cfg, publisher.New(store, queue, logging.NewNop()))
}

func (c *commandContext) withQueue(fn func(*config.Config, *msgq.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	queue, err := msgq.Open(cfg)
	if err != nil {
		return err
	}
	defer queue.Close()
	return fn(cfg, queue)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
