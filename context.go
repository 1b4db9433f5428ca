package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"studyroom/internal/clock"
	"studyroom/internal/config"
	"studyroom/internal/logging"
	"studyroom/internal/session"
	"studyroom/internal/store"
	"studyroom/internal/studylog"
)

type commandContext struct {
	configFlag *string
	userFlag   *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, userFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		userFlag:   userFlag,
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
		if c.userFlag != nil && strings.TrimSpace(*c.userFlag) != "" {
			cfg.UserID = strings.TrimSpace(*c.userFlag)
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// app bundles the long-lived pieces a command needs.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	repo   *store.Repository
	ctrl   *session.Controller

	logCloser io.Closer
}

// openApp loads config, logging, and storage. console mirrors logs to stderr.
func (c *commandContext) openApp(console bool) (*app, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, logCloser, err := logging.NewFromConfig(cfg, console)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	repo, err := store.Open(cfg)
	if err != nil {
		_ = logCloser.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}

	clk := clock.System{Location: cfg.Location()}
	engine := studylog.NewEngine(repo,
		studylog.WithClock(clk),
		studylog.WithWindow(cfg.Tracker.RecentWindow),
		studylog.WithLogger(logger),
	)
	ctrl := session.New(repo, engine,
		session.WithClock(clk),
		session.WithLogger(logger),
	)
	return &app{
		cfg:       cfg,
		logger:    logger,
		repo:      repo,
		ctrl:      ctrl,
		logCloser: logCloser,
	}, nil
}

func (a *app) Close() error {
	return errors.Join(a.repo.Close(), a.logCloser.Close())
}
