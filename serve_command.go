package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"studyroom/internal/api"
	"studyroom/internal/assistant"
	"studyroom/internal/lock"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.openApp(true)
			if err != nil {
				return err
			}
			defer a.Close()

			l, err := lock.Acquire(a.cfg)
			if errors.Is(err, lock.ErrHeld) {
				return fmt.Errorf("another studyroom process owns the timers (lock %s)", a.cfg.LockPath())
			}
			if err != nil {
				return err
			}
			defer l.Release()

			runCtx := cmd.Context()
			resumed, err := a.ctrl.RestoreAll(runCtx)
			if err != nil {
				return err
			}
			if resumed > 0 {
				a.logger.Info("resumed running sessions", "count", resumed)
			}
			go a.ctrl.Run(runCtx)

			if bind == "" {
				bind = a.cfg.Server.Bind
			}
			ai := assistant.NewClient(assistant.ConfigFrom(a.cfg))
			router := api.SetupRouter(a.cfg.Server.Mode, a.ctrl, ai, a.logger)
			return api.Serve(runCtx, bind, router, a.logger)
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (overrides server.bind)")
	return cmd
}
