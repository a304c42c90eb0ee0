package main

import (
	"context"
	"errors"

	"github.com/Propfend/poet"
	"github.com/spf13/cobra"
)

func (a *app) serveCommand() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   CmdNameServe,
		Short: HelpServeShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, err := a.openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			if watch && s.cfg.PostgresDSN != "" {
				return usageError(ErrMsgWatchUnsupported, nil)
			}

			collection, err := s.build(ctx)
			if err != nil {
				return err
			}
			srv := poet.NewMCPServer(CLIName, getVersionInfo().Version, collection, s.logger)

			if watch {
				// a failed rebuild keeps the previous collection
				w, err := poet.NewWatcher(s.cfg.DocumentsPath(), func(ctx context.Context) error {
					next, err := s.build(ctx)
					if err != nil {
						return err
					}
					srv.Update(next)
					return nil
				}, s.logger)
				if err != nil {
					return commandError(ExitCodeInputError, ErrMsgWatchFailed, err)
				}
				defer func() { _ = w.Close() }()
				go w.Run(ctx)
			}

			err = srv.ServeStdio(ctx, a.stdin, a.stdout)
			if err != nil && !errors.Is(err, context.Canceled) {
				return commandError(ExitCodeError, ErrMsgServeFailed, err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&watch, FlagWatch, false, HelpFlagWatch)
	return cmd
}
