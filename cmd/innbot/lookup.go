package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"innbot/internal/platform/logger"
	"innbot/internal/registry/report"
	"innbot/internal/registry/service"
	"innbot/pkg/requestcontext"
)

var errInvalidIdentifier = errors.New("invalid identifier")

func newLookupCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "lookup <inn|ogrn>",
		Short:   "Look up one identifier and print the report",
		Example: "  innbot lookup 7710137066\n  innbot lookup 1027700132195",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.NewWithWriter(cmd.ErrOrStderr(), opts.cfg.Log.Level)
			return runLookup(cmd.Context(), opts, log, cmd.OutOrStdout(), args[0])
		},
	}
}

func runLookup(ctx context.Context, opts *rootOptions, log *slog.Logger, out io.Writer, query string) error {
	a, err := newApp(ctx, opts.cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = a.close(context.Background()) }()

	ctx = requestcontext.WithChannel(ctx, requestcontext.ChannelCLI)
	reply, err := a.service.Lookup(ctx, query)
	if err != nil {
		_, _ = fmt.Fprintln(out, report.LookupFailureMessage(service.FailureReason(err)))
		return err
	}
	if _, err := fmt.Fprintln(out, reply.Text); err != nil {
		return err
	}
	if !reply.Valid {
		return errInvalidIdentifier
	}
	return nil
}
