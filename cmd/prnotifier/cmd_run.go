package main

import (
	"errors"

	"github.com/spf13/cobra"
)

var errTickFailed = errors.New("tick failed")

func runTick(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	c, err := newContainer(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	summary := c.Orchestrator.Run(ctx)
	if err := printJSON(cmd.OutOrStdout(), summary); err != nil {
		return err
	}
	if !summary.Success {
		return errTickFailed
	}
	return nil
}

func runRefreshTokens(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	c, err := newContainer(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	return printJSON(cmd.OutOrStdout(), c.Sweeper.Run(ctx))
}
