package cli

import (
	"os/signal"
	"syscall"

	"breathkeeper/internal/bootstrap"
	"breathkeeper/internal/ui/console"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
)

func newTermCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "term",
		Short: "Run a session in the terminal",
		Long: `Run a breathing session in the terminal.

Keys: enter starts a session and ends a breath hold, r restarts, q quits.`,
		Args: cobra.NoArgs,
		RunE: runTerm,
	}
}

func runTerm(cmd *cobra.Command, args []string) error {
	opts, err := bootstrap.ResolveOptions(cmd.Flags(), appName)
	if err != nil {
		return err
	}
	logger, logFile, err := opts.InitFileLogger(appName)
	if err != nil {
		return err
	}
	defer logFile.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clock := clockwork.NewRealClock()
	player, closePlayer := openPlayer(clock, logger)
	rt, err := bootstrap.NewRuntime(opts.Settings, clock, player, closePlayer, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	events := rt.Scheduler().Subscribe(32)
	rt.LoadCues(ctx)

	logger.Info("terminal session ready",
		"breaths_per_round", opts.Settings.BreathsPerRound,
		"total_rounds", opts.Settings.TotalRounds)
	return console.Run(ctx, rt.Scheduler(), events)
}
