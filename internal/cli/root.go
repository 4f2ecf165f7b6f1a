package cli

import (
	"breathkeeper/internal/bootstrap"

	"github.com/spf13/cobra"
)

const (
	appName = "breathkeeper"
	appID   = "com.breathkeeper.app"
)

// NewRootCommand builds the command tree. Without a subcommand the desktop
// window is opened.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   appName,
		Short: "Guided breathing sessions with audio cues",
		Long: `breathkeeper runs rounds of paced breathing, a timed breath hold and a
short recovery hold, with a looped breath sound, a warning chime before the
last breaths and a bell at every phase boundary.`,
		SilenceUsage: true,
		RunE:         runGUI,
	}

	bootstrap.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(newGUICommand(), newTermCommand())
	return rootCmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCommand().Execute()
}
