package cmd

import (
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// App carries build-time inputs from main.
type App struct {
	Version   string
	Templates fs.FS
	Static    fs.FS
}

func NewRootCommand(app App) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "schoolsite",
		Short:         "Content-managed school website",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(newServeCommand(app))
	root.AddCommand(newRenderCommand())
	root.AddCommand(newVersionCommand(app))

	return root
}

func Execute(app App) {
	if err := NewRootCommand(app).Execute(); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}
