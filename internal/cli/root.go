package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"boardsync-cli/internal/config"
	"boardsync-cli/internal/format"
)

type App struct {
	ServerURL  string
	Token      string
	PrettyJSON bool
	Format     string
	UndoWindow time.Duration
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "boardsync",
		Short:        "Board server CLI with optimistic sync",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Scriptable commands
  boardsync projects list
  boardsync tasks list --project 3

  # Mutations apply optimistically and settle against the server
  boardsync tasks status 7 working

  # Deletes stay undoable for a few seconds
  boardsync tasks delete 7 --wait-undo

  # Follow live board events
  boardsync watch --project 3
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// Flags and env win; the config file fills whatever is left.
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if app.ServerURL == "" {
			app.ServerURL = cfg.ServerURL
		}
		if app.Token == "" {
			app.Token = cfg.Token
		}
		if !cmd.Flags().Changed("format") && cfg.Format != "" {
			app.Format = cfg.Format
		}
		if !cmd.Flags().Changed("pretty") && cfg.Pretty {
			app.PrettyJSON = true
		}
		if app.UndoWindow == 0 && cfg.UndoWindowSeconds > 0 {
			app.UndoWindow = time.Duration(cfg.UndoWindowSeconds) * time.Second
		}
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.ServerURL, "server", envOr("BOARDSYNC_SERVER", ""), "Board server base URL (e.g. https://boards.example.com)")
	cmd.PersistentFlags().StringVar(&app.Token, "token", envOr("BOARDSYNC_TOKEN", ""), "Bearer token for the server")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("BOARDSYNC_FORMAT", "json"), "Output format (json)")

	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newProjectsCmd(app))
	cmd.AddCommand(newLabelsCmd(app))
	cmd.AddCommand(newDepartmentsCmd(app))
	cmd.AddCommand(newUsersCmd(app))
	cmd.AddCommand(newWatchCmd(app))

	return cmd
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
