package cli

import (
	"github.com/spf13/cobra"

	"boardsync-cli/internal/config"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration commands",
	}
	cmd.AddCommand(newConfigShowCmd(app))
	cmd.AddCommand(newConfigSetCmd(app))
	return cmd
}

func newConfigShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the saved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return writeErr(cmd, err)
			}
			// Never echo the token; show whether one is set.
			out := map[string]any{
				"serverUrl": cfg.ServerURL,
				"format":    cfg.Format,
				"pretty":    cfg.Pretty,
				"tokenSet":  cfg.Token != "",
			}
			if cfg.UndoWindowSeconds > 0 {
				out["undoWindowSeconds"] = cfg.UndoWindowSeconds
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
	return cmd
}

func newConfigSetCmd(app *App) *cobra.Command {
	var (
		server     string
		token      string
		formatName string
		pretty     bool
		undoWindow int
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Save configuration values",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return writeErr(cmd, err)
			}
			if cmd.Flags().Changed("server") {
				cfg.ServerURL = server
			}
			if cmd.Flags().Changed("token") {
				cfg.Token = token
			}
			if cmd.Flags().Changed("format") {
				cfg.Format = formatName
			}
			if cmd.Flags().Changed("pretty") {
				cfg.Pretty = pretty
			}
			if cmd.Flags().Changed("undo-window") {
				cfg.UndoWindowSeconds = undoWindow
			}
			if err := config.Save(cfg); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"saved": true}})
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "Board server base URL")
	cmd.Flags().StringVar(&token, "token", "", "Bearer token")
	cmd.Flags().StringVar(&formatName, "format", "", "Default output format (json)")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON by default")
	cmd.Flags().IntVar(&undoWindow, "undo-window", 0, "Undo window in seconds")
	return cmd
}
