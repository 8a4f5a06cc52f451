package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"boardsync-cli/internal/gateway"
)

func newProjectsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Project commands",
	}
	cmd.AddCommand(newProjectsListCmd(app))
	cmd.AddCommand(newProjectsCreateCmd(app))
	cmd.AddCommand(newProjectsUpdateCmd(app))
	cmd.AddCommand(newProjectsFavoriteCmd(app))
	cmd.AddCommand(newProjectsDeleteCmd(app))
	return cmd
}

func newProjectsListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			projects, err := s.gw.ListProjects(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": projects})
		},
	}
	return cmd
}

func newProjectsCreateCmd(app *App) *cobra.Command {
	var (
		name         string
		departmentID int64
		color        string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			project, err := s.Coordinator.CreateProject(cmd.Context(), gateway.ProjectDraft{
				Name:         strings.TrimSpace(name),
				DepartmentID: departmentID,
				Color:        color,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": project})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Project name")
	cmd.Flags().Int64Var(&departmentID, "department", 0, "Department id")
	cmd.Flags().StringVar(&color, "color", "", "Display color (hex)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newProjectsUpdateCmd(app *App) *cobra.Command {
	var (
		name         string
		departmentID int64
		color        string
	)

	cmd := &cobra.Command{
		Use:   "update <project-id>",
		Short: "Update project fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}

			var patch gateway.ProjectPatch
			if cmd.Flags().Changed("name") {
				v := strings.TrimSpace(name)
				patch.Name = &v
			}
			if cmd.Flags().Changed("department") {
				patch.DepartmentID = &departmentID
			}
			if cmd.Flags().Changed("color") {
				patch.Color = &color
			}

			s, err := newSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.loadProject(cmd.Context(), id); err != nil {
				return writeErr(cmd, err)
			}
			project, err := s.Coordinator.UpdateProject(cmd.Context(), id, patch)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": project})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().Int64Var(&departmentID, "department", 0, "New department id")
	cmd.Flags().StringVar(&color, "color", "", "New display color (hex)")
	return cmd
}

func newProjectsFavoriteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorite <project-id>",
		Short: "Toggle a project's favorite flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			s, err := newSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.loadProject(cmd.Context(), id); err != nil {
				return writeErr(cmd, err)
			}
			project, err := s.Coordinator.ToggleProjectFavorite(cmd.Context(), id)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": project})
		},
	}
	return cmd
}

func newProjectsDeleteCmd(app *App) *cobra.Command {
	var waitUndo bool

	cmd := &cobra.Command{
		Use:   "delete <project-id>",
		Short: "Delete a project (undoable for a few seconds with --wait-undo)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			s, err := newSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.loadProject(cmd.Context(), id); err != nil {
				return writeErr(cmd, err)
			}
			pending, err := s.Undo.DeleteProject(cmd.Context(), id)
			if err != nil {
				return writeErr(cmd, err)
			}
			if !waitUndo {
				return writeOut(cmd, app, map[string]any{"data": map[string]any{"deleted": id}})
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "deleted project %d; press Enter within %s to undo\n", id, time.Until(pending.ExpiresAt).Round(time.Second))
			if waitForEnter(cmd, time.Until(pending.ExpiresAt)) {
				if err := pending.Undo(cmd.Context()); err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, map[string]any{"data": map[string]any{"deleted": id, "undone": true}})
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"deleted": id}})
		},
	}

	cmd.Flags().BoolVar(&waitUndo, "wait-undo", false, "Hold the command open for the undo window")
	return cmd
}
