package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"boardsync-cli/internal/gateway"
)

func newLabelsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "labels",
		Short: "Label commands",
	}
	cmd.AddCommand(newLabelsListCmd(app))
	cmd.AddCommand(newLabelsCreateCmd(app))
	cmd.AddCommand(newLabelsUpdateCmd(app))
	cmd.AddCommand(newLabelsDeleteCmd(app))
	return cmd
}

func newLabelsListCmd(app *App) *cobra.Command {
	var (
		projectID  int64
		globalOnly bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List labels (all, one project's, or global only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			labels, err := s.gw.ListLabels(cmd.Context(), gateway.LabelFilter{
				ProjectID:  projectID,
				GlobalOnly: globalOnly,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": labels})
		},
	}

	cmd.Flags().Int64Var(&projectID, "project", 0, "Limit to one project's labels")
	cmd.Flags().BoolVar(&globalOnly, "global", false, "Only global labels")
	return cmd
}

func newLabelsCreateCmd(app *App) *cobra.Command {
	var (
		name      string
		color     string
		projectID int64
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a label (global unless --project is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			draft := gateway.LabelDraft{
				Name:  strings.TrimSpace(name),
				Color: color,
			}
			if projectID > 0 {
				draft.ProjectID = &projectID
			}
			s, err := newSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			label, err := s.Coordinator.CreateLabel(cmd.Context(), draft)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": label})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Label name")
	cmd.Flags().StringVar(&color, "color", "", "Display color (hex)")
	cmd.Flags().Int64Var(&projectID, "project", 0, "Scope the label to one project")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newLabelsUpdateCmd(app *App) *cobra.Command {
	var (
		name  string
		color string
	)

	cmd := &cobra.Command{
		Use:   "update <label-id>",
		Short: "Update a label",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}

			var patch gateway.LabelPatch
			if cmd.Flags().Changed("name") {
				v := strings.TrimSpace(name)
				patch.Name = &v
			}
			if cmd.Flags().Changed("color") {
				patch.Color = &color
			}

			s, err := newSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := loadLabel(cmd, s, id); err != nil {
				return writeErr(cmd, err)
			}
			label, err := s.Coordinator.UpdateLabel(cmd.Context(), id, patch)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": label})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&color, "color", "", "New display color (hex)")
	return cmd
}

func newLabelsDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <label-id>",
		Short: "Delete a label",
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
			if err := loadLabel(cmd, s, id); err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Coordinator.DeleteLabel(cmd.Context(), id); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"deleted": id}})
		},
	}
	return cmd
}

// loadLabel seeds the store with one label. There is no single-label
// endpoint, so this filters the listing.
func loadLabel(cmd *cobra.Command, s *session, id int64) error {
	labels, err := s.gw.ListLabels(cmd.Context(), gateway.LabelFilter{})
	if err != nil {
		return err
	}
	for _, l := range labels {
		if l.ID == id {
			s.Store.Labels.UpsertOne(l)
			return nil
		}
	}
	return errBadArg(strconv.FormatInt(id, 10), "an existing label id")
}
