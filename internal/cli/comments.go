package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func newCommentsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comments",
		Short: "Comment commands",
	}
	cmd.AddCommand(newCommentsAddCmd(app))
	cmd.AddCommand(newCommentsDeleteCmd(app))
	return cmd
}

func newCommentsAddCmd(app *App) *cobra.Command {
	var text string

	cmd := &cobra.Command{
		Use:   "add <task-id>",
		Short: "Add a comment to a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			s, err := newSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.loadTask(cmd.Context(), taskID); err != nil {
				return writeErr(cmd, err)
			}
			comment, err := s.Coordinator.AddComment(cmd.Context(), taskID, strings.TrimSpace(text))
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": comment})
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Comment text")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}

func newCommentsDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <task-id> <comment-id>",
		Short: "Delete a comment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			commentID, err := parseID(args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			s, err := newSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.loadTask(cmd.Context(), taskID); err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Coordinator.DeleteComment(cmd.Context(), commentID); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"deleted": commentID}})
		},
	}
	return cmd
}
