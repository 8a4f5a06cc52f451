package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"boardsync-cli/internal/gateway"
)

func newSubtasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subtasks",
		Short: "Subtask commands",
	}
	cmd.AddCommand(newSubtasksAddCmd(app))
	cmd.AddCommand(newSubtasksUpdateCmd(app))
	cmd.AddCommand(newSubtasksDoneCmd(app))
	cmd.AddCommand(newSubtasksDeleteCmd(app))
	cmd.AddCommand(newSubtasksReorderCmd(app))
	return cmd
}

func newSubtasksAddCmd(app *App) *cobra.Command {
	var (
		title     string
		assignees []int64
	)

	cmd := &cobra.Command{
		Use:   "add <task-id>",
		Short: "Add a subtask to a task",
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
			sub, err := s.Coordinator.CreateSubtask(cmd.Context(), taskID, gateway.SubtaskDraft{
				Title:       strings.TrimSpace(title),
				AssigneeIDs: assignees,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": sub})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Subtask title")
	cmd.Flags().Int64SliceVar(&assignees, "assignee", nil, "Assignee user id (repeatable)")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newSubtasksUpdateCmd(app *App) *cobra.Command {
	var (
		title     string
		completed bool
	)

	cmd := &cobra.Command{
		Use:   "update <task-id> <subtask-id>",
		Short: "Update a subtask",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			subtaskID, err := parseID(args[1])
			if err != nil {
				return writeErr(cmd, err)
			}

			var patch gateway.SubtaskPatch
			if cmd.Flags().Changed("title") {
				v := strings.TrimSpace(title)
				patch.Title = &v
			}
			if cmd.Flags().Changed("completed") {
				patch.Completed = &completed
			}

			s, err := newSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.loadTask(cmd.Context(), taskID); err != nil {
				return writeErr(cmd, err)
			}
			sub, err := s.Coordinator.UpdateSubtask(cmd.Context(), subtaskID, patch)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": sub})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().BoolVar(&completed, "completed", false, "Completion state")
	return cmd
}

func newSubtasksDoneCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "done <task-id> <subtask-id>",
		Short: "Mark a subtask completed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			subtaskID, err := parseID(args[1])
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
			done := true
			sub, err := s.Coordinator.UpdateSubtask(cmd.Context(), subtaskID, gateway.SubtaskPatch{Completed: &done})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": sub})
		},
	}
	return cmd
}

func newSubtasksDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <task-id> <subtask-id>",
		Short: "Delete a subtask",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			subtaskID, err := parseID(args[1])
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
			if err := s.Coordinator.DeleteSubtask(cmd.Context(), subtaskID); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"deleted": subtaskID}})
		},
	}
	return cmd
}

func newSubtasksReorderCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reorder <task-id> <subtask-id>...",
		Short: "Reorder subtasks within a task",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			ordered := make([]int64, 0, len(args)-1)
			for _, arg := range args[1:] {
				id, err := parseID(arg)
				if err != nil {
					return writeErr(cmd, err)
				}
				ordered = append(ordered, id)
			}
			s, err := newSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.loadTask(cmd.Context(), taskID); err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Coordinator.ReorderSubtasks(cmd.Context(), taskID, ordered); err != nil {
				return writeErr(cmd, err)
			}
			task, _ := s.Store.Tasks.Find(taskID)
			return writeOut(cmd, app, map[string]any{"data": task.Subtasks})
		},
	}
	return cmd
}
