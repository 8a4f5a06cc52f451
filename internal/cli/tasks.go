package cli

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"boardsync-cli/internal/gateway"
	"boardsync-cli/internal/model"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Task commands",
	}
	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksShowCmd(app))
	cmd.AddCommand(newTasksCreateCmd(app))
	cmd.AddCommand(newTasksUpdateCmd(app))
	cmd.AddCommand(newTasksStatusCmd(app))
	cmd.AddCommand(newTasksProgressCmd(app))
	cmd.AddCommand(newTasksAssignCmd(app))
	cmd.AddCommand(newTasksDeleteCmd(app))
	cmd.AddCommand(newSubtasksCmd(app))
	cmd.AddCommand(newCommentsCmd(app))
	return cmd
}

func newTasksListCmd(app *App) *cobra.Command {
	var projectID int64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks in a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.LoadTasks(cmd.Context(), projectID); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": s.Store.Tasks.All()})
		},
	}

	cmd.Flags().Int64Var(&projectID, "project", 0, "Project id")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newTasksShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show one task",
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
			task, err := s.gw.GetTask(cmd.Context(), id)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": task})
		},
	}
	return cmd
}

func newTasksCreateCmd(app *App) *cobra.Command {
	var (
		projectID   int64
		title       string
		description string
		status      string
		priority    string
		assignees   []int64
		labels      []int64
		startDate   string
		dueDate     string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			draft := gateway.TaskDraft{
				ProjectID:   projectID,
				Title:       strings.TrimSpace(title),
				Description: description,
				AssigneeIDs: assignees,
				LabelIDs:    labels,
			}
			if status != "" {
				st, err := parseStatusArg(status)
				if err != nil {
					return writeErr(cmd, err)
				}
				draft.Status = st
			}
			if priority != "" {
				p, err := parsePriorityArg(priority)
				if err != nil {
					return writeErr(cmd, err)
				}
				draft.Priority = p
			}
			if startDate != "" {
				t, err := parseDateArg(startDate)
				if err != nil {
					return writeErr(cmd, err)
				}
				draft.StartDate = &t
			}
			if dueDate != "" {
				t, err := parseDateArg(dueDate)
				if err != nil {
					return writeErr(cmd, err)
				}
				draft.DueDate = &t
			}

			s, err := newSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			task, err := s.Coordinator.CreateTask(cmd.Context(), draft)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": task})
		},
	}

	cmd.Flags().Int64Var(&projectID, "project", 0, "Project id")
	cmd.Flags().StringVar(&title, "title", "", "Task title")
	cmd.Flags().StringVar(&description, "description", "", "Task description")
	cmd.Flags().StringVar(&status, "status", "", "Initial status (todo|working|review|done|stuck)")
	cmd.Flags().StringVar(&priority, "priority", "", "Priority (low|medium|high|urgent)")
	cmd.Flags().Int64SliceVar(&assignees, "assignee", nil, "Assignee user id (repeatable)")
	cmd.Flags().Int64SliceVar(&labels, "label", nil, "Label id (repeatable)")
	cmd.Flags().StringVar(&startDate, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&dueDate, "due", "", "Due date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newTasksUpdateCmd(app *App) *cobra.Command {
	var (
		title       string
		description string
		priority    string
		startDate   string
		dueDate     string
	)

	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Update task fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}

			var patch gateway.TaskPatch
			if cmd.Flags().Changed("title") {
				v := strings.TrimSpace(title)
				patch.Title = &v
			}
			if cmd.Flags().Changed("description") {
				patch.Description = &description
			}
			if cmd.Flags().Changed("priority") {
				p, err := parsePriorityArg(priority)
				if err != nil {
					return writeErr(cmd, err)
				}
				patch.Priority = &p
			}
			if cmd.Flags().Changed("start") {
				t, err := parseDateArg(startDate)
				if err != nil {
					return writeErr(cmd, err)
				}
				patch.StartDate = &t
			}
			if cmd.Flags().Changed("due") {
				t, err := parseDateArg(dueDate)
				if err != nil {
					return writeErr(cmd, err)
				}
				patch.DueDate = &t
			}

			s, err := newSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.loadTask(cmd.Context(), id); err != nil {
				return writeErr(cmd, err)
			}
			task, err := s.Coordinator.UpdateTask(cmd.Context(), id, patch)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": task})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&priority, "priority", "", "Priority (low|medium|high|urgent)")
	cmd.Flags().StringVar(&startDate, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&dueDate, "due", "", "Due date (YYYY-MM-DD)")
	return cmd
}

func newTasksStatusCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <task-id> <status>",
		Short: "Change task status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			status, err := parseStatusArg(args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			s, err := newSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.loadTask(cmd.Context(), id); err != nil {
				return writeErr(cmd, err)
			}
			task, err := s.Coordinator.ChangeTaskStatus(cmd.Context(), id, status)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": task})
		},
	}
	return cmd
}

func newTasksProgressCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress <task-id> <0-100>",
		Short: "Set task progress",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			progress, err := strconv.Atoi(args[1])
			if err != nil || progress < 0 || progress > 100 {
				return writeErr(cmd, errBadArg(args[1], "a number between 0 and 100"))
			}
			s, err := newSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.loadTask(cmd.Context(), id); err != nil {
				return writeErr(cmd, err)
			}
			task, err := s.Coordinator.SetTaskProgress(cmd.Context(), id, progress)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": task})
		},
	}
	return cmd
}

func newTasksAssignCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assign <task-id> <user-id>",
		Short: "Assign a user to a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			userID, err := parseID(args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			s, err := newSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.loadTask(cmd.Context(), id); err != nil {
				return writeErr(cmd, err)
			}
			task, err := s.Coordinator.AssignTask(cmd.Context(), id, userID)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": task})
		},
	}
	return cmd
}

func newTasksDeleteCmd(app *App) *cobra.Command {
	var waitUndo bool

	cmd := &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task (undoable for a few seconds with --wait-undo)",
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
			if err := s.loadTask(cmd.Context(), id); err != nil {
				return writeErr(cmd, err)
			}
			pending, err := s.Undo.DeleteTask(cmd.Context(), id)
			if err != nil {
				return writeErr(cmd, err)
			}
			if !waitUndo {
				return writeOut(cmd, app, map[string]any{"data": map[string]any{"deleted": id}})
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "deleted task %d; press Enter within %s to undo\n", id, time.Until(pending.ExpiresAt).Round(time.Second))
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

// waitForEnter blocks until a line arrives on stdin or the window runs out.
func waitForEnter(cmd *cobra.Command, window time.Duration) bool {
	if window <= 0 {
		return false
	}
	line := make(chan struct{}, 1)
	go func() {
		r := bufio.NewReader(cmd.InOrStdin())
		if _, err := r.ReadString('\n'); err == nil {
			line <- struct{}{}
		}
	}()
	select {
	case <-line:
		return true
	case <-time.After(window):
		return false
	}
}

func parseStatusArg(arg string) (model.Status, error) {
	switch strings.ToLower(strings.TrimSpace(arg)) {
	case "todo", "working", "review", "done", "stuck":
		return model.ParseStatus(arg), nil
	}
	return "", errBadArg(arg, "one of todo|working|review|done|stuck")
}

func parsePriorityArg(arg string) (model.Priority, error) {
	switch strings.ToLower(strings.TrimSpace(arg)) {
	case "low", "medium", "high", "urgent":
		return model.ParsePriority(arg), nil
	}
	return "", errBadArg(arg, "one of low|medium|high|urgent")
}

func parseDateArg(arg string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, arg); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errBadArg(arg, "a date (YYYY-MM-DD or RFC 3339)")
}
