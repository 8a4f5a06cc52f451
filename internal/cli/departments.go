package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"boardsync-cli/internal/gateway"
)

func newDepartmentsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "departments",
		Short: "Department commands",
	}
	cmd.AddCommand(newDepartmentsListCmd(app))
	cmd.AddCommand(newDepartmentsCreateCmd(app))
	cmd.AddCommand(newDepartmentsUpdateCmd(app))
	cmd.AddCommand(newDepartmentsDeleteCmd(app))
	return cmd
}

func newDepartmentsListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List departments",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			departments, err := s.gw.ListDepartments(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": departments})
		},
	}
	return cmd
}

func newDepartmentsCreateCmd(app *App) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a department",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			dept, err := s.Coordinator.CreateDepartment(cmd.Context(), gateway.DepartmentDraft{
				Name: strings.TrimSpace(name),
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": dept})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Department name")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newDepartmentsUpdateCmd(app *App) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "update <department-id>",
		Short: "Rename a department",
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
			if err := loadDepartment(cmd, s, id); err != nil {
				return writeErr(cmd, err)
			}
			v := strings.TrimSpace(name)
			dept, err := s.Coordinator.UpdateDepartment(cmd.Context(), id, gateway.DepartmentPatch{Name: &v})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": dept})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newDepartmentsDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <department-id>",
		Short: "Delete a department",
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
			if err := loadDepartment(cmd, s, id); err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Coordinator.DeleteDepartment(cmd.Context(), id); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"deleted": id}})
		},
	}
	return cmd
}

func loadDepartment(cmd *cobra.Command, s *session, id int64) error {
	departments, err := s.gw.ListDepartments(cmd.Context())
	if err != nil {
		return err
	}
	for _, d := range departments {
		if d.ID == id {
			s.Store.Departments.UpsertOne(d)
			return nil
		}
	}
	return errBadArg(strconv.FormatInt(id, 10), "an existing department id")
}
