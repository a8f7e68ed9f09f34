package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/litcafe/backoffice/internal/employees"
	"github.com/litcafe/backoffice/pkg/db"
	"github.com/litcafe/backoffice/pkg/enums"
)

func newEmployeeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "employee",
		Short: "Manage staff accounts",
	}
	cmd.AddCommand(newEmployeeCreateCmd(), newEmployeeSetPasswordCmd())
	return cmd
}

func newEmployeeCreateCmd() *cobra.Command {
	var (
		name     string
		email    string
		password string
		role     string
		phone    string
		hiredOn  string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an employee; use it to seed the first manager",
		RunE: func(cmd *cobra.Command, _ []string) error {
			parsedRole, err := enums.ParseEmployeeRole(role)
			if err != nil {
				return err
			}
			input := employees.CreateInput{
				ProfileInput: employees.ProfileInput{
					Name:    name,
					Role:    parsedRole,
					HiredOn: hiredOn,
					Email:   email,
				},
				Password: password,
			}
			if phone != "" {
				input.Phone = &phone
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				svc, err := employees.NewService(employees.NewRepository(a.db.DB()), a.cfg.Password)
				if err != nil {
					return err
				}
				created, err := svc.Create(ctx, input)
				if err != nil {
					return err
				}
				return render(cmd, created,
					[]string{"ID", "NAME", "EMAIL", "ROLE"},
					[][]string{{created.ID.String(), created.Name, created.Email, created.Role.String()}},
				)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "full name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "initial password")
	cmd.Flags().StringVar(&role, "role", enums.EmployeeRoleManager.String(), "employee role")
	cmd.Flags().StringVar(&phone, "phone", "", "contact phone")
	cmd.Flags().StringVar(&hiredOn, "hired-on", "", "hire date (YYYY-MM-DD); defaults to today")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newEmployeeSetPasswordCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "set-password",
		Short: "Replace an employee's password",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				repo := employees.NewRepository(a.db.DB())
				employee, err := repo.FindByEmail(ctx, email)
				if err != nil {
					if db.IsNotFound(err) {
						return fmt.Errorf("no employee with email %q", email)
					}
					return err
				}
				svc, err := employees.NewService(repo, a.cfg.Password)
				if err != nil {
					return err
				}
				if err := svc.SetPassword(ctx, employee.ID, password); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "password updated for %s\n", employee.Email)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "new password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
