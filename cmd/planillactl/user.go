package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"planillas/internal/model"
	"planillas/internal/service"
	"planillas/pkg/pagination"
)

func newUserCmd(users func() (service.UserService, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage directory users",
	}
	cmd.AddCommand(newUserCreateCmd(users), newUserListCmd(users), newUserSetActiveCmd(users))
	return cmd
}

func newUserCreateCmd(users func() (service.UserService, error)) *cobra.Command {
	var (
		req      service.CreateUserRequest
		inactive bool
	)
	cmd := &cobra.Command{
		Use:     "create",
		Short:   "Create a directory user",
		Example: "  planillactl user create --email admin@example.com --name Admin --role admin --password s3cret!",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(req.Password) < 6 {
				return errors.New("password must be at least 6 characters")
			}
			if !model.ValidRole(req.Role) {
				return service.ErrInvalidRole
			}
			svc, err := users()
			if err != nil {
				return err
			}
			active := !inactive
			req.Active = &active
			u, err := svc.CreateUser(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) with role %s\n", u.Email, u.ID, u.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "login email")
	cmd.Flags().StringVar(&req.Name, "name", "", "display name")
	cmd.Flags().StringVar(&req.Role, "role", model.RoleEditor, "admin, editor or viewer")
	cmd.Flags().StringVar(&req.Password, "password", "", "initial password (min 6 characters)")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "create the user disabled")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newUserListCmd(users func() (service.UserService, error)) *cobra.Command {
	var page, limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List directory users, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := users()
			if err != nil {
				return err
			}
			params := pagination.New(page, limit)
			list, total, err := svc.ListUsers(cmd.Context(), params)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tEMAIL\tNAME\tROLE\tACTIVE")
			for _, u := range list {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", u.ID, u.Email, u.Name, u.Role, u.Active)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "page %d, %d of %d users\n", params.Page, len(list), total)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", pagination.DefaultPage, "page number")
	cmd.Flags().IntVar(&limit, "limit", pagination.DefaultLimit, "users per page")
	return cmd
}

func newUserSetActiveCmd(users func() (service.UserService, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "set-active <user-id> <true|false>",
		Short: "Enable or disable a user's login",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid user id %q: %w", args[0], err)
			}
			var active bool
			switch args[1] {
			case "true":
				active = true
			case "false":
			default:
				return fmt.Errorf("active must be true or false, got %q", args[1])
			}

			svc, err := users()
			if err != nil {
				return err
			}
			u, err := svc.UpdateUser(cmd.Context(), id.String(), service.UpdateUserRequest{Active: &active})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s active=%t\n", u.Email, u.Active)
			return nil
		},
	}
}
