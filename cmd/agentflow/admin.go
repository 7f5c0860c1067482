package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/agentflow-ai/agentflow-go/pkg/admin"
)

type userAction func(ctx context.Context, userID int) (*admin.ActionResult, error)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "User management (admin accounts only)",
	}
	cmd.AddCommand(newAdminUsersCmd())
	cmd.AddCommand(newAdminUserActionCmd("disable <user-id>", "Disable a user account",
		func(a *admin.API) userAction { return a.DisableUser }))
	cmd.AddCommand(newAdminUserActionCmd("enable <user-id>", "Re-enable a disabled account",
		func(a *admin.API) userAction { return a.EnableUser }))
	cmd.AddCommand(newAdminUserActionCmd("delete <user-id>", "Delete a user account",
		func(a *admin.API) userAction { return a.DeleteUser }))
	return cmd
}

func newAdminUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List user accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, _, err := newClient()
			if err != nil {
				return err
			}
			users, err := admin.NewAPI(c).Users(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([][]string, len(users))
			for i, u := range users {
				active := "yes"
				if !u.IsActive {
					active = "no"
				}
				rows[i] = []string{strconv.Itoa(u.ID), u.Email, u.Role, active}
			}
			table([]string{"ID", "EMAIL", "ROLE", "ACTIVE"}, rows)
			return nil
		},
	}
}

func newAdminUserActionCmd(use, short string, pick func(*admin.API) userAction) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid user id %q", args[0])
			}
			c, _, err := newClient()
			if err != nil {
				return err
			}
			result, err := pick(admin.NewAPI(c))(cmd.Context(), userID)
			if err != nil {
				return err
			}
			fmt.Println(result.Message)
			return nil
		},
	}
}
