package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/iliyamo/photoshare-api/internal/model"
)

// UserAdmin is the account management photoctl needs.
// *service.Authenticator satisfies it.
type UserAdmin interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	ChangeRole(ctx context.Context, adminEmail, targetEmail string, role model.Role) error
}

// Backend opens the resources behind the commands.
type Backend interface {
	Users(ctx context.Context) (UserAdmin, func(), error)
	Migrate(ctx context.Context) error
}

func rootCmd(b Backend) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "photoctl",
		Short:         "Operator tool for the photoshare API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(usersCmd(b), migrateCmd(b), &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "photoctl version %s\n", Version)
		},
	})
	return cmd
}

func usersCmd(b Backend) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Inspect and manage accounts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			users, done, err := b.Users(cmd.Context())
			if err != nil {
				return err
			}
			defer done()
			all, err := users.ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tROLE\tCONFIRMED")
			for _, u := range all {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%t\n", u.ID, u.Username, u.Email, u.Role, u.Confirmed)
			}
			return w.Flush()
		},
	})

	var adminEmail, targetEmail, role string
	roleCmd := &cobra.Command{
		Use:   "role",
		Short: "Change the role of an account on behalf of an admin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := model.ParseRole(role)
			if err != nil {
				return err
			}
			users, done, err := b.Users(cmd.Context())
			if err != nil {
				return err
			}
			defer done()
			if err := users.ChangeRole(cmd.Context(), adminEmail, targetEmail, r); err != nil {
				return fmt.Errorf("change role: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", targetEmail, r)
			return nil
		},
	}
	roleCmd.Flags().StringVar(&adminEmail, "admin", "", "email of the acting admin")
	roleCmd.Flags().StringVar(&targetEmail, "target", "", "email of the account to change")
	roleCmd.Flags().StringVar(&role, "role", "", "new role: admin, moderator or user")
	_ = roleCmd.MarkFlagRequired("admin")
	_ = roleCmd.MarkFlagRequired("target")
	_ = roleCmd.MarkFlagRequired("role")
	cmd.AddCommand(roleCmd)

	return cmd
}

func migrateCmd(b Backend) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create missing database tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := b.Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema ready")
			return nil
		},
	}
}
