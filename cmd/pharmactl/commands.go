package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"pharmacare/internal/config"
	"pharmacare/internal/infra"
	"pharmacare/internal/model"
	"pharmacare/internal/repository"
	"pharmacare/internal/service"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := infra.Migrate(cfg.DatabaseURL); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied.")
			return nil
		},
	})

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			if steps < 1 {
				return fmt.Errorf("--steps must be at least 1")
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := infra.MigrateDown(cfg.DatabaseURL, steps); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rolled back %d migration(s).\n", steps)
			return nil
		},
	}
	downCmd.Flags().Int("steps", 1, "Number of migrations to roll back")
	cmd.AddCommand(downCmd)

	return cmd
}

func seedAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create an administrator account, or grant ROLE_ADMIN to an existing one",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			first, _ := cmd.Flags().GetString("first-name")
			last, _ := cmd.Flags().GetString("last-name")
			if email == "" {
				return fmt.Errorf("--email is required")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := infra.NewDatabase(cfg.DatabaseURL, cfg.DBLogSQL)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}

			return seedAdmin(cmd.Context(), repository.NewUserRepository(db), adminSeed{
				Email: email, Password: password, FirstName: first, LastName: last,
			}, cmd.OutOrStdout())
		},
	}
	cmd.Flags().String("email", "", "Administrator email")
	cmd.Flags().String("password", "", "Password for a new account (min 6 characters)")
	cmd.Flags().String("first-name", "Admin", "First name for a new account")
	cmd.Flags().String("last-name", "User", "Last name for a new account")
	return cmd
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print the bcrypt hash of a password (read from stdin when omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var plain string
			if len(args) == 1 {
				plain = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return err
				}
				plain = strings.TrimRight(line, "\r\n")
			}
			if plain == "" {
				return fmt.Errorf("empty password")
			}
			hash, err := service.HashPassword(plain)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

type adminSeed struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// seedAdmin creates the account with ROLE_USER and ROLE_ADMIN, or adds
// ROLE_ADMIN to an existing account. Existing passwords are left unchanged.
func seedAdmin(ctx context.Context, users repository.UserRepository, in adminSeed, out io.Writer) error {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	existing, err := users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.HasRole(model.RoleAdmin) {
			fmt.Fprintf(out, "%s is already an administrator.\n", email)
			return nil
		}
		roles, err := users.FindRoles(ctx, nil, model.RoleAdmin)
		if err != nil {
			return err
		}
		if len(roles) == 0 {
			return fmt.Errorf("role %s is missing; run migrations first", model.RoleAdmin)
		}
		if err := users.AddRole(ctx, nil, existing, roles[0]); err != nil {
			return err
		}
		fmt.Fprintf(out, "Granted %s to %s.\n", model.RoleAdmin, email)
		return nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}

	if len(in.Password) < 6 {
		return fmt.Errorf("--password must be at least 6 characters")
	}
	roles, err := users.FindRoles(ctx, nil, model.RoleUser, model.RoleAdmin)
	if err != nil {
		return err
	}
	if len(roles) != 2 {
		return fmt.Errorf("roles are missing; run migrations first")
	}
	hash, err := service.HashPassword(in.Password)
	if err != nil {
		return err
	}

	u := &model.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Enabled:      true,
		Roles:        roles,
	}
	if err := users.Create(ctx, nil, u); err != nil {
		return err
	}
	fmt.Fprintf(out, "Created administrator %s (%s).\n", email, u.ID)
	return nil
}
