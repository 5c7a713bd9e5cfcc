package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"garderie_backend/internals/constants"
	database "garderie_backend/internals/databases"
	userDTO "garderie_backend/internals/features/users/user/dto"
	userService "garderie_backend/internals/features/users/user/service"
	"garderie_backend/internals/seeds"
)

// migrateCmd creates or updates every table and index.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
		logger.Info("migration complete", zap.Int("models", len(database.Models())))
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo users, children and menus",
	Long: `Load the embedded demo fixtures.

Rows that already exist (same email, same child, same week) are left alone,
so the command can be run repeatedly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
		res, err := seeds.RunDefault(ctx, db, logger)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d users, %d children, %d menus\n", res.Users, res.Children, res.Menus)
		return nil
	},
}

var adminName, adminEmail, adminPassword, adminPhone string

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an administrator account",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		req := userDTO.CreateUserRequest{
			Name:     adminName,
			Email:    adminEmail,
			Password: adminPassword,
			Role:     constants.RoleAdmin,
		}
		if adminPhone != "" {
			req.Phone = &adminPhone
		}
		u, err := userService.New(db, logger).Create(ctx, req)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "admin %s created (%s)\n", u.Email, u.ID)
		return nil
	},
}

func init() {
	f := createAdminCmd.Flags()
	f.StringVar(&adminName, "name", "Administrateur", "display name")
	f.StringVar(&adminEmail, "email", "", "login email")
	f.StringVar(&adminPassword, "password", "", "initial password (min 6 chars)")
	f.StringVar(&adminPhone, "phone", "", "phone number")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
}
