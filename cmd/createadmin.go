/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dekorhaus/apiserver/config"
	"github.com/dekorhaus/apiserver/internal/db"
	"github.com/dekorhaus/apiserver/internal/store"
	"github.com/dekorhaus/apiserver/types"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var (
	createAdminUsername string
	createAdminPassword string
	createAdminEmail    string
)

// createAdminCmd seeds a superuser account so the site has an admin
// before anyone registers.
var createAdminCmd = &cobra.Command{
	Use:   "createadmin",
	Short: "Create an admin account",
	RunE: func(cmd *cobra.Command, args []string) error {
		username := strings.TrimSpace(createAdminUsername)
		if username == "" {
			return errors.New("--username is required")
		}
		if createAdminPassword == "" {
			return errors.New("--password is required")
		}

		cfg := config.LoadConfig()
		dbConn, err := db.Open(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer dbConn.Close()

		hashed, err := bcrypt.GenerateFromPassword([]byte(createAdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		users := store.NewUserRepository(dbConn)
		user, err := users.Create(cmd.Context(), types.User{
			Username:     username,
			Email:        strings.TrimSpace(createAdminEmail),
			Role:         types.RoleAdmin,
			IsStaff:      true,
			IsSuperuser:  true,
			PasswordHash: string(hashed),
		})
		if err != nil {
			return fmt.Errorf("create admin failed: %w", err)
		}

		fmt.Printf("created admin %q (id %d)\n", user.Username, user.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createAdminCmd)

	createAdminCmd.Flags().StringVar(&createAdminUsername, "username", "", "admin username")
	createAdminCmd.Flags().StringVar(&createAdminPassword, "password", "", "admin password")
	createAdminCmd.Flags().StringVar(&createAdminEmail, "email", "", "admin email")
}
