package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xtesports/xtesports/internal/database"
	"github.com/xtesports/xtesports/internal/userauth"
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin <username> <password>",
	Args:  cobra.ExactArgs(2),
	Short: "Create an admin or reset the password of an existing one",
}

func init() {
	flags := addConfigFlags(createAdminCmd.Flags())

	createAdminCmd.RunE = func(cmd *cobra.Command, args []string) error {
		opts, err := flags.load()
		if err != nil {
			return err
		}
		log := newLogger(opts)

		db, err := database.New(log, opts.DB)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer db.Close()

		users := userauth.NewManager(log, db, opts.Users)
		user, err := users.EnsureAdmin(context.Background(), args[0], args[1])
		if err != nil {
			return fmt.Errorf("create admin: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "admin %q is ready (id %v)\n", user.Username, user.ID)
		return nil
	}
}
