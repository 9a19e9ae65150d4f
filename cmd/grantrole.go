package main

import (
	"fmt"

	"github.com/GHIG-Portal/webinar-registration/roles"
	"github.com/spf13/cobra"
)

var grantRole string

var grantRoleCmd = &cobra.Command{
	Use:   "grant-role <email>",
	Short: "Give an account a role, admin by default",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, logger, err := setup()
		if err != nil {
			return err
		}

		awsCfg, err := loadAWSConfig(ctx, cfg)
		if err != nil {
			return err
		}

		db, err := newDB(ctx, awsCfg, cfg, logger)
		if err != nil {
			return err
		}

		email := roles.NormalizeEmail(args[0])
		err = db.PutUserRole(ctx, roles.UserRole{Email: email, Role: grantRole})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", email, grantRole)
		return nil
	},
}

func init() {
	grantRoleCmd.Flags().StringVarP(&grantRole, "role", "r", roles.ADMIN, "role to grant")
}
