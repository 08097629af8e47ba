package main

import (
	"errors"
	"fmt"

	"github.com/fungo/internal/db"
	"github.com/fungo/internal/service"
	"github.com/spf13/cobra"
)

func newCreateUserCmd() *cobra.Command {
	var input service.RegisterInput

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a login account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := bootstrap()
			if err != nil {
				return err
			}
			defer rt.close()

			user, err := service.NewUserService(db.DB).Register(input)
			if err != nil {
				if errors.Is(err, service.ErrUserExists) {
					return fmt.Errorf("user %q already exists", input.Username)
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "user %s created (id %d)\n", user.Username, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&input.Username, "username", "", "login name")
	cmd.Flags().StringVar(&input.Password, "password", "", "password, at least 8 characters")
	cmd.Flags().StringVar(&input.Email, "email", "", "optional email address")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
