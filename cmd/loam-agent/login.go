package main

import (
	"errors"

	"github.com/spf13/cobra"
)

var errNoCredentials = errors.New("no credentials: set LOAM_EMAIL and LOAM_PASSWORD or pass --email/--password")

func newLoginCmd(a *app) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and print the session's organization",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if email == "" {
				email = a.cfg.Email
			}
			if password == "" {
				password = a.cfg.Password
			}
			if email == "" || password == "" {
				return errNoCredentials
			}

			session, err := a.client.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			cmd.Printf("logged in until %s\norganization: %s\n",
				session.Expires.Format("2006-01-02 15:04:05"), session.OrganizationNodeID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	return cmd
}
