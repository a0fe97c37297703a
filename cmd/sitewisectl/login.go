package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	var email, password string
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print a bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || password == "" {
				return fmt.Errorf("--email and --password required")
			}
			data, err := doPostJSON(apiFlag+"/api/auth/login", map[string]string{
				"email":    email,
				"password": password,
			})
			if err != nil {
				return err
			}
			var out struct {
				Token string `json:"token"`
			}
			if err := json.Unmarshal(data, &out); err != nil {
				return err
			}
			// Print just the token so it can feed SITEWISE_TOKEN directly.
			_, _ = fmt.Fprintln(os.Stdout, out.Token)
			return nil
		},
	}
	loginCmd.Flags().StringVarP(&email, "email", "e", "", "Account email (required)")
	loginCmd.Flags().StringVarP(&password, "password", "p", "", "Account password (required)")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")
	rootCmd.AddCommand(loginCmd)
}
