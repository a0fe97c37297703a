package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	usersCmd := &cobra.Command{Use: "users", Short: "User operations"}

	// create
	var email, name, role, password string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || role == "" || password == "" {
				return fmt.Errorf("--email, --role and --password required")
			}
			payload := map[string]interface{}{"email": email, "role": role, "password": password}
			if name != "" {
				payload["displayName"] = name
			}
			data, err := doPostJSON(fmt.Sprintf("%s/api/users", apiFlag), payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	createCmd.Flags().StringVarP(&email, "email", "e", "", "User email (required)")
	createCmd.Flags().StringVarP(&name, "name", "n", "", "Display name")
	createCmd.Flags().StringVarP(&role, "role", "r", "", "Role: admin, manager or viewer (required)")
	createCmd.Flags().StringVarP(&password, "password", "p", "", "Initial password (required)")
	_ = createCmd.MarkFlagRequired("email")
	_ = createCmd.MarkFlagRequired("role")
	_ = createCmd.MarkFlagRequired("password")
	usersCmd.AddCommand(createCmd)

	// get
	getCmd := &cobra.Command{
		Use:   "get USER_ID",
		Short: "Get user by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet(fmt.Sprintf("%s/api/users/%s", apiFlag, args[0]))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	usersCmd.AddCommand(getCmd)

	// list
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet(fmt.Sprintf("%s/api/users", apiFlag))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	usersCmd.AddCommand(listCmd)

	rootCmd.AddCommand(usersCmd)
}
