package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	importCmd := &cobra.Command{Use: "import", Short: "Import CSV exports"}

	visitsCmd := &cobra.Command{
		Use:   "visits FILE",
		Short: "Import a visit log CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doPostFile(fmt.Sprintf("%s/api/visits/import", apiFlag), args[0], "text/csv")
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	importCmd.AddCommand(visitsCmd)

	receiptsCmd := &cobra.Command{
		Use:   "receipts FILE",
		Short: "Import a material receipt CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doPostFile(fmt.Sprintf("%s/api/receipts/import", apiFlag), args[0], "text/csv")
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	importCmd.AddCommand(receiptsCmd)

	rootCmd.AddCommand(importCmd)
}
