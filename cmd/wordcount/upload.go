package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newUploadCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "upload FILE",
		Short: "Send a plain text file to the service and print the result locator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.newClient(cmd)
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			locator, err := c.Upload(cmd.Context(), args[0], f)
			if err != nil {
				return fmt.Errorf("upload %s: %w", args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), locator)
			return nil
		},
	}
}
