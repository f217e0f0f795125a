package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"word-counter/internal/client"
)

func newFetchCmd(opts *globalOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "fetch LOCATOR|NAME",
		Short: "Download a stored result",
		Long: `Download a stored result by its full locator URL or by its bare name.
A bare name is resolved against --server.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.newClient(cmd)
			if err != nil {
				return err
			}

			content, err := c.Fetch(cmd.Context(), args[0])
			if err != nil {
				if client.IsNotFound(err) {
					return fmt.Errorf("no result named %s", args[0])
				}
				return err
			}

			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(content)
				return err
			}
			return os.WriteFile(output, content, 0o644)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the result to a file instead of stdout")
	return cmd
}
