package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"word-counter/internal/wordcount"
)

func newCountCmd() *cobra.Command {
	var sorted, lf bool

	cmd := &cobra.Command{
		Use:   "count FILE...",
		Short: "Count words locally and print the result",
		Long: `Count words in one or more files without contacting the service.

With several files the counts are combined. Use "-" to read standard input.
The output is byte-identical to what the service stores unless --sorted or
--lf is given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			total := wordcount.NewCounts()
			for _, path := range args {
				c, err := countFile(cmd, path)
				if err != nil {
					return err
				}
				total.Merge(c)
			}

			f := wordcount.Formatter{SortKeys: sorted}
			if lf {
				f.LineBreak = "\n"
			}
			_, err := io.WriteString(cmd.OutOrStdout(), f.Format(total))
			return err
		},
	}

	cmd.Flags().BoolVar(&sorted, "sorted", false, "Order by count descending, then word")
	cmd.Flags().BoolVar(&lf, "lf", false, "Terminate lines with LF instead of CRLF")
	return cmd
}

func countFile(cmd *cobra.Command, path string) (*wordcount.Counts, error) {
	if path == "-" {
		return wordcount.Count(cmd.InOrStdin())
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := wordcount.Count(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}
