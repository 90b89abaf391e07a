package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docsumm/internal/pipeline"
)

func main() {
	root := &cobra.Command{
		Use:           "docsumm",
		Short:         "Summarize long PDF and DOCX documents region by region",
		SilenceErrors: true,
	}

	root.AddCommand(summarizeCmd())
	root.AddCommand(serveCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, pipeline.ErrCancelled) {
			os.Exit(130)
		}
		os.Exit(1)
	}
}
