package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docsumm/internal/config"
	"github.com/dgallion1/docsumm/internal/document"
	"github.com/dgallion1/docsumm/internal/parser"
	"github.com/dgallion1/docsumm/internal/pipeline"
)

func summarizeCmd() *cobra.Command {
	var lang string
	var academic bool
	var verbose bool

	cmd := &cobra.Command{
		Use:   "summarize <document>",
		Short: "Summarize a PDF or DOCX file and write JSON, text and HTML reports",
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(1)(cmd, args); err != nil {
				return err
			}
			info, err := os.Stat(args[0])
			if err != nil {
				return fmt.Errorf("document not found: %s", args[0])
			}
			if info.IsDir() {
				return fmt.Errorf("%s is a directory", args[0])
			}
			if !parser.IsSupportedExtension(args[0]) {
				return fmt.Errorf("%w: %s", parser.ErrUnsupportedFormat, filepath.Ext(args[0]))
			}
			if lang != "" {
				return config.ValidateLanguage(lang)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			path := args[0]

			cfg := config.Load()
			if lang != "" {
				cfg.OutputLanguage = lang
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			log, closeLog, err := runLogger(cfg.LogDir, path, verbose)
			if err != nil {
				return err
			}
			defer closeLog()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			deps, closeClient, err := newDeps(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer closeClient()

			mode := document.ModeGeneral
			if academic {
				mode = document.ModeAcademic
			}

			info, _ := os.Stat(path)
			log.Info("starting run", "file", path, "size_bytes", info.Size(),
				"language", cfg.OutputLanguage, "mode", mode, "provider", cfg.Provider, "model", cfg.Model)

			runner := pipeline.NewRunner(cfg, cfg.OutputLanguage, deps, log)
			rep, err := runner.Run(ctx, path, mode, nil)
			if errors.Is(err, pipeline.ErrCancelled) {
				if rep != nil {
					log.Warn("processing cancelled", "regions_done", len(rep.Regions))
				}
				return err
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Status:         %s\n", rep.Status)
			fmt.Fprintf(out, "Regions:        %d\n", len(rep.Regions))
			fmt.Fprintf(out, "Estimated cost: $%.4f\n", rep.CostUSD)
			if rep.Artifacts != nil {
				fmt.Fprintf(out, "JSON report:    %s\n", rep.Artifacts.JSON)
				fmt.Fprintf(out, "Text summary:   %s\n", rep.Artifacts.Text)
				fmt.Fprintf(out, "HTML report:    %s\n", rep.Artifacts.HTML)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&lang, "language", "l", "", "output language: en|bn|ar (default: OUTPUT_LANGUAGE)")
	cmd.Flags().BoolVar(&academic, "academic", false, "treat the document as an academic paper")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log debug output, including each LLM call")
	return cmd
}

// runLogger logs to stderr and to LOG_DIR/<stem>_<timestamp>.log.
func runLogger(dir, path string, verbose bool) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name := fmt.Sprintf("%s_%s.log", stem, time.Now().Format("20060102_150405"))
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, nil, fmt.Errorf("create log file: %w", err)
	}
	w := io.MultiWriter(os.Stderr, f)
	log := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	return log, func() { f.Close() }, nil
}
