package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	cfgPkg "github.com/xhad/reelindex/pkg/config"
)

var (
	cfgFile string
	envFile string
	verbose bool

	cfg    *cfgPkg.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "reelindex",
	Short: "Index a ranked movie-list PDF into a vector store",
	Long: `reelindex pulls poster images and page text out of a ranked movie-list PDF,
describes every poster with a multimodal model and stores descriptions and page text
in a vector store for semantic retrieval.

Stages run in order: extract, images, pages. list, delete, query and serve inspect
the store.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)

		if err := cfgPkg.LoadDotEnv(envFile); err != nil {
			return err
		}

		loaded, err := cfgPkg.LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to a .env file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// validate reports configuration errors for the given sections; no sections checks all.
func validate(sections ...string) error {
	var msgs []string
	for _, e := range cfg.Validate() {
		if len(sections) > 0 && !inSection(e.Field, sections) {
			continue
		}
		msgs = append(msgs, e.Error())
	}
	if len(msgs) == 0 {
		return nil
	}

	color.Red("Configuration errors:")
	for _, m := range msgs {
		color.Red("  - %s", m)
	}
	return fmt.Errorf("invalid configuration")
}

func inSection(field string, sections []string) bool {
	for _, s := range sections {
		if strings.HasPrefix(field, s+".") {
			return true
		}
	}
	return false
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
