package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"clipforge/config"
	"clipforge/internal/deps"
	"clipforge/internal/service"
	"clipforge/internal/storage"
	"clipforge/internal/types"
	"clipforge/log"
)

type cliFlags struct {
	count       int
	configPath  string
	gameContext string
	autonomous  bool
	reencode    bool
}

func newRootCommand() *cobra.Command {
	flags := &cliFlags{}

	cmd := &cobra.Command{
		Use:   "clipforge <video>",
		Short: "Extract the best highlight clips from a gaming video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absPath, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}
			if info, err := os.Stat(absPath); err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("video does not exist: %s", absPath)
				}
				return fmt.Errorf("inspect video: %w", err)
			} else if info.IsDir() {
				return fmt.Errorf("%s is a directory", absPath)
			}
			return runPipeline(cmd, absPath, flags)
		},
	}

	cmd.Flags().IntVarP(&flags.count, "count", "n", 0, "number of clips to extract (default from config)")
	cmd.Flags().StringVar(&flags.configPath, "config", "", "path to the config file")
	cmd.Flags().StringVar(&flags.gameContext, "context", "", "game context hint passed to the scoring model")
	cmd.Flags().BoolVar(&flags.autonomous, "autonomous", false, "let the orchestrator drive the pipeline")
	cmd.Flags().BoolVar(&flags.reencode, "reencode", false, "re-encode clips instead of stream copy")

	return cmd
}

func runPipeline(cmd *cobra.Command, videoPath string, flags *cliFlags) error {
	if flags.configPath != "" {
		config.SetConfigPath(flags.configPath)
	}
	if !config.LoadConfig() {
		return errors.New("failed to load config")
	}
	if err := config.CheckConfig(); err != nil {
		return err
	}
	if err := deps.CheckDependency(); err != nil {
		return err
	}

	storage.InitDB()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := service.NewService()
	req := service.ProcessRequest{
		VideoPath:   videoPath,
		Count:       flags.count,
		TaskID:      uuid.NewString(),
		GameContext: flags.gameContext,
		Reencode:    flags.reencode,
		Progress: func(stage string, percent int) {
			fmt.Fprintf(cmd.OutOrStdout(), "[%3d%%] %s\n", percent, stage)
		},
	}

	var (
		result *types.RunResult
		err    error
	)
	if flags.autonomous {
		result, err = svc.RunAutonomous(ctx, req)
	} else {
		result, err = svc.ProcessVideo(ctx, req)
	}
	if err != nil {
		log.GetLogger().Error("highlight extraction failed", zap.Error(err))
		return err
	}

	printSummary(cmd, result)
	return nil
}

func printSummary(cmd *cobra.Command, result *types.RunResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n%s (%.1fs, %s): %d scenes detected, %d analyzed, %d clips extracted\n",
		result.Video.Name, result.Video.Duration, result.Video.Resolution,
		result.Processing.ScenesDetected, result.Processing.ScenesAnalyzed, result.Processing.ClipsExtracted)
	for _, clip := range result.Clips {
		fmt.Fprintf(out, "  #%d  score %3d  %7.1fs  %s\n      %s\n",
			clip.Rank, clip.Score, clip.Timestamp, clip.Description, clip.Path)
	}
}

func main() {
	_ = godotenv.Load()
	log.InitLogger()
	defer log.GetLogger().Sync()

	if err := newRootCommand().Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
