package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/open-gallery/narrator-cli/internal/pipeline"
)

var cleanupLogPath string

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete audio for pieces whose overview was invalidated",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		catalog, err := initCatalog(ctx)
		if err != nil {
			return err
		}
		defer catalog.Close()

		logFile, err := os.Create(cleanupLogPath)
		if err != nil {
			return eris.Wrap(err, "create cleanup log")
		}
		defer logFile.Close()

		deleted, err := pipeline.NewCleaner(catalog).RemoveTaintedAudio(ctx, logFile)
		if err != nil {
			return err
		}
		zap.L().Info("cleanup complete",
			zap.Int("deleted", deleted),
			zap.String("log", cleanupLogPath),
		)
		return nil
	},
}

func init() {
	cleanupCmd.Flags().StringVar(&cleanupLogPath, "log", "deleted_audios.txt", "path of the deletion log file")
	rootCmd.AddCommand(cleanupCmd)
}
