package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/open-gallery/narrator-cli/internal/pipeline"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Generate and record narrated audio for catalog entities",
}

var syncPiecesCmd = &cobra.Command{
	Use:   "pieces",
	Short: "Sync audio for every candidate piece",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		narrator, closeFn, err := initNarrator(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		summary, err := narrator.SyncPieces(ctx)
		logSummary("piece sync finished", summary)
		return err
	},
}

var syncArtistsCmd = &cobra.Command{
	Use:   "artists",
	Short: "Sync audio for every candidate artist",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		narrator, closeFn, err := initNarrator(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		summary, err := narrator.SyncArtists(ctx)
		logSummary("artist sync finished", summary)
		return err
	},
}

func init() {
	syncCmd.AddCommand(syncPiecesCmd)
	syncCmd.AddCommand(syncArtistsCmd)
	rootCmd.AddCommand(syncCmd)
}

func logSummary(msg string, s pipeline.Summary) {
	zap.L().Info(msg,
		zap.Int("created", s.Created),
		zap.Int("exists", s.Exists),
		zap.Int("no_text", s.NoText),
		zap.Int("aborted", s.Aborted),
		zap.Int("total", s.Total()),
	)
}
