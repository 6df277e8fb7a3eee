package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/open-gallery/narrator-cli/internal/pipeline"
)

var auditsCmd = &cobra.Command{
	Use:   "audits",
	Short: "Work with the auditing database",
}

var auditsReconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Backfill missing piece overviews from audit content",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		catalog, err := initCatalog(ctx)
		if err != nil {
			return err
		}
		defer catalog.Close()

		audits, err := initAuditStore(ctx)
		if err != nil {
			return err
		}
		defer audits.Close()

		updated, err := pipeline.NewReconciler(catalog, audits).Reconcile(ctx)
		if err != nil {
			return err
		}
		zap.L().Info("reconciliation complete", zap.Int("updated", updated))
		return nil
	},
}

func init() {
	auditsCmd.AddCommand(auditsReconcileCmd)
	rootCmd.AddCommand(auditsCmd)
}
