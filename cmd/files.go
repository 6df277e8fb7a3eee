package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List MP3 files previously uploaded to the archive",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		arc, err := initArchive()
		if err != nil {
			return err
		}

		files, err := arc.ListAudioFiles(ctx)
		if err != nil {
			return err
		}
		for _, f := range files {
			fmt.Printf("%s\t%s\t%s\n", f.Identifier, f.Name, f.URL)
		}
		fmt.Printf("%d files\n", len(files))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(filesCmd)
}
