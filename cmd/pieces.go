package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/open-gallery/narrator-cli/internal/store"
)

var (
	findID          int
	findTitle       string
	findDisplayDate string
	findArtist      string
	findLocation    string
	findSearchTerm  string
)

var piecesCmd = &cobra.Command{
	Use:   "pieces",
	Short: "Inspect catalog pieces",
}

var piecesFindCmd = &cobra.Command{
	Use:   "find",
	Short: "Look up pieces by id, title or field filters",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		catalog, err := initCatalog(ctx)
		if err != nil {
			return err
		}
		defer catalog.Close()

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		// A search term takes precedence and uses the server-side procedure.
		if findSearchTerm != "" {
			piece, err := catalog.SearchPieces(ctx, findSearchTerm)
			if err != nil {
				return err
			}
			return enc.Encode(piece)
		}

		if findID > 0 && findTitle == "" && findDisplayDate == "" && findArtist == "" && findLocation == "" {
			piece, err := catalog.GetPieceByID(ctx, findID)
			if err != nil {
				return err
			}
			if piece == nil {
				fmt.Printf("no piece with id %d\n", findID)
				return nil
			}
			return enc.Encode(piece)
		}

		filter := store.PieceFilter{}
		if findID > 0 {
			filter.ID = &findID
		}
		if findTitle != "" {
			filter.Title = &findTitle
		}
		if findDisplayDate != "" {
			filter.DisplayDate = &findDisplayDate
		}
		if findArtist != "" {
			filter.Artist = &findArtist
		}
		if findLocation != "" {
			filter.Location = &findLocation
		}

		pieces, err := catalog.FindPieces(ctx, filter)
		if err != nil {
			return err
		}
		return enc.Encode(pieces)
	},
}

func init() {
	piecesFindCmd.Flags().IntVar(&findID, "id", 0, "exact piece id")
	piecesFindCmd.Flags().StringVar(&findTitle, "title", "", "title substring (case-insensitive)")
	piecesFindCmd.Flags().StringVar(&findDisplayDate, "displaydate", "", "display date substring")
	piecesFindCmd.Flags().StringVar(&findArtist, "artist", "", "artist name substring")
	piecesFindCmd.Flags().StringVar(&findLocation, "location", "", "location substring")
	piecesFindCmd.Flags().StringVar(&findSearchTerm, "search", "", "combined title/artist search term (server-side search)")
	piecesCmd.AddCommand(piecesFindCmd)
	rootCmd.AddCommand(piecesCmd)
}
