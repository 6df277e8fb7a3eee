package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/open-gallery/narrator-cli/internal/pipeline"
	"github.com/open-gallery/narrator-cli/internal/store"
	"github.com/open-gallery/narrator-cli/pkg/archive"
	"github.com/open-gallery/narrator-cli/pkg/elevenlabs"
)

func initCatalog(ctx context.Context) (store.Catalog, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "catalog.db"
		}
		return store.NewSQLite(dsn, cfg.Store.PageSize)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, cfg.Store.PageSize)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func initAuditStore(ctx context.Context) (store.AuditStore, error) {
	if cfg.AuditStore.DatabaseURL == "" {
		return nil, eris.New("audit database URL is required (NARRATOR_AUDITSTORE_DATABASE_URL)")
	}
	return store.NewPostgresAuditStore(ctx, cfg.AuditStore.DatabaseURL)
}

func initTTS() (elevenlabs.Client, error) {
	if cfg.ElevenLabs.Key == "" {
		return nil, eris.New("elevenlabs API key is required (NARRATOR_ELEVENLABS_KEY)")
	}
	opts := []elevenlabs.Option{
		elevenlabs.WithVoice(cfg.ElevenLabs.VoiceID),
		elevenlabs.WithVoiceSettings(elevenlabs.VoiceSettings{
			Stability:       cfg.ElevenLabs.Stability,
			SimilarityBoost: cfg.ElevenLabs.SimilarityBoost,
		}),
	}
	if cfg.ElevenLabs.BaseURL != "" {
		opts = append(opts, elevenlabs.WithBaseURL(cfg.ElevenLabs.BaseURL))
	}
	return elevenlabs.NewClient(cfg.ElevenLabs.Key, opts...), nil
}

func initArchive() (archive.Client, error) {
	if cfg.Archive.AccessKey == "" || cfg.Archive.Secret == "" {
		return nil, eris.New("archive S3 credentials are required (NARRATOR_ARCHIVE_ACCESS_KEY, NARRATOR_ARCHIVE_SECRET)")
	}
	creds := archive.Credentials{
		Email:     cfg.Archive.Email,
		Password:  cfg.Archive.Password,
		AccessKey: cfg.Archive.AccessKey,
		Secret:    cfg.Archive.Secret,
	}
	var opts []archive.Option
	if cfg.Archive.MetadataURL != "" {
		opts = append(opts, archive.WithMetadataURL(cfg.Archive.MetadataURL))
	}
	if cfg.Archive.S3URL != "" {
		opts = append(opts, archive.WithS3URL(cfg.Archive.S3URL))
	}
	if cfg.Archive.DownloadURL != "" {
		opts = append(opts, archive.WithDownloadURL(cfg.Archive.DownloadURL))
	}
	if cfg.Archive.SearchURL != "" {
		opts = append(opts, archive.WithSearchURL(cfg.Archive.SearchURL))
	}
	return archive.NewClient(creds, opts...), nil
}

// initNarrator wires the sync workflow and returns a cleanup func that
// closes the catalog connection.
func initNarrator(ctx context.Context) (*pipeline.Narrator, func(), error) {
	catalog, err := initCatalog(ctx)
	if err != nil {
		return nil, nil, err
	}
	tts, err := initTTS()
	if err != nil {
		catalog.Close()
		return nil, nil, err
	}
	arc, err := initArchive()
	if err != nil {
		catalog.Close()
		return nil, nil, err
	}

	narrator := pipeline.NewNarrator(catalog, tts, arc, cfg.Archive.PieceCollection, cfg.Archive.ArtistCollection)
	return narrator, func() { _ = catalog.Close() }, nil
}
