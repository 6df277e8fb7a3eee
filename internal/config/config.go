// Package config loads application configuration from config.yaml, .env and
// NARRATOR_-prefixed environment variables, and owns global logger setup.
package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	AuditStore AuditStoreConfig `yaml:"auditstore" mapstructure:"auditstore"`
	ElevenLabs ElevenLabsConfig `yaml:"elevenlabs" mapstructure:"elevenlabs"`
	Archive    ArchiveConfig    `yaml:"archive" mapstructure:"archive"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the catalog database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	PageSize    int    `yaml:"page_size" mapstructure:"page_size"`
}

// AuditStoreConfig configures the separate auditing database.
type AuditStoreConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ElevenLabsConfig holds ElevenLabs API credentials and the fixed voice profile.
type ElevenLabsConfig struct {
	Key             string  `yaml:"key" mapstructure:"key"`
	VoiceID         string  `yaml:"voice_id" mapstructure:"voice_id"`
	BaseURL         string  `yaml:"base_url" mapstructure:"base_url"`
	Stability       float64 `yaml:"stability" mapstructure:"stability"`
	SimilarityBoost float64 `yaml:"similarity_boost" mapstructure:"similarity_boost"`
}

// ArchiveConfig holds Internet Archive credentials and collection identifiers.
type ArchiveConfig struct {
	Email            string `yaml:"email" mapstructure:"email"`
	Password         string `yaml:"password" mapstructure:"password"`
	AccessKey        string `yaml:"access_key" mapstructure:"access_key"`
	Secret           string `yaml:"secret" mapstructure:"secret"`
	MetadataURL      string `yaml:"metadata_url" mapstructure:"metadata_url"`
	S3URL            string `yaml:"s3_url" mapstructure:"s3_url"`
	DownloadURL      string `yaml:"download_url" mapstructure:"download_url"`
	SearchURL        string `yaml:"search_url" mapstructure:"search_url"`
	PieceCollection  string `yaml:"piece_collection" mapstructure:"piece_collection"`
	ArtistCollection string `yaml:"artist_collection" mapstructure:"artist_collection"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	// Credentials live in .env in development; a missing file is fine.
	_ = godotenv.Load()

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("NARRATOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.page_size", 1000)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("elevenlabs.base_url", "https://api.elevenlabs.io")
	v.SetDefault("elevenlabs.voice_id", "IHMMqNaUtMooU2Q3wLVK")
	v.SetDefault("elevenlabs.stability", 0.0)
	v.SetDefault("elevenlabs.similarity_boost", 0.0)
	v.SetDefault("archive.metadata_url", "https://archive.org")
	v.SetDefault("archive.s3_url", "https://s3.us.archive.org")
	v.SetDefault("archive.download_url", "https://archive.org/download")
	v.SetDefault("archive.search_url", "https://archive.org/advancedsearch.php")
	v.SetDefault("archive.piece_collection", "1885564100")
	v.SetDefault("archive.artist_collection", "39215337")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
