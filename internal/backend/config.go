package backend

import (
	"fmt"

	"extracto/internal/config"
)

// Config holds configuration for backend creation
type Config struct {
	Type      BackendType
	Artifacts ArtifactType

	// Memory backend
	DataDirectory string
	SampleSeed    int64
	SampleCount   int

	// SQLite, for transactions and/or artifacts
	SQLiteDBPath string

	// Google Sheets
	GoogleSpreadsheetID   string
	GoogleSheetName       string
	GoogleBalanceRange    string
	GoogleCredentialsFile string
	GoogleCredentialsJSON string

	// Artifact stores
	ArtifactDir string
	GCSBucket   string
	GCSPrefix   string
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}
	cfg := Config{
		Type:                  BackendType(appConfig.DataBackend),
		Artifacts:             ArtifactType(appConfig.ArtifactStore),
		DataDirectory:         appConfig.DataDirectory,
		SampleSeed:            appConfig.SampleSeed,
		SampleCount:           appConfig.SampleCount,
		SQLiteDBPath:          appConfig.SQLiteDBPath,
		GoogleSpreadsheetID:   appConfig.GoogleSpreadsheetID,
		GoogleSheetName:       appConfig.GoogleSheetName,
		GoogleBalanceRange:    appConfig.GoogleBalanceRange,
		GoogleCredentialsFile: appConfig.GoogleCredentialsFile,
		GoogleCredentialsJSON: appConfig.GoogleCredentialsJSON,
		ArtifactDir:           appConfig.ArtifactDir,
		GCSBucket:             appConfig.GCSBucket,
		GCSPrefix:             appConfig.GCSPrefix,
	}
	return cfg, cfg.Validate()
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	if !c.Artifacts.IsValid() {
		return fmt.Errorf("invalid artifact store: %s", c.Artifacts)
	}

	if (c.Type == SQLiteBackend || c.Artifacts == SQLiteArtifacts) && c.SQLiteDBPath == "" {
		return fmt.Errorf("SQLite database path is required for sqlite")
	}
	if c.Type == SheetsBackend && c.GoogleSpreadsheetID == "" {
		return fmt.Errorf("Google Spreadsheet ID is required for sheets backend")
	}
	switch c.Artifacts {
	case FSArtifacts:
		if c.ArtifactDir == "" {
			return fmt.Errorf("artifact directory is required for fs artifact store")
		}
	case GCSArtifacts:
		if c.GCSBucket == "" {
			return fmt.Errorf("GCS bucket is required for gcs artifact store")
		}
	}
	return nil
}
