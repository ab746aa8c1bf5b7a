package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"ngramlm/config"
)

// CurrentSchemaVersion is the current schema version.
// Increment this when making breaking changes to the storage format.
const CurrentSchemaVersion = 1

var keySchemaVersion = []byte("schema_version")

// SchemaInfo stores the schema version.
type SchemaInfo struct {
	Version int `json:"version"`
}

// GetSchemaInfo retrieves the current schema info from the database.
func (s *BoltStore) GetSchemaInfo() (*SchemaInfo, error) {
	var info SchemaInfo
	err := s.db.View(func(tx *bbolt.Tx) error {
		versionData := tx.Bucket(bucketMeta).Get(keySchemaVersion)
		if versionData != nil {
			if err := json.Unmarshal(versionData, &info.Version); err != nil {
				info.Version = 1
			}
		}
		return nil
	})
	return &info, err
}

// SetSchemaInfo stores the schema info in the database.
func (s *BoltStore) SetSchemaInfo(info *SchemaInfo) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		versionData, err := json.Marshal(info.Version)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketMeta).Put(keySchemaVersion, versionData)
	})
}

// ComputeConfigHash hashes the settings that make perplexities comparable
// across runs: corpus selection, tokenization and the OOV threshold.
func ComputeConfigHash(cfg *config.Config) string {
	relevant := struct {
		Pattern      string   `json:"pattern"`
		Train        []string `json:"train"`
		Dev          []string `json:"dev"`
		Test         []string `json:"test"`
		Fraction     float64  `json:"fraction"`
		Lowercase    bool     `json:"lowercase"`
		NFC          bool     `json:"nfc"`
		Stemming     string   `json:"stemming"`
		OOVThreshold int      `json:"oov_threshold"`
	}{
		Pattern:      cfg.Corpus.Pattern,
		Train:        cfg.Corpus.Train,
		Dev:          cfg.Corpus.Dev,
		Test:         cfg.Corpus.Test,
		Fraction:     cfg.Corpus.Fraction,
		Lowercase:    cfg.Tokenizer.Lowercase,
		NFC:          cfg.Tokenizer.NFC,
		Stemming:     cfg.Tokenizer.Stemming,
		OOVThreshold: cfg.Model.OOVThreshold,
	}

	data, _ := json.Marshal(relevant)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:8])
}

// MigrationResult describes the result of a migration check.
type MigrationResult struct {
	NeedsMigration bool
	OldVersion     int
	NewVersion     int
	Reason         string
}

// CheckMigration checks if migration is needed. A database written by a newer
// schema is an error.
func (s *BoltStore) CheckMigration() (*MigrationResult, error) {
	info, err := s.GetSchemaInfo()
	if err != nil {
		return nil, fmt.Errorf("failed to get schema info: %w", err)
	}

	result := &MigrationResult{
		OldVersion: info.Version,
		NewVersion: CurrentSchemaVersion,
	}

	switch {
	case info.Version == 0:
		result.NeedsMigration = true
		result.Reason = "initializing schema version"
	case info.Version < CurrentSchemaVersion:
		result.NeedsMigration = true
		result.Reason = fmt.Sprintf("schema upgrade from v%d to v%d", info.Version, CurrentSchemaVersion)
	case info.Version > CurrentSchemaVersion:
		return nil, fmt.Errorf("history created by newer version (v%d > v%d)", info.Version, CurrentSchemaVersion)
	}

	return result, nil
}

// Migrate performs any necessary schema migrations.
func (s *BoltStore) Migrate() error {
	info, err := s.GetSchemaInfo()
	if err != nil {
		return err
	}

	for v := info.Version; v < CurrentSchemaVersion; v++ {
		if err := s.runMigration(v, v+1); err != nil {
			return fmt.Errorf("migration from v%d to v%d failed: %w", v, v+1, err)
		}
	}

	return s.SetSchemaInfo(&SchemaInfo{Version: CurrentSchemaVersion})
}

// runMigration runs a specific version migration.
func (s *BoltStore) runMigration(from, to int) error {
	switch {
	case from == 0 && to == 1:
		// Runs are msgpack from the first version; only the stamp is new.
		return nil
	default:
		return fmt.Errorf("no migration path from v%d to v%d", from, to)
	}
}
