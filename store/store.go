package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"storymind/schema"
)

// MetadataStore is the SQLite-backed persistence layer for source
// documents, canonical characters, and generated images. Grounded on the
// teacher pack's Store: sql.DB wrapper struct, CREATE TABLE IF NOT
// EXISTS schema, and Exec/QueryRow CRUD.
type MetadataStore struct {
	db   *sql.DB
	path string
}

// NewMetadataStore opens (creating if absent) a SQLite database under
// dataDir and ensures its schema exists.
func NewMetadataStore(dataDir string) (*MetadataStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "storymind.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &MetadataStore{db: db, path: dbPath}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return s, nil
}

func (s *MetadataStore) initialize() error {
	sourcesTable := `
	CREATE TABLE IF NOT EXISTS sources (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		normalized_title TEXT NOT NULL,
		author TEXT,
		format TEXT,
		state TEXT NOT NULL,
		index_path TEXT,
		character_count INTEGER NOT NULL DEFAULT 0,
		failure_reason TEXT,
		ingested_at DATETIME NOT NULL
	);`

	charactersTable := `
	CREATE TABLE IF NOT EXISTS characters (
		id TEXT PRIMARY KEY,
		source_id TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT,
		seed INTEGER NOT NULL,
		mention_count INTEGER NOT NULL DEFAULT 0,
		relationships_json TEXT,
		UNIQUE (source_id, name),
		FOREIGN KEY (source_id) REFERENCES sources (id)
	);`

	imagesTable := `
	CREATE TABLE IF NOT EXISTS images (
		id TEXT PRIMARY KEY,
		character_id TEXT NOT NULL,
		path TEXT NOT NULL,
		prompt TEXT,
		style TEXT,
		aspect_ratio TEXT,
		duration_ms INTEGER,
		outcome TEXT,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (character_id) REFERENCES characters (id)
	);`

	for _, stmt := range []string{sourcesTable, charactersTable, imagesTable} {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating table: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database handle.
func (s *MetadataStore) Close() error {
	return s.db.Close()
}

// FindSourceByNormalizedTitle returns the source with the given
// normalized title, or nil if none exists.
func (s *MetadataStore) FindSourceByNormalizedTitle(title string) (*schema.SourceDocument, error) {
	row := s.db.QueryRow(`SELECT id, title, author, format, state, index_path, character_count, failure_reason, ingested_at
		FROM sources WHERE normalized_title = ?`, NormalizeTitle(title))
	return scanSource(row)
}

// GetSource returns the source with the given ID, or nil if none exists.
func (s *MetadataStore) GetSource(id string) (*schema.SourceDocument, error) {
	row := s.db.QueryRow(`SELECT id, title, author, format, state, index_path, character_count, failure_reason, ingested_at
		FROM sources WHERE id = ?`, id)
	return scanSource(row)
}

func scanSource(row *sql.Row) (*schema.SourceDocument, error) {
	var doc schema.SourceDocument
	var author, indexPath, failureReason sql.NullString
	var ingestedAt time.Time

	err := row.Scan(&doc.ID, &doc.Title, &author, &doc.Format, &doc.State, &indexPath, &doc.CharacterCount, &failureReason, &ingestedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning source: %w", err)
	}

	doc.Author = author.String
	doc.IndexPath = indexPath.String
	doc.FailureReason = failureReason.String
	doc.IngestedAt = ingestedAt
	return &doc, nil
}

// InsertSource persists a new Source Document record.
func (s *MetadataStore) InsertSource(doc schema.SourceDocument) error {
	_, err := s.db.Exec(`INSERT INTO sources
		(id, title, normalized_title, author, format, state, index_path, character_count, failure_reason, ingested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Title, NormalizeTitle(doc.Title), doc.Author, doc.Format, doc.State, doc.IndexPath, doc.CharacterCount, doc.FailureReason, doc.IngestedAt)
	return err
}

// UpdateSourceState transitions a source's processing state and,
// optionally, its final character count and failure reason.
func (s *MetadataStore) UpdateSourceState(id string, state schema.ProcessingState, characterCount int, failureReason string) error {
	_, err := s.db.Exec(`UPDATE sources SET state = ?, character_count = ?, failure_reason = ? WHERE id = ?`,
		state, characterCount, failureReason, id)
	return err
}

// ListSources returns every source, most recently ingested first.
func (s *MetadataStore) ListSources() ([]schema.SourceDocument, error) {
	rows, err := s.db.Query(`SELECT id, title, author, format, state, index_path, character_count, failure_reason, ingested_at
		FROM sources ORDER BY ingested_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}
	defer rows.Close()

	var out []schema.SourceDocument
	for rows.Next() {
		var doc schema.SourceDocument
		var author, indexPath, failureReason sql.NullString
		var ingestedAt time.Time
		if err := rows.Scan(&doc.ID, &doc.Title, &author, &doc.Format, &doc.State, &indexPath, &doc.CharacterCount, &failureReason, &ingestedAt); err != nil {
			return nil, fmt.Errorf("scanning source row: %w", err)
		}
		doc.Author = author.String
		doc.IndexPath = indexPath.String
		doc.FailureReason = failureReason.String
		doc.IngestedAt = ingestedAt
		out = append(out, doc)
	}
	return out, rows.Err()
}

// DeleteSource removes a source row. Callers are responsible for
// deleting dependent characters/images first (Orchestrator.DeleteSource
// does so).
func (s *MetadataStore) DeleteSource(id string) error {
	_, err := s.db.Exec(`DELETE FROM sources WHERE id = ?`, id)
	return err
}

// InsertCharacter persists a canonical character row, including its
// relationships encoded as a JSON blob.
func (s *MetadataStore) InsertCharacter(c schema.CanonicalCharacter) error {
	relJSON, err := json.Marshal(c.Relationships)
	if err != nil {
		return fmt.Errorf("encoding relationships: %w", err)
	}
	_, err = s.db.Exec(`INSERT INTO characters
		(id, source_id, name, description, seed, mention_count, relationships_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.SourceID, c.Name, c.Description, c.Seed, c.MentionCount, string(relJSON))
	return err
}

// GetCharactersBySource returns every character for a source, ordered by
// mention_count descending then name ascending (spec.md §6).
func (s *MetadataStore) GetCharactersBySource(sourceID string) ([]schema.CanonicalCharacter, error) {
	rows, err := s.db.Query(`SELECT id, source_id, name, description, seed, mention_count, relationships_json
		FROM characters WHERE source_id = ? ORDER BY mention_count DESC, name ASC`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}
	defer rows.Close()

	var out []schema.CanonicalCharacter
	for rows.Next() {
		var c schema.CanonicalCharacter
		var relJSON sql.NullString
		if err := rows.Scan(&c.ID, &c.SourceID, &c.Name, &c.Description, &c.Seed, &c.MentionCount, &relJSON); err != nil {
			return nil, fmt.Errorf("scanning character row: %w", err)
		}
		if relJSON.Valid && relJSON.String != "" {
			_ = json.Unmarshal([]byte(relJSON.String), &c.Relationships)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetCharacter returns a single character by ID, or nil if none exists.
func (s *MetadataStore) GetCharacter(id string) (*schema.CanonicalCharacter, error) {
	row := s.db.QueryRow(`SELECT id, source_id, name, description, seed, mention_count, relationships_json
		FROM characters WHERE id = ?`, id)

	var c schema.CanonicalCharacter
	var relJSON sql.NullString
	err := row.Scan(&c.ID, &c.SourceID, &c.Name, &c.Description, &c.Seed, &c.MentionCount, &relJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning character: %w", err)
	}
	if relJSON.Valid && relJSON.String != "" {
		_ = json.Unmarshal([]byte(relJSON.String), &c.Relationships)
	}
	return &c, nil
}

// DeleteCharactersBySource deletes every character row for a source.
func (s *MetadataStore) DeleteCharactersBySource(sourceID string) error {
	_, err := s.db.Exec(`DELETE FROM characters WHERE source_id = ?`, sourceID)
	return err
}

// InsertImage persists a new image record for a character.
func (s *MetadataStore) InsertImage(characterID string, img schema.GeneratedImage) error {
	_, err := s.db.Exec(`INSERT INTO images
		(id, character_id, path, prompt, style, aspect_ratio, duration_ms, outcome, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		img.ID, characterID, img.Path, img.Prompt, img.Style, img.AspectRatio, img.DurationMS, img.Outcome, img.CreatedAt)
	return err
}

// GetCurrentImage returns the most recently created image for a
// character, or nil if none exists ("most recent is current", spec.md §4).
func (s *MetadataStore) GetCurrentImage(characterID string) (*schema.GeneratedImage, error) {
	row := s.db.QueryRow(`SELECT id, character_id, path, prompt, style, aspect_ratio, duration_ms, outcome, created_at
		FROM images WHERE character_id = ? ORDER BY created_at DESC LIMIT 1`, characterID)

	var img schema.GeneratedImage
	err := row.Scan(&img.ID, &img.CharacterID, &img.Path, &img.Prompt, &img.Style, &img.AspectRatio, &img.DurationMS, &img.Outcome, &img.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning image: %w", err)
	}
	return &img, nil
}

// GetImagePathsByCharacterIDs returns every image path belonging to any
// character in characterIDs, used by cascade deletion to find the files
// to remove from disk.
func (s *MetadataStore) GetImagePathsByCharacterIDs(characterIDs []string) ([]string, error) {
	var paths []string
	for _, id := range characterIDs {
		rows, err := s.db.Query(`SELECT path FROM images WHERE character_id = ?`, id)
		if err != nil {
			return nil, fmt.Errorf("listing image paths: %w", err)
		}
		for rows.Next() {
			var p string
			if err := rows.Scan(&p); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scanning image path: %w", err)
			}
			paths = append(paths, p)
		}
		rows.Close()
	}
	return paths, nil
}

// DeleteImagesByCharacterID deletes every image row for a character.
func (s *MetadataStore) DeleteImagesByCharacterID(characterID string) error {
	_, err := s.db.Exec(`DELETE FROM images WHERE character_id = ?`, characterID)
	return err
}
