// Package schema defines the value types shared across the StoryMind
// character extraction and visualization pipeline.
package schema

import "time"

// ProcessingState is the lifecycle state of a Source Document.
type ProcessingState string

const (
	StatePending    ProcessingState = "pending"
	StateProcessing ProcessingState = "processing"
	StateCompleted  ProcessingState = "completed"
	StateFailed     ProcessingState = "failed"
)

// DocumentFormat is the recognized source file format.
type DocumentFormat string

const (
	FormatPDF  DocumentFormat = "pdf"
	FormatEPUB DocumentFormat = "epub"
	FormatText DocumentFormat = "text"
)

// SourceDocument is a novel ingested into the pipeline.
type SourceDocument struct {
	ID              string
	Title           string
	Author          string
	Format          DocumentFormat
	IngestedAt      time.Time
	State           ProcessingState
	IndexPath       string
	CharacterCount  int
	FailureReason   string
}

// Window is an ordered, overlapping slice of source text produced by C1.
type Window struct {
	Position int
	Text     string
}

// DocumentMetadata is what the Document Loader (C1) returns alongside windows.
type DocumentMetadata struct {
	Title       string
	Author      string
	Format      DocumentFormat
	WindowCount int
}

// Relationship is a single directed edge from one character to another.
type Relationship struct {
	OtherName string `json:"other_name"`
	Relation  string `json:"relation"`
}

// CanonicalCharacter is a deduplicated character with a synthesized profile.
type CanonicalCharacter struct {
	ID            string
	SourceID      string
	Name          string
	Description   string
	Seed          uint32
	MentionCount  int
	Relationships []Relationship
}

// ImageOutcome distinguishes a real model-generated portrait from a
// deterministic fallback.
type ImageOutcome string

const (
	OutcomeReal        ImageOutcome = "real"
	OutcomePlaceholder ImageOutcome = "placeholder"
)

// GeneratedImage is a single portrait generation attempt for a character.
type GeneratedImage struct {
	ID          string
	CharacterID string
	Path        string
	Prompt      string
	Style       string
	AspectRatio string
	DurationMS  int64
	Outcome     ImageOutcome
	CreatedAt   time.Time
}

// AliasMap records, per source document, every surface name encountered
// during extraction mapped to the canonical name it was merged into.
// It is informational only once CanonicalCharacter rows are persisted.
type AliasMap map[string]string
