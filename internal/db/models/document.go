package models

import "time"

// Document represents a policy or procedure record with an independent
// lifecycle. The markdown body is what the content match scorer runs
// against; documents without markdown are flagged distinctly by the scorer.
type Document struct {
	// ID is the unique identifier for the document.
	ID uint `gorm:"primaryKey"`
	// Title is the document title.
	Title string `gorm:"size:255;not null"`
	// DocType classifies the document (e.g. "Policy", "Standard", "Procedure").
	DocType string `gorm:"size:50"`
	// Taxonomy is the organisational classification path.
	Taxonomy string `gorm:"size:255"`
	// Owner is the person or team that maintains the document.
	Owner string `gorm:"size:100"`
	// Markdown is the full document body in markdown.
	Markdown string `gorm:"type:text"`
	// NextReviewDate is when the document is due for its next review.
	NextReviewDate *time.Time
	// CreatedAt is the timestamp when the document was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the document was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Document model.
func (Document) TableName() string {
	return "documents"
}

// HasMarkdown reports whether the document carries a non-empty markdown body.
func (d *Document) HasMarkdown() bool {
	return d.Markdown != ""
}
