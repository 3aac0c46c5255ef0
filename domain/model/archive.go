package model

import "time"

// ArchiveCategory groups saved reports for quota purposes.
type ArchiveCategory string

const (
	ArchiveVideo  ArchiveCategory = "video"
	ArchiveLink   ArchiveCategory = "link"
	ArchiveSocial ArchiveCategory = "social"
)

// ArchiveCaps is the fixed per-category archive quota. The current count is
// read live from the store at decision time, never cached.
var ArchiveCaps = map[ArchiveCategory]int{
	ArchiveVideo:  10,
	ArchiveLink:   15,
	ArchiveSocial: 15,
}

// ArchivedReport is a persisted audit report.
type ArchivedReport struct {
	ID        string          `json:"id" bson:"_id,omitempty"`
	UserID    string          `json:"user_id" bson:"user_id"`
	Category  ArchiveCategory `json:"category" bson:"category"`
	Title     string          `json:"title" bson:"title"`
	SourceURL string          `json:"source_url" bson:"source_url"`
	Report    *Report         `json:"report" bson:"report"`
	CreatedAt time.Time       `json:"created_at" bson:"created_at"`
}
