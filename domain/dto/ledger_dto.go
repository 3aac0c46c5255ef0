package dto

import "github.com/Jhoseto/factcheckerAI-sub002/domain/model"

// LedgerFeedRequest holds the feed query parameters.
type LedgerFeedRequest struct {
	Tab      string `form:"tab"`      // deductions | purchases
	Category string `form:"category"` // all | video | link | social
	Search   string `form:"search"`
	Sort     string `form:"sort"` // date_desc | date_asc | points_desc | video | link
}

// LedgerFeedResponse is the filtered, sorted feed plus aggregates over the
// unfiltered list.
type LedgerFeedResponse struct {
	Items   []*model.Transaction `json:"items"`
	Summary model.LedgerSummary  `json:"summary"`
}

// ArchiveSaveRequest persists a completed report.
type ArchiveSaveRequest struct {
	Category  model.ArchiveCategory `json:"category" binding:"required"`
	Title     string                `json:"title" binding:"required"`
	SourceURL string                `json:"source_url"`
	Report    *model.Report         `json:"report" binding:"required"`
}
