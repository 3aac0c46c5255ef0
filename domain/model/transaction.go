package model

import "time"

// TransactionType is the business reason for a ledger entry.
type TransactionType string

const (
	TxDeduction TransactionType = "deduction"
	TxPurchase  TransactionType = "purchase"
	TxBonus     TransactionType = "bonus"
)

// TransactionMetadata carries the optional video context captured when the
// transaction was created.
type TransactionMetadata struct {
	VideoID       string `json:"video_id,omitempty"`
	VideoTitle    string `json:"video_title,omitempty"`
	VideoAuthor   string `json:"video_author,omitempty"`
	VideoDuration string `json:"video_duration,omitempty"`
	ThumbnailURL  string `json:"thumbnail_url,omitempty"`
}

// Transaction is a single immutable ledger entry. Amount is signed;
// deductions are stored negative.
type Transaction struct {
	ID          int64                `json:"id"`
	UserID      string               `json:"user_id"`
	Type        TransactionType      `json:"type"`
	Amount      int                  `json:"amount"`
	Description string               `json:"description"`
	// Category is the explicit tag written at creation time. Empty for
	// legacy rows, where the feed falls back to description heuristics.
	Category  string               `json:"category,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
	Metadata  *TransactionMetadata `json:"metadata,omitempty"`
}

// HasVideoSignal reports whether the row carries any video context.
func (t *Transaction) HasVideoSignal() bool {
	return t.Metadata != nil && (t.Metadata.VideoID != "" || t.Metadata.VideoTitle != "")
}

// LedgerSummary aggregates the full unfiltered transaction list.
type LedgerSummary struct {
	DeductionCount int `json:"deduction_count"`
	PurchaseCount  int `json:"purchase_count"`
	PointsSpent    int `json:"points_spent"`
	PointsBought   int `json:"points_bought"`
}
