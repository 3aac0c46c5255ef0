package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Jhoseto/factcheckerAI-sub002/domain/model"
	"github.com/Jhoseto/factcheckerAI-sub002/domain/repository"
)

// Feed parameters.
const (
	TabDeductions = "deductions"
	TabPurchases  = "purchases"

	CategoryAll    = "all"
	CategoryVideo  = "video"
	CategoryLink   = "link"
	CategorySocial = "social"

	SortDateDesc   = "date_desc"
	SortDateAsc    = "date_asc"
	SortPointsDesc = "points_desc"
	SortVideoFirst = "video"
	SortLinkFirst  = "link"
)

// ILedgerFeed builds the transaction feed and its aggregates.
type ILedgerFeed interface {
	BuildFeed(ctx context.Context, userID, tab, category, search, sortKey string) ([]*model.Transaction, model.LedgerSummary, error)
}

type ledgerFeed struct {
	ledgerRepo repository.ILedger
}

func NewLedgerFeed(ledgerRepo repository.ILedger) ILedgerFeed {
	return &ledgerFeed{ledgerRepo: ledgerRepo}
}

func (u *ledgerFeed) BuildFeed(ctx context.Context, userID, tab, category, search, sortKey string) ([]*model.Transaction, model.LedgerSummary, error) {
	list, err := u.ledgerRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, model.LedgerSummary{}, fmt.Errorf("failed to load ledger: %w", err)
	}
	summary := Summarize(list)
	return ProcessFeed(list, tab, category, search, sortKey), summary, nil
}

// ClassifyTransaction infers a transaction's category. The explicit tag set
// at creation time wins; the description heuristics remain as a fallback for
// legacy rows only.
func ClassifyTransaction(t *model.Transaction) string {
	if t.Category != "" {
		return t.Category
	}
	desc := strings.ToLower(t.Description)
	if t.HasVideoSignal() || strings.Contains(desc, "видео") {
		return CategoryVideo
	}
	if strings.Contains(desc, "social") || strings.Contains(desc, "пост") || strings.Contains(desc, "коментар") {
		return CategorySocial
	}
	if strings.Contains(desc, "линк") || strings.Contains(desc, "статия") {
		return CategoryLink
	}
	if t.Type == model.TxDeduction {
		// A deduction with no video signal is a link audit.
		return CategoryLink
	}
	return ""
}

// ProcessFeed runs the filter pipeline (tab, then category, then search) and
// the sort stage over an in-memory transaction list. Pure; the caller owns
// the slice ordering as persisted.
func ProcessFeed(list []*model.Transaction, tab, category, search, sortKey string) []*model.Transaction {
	out := make([]*model.Transaction, 0, len(list))
	for _, t := range list {
		if !matchesTab(t, tab) {
			continue
		}
		if category != "" && category != CategoryAll && ClassifyTransaction(t) != category {
			continue
		}
		if !matchesSearch(t, search) {
			continue
		}
		out = append(out, t)
	}
	sortFeed(out, sortKey)
	return out
}

func matchesTab(t *model.Transaction, tab string) bool {
	switch tab {
	case TabPurchases:
		return t.Type == model.TxPurchase || t.Type == model.TxBonus
	default: // deductions is the default tab
		return t.Type == model.TxDeduction
	}
}

// matchesSearch checks title, author, then description, case-insensitively.
func matchesSearch(t *model.Transaction, term string) bool {
	term = strings.TrimSpace(term)
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	if t.Metadata != nil {
		if strings.Contains(strings.ToLower(t.Metadata.VideoTitle), term) {
			return true
		}
		if strings.Contains(strings.ToLower(t.Metadata.VideoAuthor), term) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(t.Description), term)
}

func sortFeed(list []*model.Transaction, key string) {
	switch key {
	case SortDateAsc:
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		})
	case SortPointsDesc:
		sort.SliceStable(list, func(i, j int) bool {
			return abs(list[i].Amount) > abs(list[j].Amount)
		})
	case SortVideoFirst:
		sort.SliceStable(list, func(i, j int) bool {
			vi, vj := ClassifyTransaction(list[i]) == CategoryVideo, ClassifyTransaction(list[j]) == CategoryVideo
			if vi != vj {
				return vi
			}
			return list[i].CreatedAt.After(list[j].CreatedAt)
		})
	case SortLinkFirst:
		sort.SliceStable(list, func(i, j int) bool {
			li, lj := ClassifyTransaction(list[i]) == CategoryLink, ClassifyTransaction(list[j]) == CategoryLink
			if li != lj {
				return li
			}
			return list[i].CreatedAt.After(list[j].CreatedAt)
		})
	default: // date_desc
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		})
	}
}

// Summarize aggregates the full unfiltered list. Deduction amounts are
// stored negative; the spent total is their magnitude, never re-negated.
func Summarize(list []*model.Transaction) model.LedgerSummary {
	var s model.LedgerSummary
	for _, t := range list {
		switch t.Type {
		case model.TxDeduction:
			s.DeductionCount++
			s.PointsSpent += abs(t.Amount)
		case model.TxPurchase:
			s.PurchaseCount++
			s.PointsBought += t.Amount
		case model.TxBonus:
			s.PurchaseCount++
		}
	}
	return s
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
