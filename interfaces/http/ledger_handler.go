package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Jhoseto/factcheckerAI-sub002/domain/dto"
	"github.com/Jhoseto/factcheckerAI-sub002/domain/model"
	"github.com/Jhoseto/factcheckerAI-sub002/infrastructure/logger"
	"github.com/Jhoseto/factcheckerAI-sub002/usecase"
)

type ILedgerHandler interface {
	GetFeed(ctx *gin.Context)
	GetSummary(ctx *gin.Context)
}

type LedgerHandler struct {
	ledgerFeed usecase.ILedgerFeed
}

func NewLedgerHandler(ledgerFeed usecase.ILedgerFeed) ILedgerHandler {
	return &LedgerHandler{ledgerFeed: ledgerFeed}
}

// GetFeed serves the filtered transaction list plus summary aggregates.
// Filters are tab, category and search; sorting defaults to newest first.
func (h *LedgerHandler) GetFeed(ctx *gin.Context) {
	userID := ctx.GetString("user_id")
	var req dto.LedgerFeedRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}
	if req.Tab == "" {
		req.Tab = usecase.TabDeductions
	}
	if req.Category == "" {
		req.Category = usecase.CategoryAll
	}
	if req.Sort == "" {
		req.Sort = usecase.SortDateDesc
	}

	items, summary, err := h.ledgerFeed.BuildFeed(ctx.Request.Context(), userID, req.Tab, req.Category, req.Search, req.Sort)
	if err != nil {
		logger.GetLogger().WithField("user_id", userID).WithField("error", err.Error()).Error("ledger feed failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if items == nil {
		items = []*model.Transaction{}
	}
	ctx.JSON(http.StatusOK, dto.LedgerFeedResponse{Items: items, Summary: summary})
}

func (h *LedgerHandler) GetSummary(ctx *gin.Context) {
	userID := ctx.GetString("user_id")
	_, summary, err := h.ledgerFeed.BuildFeed(ctx.Request.Context(), userID, usecase.TabDeductions, usecase.CategoryAll, "", usecase.SortDateDesc)
	if err != nil {
		logger.GetLogger().WithField("user_id", userID).WithField("error", err.Error()).Error("ledger summary failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	ctx.JSON(http.StatusOK, summary)
}
