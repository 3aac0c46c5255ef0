package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Jhoseto/factcheckerAI-sub002/domain/dto"
	"github.com/Jhoseto/factcheckerAI-sub002/domain/model"
	"github.com/Jhoseto/factcheckerAI-sub002/infrastructure/logger"
	"github.com/Jhoseto/factcheckerAI-sub002/usecase"
)

const (
	ErrorUnmarshal = "Error while unmarshal"
)

type IAuditHandler interface {
	UpdateReference(ctx *gin.Context)
	GetEstimate(ctx *gin.Context)
	Submit(ctx *gin.Context)
	GetState(ctx *gin.Context)
}

type AuditHandler struct {
	orchestrator usecase.IAuditOrchestrator
}

func NewAuditHandler(orchestrator usecase.IAuditOrchestrator) IAuditHandler {
	return &AuditHandler{orchestrator: orchestrator}
}

// UpdateReference receives every edit of the reference input. Resolution is
// debounced inside the orchestrator, so this endpoint is safe to call per
// keystroke.
func (h *AuditHandler) UpdateReference(ctx *gin.Context) {
	userID := ctx.GetString("user_id")
	var req dto.AuditReferenceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().WithField("error", err).Error(ErrorUnmarshal)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	h.orchestrator.UpdateReference(userID, req.Reference)
	ctx.JSON(http.StatusOK, h.orchestrator.GetState(userID))
}

// GetEstimate returns the current cost estimate. Estimates exist only after
// metadata for the current reference has resolved.
func (h *AuditHandler) GetEstimate(ctx *gin.Context) {
	userID := ctx.GetString("user_id")
	state := h.orchestrator.GetState(userID)
	if state.Estimate == nil {
		ctx.JSON(http.StatusOK, gin.H{"estimate": nil, "state": state.State})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"estimate": state.Estimate, "metadata": state.Metadata})
}

func (h *AuditHandler) Submit(ctx *gin.Context) {
	userID := ctx.GetString("user_id")
	var req dto.AuditSubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().WithField("error", err).Error(ErrorUnmarshal)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.orchestrator.Submit(ctx.Request.Context(), userID, &req)
	if err != nil {
		var ve *model.ValidationError
		switch {
		case errors.Is(err, model.ErrAuthRequired):
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		case errors.Is(err, model.ErrAuditInFlight):
			ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.As(err, &ve):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": ve.Reason})
		default:
			logger.GetLogger().WithField("user_id", userID).WithField("error", err.Error()).Error("audit submit failed")
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	ctx.JSON(http.StatusOK, dto.AuditSubmitResponse{Result: result})
}

func (h *AuditHandler) GetState(ctx *gin.Context) {
	userID := ctx.GetString("user_id")
	ctx.JSON(http.StatusOK, h.orchestrator.GetState(userID))
}
