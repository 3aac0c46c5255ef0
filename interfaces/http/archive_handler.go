package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Jhoseto/factcheckerAI-sub002/domain/dto"
	"github.com/Jhoseto/factcheckerAI-sub002/domain/model"
	"github.com/Jhoseto/factcheckerAI-sub002/infrastructure/logger"
	"github.com/Jhoseto/factcheckerAI-sub002/infrastructure/utils"
	"github.com/Jhoseto/factcheckerAI-sub002/usecase"
)

type IArchiveHandler interface {
	Save(ctx *gin.Context)
	GetById(ctx *gin.Context)
	List(ctx *gin.Context)
}

type ArchiveHandler struct {
	archiveUsecase usecase.IArchiveUsecase
}

func NewArchiveHandler(archiveUsecase usecase.IArchiveUsecase) IArchiveHandler {
	return &ArchiveHandler{archiveUsecase: archiveUsecase}
}

// Save persists a completed report. The per-category quota is checked
// against the live count; a full category yields 409 and nothing is written.
func (h *ArchiveHandler) Save(ctx *gin.Context) {
	userID := ctx.GetString("user_id")
	var req dto.ArchiveSaveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().WithField("error", err).Error(ErrorUnmarshal)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if _, ok := model.ArchiveCaps[req.Category]; !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "unknown category"})
		return
	}

	rec := &model.ArchivedReport{
		UserID:    userID,
		Category:  req.Category,
		Title:     req.Title,
		SourceURL: req.SourceURL,
		Report:    req.Report,
		CreatedAt: utils.GetCurrentTime(),
	}
	id, err := h.archiveUsecase.Save(ctx.Request.Context(), rec)
	if err != nil {
		if errors.Is(err, model.ErrArchiveQuotaMet) {
			ctx.JSON(http.StatusConflict, gin.H{"error": err.Error(), "cap": model.ArchiveCaps[req.Category]})
			return
		}
		logger.GetLogger().WithField("user_id", userID).WithField("error", err.Error()).Error("archive save failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *ArchiveHandler) GetById(ctx *gin.Context) {
	id := ctx.Param("id")
	rec, err := h.archiveUsecase.GetById(ctx.Request.Context(), id)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if rec == nil || rec.UserID != ctx.GetString("user_id") {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	ctx.JSON(http.StatusOK, rec)
}

func (h *ArchiveHandler) List(ctx *gin.Context) {
	userID := ctx.GetString("user_id")
	list, err := h.archiveUsecase.ListForUser(ctx.Request.Context(), userID)
	if err != nil {
		logger.GetLogger().WithField("user_id", userID).WithField("error", err.Error()).Error("archive list failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if list == nil {
		list = []*model.ArchivedReport{}
	}
	ctx.JSON(http.StatusOK, gin.H{"items": list})
}
