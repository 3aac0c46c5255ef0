package repository

import (
	"context"

	"github.com/Jhoseto/factcheckerAI-sub002/domain/model"
)

// ProgressFunc receives free-text status strings streamed by the analysis
// service. Invocations are informational, droppable, last-value-wins.
type ProgressFunc func(status string)

// IAnalysis wraps the external analysis-execution and link-scraping
// services. Exactly one pathway runs per audit request.
type IAnalysis interface {
	RunVideoAnalysis(ctx context.Context, reference string, metadata *model.VideoMetadata, mode model.AuditMode, includeTranscription bool, onProgress ProgressFunc) (*model.AnalysisResult, error)
	RunLinkScrape(ctx context.Context, reference string) (content string, title string, err error)
	RunLinkSynthesis(ctx context.Context, reference, content, title string, onProgress ProgressFunc) (*model.AnalysisResult, error)
}
