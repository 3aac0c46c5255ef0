package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/Jhoseto/factcheckerAI-sub002/domain/dto"
	"github.com/Jhoseto/factcheckerAI-sub002/domain/model"
	"github.com/Jhoseto/factcheckerAI-sub002/domain/repository"
	"github.com/Jhoseto/factcheckerAI-sub002/infrastructure/logger"
)

const (
	// DebounceInterval is how long reference input must stay unchanged
	// before a metadata resolution is issued.
	DebounceInterval = 800 * time.Millisecond
	// PhaseRotationInterval advances the decorative phase line while an
	// analysis is running.
	PhaseRotationInterval = 3500 * time.Millisecond
)

// RotatingPhases are shown while the progress stream is silent. Decorative
// only; no effect on the state machine.
var RotatingPhases = [4]string{
	"Подготвяме анализа...",
	"Обработваме съдържанието...",
	"Проверяваме фактите...",
	"Съставяме доклада...",
}

const errInvalidLinkOrVideo = "Невалиден линк или видео"

// ProgressEvent is pushed to subscribers while an audit streams.
type ProgressEvent struct {
	Type    string `json:"type"` // progress | phase | state
	Status  string `json:"status,omitempty"`
	State   string `json:"state,omitempty"`
	Elapsed int    `json:"elapsed_seconds,omitempty"`
}

// Broadcaster delivers progress events for one user, typically into the SSE
// hub. Events are droppable, last-value-wins.
type Broadcaster func(userID string, evt ProgressEvent)

// IAuditOrchestrator drives the debounce, admission and streaming pipeline.
type IAuditOrchestrator interface {
	UpdateReference(userID, text string)
	Submit(ctx context.Context, userID string, req *dto.AuditSubmitRequest) (*model.AuditResult, error)
	GetState(userID string) *dto.AuditStateResponse
}

// IAuditEvents publishes completed audits to the message transports.
type IAuditEvents interface {
	PublishCompleted(ctx context.Context, userID string, result *model.AuditResult)
}

type auditSession struct {
	state     model.AuditState
	reference string
	kind      model.ReferenceKind
	metadata  *model.VideoMetadata
	estimate  *model.CostEstimate
	progress  string
	phase     string
	errMsg    string

	// seq is the monotonic resolution token: a resolution result is applied
	// only when its token still matches, which closes the race where an
	// in-flight lookup finishes after the input changed again.
	seq          uint64
	pendingTimer *time.Timer

	startedAt time.Time
	stopPhase chan struct{}
}

type auditOrchestrator struct {
	metadataRepo repository.IVideoMetadata
	analysisRepo repository.IAnalysis
	userRepo     repository.IUser
	ledgerRepo   repository.ILedger
	events       IAuditEvents
	broadcast    Broadcaster

	debounce   time.Duration
	resolveTTL time.Duration

	mu       sync.Mutex
	sessions map[string]*auditSession
}

func NewAuditOrchestrator(
	metadataRepo repository.IVideoMetadata,
	analysisRepo repository.IAnalysis,
	userRepo repository.IUser,
	ledgerRepo repository.ILedger,
) *auditOrchestrator {
	return &auditOrchestrator{
		metadataRepo: metadataRepo,
		analysisRepo: analysisRepo,
		userRepo:     userRepo,
		ledgerRepo:   ledgerRepo,
		debounce:     DebounceInterval,
		resolveTTL:   15 * time.Second,
		sessions:     make(map[string]*auditSession),
	}
}

// WithBroadcaster enables progress fan-out.
func (o *auditOrchestrator) WithBroadcaster(b Broadcaster) *auditOrchestrator {
	o.broadcast = b
	return o
}

// WithEvents enables completed-audit event publishing.
func (o *auditOrchestrator) WithEvents(ev IAuditEvents) *auditOrchestrator {
	o.events = ev
	return o
}

// WithDebounce overrides the debounce window. Used by tests.
func (o *auditOrchestrator) WithDebounce(d time.Duration) *auditOrchestrator {
	o.debounce = d
	return o
}

func (o *auditOrchestrator) session(userID string) *auditSession {
	s, ok := o.sessions[userID]
	if !ok {
		s = &auditSession{state: model.StateIdle}
		o.sessions[userID] = s
	}
	return s
}

// UpdateReference records the current input text. Each edit cancels the
// previously scheduled resolution and restarts the debounce timer; only the
// most recent timer fires. An empty input clears metadata and estimate
// synchronously with no network call.
func (o *auditOrchestrator) UpdateReference(userID, text string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	s := o.session(userID)
	if s.state == model.StateSubmitting || s.state == model.StateStreaming {
		// Input edits never touch an in-flight run.
		return
	}

	text = strings.TrimSpace(text)
	s.reference = text
	s.errMsg = ""
	s.seq++
	if s.pendingTimer != nil {
		s.pendingTimer.Stop()
		s.pendingTimer = nil
	}

	if text == "" {
		s.metadata = nil
		s.estimate = nil
		s.kind = ""
		s.state = model.StateIdle
		return
	}

	if v := ValidateVideoReference(text); v.Valid {
		s.kind = model.ReferenceVideo
		s.metadata = nil
		s.estimate = nil
		s.state = model.StateResolvingMetadata
		token := s.seq
		ref := text
		s.pendingTimer = time.AfterFunc(o.debounce, func() {
			o.resolveReference(userID, ref, token)
		})
		return
	}

	// Any other non-empty string is an article candidate; links use the
	// fixed price, so there is nothing to resolve.
	s.metadata = nil
	s.estimate = nil
	if v := ValidateArticleReference(text); v.Valid {
		s.kind = model.ReferenceLink
		s.state = model.StateReady
	} else {
		s.kind = ""
		s.state = model.StateIdle
		s.errMsg = errInvalidLinkOrVideo
	}
}

func (o *auditOrchestrator) resolveReference(userID, reference string, token uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), o.resolveTTL)
	defer cancel()

	md, err := o.metadataRepo.Resolve(ctx, reference)

	o.mu.Lock()
	defer o.mu.Unlock()
	s := o.session(userID)
	if token != s.seq {
		// Stale resolution; a newer edit superseded this lookup.
		return
	}
	if err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{
			"user_id": userID,
			"error":   err,
		}).Warn("metadata resolution failed")
		s.metadata = nil
		s.estimate = nil
		s.state = model.StateIdle
		s.errMsg = errInvalidLinkOrVideo
		return
	}
	// Metadata and its derived estimate are installed as one atomic update;
	// an estimate never outlives the metadata it came from.
	s.metadata = md
	s.estimate = EstimateCost(md.DurationSeconds)
	s.state = model.StateReady
	s.errMsg = ""
}

// Submit runs the admission check and, when accepted, exactly one analysis
// call. A second submission while one is active is refused by the state
// machine itself.
func (o *auditOrchestrator) Submit(ctx context.Context, userID string, req *dto.AuditSubmitRequest) (*model.AuditResult, error) {
	user, err := o.userRepo.GetByUserName(ctx, userID)
	if err != nil {
		return nil, model.ErrAuthRequired
	}

	reference := strings.TrimSpace(req.Reference)
	kind, verr := classifyReference(reference)
	if verr != nil {
		return nil, verr
	}
	if kind == model.ReferenceVideo && req.Mode != model.AuditModeStandard && req.Mode != model.AuditModeDeep {
		return nil, &model.ValidationError{Reason: "no analysis mode selected"}
	}
	includeTranscription := true
	if req.IncludeTranscription != nil {
		includeTranscription = *req.IncludeTranscription
	}

	o.mu.Lock()
	s := o.session(userID)
	if s.state == model.StateSubmitting || s.state == model.StateStreaming {
		o.mu.Unlock()
		return nil, model.ErrAuditInFlight
	}

	// Admission control uses the balance known at submission time. Only an
	// estimate derived from this exact reference counts; otherwise the
	// fallback costs apply.
	var estimate *model.CostEstimate
	var metadata *model.VideoMetadata
	if s.reference == reference {
		estimate = s.estimate
		metadata = s.metadata
	}
	cost := LinkAuditCost
	if kind == model.ReferenceVideo {
		cost = CostForMode(estimate, req.Mode)
	}
	if user.Points < cost {
		o.mu.Unlock()
		return &model.AuditResult{
			Outcome:   model.OutcomeInsufficientPoints,
			Reference: model.MediaReference{Raw: reference, Kind: kind},
			Reason:    "Нямате достатъчно точки за този анализ",
		}, nil
	}

	startedAt := time.Now().UTC()
	stopPhase := make(chan struct{})
	s.errMsg = ""
	s.progress = ""
	s.startedAt = startedAt
	s.state = model.StateSubmitting
	s.stopPhase = stopPhase
	o.mu.Unlock()

	o.emitState(userID, model.StateSubmitting)
	go o.rotatePhases(userID, stopPhase)

	request := &model.AuditRequest{
		Reference:            model.MediaReference{Raw: reference, Kind: kind},
		Mode:                 req.Mode,
		IncludeTranscription: includeTranscription,
		RequestedAt:          startedAt,
	}

	onProgress := func(status string) {
		o.mu.Lock()
		sess := o.session(userID)
		if sess.state == model.StateSubmitting {
			sess.state = model.StateStreaming
		}
		sess.progress = status
		o.mu.Unlock()
		if o.broadcast != nil {
			o.broadcast(userID, ProgressEvent{Type: "progress", Status: status})
		}
	}

	result, runErr := o.runAnalysis(ctx, request, metadata, onProgress)

	o.mu.Lock()
	s = o.session(userID)
	close(stopPhase)
	s.stopPhase = nil
	// Leaving the streaming state always clears the transient progress text
	// and stops the elapsed counter.
	s.progress = ""
	s.phase = ""
	s.startedAt = time.Time{}

	if runErr != nil {
		outcome, reason := classifyFailure(runErr)
		s.state = model.StateFailed
		s.errMsg = reason
		o.mu.Unlock()
		o.emitState(userID, model.StateFailed)
		return &model.AuditResult{Outcome: outcome, Reference: request.Reference, Reason: reason}, nil
	}

	s.state = model.StateCompleted
	o.mu.Unlock()
	o.emitState(userID, model.StateCompleted)

	o.settleBalance(ctx, user.UserName, result)
	o.recordDeduction(ctx, userID, request, metadata, cost)

	audit := &model.AuditResult{
		Outcome:    model.OutcomeSuccess,
		Report:     result.Report,
		NewBalance: result.NewBalance,
		Reference:  request.Reference,
	}
	if o.events != nil {
		o.events.PublishCompleted(ctx, userID, audit)
	}
	return audit, nil
}

func (o *auditOrchestrator) runAnalysis(ctx context.Context, req *model.AuditRequest, metadata *model.VideoMetadata, onProgress repository.ProgressFunc) (*model.AnalysisResult, error) {
	if req.Reference.Kind == model.ReferenceVideo {
		return o.analysisRepo.RunVideoAnalysis(ctx, req.Reference.Raw, metadata, req.Mode, req.IncludeTranscription, onProgress)
	}
	content, title, err := o.analysisRepo.RunLinkScrape(ctx, req.Reference.Raw)
	if err != nil {
		return nil, err
	}
	return o.analysisRepo.RunLinkSynthesis(ctx, req.Reference.Raw, content, title, onProgress)
}

// settleBalance applies the transport-level new balance when present and
// otherwise forces a refresh from the session provider. A stale local
// balance is never trusted after a deduction.
func (o *auditOrchestrator) settleBalance(ctx context.Context, userName string, result *model.AnalysisResult) {
	if result.NewBalance != nil {
		if err := o.userRepo.SetBalance(ctx, userName, *result.NewBalance); err != nil {
			logger.GetLogger().WithField("error", err).Error("failed to apply new balance")
		}
		return
	}
	balance, err := o.userRepo.GetBalance(ctx, userName)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("balance refresh failed")
		return
	}
	result.NewBalance = &balance
}

// recordDeduction appends the ledger row for a completed audit with the
// explicit category tag and the video context captured at run time.
func (o *auditOrchestrator) recordDeduction(ctx context.Context, userID string, req *model.AuditRequest, metadata *model.VideoMetadata, cost int) {
	if o.ledgerRepo == nil {
		return
	}
	tx := &model.Transaction{
		UserID:    userID,
		Type:      model.TxDeduction,
		Amount:    -cost,
		CreatedAt: time.Now().UTC(),
	}
	if req.Reference.Kind == model.ReferenceVideo {
		tx.Category = CategoryVideo
		tx.Description = "Видео одит"
		if metadata != nil {
			tx.Metadata = &model.TransactionMetadata{
				VideoID:       metadata.VideoID,
				VideoTitle:    metadata.Title,
				VideoAuthor:   metadata.Author,
				VideoDuration: metadata.DurationFormatted,
				ThumbnailURL:  metadata.ThumbnailURL,
			}
		}
	} else {
		tx.Category = CategoryLink
		tx.Description = "Линк одит: " + req.Reference.Raw
	}
	if _, err := o.ledgerRepo.Append(ctx, tx); err != nil {
		logger.GetLogger().WithField("error", err).Error("failed to append ledger transaction")
	}
}

// rotatePhases advances the decorative phase line while the run is active.
func (o *auditOrchestrator) rotatePhases(userID string, stop chan struct{}) {
	ticker := time.NewTicker(PhaseRotationInterval)
	defer ticker.Stop()
	idx := 0
	o.setPhase(userID, RotatingPhases[idx])
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			idx = (idx + 1) % len(RotatingPhases)
			o.setPhase(userID, RotatingPhases[idx])
		}
	}
}

func (o *auditOrchestrator) setPhase(userID, phase string) {
	o.mu.Lock()
	s := o.session(userID)
	if s.state != model.StateSubmitting && s.state != model.StateStreaming {
		o.mu.Unlock()
		return
	}
	s.phase = phase
	o.mu.Unlock()
	if o.broadcast != nil {
		o.broadcast(userID, ProgressEvent{Type: "phase", Status: phase})
	}
}

func (o *auditOrchestrator) emitState(userID string, state model.AuditState) {
	if o.broadcast != nil {
		o.broadcast(userID, ProgressEvent{Type: "state", State: string(state)})
	}
}

// GetState returns a snapshot for the audit view.
func (o *auditOrchestrator) GetState(userID string) *dto.AuditStateResponse {
	o.mu.Lock()
	defer o.mu.Unlock()
	s := o.session(userID)
	return &dto.AuditStateResponse{
		State:        s.state,
		Reference:    s.reference,
		Kind:         s.kind,
		Metadata:     s.metadata,
		Estimate:     s.estimate,
		Progress:     s.progress,
		Phase:        s.phase,
		ErrorMessage: s.errMsg,
	}
}

func classifyReference(reference string) (model.ReferenceKind, error) {
	if reference == "" {
		return "", &model.ValidationError{Reason: "empty reference"}
	}
	if v := ValidateVideoReference(reference); v.Valid {
		return model.ReferenceVideo, nil
	}
	if v := ValidateArticleReference(reference); v.Valid {
		return model.ReferenceLink, nil
	}
	return "", &model.ValidationError{Reason: errInvalidLinkOrVideo}
}

func classifyFailure(err error) (model.AuditOutcome, string) {
	var insufficient *model.InsufficientPointsError
	if errors.As(err, &insufficient) {
		return model.OutcomeInsufficientPoints, "Нямате достатъчно точки за този анализ"
	}
	var rateLimited *model.RateLimitError
	if errors.As(err, &rateLimited) {
		return model.OutcomeRateLimited, "Твърде много заявки. Опитайте отново след малко."
	}
	return model.OutcomeFailed, "Анализът не можа да бъде завършен. Опитайте отново."
}
