package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Jhoseto/factcheckerAI-sub002/domain/dto"
	"github.com/Jhoseto/factcheckerAI-sub002/domain/model"
	"github.com/Jhoseto/factcheckerAI-sub002/domain/repository"
	"github.com/Jhoseto/factcheckerAI-sub002/usecase"
)

// Mock implementations
type MockVideoMetadata struct {
	mock.Mock
}

func (m *MockVideoMetadata) Resolve(ctx context.Context, reference string) (*model.VideoMetadata, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.VideoMetadata), args.Error(1)
}

type MockAnalysis struct {
	mock.Mock
}

func (m *MockAnalysis) RunVideoAnalysis(ctx context.Context, reference string, metadata *model.VideoMetadata, mode model.AuditMode, includeTranscription bool, onProgress repository.ProgressFunc) (*model.AnalysisResult, error) {
	args := m.Called(ctx, reference, metadata, mode, includeTranscription, onProgress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AnalysisResult), args.Error(1)
}

func (m *MockAnalysis) RunLinkScrape(ctx context.Context, reference string) (string, string, error) {
	args := m.Called(ctx, reference)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockAnalysis) RunLinkSynthesis(ctx context.Context, reference, content, title string, onProgress repository.ProgressFunc) (*model.AnalysisResult, error) {
	args := m.Called(ctx, reference, content, title, onProgress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AnalysisResult), args.Error(1)
}

type MockUser struct {
	mock.Mock
}

func (m *MockUser) GetById(ctx context.Context, id int) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUser) GetByUserName(ctx context.Context, userName string) (model.User, error) {
	args := m.Called(ctx, userName)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUser) CreateUser(ctx context.Context, user model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUser) GetBalance(ctx context.Context, userName string) (int, error) {
	args := m.Called(ctx, userName)
	return args.Int(0), args.Error(1)
}

func (m *MockUser) SetBalance(ctx context.Context, userName string, balance int) error {
	args := m.Called(ctx, userName, balance)
	return args.Error(0)
}

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) ListForUser(ctx context.Context, userID string) ([]*model.Transaction, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Transaction), args.Error(1)
}

func (m *MockLedger) Append(ctx context.Context, tx *model.Transaction) (int64, error) {
	args := m.Called(ctx, tx)
	return args.Get(0).(int64), args.Error(1)
}

const (
	testUser = "jhoseto"
	videoURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
	linkURL  = "https://news.bg/politics/article-1"
)

func sampleMetadata() *model.VideoMetadata {
	return &model.VideoMetadata{
		VideoID:           "dQw4w9WgXcQ",
		Title:             "Изборите 2026",
		Author:            "Новините",
		DurationSeconds:   600,
		DurationFormatted: "10:00",
		ThumbnailURL:      "https://i.ytimg.com/vi/dQw4w9WgXcQ/hqdefault.jpg",
	}
}

func newOrchestrator(md *MockVideoMetadata, an *MockAnalysis, us *MockUser, ld *MockLedger) usecase.IAuditOrchestrator {
	return usecase.NewAuditOrchestrator(md, an, us, ld).WithDebounce(2 * time.Millisecond)
}

func waitForState(t *testing.T, o usecase.IAuditOrchestrator, userID string, state model.AuditState) *dto.AuditStateResponse {
	t.Helper()
	var snap *dto.AuditStateResponse
	require.Eventually(t, func() bool {
		snap = o.GetState(userID)
		return snap.State == state
	}, time.Second, 2*time.Millisecond)
	return snap
}

func TestUpdateReference_EmptyClearsEverything(t *testing.T) {
	md, an, us, ld := new(MockVideoMetadata), new(MockAnalysis), new(MockUser), new(MockLedger)
	md.On("Resolve", mock.Anything, videoURL).Return(sampleMetadata(), nil)

	o := newOrchestrator(md, an, us, ld)
	o.UpdateReference(testUser, videoURL)
	waitForState(t, o, testUser, model.StateReady)

	o.UpdateReference(testUser, "   ")
	snap := o.GetState(testUser)
	assert.Equal(t, model.StateIdle, snap.State)
	assert.Nil(t, snap.Metadata)
	assert.Nil(t, snap.Estimate)
	assert.Empty(t, snap.Reference)
}

func TestUpdateReference_InvalidInput(t *testing.T) {
	md, an, us, ld := new(MockVideoMetadata), new(MockAnalysis), new(MockUser), new(MockLedger)
	o := newOrchestrator(md, an, us, ld)

	o.UpdateReference(testUser, "това не е линк")
	snap := o.GetState(testUser)
	assert.Equal(t, model.StateIdle, snap.State)
	assert.Equal(t, "Невалиден линк или видео", snap.ErrorMessage)
	md.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
}

func TestUpdateReference_ArticleIsReadyWithoutResolution(t *testing.T) {
	md, an, us, ld := new(MockVideoMetadata), new(MockAnalysis), new(MockUser), new(MockLedger)
	o := newOrchestrator(md, an, us, ld)

	o.UpdateReference(testUser, linkURL)
	snap := o.GetState(testUser)
	assert.Equal(t, model.StateReady, snap.State)
	assert.Equal(t, model.ReferenceLink, snap.Kind)
	assert.Nil(t, snap.Estimate)
	md.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
}

func TestUpdateReference_VideoResolvesAfterDebounce(t *testing.T) {
	md, an, us, ld := new(MockVideoMetadata), new(MockAnalysis), new(MockUser), new(MockLedger)
	md.On("Resolve", mock.Anything, videoURL).Return(sampleMetadata(), nil).Once()

	o := newOrchestrator(md, an, us, ld)
	o.UpdateReference(testUser, videoURL)
	assert.Equal(t, model.StateResolvingMetadata, o.GetState(testUser).State)

	snap := waitForState(t, o, testUser, model.StateReady)
	require.NotNil(t, snap.Metadata)
	assert.Equal(t, "dQw4w9WgXcQ", snap.Metadata.VideoID)
	require.NotNil(t, snap.Estimate)
	assert.Equal(t, 7, snap.Estimate.Standard.PointsCost)
	assert.Equal(t, 14, snap.Estimate.Deep.PointsCost)
	md.AssertExpectations(t)
}

func TestUpdateReference_StaleResolutionIsDropped(t *testing.T) {
	md, an, us, ld := new(MockVideoMetadata), new(MockAnalysis), new(MockUser), new(MockLedger)

	firstURL := "https://youtu.be/first000000"
	release := make(chan struct{})
	started := make(chan struct{})
	md.On("Resolve", mock.Anything, firstURL).Run(func(args mock.Arguments) {
		close(started)
		<-release
	}).Return(&model.VideoMetadata{VideoID: "first000000", DurationSeconds: 60}, nil)
	md.On("Resolve", mock.Anything, videoURL).Return(sampleMetadata(), nil)

	o := newOrchestrator(md, an, us, ld)
	o.UpdateReference(testUser, firstURL)
	<-started

	// A newer edit supersedes the in-flight lookup.
	o.UpdateReference(testUser, videoURL)
	snap := waitForState(t, o, testUser, model.StateReady)
	require.NotNil(t, snap.Metadata)
	assert.Equal(t, "dQw4w9WgXcQ", snap.Metadata.VideoID)

	// The stale result must not overwrite the fresh one.
	close(release)
	time.Sleep(20 * time.Millisecond)
	snap = o.GetState(testUser)
	assert.Equal(t, "dQw4w9WgXcQ", snap.Metadata.VideoID)
}

func TestUpdateReference_ResolutionFailureClearsEstimate(t *testing.T) {
	md, an, us, ld := new(MockVideoMetadata), new(MockAnalysis), new(MockUser), new(MockLedger)
	md.On("Resolve", mock.Anything, videoURL).
		Return(nil, &model.MetadataError{Reference: videoURL, Cause: assert.AnError})

	o := newOrchestrator(md, an, us, ld)
	o.UpdateReference(testUser, videoURL)

	snap := waitForState(t, o, testUser, model.StateIdle)
	assert.Nil(t, snap.Metadata)
	assert.Nil(t, snap.Estimate)
	assert.Equal(t, "Невалиден линк или видео", snap.ErrorMessage)
}

func TestSubmit_RequiresSession(t *testing.T) {
	md, an, us, ld := new(MockVideoMetadata), new(MockAnalysis), new(MockUser), new(MockLedger)
	us.On("GetByUserName", mock.Anything, testUser).Return(model.User{}, assert.AnError)

	o := newOrchestrator(md, an, us, ld)
	_, err := o.Submit(context.Background(), testUser, &dto.AuditSubmitRequest{Reference: videoURL, Mode: model.AuditModeStandard})
	assert.ErrorIs(t, err, model.ErrAuthRequired)
}

func TestSubmit_VideoRequiresMode(t *testing.T) {
	md, an, us, ld := new(MockVideoMetadata), new(MockAnalysis), new(MockUser), new(MockLedger)
	us.On("GetByUserName", mock.Anything, testUser).Return(model.User{UserName: testUser, Points: 100}, nil)

	o := newOrchestrator(md, an, us, ld)
	_, err := o.Submit(context.Background(), testUser, &dto.AuditSubmitRequest{Reference: videoURL})

	var ve *model.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestSubmit_InsufficientPointsNeverReachesGateway(t *testing.T) {
	md, an, us, ld := new(MockVideoMetadata), new(MockAnalysis), new(MockUser), new(MockLedger)
	us.On("GetByUserName", mock.Anything, testUser).Return(model.User{UserName: testUser, Points: 3}, nil)

	o := newOrchestrator(md, an, us, ld)
	result, err := o.Submit(context.Background(), testUser, &dto.AuditSubmitRequest{Reference: linkURL})

	require.NoError(t, err)
	assert.Equal(t, model.OutcomeInsufficientPoints, result.Outcome)
	assert.Equal(t, "Нямате достатъчно точки за този анализ", result.Reason)
	an.AssertNotCalled(t, "RunLinkScrape", mock.Anything, mock.Anything)
	an.AssertNotCalled(t, "RunVideoAnalysis", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_VideoSuccessAppliesNewBalance(t *testing.T) {
	md, an, us, ld := new(MockVideoMetadata), new(MockAnalysis), new(MockUser), new(MockLedger)
	md.On("Resolve", mock.Anything, videoURL).Return(sampleMetadata(), nil)
	us.On("GetByUserName", mock.Anything, testUser).Return(model.User{UserName: testUser, Points: 50}, nil)

	newBalance := 43
	us.On("SetBalance", mock.Anything, testUser, newBalance).Return(nil).Once()
	an.On("RunVideoAnalysis", mock.Anything, videoURL, mock.Anything, model.AuditModeStandard, true, mock.Anything).
		Return(&model.AnalysisResult{
			Report:     &model.Report{Title: "Изборите 2026", Credibility: "mixed"},
			NewBalance: &newBalance,
		}, nil).Once()
	ld.On("Append", mock.Anything, mock.MatchedBy(func(tx *model.Transaction) bool {
		return tx.Type == model.TxDeduction && tx.Amount == -7 &&
			tx.Category == usecase.CategoryVideo && tx.Metadata != nil &&
			tx.Metadata.VideoID == "dQw4w9WgXcQ"
	})).Return(int64(1), nil).Once()

	o := newOrchestrator(md, an, us, ld)
	o.UpdateReference(testUser, videoURL)
	waitForState(t, o, testUser, model.StateReady)

	result, err := o.Submit(context.Background(), testUser, &dto.AuditSubmitRequest{Reference: videoURL, Mode: model.AuditModeStandard})

	require.NoError(t, err)
	assert.Equal(t, model.OutcomeSuccess, result.Outcome)
	require.NotNil(t, result.NewBalance)
	assert.Equal(t, newBalance, *result.NewBalance)
	assert.Equal(t, model.StateCompleted, o.GetState(testUser).State)
	us.AssertExpectations(t)
	ld.AssertExpectations(t)
}

func TestSubmit_SuccessWithoutNewBalanceForcesRefresh(t *testing.T) {
	md, an, us, ld := new(MockVideoMetadata), new(MockAnalysis), new(MockUser), new(MockLedger)
	us.On("GetByUserName", mock.Anything, testUser).Return(model.User{UserName: testUser, Points: 50}, nil)
	us.On("GetBalance", mock.Anything, testUser).Return(45, nil).Once()
	an.On("RunLinkScrape", mock.Anything, linkURL).Return("content", "title", nil).Once()
	an.On("RunLinkSynthesis", mock.Anything, linkURL, "content", "title", mock.Anything).
		Return(&model.AnalysisResult{Report: &model.Report{Title: "title"}}, nil).Once()
	ld.On("Append", mock.Anything, mock.MatchedBy(func(tx *model.Transaction) bool {
		return tx.Amount == -usecase.LinkAuditCost && tx.Category == usecase.CategoryLink
	})).Return(int64(2), nil).Once()

	o := newOrchestrator(md, an, us, ld)
	result, err := o.Submit(context.Background(), testUser, &dto.AuditSubmitRequest{Reference: linkURL})

	require.NoError(t, err)
	assert.Equal(t, model.OutcomeSuccess, result.Outcome)
	require.NotNil(t, result.NewBalance)
	assert.Equal(t, 45, *result.NewBalance)
	us.AssertExpectations(t)
}

func TestSubmit_SecondSubmissionRefusedWhileRunning(t *testing.T) {
	md, an, us, ld := new(MockVideoMetadata), new(MockAnalysis), new(MockUser), new(MockLedger)
	us.On("GetByUserName", mock.Anything, testUser).Return(model.User{UserName: testUser, Points: 50}, nil)
	us.On("GetBalance", mock.Anything, testUser).Return(45, nil)
	ld.On("Append", mock.Anything, mock.Anything).Return(int64(3), nil)

	release := make(chan struct{})
	started := make(chan struct{})
	an.On("RunLinkScrape", mock.Anything, linkURL).Run(func(args mock.Arguments) {
		close(started)
		<-release
	}).Return("content", "title", nil).Once()
	an.On("RunLinkSynthesis", mock.Anything, linkURL, "content", "title", mock.Anything).
		Return(&model.AnalysisResult{Report: &model.Report{}}, nil).Once()

	o := newOrchestrator(md, an, us, ld)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = o.Submit(context.Background(), testUser, &dto.AuditSubmitRequest{Reference: linkURL})
	}()
	<-started

	_, err := o.Submit(context.Background(), testUser, &dto.AuditSubmitRequest{Reference: linkURL})
	assert.ErrorIs(t, err, model.ErrAuditInFlight)

	close(release)
	<-done
}

func TestSubmit_RateLimitedOutcome(t *testing.T) {
	md, an, us, ld := new(MockVideoMetadata), new(MockAnalysis), new(MockUser), new(MockLedger)
	us.On("GetByUserName", mock.Anything, testUser).Return(model.User{UserName: testUser, Points: 50}, nil)
	an.On("RunLinkScrape", mock.Anything, linkURL).
		Return("", "", &model.RateLimitError{RetryAfterSeconds: 30}).Once()

	o := newOrchestrator(md, an, us, ld)
	result, err := o.Submit(context.Background(), testUser, &dto.AuditSubmitRequest{Reference: linkURL})

	require.NoError(t, err)
	assert.Equal(t, model.OutcomeRateLimited, result.Outcome)
	assert.Equal(t, "Твърде много заявки. Опитайте отново след малко.", result.Reason)
	assert.Equal(t, model.StateFailed, o.GetState(testUser).State)
	// No ledger row on failure.
	ld.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestSubmit_OpaqueFailureOutcome(t *testing.T) {
	md, an, us, ld := new(MockVideoMetadata), new(MockAnalysis), new(MockUser), new(MockLedger)
	us.On("GetByUserName", mock.Anything, testUser).Return(model.User{UserName: testUser, Points: 50}, nil)
	an.On("RunLinkScrape", mock.Anything, linkURL).
		Return("", "", &model.AnalysisError{Cause: assert.AnError}).Once()

	o := newOrchestrator(md, an, us, ld)
	result, err := o.Submit(context.Background(), testUser, &dto.AuditSubmitRequest{Reference: linkURL})

	require.NoError(t, err)
	assert.Equal(t, model.OutcomeFailed, result.Outcome)
	assert.Equal(t, "Анализът не можа да бъде завършен. Опитайте отново.", result.Reason)
}

func TestSubmit_ProgressFlipsStateToStreaming(t *testing.T) {
	md, an, us, ld := new(MockVideoMetadata), new(MockAnalysis), new(MockUser), new(MockLedger)
	us.On("GetByUserName", mock.Anything, testUser).Return(model.User{UserName: testUser, Points: 50}, nil)
	us.On("GetBalance", mock.Anything, testUser).Return(45, nil)
	ld.On("Append", mock.Anything, mock.Anything).Return(int64(4), nil)

	var streamed []usecase.ProgressEvent
	an.On("RunLinkScrape", mock.Anything, linkURL).Return("content", "title", nil).Once()
	an.On("RunLinkSynthesis", mock.Anything, linkURL, "content", "title", mock.Anything).
		Run(func(args mock.Arguments) {
			onProgress := args.Get(4).(repository.ProgressFunc)
			onProgress("Анализ на съдържанието")
		}).
		Return(&model.AnalysisResult{Report: &model.Report{}}, nil).Once()

	o := usecase.NewAuditOrchestrator(md, an, us, ld).
		WithDebounce(2 * time.Millisecond).
		WithBroadcaster(func(userID string, evt usecase.ProgressEvent) {
			if evt.Type == "progress" {
				streamed = append(streamed, evt)
			}
		})

	result, err := o.Submit(context.Background(), testUser, &dto.AuditSubmitRequest{Reference: linkURL})
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeSuccess, result.Outcome)
	require.Len(t, streamed, 1)
	assert.Equal(t, "Анализ на съдържанието", streamed[0].Status)

	// Progress text never survives the terminal state.
	snap := o.GetState(testUser)
	assert.Empty(t, snap.Progress)
	assert.Empty(t, snap.Phase)
}
