package analysis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jhoseto/factcheckerAI-sub002/domain/model"
)

func TestRunVideoAnalysis_StreamsProgressAndResult(t *testing.T) {
	var gotRequest runRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/analyze/video", r.URL.Path)
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))

		w.Write([]byte(`{"type":"progress","status":"Сваляне на видеото"}` + "\n"))
		w.Write([]byte("\n")) // blank lines are skipped
		w.Write([]byte(`{"type":"progress","status":"Анализ на твърденията"}` + "\n"))
		w.Write([]byte(`{"type":"result","report":{"title":"Доклад","credibility":"low"},"new_balance":37}` + "\n"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret", 0)

	var progress []string
	result, err := client.RunVideoAnalysis(
		context.Background(),
		"https://youtu.be/dQw4w9WgXcQ",
		&model.VideoMetadata{VideoID: "dQw4w9WgXcQ", DurationSeconds: 600},
		model.AuditModeDeep,
		true,
		func(status string) { progress = append(progress, status) },
	)

	require.NoError(t, err)
	assert.Equal(t, []string{"Сваляне на видеото", "Анализ на твърденията"}, progress)
	require.NotNil(t, result.Report)
	assert.Equal(t, "Доклад", result.Report.Title)
	require.NotNil(t, result.NewBalance)
	assert.Equal(t, 37, *result.NewBalance)

	assert.Equal(t, "deep", gotRequest.Mode)
	assert.True(t, gotRequest.IncludeTranscription)
	require.NotNil(t, gotRequest.Metadata)
	assert.Equal(t, "dQw4w9WgXcQ", gotRequest.Metadata.VideoID)
}

func TestStream_ErrorEvent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"type":"error","message":"model unavailable"}` + "\n"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 0)
	_, err := client.RunLinkSynthesis(context.Background(), "https://news.bg/a", "content", "title", nil)

	var ae *model.AnalysisError
	require.ErrorAs(t, err, &ae)
	assert.Contains(t, ae.Error(), "model unavailable")
}

func TestStream_TruncatedWithoutResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"type":"progress","status":"Подготовка"}` + "\n"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 0)
	_, err := client.RunLinkSynthesis(context.Background(), "https://news.bg/a", "content", "title", nil)

	var ae *model.AnalysisError
	assert.ErrorAs(t, err, &ae)
}

func TestStream_MalformedEventsAreSkipped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all\n"))
		w.Write([]byte(`{"type":"result","report":{"title":"Доклад"}}` + "\n"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 0)
	result, err := client.RunLinkSynthesis(context.Background(), "https://news.bg/a", "content", "title", nil)
	require.NoError(t, err)
	assert.Equal(t, "Доклад", result.Report.Title)
}

func TestClassifyStatus_PaymentRequired(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		json.NewEncoder(w).Encode(map[string]int{"required": 14, "balance": 9})
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 0)
	_, err := client.RunVideoAnalysis(context.Background(), "https://youtu.be/dQw4w9WgXcQ", nil, model.AuditModeDeep, true, nil)

	var ipe *model.InsufficientPointsError
	require.ErrorAs(t, err, &ipe)
	assert.Equal(t, 14, ipe.Required)
	assert.Equal(t, 9, ipe.Balance)
}

func TestClassifyStatus_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 0)
	_, _, err := client.RunLinkScrape(context.Background(), "https://news.bg/a")

	var rle *model.RateLimitError
	require.ErrorAs(t, err, &rle)
	assert.Equal(t, 30, rle.RetryAfterSeconds)
}

func TestRunLinkScrape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/scrape", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{"content": "текст на статията", "title": "Заглавие"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 0)
	content, title, err := client.RunLinkScrape(context.Background(), "https://news.bg/a")
	require.NoError(t, err)
	assert.Equal(t, "текст на статията", content)
	assert.Equal(t, "Заглавие", title)
}
