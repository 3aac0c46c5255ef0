package analysis

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Jhoseto/factcheckerAI-sub002/domain/model"
	"github.com/Jhoseto/factcheckerAI-sub002/domain/repository"
	"github.com/Jhoseto/factcheckerAI-sub002/infrastructure/logger"
)

// Client talks to the external analysis-execution service. Runs stream
// newline-delimited JSON events; the final event carries the report and the
// updated balance. Timeouts are the service's responsibility, not ours.
type Client struct {
	host       string
	apiKey     string
	httpClient *http.Client
}

func NewClient(host, apiKey string, timeout time.Duration) repository.IAnalysis {
	return &Client{
		host:   host,
		apiKey: apiKey,
		// Timeout of zero disables the client-side deadline; upstream
		// enforces its own.
		httpClient: &http.Client{Timeout: timeout},
	}
}

type runRequest struct {
	Reference            string               `json:"reference"`
	Mode                 string               `json:"mode,omitempty"`
	IncludeTranscription bool                 `json:"include_transcription,omitempty"`
	Metadata             *model.VideoMetadata `json:"metadata,omitempty"`
	Content              string               `json:"content,omitempty"`
	Title                string               `json:"title,omitempty"`
}

type streamEvent struct {
	Type       string        `json:"type"` // progress | result | error
	Status     string        `json:"status,omitempty"`
	Report     *model.Report `json:"report,omitempty"`
	NewBalance *int          `json:"new_balance,omitempty"`
	Message    string        `json:"message,omitempty"`
}

// RunVideoAnalysis executes one analysis run for a video reference,
// invoking onProgress for every streamed status line.
func (c *Client) RunVideoAnalysis(ctx context.Context, reference string, metadata *model.VideoMetadata, mode model.AuditMode, includeTranscription bool, onProgress repository.ProgressFunc) (*model.AnalysisResult, error) {
	body := &runRequest{
		Reference:            reference,
		Mode:                 string(mode),
		IncludeTranscription: includeTranscription,
		Metadata:             metadata,
	}
	return c.stream(ctx, "/v1/analyze/video", body, onProgress)
}

// RunLinkScrape fetches the article content behind a link reference.
func (c *Client) RunLinkScrape(ctx context.Context, reference string) (string, string, error) {
	payload, err := json.Marshal(&runRequest{Reference: reference})
	if err != nil {
		return "", "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/v1/scrape", bytes.NewReader(payload))
	if err != nil {
		return "", "", err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", &model.AnalysisError{Cause: err}
	}
	defer resp.Body.Close()
	if err := classifyStatus(resp); err != nil {
		return "", "", err
	}

	var out struct {
		Content string `json:"content"`
		Title   string `json:"title"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", "", &model.AnalysisError{Cause: err}
	}
	return out.Content, out.Title, nil
}

// RunLinkSynthesis produces the report for scraped article content.
func (c *Client) RunLinkSynthesis(ctx context.Context, reference, content, title string, onProgress repository.ProgressFunc) (*model.AnalysisResult, error) {
	body := &runRequest{Reference: reference, Content: content, Title: title}
	return c.stream(ctx, "/v1/analyze/link", body, onProgress)
}

func (c *Client) stream(ctx context.Context, path string, body *runRequest, onProgress repository.ProgressFunc) (*model.AnalysisResult, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &model.AnalysisError{Cause: err}
	}
	defer resp.Body.Close()
	if err := classifyStatus(resp); err != nil {
		return nil, err
	}

	// Events arrive in upstream emission order; no reordering, no
	// deduplication, last value wins for display.
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var evt streamEvent
		if err := json.Unmarshal(line, &evt); err != nil {
			logger.GetLogger().WithField("error", err).Warn("skipping malformed stream event")
			continue
		}
		switch evt.Type {
		case "progress":
			if onProgress != nil {
				onProgress(evt.Status)
			}
		case "result":
			if evt.Report == nil {
				return nil, &model.AnalysisError{Cause: fmt.Errorf("result event without report")}
			}
			return &model.AnalysisResult{Report: evt.Report, NewBalance: evt.NewBalance}, nil
		case "error":
			return nil, &model.AnalysisError{Cause: fmt.Errorf("%s", evt.Message)}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &model.AnalysisError{Cause: err}
	}
	return nil, &model.AnalysisError{Cause: io.ErrUnexpectedEOF}
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

func classifyStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusPaymentRequired:
		var body struct {
			Required int `json:"required"`
			Balance  int `json:"balance"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return &model.InsufficientPointsError{Required: body.Required, Balance: body.Balance}
	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return &model.RateLimitError{RetryAfterSeconds: retryAfter}
	case resp.StatusCode != http.StatusOK:
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &model.AnalysisError{Cause: fmt.Errorf("analysis service returned %d: %s", resp.StatusCode, string(raw))}
	}
	return nil
}
