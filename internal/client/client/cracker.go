package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/securapass/internal/client/models"
)

type startResponse struct {
	OK    bool   `json:"ok"`
	JobID string `json:"job_id"`
}

type runResponse struct {
	OK     bool            `json:"ok"`
	Result json.RawMessage `json:"result"`
}

func (c *HTTPClient) StartCrackJob(ctx context.Context, req models.CrackRequest) (string, error) {
	req.TargetHash = strings.TrimSpace(req.TargetHash)
	if req.TargetHash == "" && !req.UseSamples {
		return "", invalidInput("target hash or samples")
	}

	var resp startResponse
	if err := c.do(ctx, call{
		base:   c.crackerURL,
		method: http.MethodPost,
		path:   "/api/cracker/start",
		in:     req,
		out:    &resp,
	}); err != nil {
		return "", err
	}

	if !resp.OK || resp.JobID == "" {
		return "", fmt.Errorf("%w: start crack job: missing ok or job_id", ErrUnexpectedResponse)
	}
	return resp.JobID, nil
}

func (c *HTTPClient) GetJobStatus(ctx context.Context, jobID string) (*models.Job, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, invalidInput("job id")
	}

	var job models.Job
	if err := c.do(ctx, call{
		base:   c.crackerURL,
		method: http.MethodGet,
		path:   "/api/job/" + url.PathEscape(jobID),
		out:    &job,
	}); err != nil {
		return nil, err
	}
	job.ID = jobID
	return &job, nil
}

func (c *HTTPClient) RunCrackSync(ctx context.Context, req models.CrackRequest) (*models.CrackResult, error) {
	req.TargetHash = strings.TrimSpace(req.TargetHash)
	if req.TargetHash == "" {
		return nil, invalidInput("target hash")
	}
	req.UseSamples = false

	var result models.CrackResult
	if err := c.run(ctx, "/api/cracker/run", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) StartHashJob(ctx context.Context, req models.HashRequest) (string, error) {
	if req.Text == "" {
		return "", invalidInput("text")
	}

	var resp startResponse
	if err := c.do(ctx, call{
		base:   c.crackerURL,
		method: http.MethodPost,
		path:   "/api/hash/start",
		in:     req,
		out:    &resp,
	}); err != nil {
		return "", err
	}

	// the hash service answers with a bare job_id
	if resp.JobID == "" {
		return "", fmt.Errorf("%w: start hash job: missing job_id", ErrUnexpectedResponse)
	}
	return resp.JobID, nil
}

func (c *HTTPClient) RunHashSync(ctx context.Context, req models.HashRequest) (*models.HashResult, error) {
	if req.Text == "" {
		return nil, invalidInput("text")
	}

	var result models.HashResult
	if err := c.run(ctx, "/api/hash/run", req, &result); err != nil {
		return nil, err
	}
	if result.Hash == "" {
		return nil, fmt.Errorf("%w: run hash: empty hash", ErrUnexpectedResponse)
	}
	return &result, nil
}

// run posts to a synchronous endpoint and unwraps its {ok, result} envelope.
func (c *HTTPClient) run(ctx context.Context, path string, in any, out any) error {
	var resp runResponse
	if err := c.do(ctx, call{
		base:   c.crackerURL,
		method: http.MethodPost,
		path:   path,
		in:     in,
		out:    &resp,
	}); err != nil {
		return err
	}
	if !resp.OK || len(resp.Result) == 0 {
		return fmt.Errorf("%w: %s: missing ok or result", ErrUnexpectedResponse, path)
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUnexpectedResponse, path, err)
	}
	return nil
}
