package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-pkgz/repeater"
	"github.com/go-pkgz/repeater/strategy"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/securapass/internal/common"
	"github.com/dmitrijs2005/securapass/internal/logging"
)

const maxResponseBody = 4 << 20

// Options configures an HTTPClient.
type Options struct {
	CrackerBaseURL string
	ManagerBaseURL string

	// AuthToken is sent as a bearer token on GetEntry when non-empty.
	AuthToken string

	// Timeout bounds a single HTTP round trip. Zero means no timeout.
	Timeout time.Duration

	// RetryAttempts is the total number of tries for a transport failure.
	// Values below 2 disable retries.
	RetryAttempts int
	RetryDelay    time.Duration

	// HTTPClient overrides the underlying client; Timeout is ignored then.
	HTTPClient *http.Client
	Logger     logging.Logger
}

type HTTPClient struct {
	crackerURL string
	managerURL string
	authToken  string
	http       *http.Client
	retry      *repeater.Repeater
	logger     logging.Logger
}

func NewHTTPClient(opts Options) (*HTTPClient, error) {
	crackerURL, err := normalizeBaseURL(opts.CrackerBaseURL)
	if err != nil {
		return nil, fmt.Errorf("cracker base url: %w", err)
	}
	managerURL, err := normalizeBaseURL(opts.ManagerBaseURL)
	if err != nil {
		return nil, fmt.Errorf("manager base url: %w", err)
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	attempts := opts.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	c := &HTTPClient{
		crackerURL: crackerURL,
		managerURL: managerURL,
		authToken:  opts.AuthToken,
		http:       hc,
		retry: repeater.New(&strategy.Backoff{
			Repeats:  attempts,
			Duration: opts.RetryDelay,
			Factor:   2,
			Jitter:   true,
		}),
		logger: logger,
	}

	if exp, ok := TokenExpiry(opts.AuthToken); ok && exp.Before(time.Now()) {
		logger.Warn(context.Background(), "configured auth token has expired", "expired_at", exp.Format(time.RFC3339))
	}

	return c, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", invalidInput("base url")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidInput, u.Scheme)
	}
	return strings.TrimRight(u.String(), "/"), nil
}

type call struct {
	base     string
	method   string
	path     string
	in       any
	out      any
	withAuth bool
}

// do executes one logical request. Only transport errors are handed back to
// the repeater; any HTTP response ends the loop.
func (c *HTTPClient) do(ctx context.Context, cl call) error {
	var body []byte
	if cl.in != nil {
		b, err := json.Marshal(cl.in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = b
	}

	requestID := uuid.NewString()
	log := c.logger.With("method", cl.method, "path", cl.path, "request_id", requestID)

	var (
		status  int
		payload []byte
		tries   int
	)

	err := c.retry.Do(ctx, func() error {
		tries++
		req, err := http.NewRequestWithContext(ctx, cl.method, cl.base+cl.path, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set(common.RequestIDHeaderName, requestID)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if cl.withAuth && c.authToken != "" {
			req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+c.authToken)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			log.Debug(ctx, "request attempt failed", "try", tries, "error", err)
			return err
		}
		defer resp.Body.Close()

		payload, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
		if err != nil {
			return err
		}
		status = resp.StatusCode
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %s %s: %w", ErrUnavailable, cl.method, cl.path, err)
	}

	log.Debug(ctx, "request completed", "status", status, "tries", tries)

	if status < 200 || status > 299 {
		return &RequestError{
			Method:     cl.method,
			Path:       cl.path,
			StatusCode: status,
			Message:    serverMessage(payload),
		}
	}

	if cl.out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, cl.out); err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrUnexpectedResponse, cl.method, cl.path, err)
	}
	return nil
}

// serverMessage extracts the human-readable part of an error body. The
// cracker service uses {"error": ...}, the manager service {"detail": ...}.
func serverMessage(payload []byte) string {
	var body struct {
		Error  string          `json:"error"`
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(payload, &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if len(body.Detail) > 0 {
			var s string
			if err := json.Unmarshal(body.Detail, &s); err == nil {
				return s
			}
			return string(body.Detail)
		}
	}

	msg := strings.TrimSpace(string(payload))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
