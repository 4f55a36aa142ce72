package loadcheck

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/mergington/pkg/logger"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

func (c *HTTPClient) activityURL(name, suffix string) string {
	return c.baseURL + "/activities/" + url.PathEscape(name) + suffix
}

// do sends a request and returns the status and body.
func (c *HTTPClient) do(ctx context.Context, method, target string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, data, nil
}

// Health checks that the service answers /healthz.
func (c *HTTPClient) Health(ctx context.Context) error {
	status, _, err := c.do(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", status)
	}
	return nil
}

// GetActivity fetches one activity.
func (c *HTTPClient) GetActivity(ctx context.Context, name string) (Activity, error) {
	status, body, err := c.do(ctx, http.MethodGet, c.activityURL(name, ""), nil)
	if err != nil {
		return Activity{}, err
	}
	if status != http.StatusOK {
		return Activity{}, fmt.Errorf("get %q: unexpected status %d: %s", name, status, body)
	}
	var a Activity
	if err := json.Unmarshal(body, &a); err != nil {
		return Activity{}, fmt.Errorf("get %q: %w", name, err)
	}
	return a, nil
}

// Signup signs email up and classifies the response.
func (c *HTTPClient) Signup(ctx context.Context, name, email string) Result {
	target := c.activityURL(name, "/signup") + "?email=" + url.QueryEscape(email)
	status, body, err := c.do(ctx, http.MethodPost, target, nil)
	if err != nil {
		return ResultFailed
	}
	if status == http.StatusOK {
		return ResultSignedUp
	}
	return classifyError(body)
}

// Unregister removes email from the activity.
func (c *HTTPClient) Unregister(ctx context.Context, name, email string) Result {
	status, _, err := c.do(ctx, http.MethodDelete, c.activityURL(name, "/participants"), map[string]string{"email": email})
	if err != nil || status != http.StatusOK {
		return ResultFailed
	}
	return ResultUnregistered
}

func classifyError(body []byte) Result {
	var e struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(body, &e); err != nil {
		return ResultFailed
	}
	switch Result(e.Code) {
	case ResultDuplicate:
		return ResultDuplicate
	case ResultFull:
		return ResultFull
	default:
		return ResultFailed
	}
}

// fanOut runs fn for every email on config.Workers goroutines and collects
// the attempts in input order.
func fanOut(ctx context.Context, config *Config, phase string, emails []string, fn func(context.Context, string) Result) []Attempt {
	attempts := make([]Attempt, len(emails))
	jobs := make(chan int, config.Workers*WorkerChannelMultiplier)
	var done int64
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				attempts[idx] = Attempt{Email: emails[idx], Result: fn(ctx, emails[idx])}
				n := atomic.AddInt64(&done, 1)
				if config.Verbose {
					logger.Get().Debug(ctx, "request finished",
						logger.String("phase", phase),
						logger.String("email", emails[idx]),
						logger.String("result", string(attempts[idx].Result)),
						logger.Int("done", int(n)),
					)
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range emails {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()

	wg.Wait()
	for i := range attempts {
		if attempts[i].Email == "" {
			attempts[i] = Attempt{Email: emails[i], Result: ResultFailed}
		}
	}
	return attempts
}
