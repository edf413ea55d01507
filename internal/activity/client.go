// Package activity syncs team commit activity from the GitHub API into the
// team records the pricing engine reads.
package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/hackbook/internal/config"
	"golang.org/x/time/rate"
)

// GitHubClient fetches recent commit counts for team repositories. Requests
// are rate limited and retried so a flaky sync run doesn't trip GitHub's
// abuse detection.
type GitHubClient struct {
	client  *retryablehttp.Client
	limiter *rate.Limiter
	baseURL string
	token   string
	logger  *logrus.Logger
}

// NewGitHubClient creates a client from the activity configuration
func NewGitHubClient(cfg config.ActivityConfig, logger *logrus.Logger) *GitHubClient {
	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = 200 * time.Millisecond
	retryClient.RetryWaitMax = 10 * time.Second
	retryClient.CheckRetry = commitRetryPolicy()
	retryClient.Logger = nil

	return &GitHubClient{
		client:  retryClient,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		baseURL: strings.TrimSuffix(cfg.APIBaseURL, "/"),
		token:   cfg.Token,
		logger:  logger,
	}
}

// CommitCount returns the number of commits on the repository's default
// branch since the given time. repoURL accepts either a full
// https://github.com/owner/repo URL or a bare owner/repo slug.
func (c *GitHubClient) CommitCount(ctx context.Context, repoURL string, since time.Time) (int, error) {
	slug, err := repoSlug(repoURL)
	if err != nil {
		return 0, err
	}

	count := 0
	page := 1
	for {
		commits, hasNext, err := c.fetchCommitPage(ctx, slug, since, page)
		if err != nil {
			return 0, err
		}
		count += commits
		if !hasNext {
			return count, nil
		}
		page++
	}
}

func (c *GitHubClient) fetchCommitPage(ctx context.Context, slug string, since time.Time, page int) (int, bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, false, fmt.Errorf("rate limiter error: %w", err)
	}

	endpoint := fmt.Sprintf("%s/repos/%s/commits?since=%s&per_page=100&page=%d",
		c.baseURL, slug, url.QueryEscape(since.UTC().Format(time.RFC3339)), page)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, false, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, false, fmt.Errorf("failed to fetch commits for %s: %w", slug, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, false, fmt.Errorf("github returned %d for %s: %s", resp.StatusCode, slug, strings.TrimSpace(string(body)))
	}

	var commits []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&commits); err != nil {
		return 0, false, fmt.Errorf("failed to decode commits for %s: %w", slug, err)
	}

	hasNext := strings.Contains(resp.Header.Get("Link"), `rel="next"`)
	return len(commits), hasNext, nil
}

// repoSlug extracts owner/repo from a repository URL
func repoSlug(repoURL string) (string, error) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(repoURL), ".git")
	trimmed = strings.TrimSuffix(trimmed, "/")

	if u, err := url.Parse(trimmed); err == nil && u.Host != "" {
		trimmed = strings.TrimPrefix(u.Path, "/")
	}

	parts := strings.Split(trimmed, "/")
	if len(parts) < 2 || parts[len(parts)-2] == "" || parts[len(parts)-1] == "" {
		return "", fmt.Errorf("invalid repository url: %q", repoURL)
	}
	return parts[len(parts)-2] + "/" + parts[len(parts)-1], nil
}

// commitRetryPolicy retries network errors, 429 and 5xx responses
func commitRetryPolicy() retryablehttp.CheckRetry {
	return func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if err != nil {
			return true, err
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return true, nil
		}
		return false, nil
	}
}
