// Package client provides the REST client for the work-item tracker API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/config"
	trackerModel "github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/tracker/model"
	"github.com/ArakelyanK/dev-insights-dashboard-sub000/pkg/retry"
)

// batchLimit is the maximum number of IDs the batch endpoint accepts per call.
const batchLimit = 200

// Client defines the interface for tracker API operations.
type Client interface {
	// QueryWorkItemIDs runs a flat WIQL query and returns the matching work item IDs.
	QueryWorkItemIDs(ctx context.Context, wiql string) ([]int, error)

	// WorkItemsBatch reads current-state snapshots for the given IDs.
	// Requests are split into sub-batches of at most 200 IDs.
	WorkItemsBatch(ctx context.Context, ids []int, fields []string) ([]trackerModel.WorkItem, error)

	// Revisions returns the full ordered revision history of one work item.
	Revisions(ctx context.Context, id int) ([]trackerModel.Revision, error)

	// PullRequestComments aggregates comment activity per author over the
	// pull requests referenced by the given relations.
	PullRequestComments(
		ctx context.Context,
		relations []trackerModel.Relation,
	) (map[string]trackerModel.PRActivity, error)
}

type client struct {
	cfg     config.TrackerConfig
	http    *http.Client
	limiter *rate.Limiter
	retry   retry.Config
	logger  *zap.SugaredLogger
}

// New creates a new tracker API client instance.
func New(cfg config.TrackerConfig, logger *zap.SugaredLogger) Client {
	return &client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		retry:   retry.TrackerConfig(),
		logger:  logger,
	}
}

// QueryWorkItemIDs runs a flat WIQL query and returns the matching work item IDs.
func (c *client) QueryWorkItemIDs(ctx context.Context, wiql string) ([]int, error) {
	if strings.TrimSpace(wiql) == "" {
		return nil, fmt.Errorf("tracker: empty wiql query")
	}

	u := c.projectURL("_apis/wit/wiql", nil)

	var resp trackerModel.WiqlResponse
	if err := c.doJSON(ctx, http.MethodPost, u, trackerModel.WiqlRequest{Query: wiql}, &resp); err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(resp.WorkItems))
	for _, ref := range resp.WorkItems {
		ids = append(ids, ref.ID)
	}
	return ids, nil
}

// WorkItemsBatch reads current-state snapshots for the given IDs.
func (c *client) WorkItemsBatch(
	ctx context.Context,
	ids []int,
	fields []string,
) ([]trackerModel.WorkItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	u := c.projectURL("_apis/wit/workitemsbatch", nil)

	items := make([]trackerModel.WorkItem, 0, len(ids))
	for start := 0; start < len(ids); start += batchLimit {
		end := start + batchLimit
		if end > len(ids) {
			end = len(ids)
		}

		body := trackerModel.BatchRequest{
			IDs:         ids[start:end],
			Fields:      fields,
			ErrorPolicy: "omit",
		}
		// The batch endpoint rejects fields combined with expand; relations
		// are only available on full reads.
		if len(fields) == 0 {
			body.Expand = "relations"
		}

		var resp trackerModel.WorkItemBatchResponse
		if err := c.doJSON(ctx, http.MethodPost, u, body, &resp); err != nil {
			return nil, err
		}
		items = append(items, resp.Value...)
	}

	return items, nil
}

// Revisions returns the full ordered revision history of one work item.
func (c *client) Revisions(ctx context.Context, id int) ([]trackerModel.Revision, error) {
	if id <= 0 {
		return nil, fmt.Errorf("tracker: invalid work item id %d", id)
	}

	pageSize := c.cfg.RevisionPageSize
	if pageSize <= 0 {
		pageSize = batchLimit
	}

	var revisions []trackerModel.Revision
	for skip := 0; ; skip += pageSize {
		q := url.Values{}
		q.Set("$top", strconv.Itoa(pageSize))
		q.Set("$skip", strconv.Itoa(skip))
		u := c.projectURL("_apis/wit/workItems/"+strconv.Itoa(id)+"/revisions", q)

		var page trackerModel.RevisionsResponse
		if err := c.doJSON(ctx, http.MethodGet, u, nil, &page); err != nil {
			return nil, err
		}

		revisions = append(revisions, page.Value...)
		if len(page.Value) < pageSize {
			break
		}
	}

	return revisions, nil
}

// PullRequestComments aggregates comment activity per author over the pull
// requests referenced by the given relations. A pull request that cannot be
// read is logged and skipped so one bad reference does not lose the rest.
func (c *client) PullRequestComments(
	ctx context.Context,
	relations []trackerModel.Relation,
) (map[string]trackerModel.PRActivity, error) {
	refs := trackerModel.PullRequestRefs(relations)
	if len(refs) == 0 {
		return nil, nil
	}

	activity := make(map[string]trackerModel.PRActivity)
	for _, ref := range refs {
		threads, err := c.pullRequestThreads(ctx, ref)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Warnw("skipping unreadable pull request",
				"pull_request_id", ref.ID,
				"repository_id", ref.RepositoryID,
				"error", err,
			)
			continue
		}

		perAuthor := countComments(threads)
		for author, comments := range perAuthor {
			entry := activity[author]
			entry.PRCount++
			entry.CommentCount += comments
			activity[author] = entry
		}
	}

	return activity, nil
}

// pullRequestThreads fetches the comment threads of one pull request.
func (c *client) pullRequestThreads(
	ctx context.Context,
	ref trackerModel.PullRequestRef,
) ([]trackerModel.CommentThread, error) {
	path := fmt.Sprintf("%s/_apis/git/repositories/%s/pullRequests/%d/threads",
		url.PathEscape(ref.ProjectID), url.PathEscape(ref.RepositoryID), ref.ID)
	u := c.orgURL(path, nil)

	var resp trackerModel.ThreadsResponse
	if err := c.doJSON(ctx, http.MethodGet, u, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Value, nil
}

// countComments counts non-system comments per author display name.
func countComments(threads []trackerModel.CommentThread) map[string]int {
	counts := make(map[string]int)
	for _, thread := range threads {
		for _, comment := range thread.Comments {
			if comment.CommentType == "system" {
				continue
			}
			author := comment.Author.DisplayName
			if author == "" {
				continue
			}
			counts[author]++
		}
	}
	return counts
}

// projectURL builds an API URL scoped to the configured project.
func (c *client) projectURL(path string, q url.Values) string {
	scoped := url.PathEscape(c.cfg.Organization) + "/" + url.PathEscape(c.cfg.Project) + "/" + path
	return c.buildURL(scoped, q)
}

// orgURL builds an API URL scoped to the organization only.
func (c *client) orgURL(path string, q url.Values) string {
	return c.buildURL(url.PathEscape(c.cfg.Organization)+"/"+path, q)
}

func (c *client) buildURL(path string, q url.Values) string {
	if q == nil {
		q = url.Values{}
	}
	q.Set("api-version", c.cfg.APIVersion)
	return strings.TrimRight(c.cfg.BaseURL, "/") + "/" + path + "?" + q.Encode()
}

// doJSON performs one API call with rate limiting and retry, decoding the
// JSON response into out.
func (c *client) doJSON(ctx context.Context, method, u string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("tracker: marshal request: %w", err)
		}
	}

	return retry.Do(ctx, c.retry, func() error {
		return c.doOnce(ctx, method, u, payload, out)
	})
}

// doOnce performs a single attempt, waiting on the rate limiter first.
func (c *client) doOnce(ctx context.Context, method, u string, payload []byte, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	// PAT auth uses basic auth with an empty username.
	req.SetBasicAuth("", c.cfg.PAT)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("tracker api: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("tracker: decode response: %w", err)
	}
	return nil
}
