package haas

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/iamcos/haaslab/internal/metrics"
	"github.com/iamcos/haaslab/internal/models"
)

// noNextPage is the platform's end-of-results cursor.
const noNextPage = -1

// perPageAttempts bounds how often one page is re-requested after the
// transport has already exhausted its own retries.
const perPageAttempts = 2

// GetLabs returns all labs visible to the configured user.
func (c *Client) GetLabs(ctx context.Context) ([]models.LabSummary, error) {
	data, err := c.makeRequest(ctx, labsAPI, "GET_LABS", nil)
	if err != nil {
		return nil, err
	}

	var raw []RawLab
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse labs: %w", err)
	}

	labs := make([]models.LabSummary, 0, len(raw))
	for _, l := range raw {
		labs = append(labs, models.LabSummary{
			LabID:          l.LabID,
			Name:           l.Name,
			ScriptName:     l.ScriptName,
			MarketTag:      l.MarketTag,
			CompletedCount: l.CompletedBacktests,
			Status:         labStatusName(l.Status),
		})
	}
	return labs, nil
}

// GetBacktestResultPage fetches one page of backtest results for a lab.
// A returned nextPageID of -1 means the result set is exhausted.
func (c *Client) GetBacktestResultPage(ctx context.Context, labID string, nextPageID, pageSize int) ([]RawBacktestResult, int, error) {
	params := url.Values{}
	params.Set("labid", labID)
	params.Set("nextpageid", strconv.Itoa(nextPageID))
	params.Set("pagelength", strconv.Itoa(pageSize))

	data, err := c.makeRequest(ctx, labsAPI, "GET_BACKTEST_RESULT_PAGE", params)
	if err != nil {
		return nil, 0, err
	}

	var page backtestPage
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, 0, fmt.Errorf("failed to parse result page: %w", err)
	}

	metrics.PagesFetchedTotal.Inc()
	return page.Items, page.NextPageID, nil
}

// FetchOutcome is the result of paging through one lab's backtests.
// Partial means at least one page failed permanently and the items are
// a prefix of the full result set; that is a reported outcome, not an
// error.
type FetchOutcome struct {
	Items        []RawBacktestResult
	PagesFetched int
	Partial      bool
	LastError    error
}

// FetchAllResults pages through a lab's backtest results until the
// platform reports no next page, a short page arrives, the target
// count is reached, or the page cap is hit. Pages are never fetched
// twice: the cursor only moves forward.
func (c *Client) FetchAllResults(ctx context.Context, labID string, pageSize, maxPages, targetCount int) (FetchOutcome, error) {
	var outcome FetchOutcome
	nextPageID := 0

	for page := 0; page < maxPages; page++ {
		items, next, err := c.fetchPageWithRetry(ctx, labID, nextPageID, pageSize)
		if err != nil {
			if IsAuthenticationError(err) {
				return outcome, err
			}
			c.logger.WithFields(logrus.Fields{
				"lab_id": labID,
				"page":   page,
			}).WithError(err).Warn("Page fetch failed permanently, using partial results")
			outcome.Partial = true
			outcome.LastError = err
			return outcome, nil
		}

		outcome.Items = append(outcome.Items, items...)
		outcome.PagesFetched++

		if targetCount > 0 && len(outcome.Items) >= targetCount {
			outcome.Items = outcome.Items[:targetCount]
			return outcome, nil
		}
		if next == noNextPage || len(items) < pageSize {
			return outcome, nil
		}
		nextPageID = next
	}

	return outcome, nil
}

// fetchPageWithRetry re-requests a single page a bounded number of
// times on top of the transport's own retry loop.
func (c *Client) fetchPageWithRetry(ctx context.Context, labID string, nextPageID, pageSize int) ([]RawBacktestResult, int, error) {
	var lastErr error
	for attempt := 0; attempt < perPageAttempts; attempt++ {
		items, next, err := c.GetBacktestResultPage(ctx, labID, nextPageID, pageSize)
		if err == nil {
			return items, next, nil
		}
		if IsAuthenticationError(err) {
			return nil, 0, err
		}
		lastErr = err
	}
	return nil, 0, lastErr
}

func labStatusName(status int) string {
	switch status {
	case 0:
		return "created"
	case 1:
		return "queued"
	case 2:
		return "running"
	case 3:
		return "completed"
	case 4:
		return "cancelled"
	default:
		return "unknown"
	}
}
