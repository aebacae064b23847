// Package edgar retrieves filings from the SEC EDGAR archive. It lives
// outside the segmentation core: the engine only ever sees parsed markup.
package edgar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// FormType identifies an SEC filing form.
type FormType string

const (
	Form8K  FormType = "8-K"
	Form10K FormType = "10-K"
	Form10Q FormType = "10-Q"
)

// Filing is the metadata for one document in a company's EDGAR directory.
type Filing struct {
	CIK             string
	FormType        FormType
	FilingDate      time.Time
	Name            string
	Size            int64
	AccessionNumber string
}

// Client talks to the EDGAR archive with the rate limiting the SEC asks
// for (10 requests per second, identified user agent).
type Client struct {
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
	httpClient *http.Client
}

func NewClient(baseURL, userAgent string, rps float64) *Client {
	if rps <= 0 {
		rps = 10
	}
	return &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		userAgent: userAgent,
		limiter:   rate.NewLimiter(rate.Limit(rps), 1),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// RetryableError marks transient EDGAR failures (throttling, 5xx).
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("edgar status %d: %s", e.StatusCode, e.Message)
}

type indexResponse struct {
	Directory struct {
		Item []struct {
			Name         string `json:"name"`
			Type         string `json:"type"`
			Size         string `json:"size"`
			LastModified string `json:"last-modified"`
		} `json:"item"`
	} `json:"directory"`
}

// ListFilings returns metadata for a company's filings of the given form
// type, optionally bounded by date. Zero times mean unbounded.
func (c *Client) ListFilings(ctx context.Context, cik string, form FormType, start, end time.Time) ([]Filing, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/%s/index.json", c.baseURL, cik))
	if err != nil {
		return nil, err
	}

	var idx indexResponse
	if err := json.Unmarshal(body, &idx); err != nil {
		return nil, fmt.Errorf("decode edgar index: %w", err)
	}

	var filings []Filing
	for _, item := range idx.Directory.Item {
		if item.Type != string(form) {
			continue
		}
		filed, err := time.Parse("2006-01-02", strings.SplitN(item.LastModified, " ", 2)[0])
		if err != nil {
			continue
		}
		if !start.IsZero() && filed.Before(start) {
			continue
		}
		if !end.IsZero() && filed.After(end) {
			continue
		}
		size, err := strconv.ParseInt(item.Size, 10, 64)
		if err != nil {
			// Directory listings sometimes carry a blank or non-numeric
			// size; the filing is still fetchable.
			size = 0
		}
		filings = append(filings, Filing{
			CIK:             cik,
			FormType:        form,
			FilingDate:      filed,
			Name:            item.Name,
			Size:            size,
			AccessionNumber: accessionFromName(item.Name),
		})
	}
	return filings, nil
}

// Download fetches one filing document body.
func (c *Client) Download(ctx context.Context, f Filing) ([]byte, error) {
	return c.get(ctx, fmt.Sprintf("%s/%s/%s", c.baseURL, f.CIK, f.Name))
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("edgar get %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return nil, fmt.Errorf("read edgar response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, &RetryableError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("edgar get %s: status %d", url, resp.StatusCode)
	}
	return body, nil
}

// accessionFromName extracts the accession number from a directory entry
// name like "0001234567-24-000001.txt".
func accessionFromName(name string) string {
	base := name
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.Index(base, "."); i >= 0 {
		base = base[:i]
	}
	return base
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
