// Implements the ClickUp API client with rate limiting.

package clickup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/maruel/clickwiki/internal/wiki"
)

const (
	// BaseURL is the ClickUp v3 API base URL.
	BaseURL = "https://api.clickup.com/api/v3"
	// DefaultRequestsPerMinute matches the lowest plan's documented limit.
	DefaultRequestsPerMinute = 100
	// UnknownDocumentName is used when the document metadata is unavailable.
	UnknownDocumentName = "Unknown Document"
)

// Options configures a Client.
type Options struct {
	// APIKey is a personal token, sent as is in the Authorization header.
	APIKey string
	// AccessToken is an OAuth access token, sent as a bearer token. It takes
	// precedence over APIKey.
	AccessToken       string
	BaseURL           string
	RequestsPerMinute int
	// HTTPClient is the base client. Defaults to one with a 30s timeout.
	HTTPClient *http.Client
}

// Client is a rate-limited ClickUp API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new ClickUp API client.
func NewClient(ctx context.Context, opts Options) *Client {
	base := opts.HTTPClient
	if base == nil {
		base = &http.Client{Timeout: 30 * time.Second}
	}
	c := &Client{
		baseURL:    strings.TrimSuffix(opts.BaseURL, "/"),
		httpClient: base,
	}
	if c.baseURL == "" {
		c.baseURL = BaseURL
	}
	if opts.AccessToken != "" {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
		c.httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.AccessToken, TokenType: "Bearer"}))
		c.httpClient.Timeout = base.Timeout
	} else {
		c.apiKey = opts.APIKey
	}
	rpm := opts.RequestsPerMinute
	if rpm <= 0 {
		c.limiter = rate.NewLimiter(rate.Inf, 1)
	} else {
		c.limiter = rate.NewLimiter(rate.Limit(float64(rpm)/60), 1)
	}
	return c
}

// do performs a GET request with rate limiting.
func (c *Client) do(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	slog.DebugContext(ctx, "ClickUp request", "path", path, "status", resp.StatusCode, "bytes", len(respBody), "dur", time.Since(start).Round(time.Millisecond))

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.Unmarshal(respBody, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(respBody))
			if apiErr.Message == "" {
				apiErr.Message = http.StatusText(resp.StatusCode)
			}
		}
		return nil, apiErr
	}
	return respBody, nil
}

func docPath(workspaceID, docID string) string {
	return "/workspaces/" + url.PathEscape(workspaceID) + "/docs/" + url.PathEscape(docID)
}

// GetDoc retrieves the metadata of a document.
func (c *Client) GetDoc(ctx context.Context, workspaceID, docID string) (*Doc, error) {
	data, err := c.do(ctx, docPath(workspaceID, docID), nil)
	if err != nil {
		return nil, err
	}
	var doc Doc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse document response: %w", err)
	}
	return &doc, nil
}

// GetPages retrieves the page tree of a document as markdown.
//
// The API answers with either a list of top-level pages or a single root
// page; root is nil in the first case.
func (c *Client) GetPages(ctx context.Context, workspaceID, docID string, maxDepth int) (pages []Page, root *Page, err error) {
	q := url.Values{}
	q.Set("max_page_depth", strconv.Itoa(maxDepth))
	q.Set("content_format", "text/md")
	data, err := c.do(ctx, docPath(workspaceID, docID)+"/pages", q)
	if err != nil {
		return nil, nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		if err := json.Unmarshal(data, &pages); err != nil {
			return nil, nil, fmt.Errorf("failed to parse pages response: %w", err)
		}
		return pages, nil, nil
	}
	root = &Page{}
	if err := json.Unmarshal(data, root); err != nil {
		return nil, nil, fmt.Errorf("failed to parse pages response: %w", err)
	}
	return root.Pages, root, nil
}

// FetchDocument retrieves a document and its page tree. Metadata failures
// are logged and the name falls back to UnknownDocumentName.
func (c *Client) FetchDocument(ctx context.Context, workspaceID, docID string, maxDepth int) (*wiki.Document, error) {
	doc := &wiki.Document{Node: wiki.Node{ID: docID}, WorkspaceID: workspaceID}
	meta, err := c.GetDoc(ctx, workspaceID, docID)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		slog.WarnContext(ctx, "Failed to fetch document metadata", "doc", docID, "err", err)
	} else {
		doc.Name = meta.Name
	}

	pages, root, err := c.GetPages(ctx, workspaceID, docID, maxDepth)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pages of document %s: %w", docID, err)
	}
	if root != nil {
		doc.Content = root.Content
		if doc.Name == "" {
			doc.Name = root.Name
		}
	} else {
		doc.Synthetic = true
	}
	if doc.Name == "" {
		doc.Name = UnknownDocumentName
	}
	doc.Children = toNodes(pages)
	return doc, nil
}

func toNodes(pages []Page) []*wiki.Node {
	if len(pages) == 0 {
		return nil
	}
	out := make([]*wiki.Node, len(pages))
	for i := range pages {
		p := &pages[i]
		out[i] = &wiki.Node{
			ID:       string(p.ID),
			Name:     p.Name,
			Content:  p.Content,
			Children: toNodes(p.Pages),
		}
	}
	return out
}
