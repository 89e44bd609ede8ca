package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// GoogleBooksClient looks up cover thumbnails in the Google Books volumes API.
type GoogleBooksClient struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rate.Limiter
}

// NewGoogleBooksClient creates a rate-limited Google Books client. Only
// BaseURL, RequestsPerSecond and Timeout are used from opts.
func NewGoogleBooksClient(opts ClientOptions) *GoogleBooksClient {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultGoogleBooksURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &GoogleBooksClient{
		httpClient:  &http.Client{Timeout: opts.Timeout},
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		rateLimiter: newLimiter(opts.RequestsPerSecond),
	}
}

// CoverByISBN returns the thumbnail of the first volume matching the ISBN.
func (c *GoogleBooksClient) CoverByISBN(ctx context.Context, isbn string) (string, error) {
	return c.thumbnail(ctx, "isbn:"+isbn)
}

// CoverByTitleAuthor returns the thumbnail of the first volume matching the
// title and author.
func (c *GoogleBooksClient) CoverByTitleAuthor(ctx context.Context, title, author string) (string, error) {
	return c.thumbnail(ctx, fmt.Sprintf("intitle:%s+inauthor:%s", title, author))
}

func (c *GoogleBooksClient) thumbnail(ctx context.Context, query string) (string, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit: %w", err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/volumes?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("search volumes: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result googleBooksResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	for _, item := range result.Items {
		if item.VolumeInfo.ImageLinks.Thumbnail != "" {
			return cleanThumbnail(item.VolumeInfo.ImageLinks.Thumbnail), nil
		}
	}
	return "", ErrNotFound
}

// cleanThumbnail forces https and asks for the larger zoom level.
func cleanThumbnail(raw string) string {
	s := strings.Replace(raw, "http://", "https://", 1)
	return strings.ReplaceAll(s, "zoom=1", "zoom=0")
}

type googleBooksResponse struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		VolumeInfo struct {
			ImageLinks struct {
				Thumbnail string `json:"thumbnail"`
			} `json:"imageLinks"`
		} `json:"volumeInfo"`
	} `json:"items"`
}
