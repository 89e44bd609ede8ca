package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultOpenLibraryURL = "https://openlibrary.org"
	DefaultCoversURL      = "https://covers.openlibrary.org"
	DefaultGoogleBooksURL = "https://www.googleapis.com/books/v1"

	userAgent = "BookLibrary/1.0 (https://github.com/mrlokans/booklibrary)"
)

// ErrNotFound is returned when a lookup finds no matching book.
var ErrNotFound = errors.New("book not found")

// BookMetadata contains book information fetched from external sources.
type BookMetadata struct {
	Title           string   `json:"title,omitempty"`
	Author          string   `json:"author,omitempty"`
	Authors         []string `json:"authors,omitempty"`
	ISBN            string   `json:"isbn,omitempty"`
	CoverURL        string   `json:"cover_url,omitempty"`
	Publisher       string   `json:"publisher,omitempty"`
	PublishDate     string   `json:"publish_date,omitempty"`
	PublicationYear int      `json:"publication_year,omitempty"`
	PageCount       int      `json:"page_count,omitempty"`
	Subjects        []string `json:"subjects,omitempty"`
	OpenLibraryKey  string   `json:"open_library_key,omitempty"`
}

// ClientOptions configures the outbound metadata clients.
type ClientOptions struct {
	BaseURL           string
	CoversURL         string
	RequestsPerSecond float64
	Timeout           time.Duration
}

// DefaultClientOptions returns options pointing at the public Open Library
// API, limited to one request per second.
func DefaultClientOptions() ClientOptions {
	return ClientOptions{
		BaseURL:           DefaultOpenLibraryURL,
		CoversURL:         DefaultCoversURL,
		RequestsPerSecond: 1,
		Timeout:           10 * time.Second,
	}
}

func newLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}

// OpenLibraryClient fetches book metadata from the Open Library API.
type OpenLibraryClient struct {
	httpClient  *http.Client
	baseURL     string
	coversURL   string
	rateLimiter *rate.Limiter
}

// NewOpenLibraryClient creates a rate-limited Open Library client.
func NewOpenLibraryClient(opts ClientOptions) *OpenLibraryClient {
	defaults := DefaultClientOptions()
	if opts.BaseURL == "" {
		opts.BaseURL = defaults.BaseURL
	}
	if opts.CoversURL == "" {
		opts.CoversURL = defaults.CoversURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaults.Timeout
	}
	return &OpenLibraryClient{
		httpClient:  &http.Client{Timeout: opts.Timeout},
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		coversURL:   strings.TrimRight(opts.CoversURL, "/"),
		rateLimiter: newLimiter(opts.RequestsPerSecond),
	}
}

// CoverURL returns the medium-size Open Library cover URL for an ISBN.
func (c *OpenLibraryClient) CoverURL(isbn string) string {
	return fmt.Sprintf("%s/b/isbn/%s-M.jpg", c.coversURL, isbn)
}

// LookupByISBN fetches title, authors, publisher, page count, publish date
// and cover for an ISBN. It returns ErrNotFound when Open Library has no
// record of it.
func (c *OpenLibraryClient) LookupByISBN(ctx context.Context, isbn string) (*BookMetadata, error) {
	isbn = normalizeISBN(isbn)
	if isbn == "" {
		return nil, fmt.Errorf("invalid ISBN")
	}

	params := url.Values{}
	params.Set("bibkeys", "ISBN:"+isbn)
	params.Set("format", "json")
	params.Set("jscmd", "data")

	var data map[string]openLibraryData
	if err := c.getJSON(ctx, c.baseURL+"/api/books?"+params.Encode(), &data); err != nil {
		return nil, fmt.Errorf("lookup ISBN %s: %w", isbn, err)
	}

	book, ok := data["ISBN:"+isbn]
	if !ok {
		return nil, fmt.Errorf("ISBN %s: %w", isbn, ErrNotFound)
	}

	return c.convertData(&book, isbn), nil
}

// SearchByTitle looks up a book by title and author, returning the best match.
func (c *OpenLibraryClient) SearchByTitle(ctx context.Context, title, author string) (*BookMetadata, error) {
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}

	q := title
	if author != "" {
		q = title + " " + author
	}
	params := url.Values{}
	params.Set("q", q)
	params.Set("limit", "5")

	var result openLibrarySearchResult
	if err := c.getJSON(ctx, c.baseURL+"/search.json?"+params.Encode(), &result); err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}

	if len(result.Docs) == 0 {
		return nil, fmt.Errorf("no results for %q: %w", title, ErrNotFound)
	}

	return c.convertSearchDoc(findBestMatch(result.Docs, title, author)), nil
}

func (c *OpenLibraryClient) getJSON(ctx context.Context, target string, v any) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func findBestMatch(docs []openLibrarySearchDoc, title, author string) *openLibrarySearchDoc {
	titleLower := strings.ToLower(title)
	authorLower := strings.ToLower(author)

	var bestMatch *openLibrarySearchDoc
	bestScore := -1

	for i := range docs {
		doc := &docs[i]
		score := 0

		docTitle := strings.ToLower(doc.Title)
		if docTitle == titleLower {
			score += 10
		} else if strings.Contains(docTitle, titleLower) {
			score += 5
		}

		if author != "" {
			for _, docAuthor := range doc.AuthorName {
				docAuthor = strings.ToLower(docAuthor)
				if docAuthor == authorLower {
					score += 10
					break
				} else if strings.Contains(docAuthor, authorLower) {
					score += 5
					break
				}
			}
		}

		if len(doc.ISBN) > 0 {
			score += 2
		}
		if doc.CoverI != 0 {
			score++
		}

		if score > bestScore {
			bestScore = score
			bestMatch = doc
		}
	}

	return bestMatch
}

func (c *OpenLibraryClient) convertData(book *openLibraryData, isbn string) *BookMetadata {
	md := &BookMetadata{
		Title:           book.Title,
		ISBN:            isbn,
		PageCount:       book.NumberOfPages,
		PublishDate:     book.PublishDate,
		PublicationYear: extractYear(book.PublishDate),
		OpenLibraryKey:  book.Key,
	}

	for _, a := range book.Authors {
		if a.Name != "" {
			md.Authors = append(md.Authors, a.Name)
		}
	}
	if len(md.Authors) > 0 {
		md.Author = md.Authors[0]
	}

	if len(book.Publishers) > 0 {
		md.Publisher = book.Publishers[0].Name
	}

	for _, s := range book.Subjects {
		md.Subjects = append(md.Subjects, s.Name)
		if len(md.Subjects) == 10 {
			break
		}
	}

	if book.Cover != nil {
		switch {
		case book.Cover.Medium != "":
			md.CoverURL = book.Cover.Medium
		case book.Cover.Large != "":
			md.CoverURL = book.Cover.Large
		case book.Cover.Small != "":
			md.CoverURL = book.Cover.Small
		}
	}

	return md
}

func (c *OpenLibraryClient) convertSearchDoc(doc *openLibrarySearchDoc) *BookMetadata {
	md := &BookMetadata{
		Title:           doc.Title,
		Authors:         doc.AuthorName,
		PublicationYear: doc.FirstPublishYear,
		PageCount:       doc.NumberOfPagesMedian,
		OpenLibraryKey:  doc.Key,
	}

	if len(doc.AuthorName) > 0 {
		md.Author = doc.AuthorName[0]
	}
	if len(doc.Publisher) > 0 {
		md.Publisher = doc.Publisher[0]
	}

	if len(doc.ISBN) > 0 {
		md.ISBN = doc.ISBN[0]
		md.CoverURL = c.CoverURL(doc.ISBN[0])
	} else if doc.CoverI != 0 {
		md.CoverURL = fmt.Sprintf("%s/b/id/%d-M.jpg", c.coversURL, doc.CoverI)
	}

	if len(doc.Subject) > 0 {
		md.Subjects = doc.Subject
		if len(md.Subjects) > 10 {
			md.Subjects = md.Subjects[:10]
		}
	}

	return md
}

// normalizeISBN removes hyphens and spaces and checks the length.
func normalizeISBN(isbn string) string {
	isbn = strings.NewReplacer("-", "", " ", "").Replace(strings.TrimSpace(isbn))
	isbn = strings.ToUpper(isbn)

	if len(isbn) != 10 && len(isbn) != 13 {
		return ""
	}
	for i, r := range isbn {
		if r >= '0' && r <= '9' {
			continue
		}
		// ISBN-10 check digit
		if r == 'X' && len(isbn) == 10 && i == 9 {
			continue
		}
		return ""
	}

	return isbn
}

// extractYear tries to extract a 4-digit year from a date string.
func extractYear(dateStr string) int {
	dateStr = strings.TrimSpace(dateStr)
	if len(dateStr) < 4 {
		return 0
	}

	formats := []string{
		"2006",
		"January 2, 2006",
		"Jan 2, 2006",
		"2006-01-02",
		"January 2006",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return t.Year()
		}
	}

	for i := 0; i <= len(dateStr)-4; i++ {
		year := 0
		ok := true
		for _, ch := range dateStr[i : i+4] {
			if ch < '0' || ch > '9' {
				ok = false
				break
			}
			year = year*10 + int(ch-'0')
		}
		if ok && year > 1000 && year < 3000 {
			return year
		}
	}

	return 0
}

// Open Library API response types

type openLibraryData struct {
	Key           string            `json:"key"`
	Title         string            `json:"title"`
	Authors       []openLibraryName `json:"authors"`
	Publishers    []openLibraryName `json:"publishers"`
	Subjects      []openLibraryName `json:"subjects"`
	NumberOfPages int               `json:"number_of_pages"`
	PublishDate   string            `json:"publish_date"`
	Cover         *openLibraryCover `json:"cover"`
}

type openLibraryName struct {
	Name string `json:"name"`
}

type openLibraryCover struct {
	Small  string `json:"small"`
	Medium string `json:"medium"`
	Large  string `json:"large"`
}

type openLibrarySearchResult struct {
	NumFound int                    `json:"numFound"`
	Docs     []openLibrarySearchDoc `json:"docs"`
}

type openLibrarySearchDoc struct {
	Key                 string   `json:"key"`
	Title               string   `json:"title"`
	AuthorName          []string `json:"author_name"`
	FirstPublishYear    int      `json:"first_publish_year"`
	NumberOfPagesMedian int      `json:"number_of_pages_median"`
	Publisher           []string `json:"publisher"`
	ISBN                []string `json:"isbn"`
	CoverI              int      `json:"cover_i"`
	Subject             []string `json:"subject"`
}
