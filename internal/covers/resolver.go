package covers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/mrlokans/booklibrary/internal/entities"
)

// minCoverBytes separates a real Open Library cover from the tiny
// placeholder image it serves for unknown ISBNs.
const minCoverBytes = 1000

// ThumbnailSource finds cover thumbnails by ISBN or by title and author.
type ThumbnailSource interface {
	CoverByISBN(ctx context.Context, isbn string) (string, error)
	CoverByTitleAuthor(ctx context.Context, title, author string) (string, error)
}

// CoverURLBuilder builds a direct cover image URL for an ISBN.
type CoverURLBuilder interface {
	CoverURL(isbn string) string
}

// BookStore provides the books whose cover should be checked and stores the
// URLs found for them.
type BookStore interface {
	GetCoverCandidates() ([]entities.Book, error)
	UpdateCoverURL(id uint, coverURL string) error
}

// CoverInvalidator drops cached cover images of a book.
type CoverInvalidator interface {
	InvalidateCover(bookID uint) error
}

// ProgressReporter reports sync progress updates.
type ProgressReporter interface {
	StartSync(totalItems int) error
	UpdateProgress(processed, succeeded, failed, skipped int, currentItem string) error
	CompleteSync(succeeded bool, errorMsg string) error
	IsSyncRunning() (bool, error)
}

// Resolver finds a working cover URL for a book. It tries Google Books by
// ISBN, then the Open Library cover for the ISBN, then Google Books by title
// and author.
type Resolver struct {
	thumbnails ThumbnailSource
	openLib    CoverURLBuilder
	httpClient *http.Client

	books       BookStore
	invalidator CoverInvalidator
	progress    ProgressReporter
}

// NewResolver creates a resolver. books may be nil when only ResolveCover is
// used.
func NewResolver(thumbnails ThumbnailSource, openLib CoverURLBuilder, books BookStore) *Resolver {
	return &Resolver{
		thumbnails: thumbnails,
		openLib:    openLib,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		books:      books,
	}
}

// SetCoverInvalidator drops cached images of books whose cover changes.
func (r *Resolver) SetCoverInvalidator(invalidator CoverInvalidator) {
	r.invalidator = invalidator
}

// SetProgressReporter enables persisted progress for FixCovers.
func (r *Resolver) SetProgressReporter(progress ProgressReporter) {
	r.progress = progress
}

// ResolveCover returns a cover URL for the book, or "" when no source has one.
func (r *Resolver) ResolveCover(ctx context.Context, book *entities.Book) string {
	isbn := book.ISBN13
	if isbn == "" {
		isbn = book.ISBN
	}

	if isbn != "" {
		if url, err := r.thumbnails.CoverByISBN(ctx, isbn); err == nil && url != "" {
			return url
		}

		olURL := r.openLib.CoverURL(isbn)
		if r.ValidateImage(ctx, olURL) {
			return olURL
		}
	}

	title := strings.TrimSpace(book.Title)
	author := strings.TrimSpace(book.Author)
	if title != "" && author != "" {
		if url, err := r.thumbnails.CoverByTitleAuthor(ctx, title, author); err == nil && url != "" {
			return url
		}
	}

	return ""
}

// ValidateImage reports whether url answers a HEAD request with a success
// status and a body larger than a placeholder image.
func (r *Resolver) ValidateImage(ctx context.Context, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false
	}
	return resp.ContentLength > minCoverBytes
}

// FixCoversResult summarises a FixCovers run.
type FixCoversResult struct {
	Checked int `json:"checked"`
	Fixed   int `json:"fixed"`
}

// FixCovers re-resolves covers of books that have none or point at Open
// Library. Open Library covers that turn out to be real images are kept.
func (r *Resolver) FixCovers(ctx context.Context) (*FixCoversResult, error) {
	if r.books == nil {
		return nil, fmt.Errorf("cover store not configured")
	}

	if r.progress != nil {
		running, err := r.progress.IsSyncRunning()
		if err != nil {
			return nil, fmt.Errorf("check sync status: %w", err)
		}
		if running {
			return nil, fmt.Errorf("cover fix is already in progress")
		}
	}

	candidates, err := r.books.GetCoverCandidates()
	if err != nil {
		return nil, fmt.Errorf("get cover candidates: %w", err)
	}

	result := &FixCoversResult{Checked: len(candidates)}
	if r.progress != nil {
		if err := r.progress.StartSync(len(candidates)); err != nil {
			return nil, fmt.Errorf("start sync progress: %w", err)
		}
	}

	failed, kept := 0, 0
	for i := range candidates {
		book := &candidates[i]

		if err := ctx.Err(); err != nil {
			if r.progress != nil {
				_ = r.progress.CompleteSync(false, "operation cancelled")
			}
			return result, err
		}
		if r.progress != nil {
			_ = r.progress.UpdateProgress(i, result.Fixed, failed, kept, book.Title)
		}

		if book.CoverURL != "" && r.ValidateImage(ctx, book.CoverURL) {
			kept++
			continue
		}

		url := r.ResolveCover(ctx, book)
		if url == "" || url == book.CoverURL {
			failed++
			continue
		}

		if err := r.books.UpdateCoverURL(book.ID, url); err != nil {
			if r.progress != nil {
				_ = r.progress.CompleteSync(false, err.Error())
			}
			return result, fmt.Errorf("update cover of book %d: %w", book.ID, err)
		}
		if r.invalidator != nil {
			_ = r.invalidator.InvalidateCover(book.ID)
		}
		result.Fixed++
	}

	if r.progress != nil {
		_ = r.progress.UpdateProgress(len(candidates), result.Fixed, failed, kept, "")
		_ = r.progress.CompleteSync(true, "")
	}

	log.Printf("[COVERS] Checked %d books, fixed %d, kept %d, unresolved %d",
		result.Checked, result.Fixed, kept, failed)

	return result, nil
}
