package stats

import (
	"fmt"
	"time"

	"github.com/mrlokans/booklibrary/internal/entities"
)

// BookLister provides the full book list.
type BookLister interface {
	ListAllBooks() ([]entities.Book, error)
}

// Service reads the library on every call and computes statistics from it.
// It holds no state besides its dependencies and is safe for concurrent use.
type Service struct {
	books BookLister
	now   func() time.Time
}

// NewService creates a statistics service over books.
func NewService(books BookLister) *Service {
	return &Service{books: books, now: time.Now}
}

// SetClock overrides the clock used to decide the current year.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// GetStats computes a fresh Snapshot.
func (s *Service) GetStats() (*Snapshot, error) {
	books, err := s.books.ListAllBooks()
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	snap := Compute(books, s.now())
	return &snap, nil
}

// Baselines computes the per-type page baselines used for per-book BEq.
func (s *Service) Baselines() (Baselines, error) {
	books, err := s.books.ListAllBooks()
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	return ComputeBaselines(books), nil
}
