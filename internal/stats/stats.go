// Package stats computes reading statistics over the whole library.
//
// Everything here is a pure function of the book list: nothing is cached and
// nothing is stored, so a Snapshot is always recomputed from scratch.
//
// # Book-equivalents
//
// A book-equivalent (BEq) normalizes a book's page count against the average
// page count of read books of the same type:
//
//	BEq(book) = pages(book) / avg_pages(type(book))
//
// Traditional books and graphic novels keep separate baselines so a short
// comic does not count as a fraction of a novel. Books without a page count
// contribute 0 and are left out of the baseline average.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/mrlokans/booklibrary/internal/entities"
	"github.com/mrlokans/booklibrary/internal/normalize"
)

// YearStat is the number of books read in a year and their total BEq.
// Year is nil for read books whose reading year is unknown.
type YearStat struct {
	Year  *int    `json:"year"`
	Count int     `json:"count"`
	BEq   float64 `json:"beq"`
}

// RatingCount is the number of books with a given star rating.
type RatingCount struct {
	Rating int `json:"rating"`
	Count  int `json:"count"`
}

// Snapshot is the full set of library statistics at one point in time.
type Snapshot struct {
	TotalBooks           int                            `json:"total_books"`
	TotalRead            int                            `json:"total_read"`
	TotalBEq             float64                        `json:"total_beq"`
	TotalBEqTraditional  float64                        `json:"total_beq_traditional"`
	TotalBEqGraphicNovel float64                        `json:"total_beq_graphic_novel"`
	AvgPagesTraditional  float64                        `json:"avg_pages_traditional"`
	AvgPagesGraphicNovel float64                        `json:"avg_pages_graphic_novel"`
	AvgRating            float64                        `json:"avg_rating"`
	BooksThisYear        int                            `json:"books_this_year"`
	BEqThisYear          float64                        `json:"beq_this_year"`
	ByYear               []YearStat                     `json:"by_year"`
	RatingDist           []RatingCount                  `json:"rating_dist"`
	ShelfCounts          []entities.ExclusiveShelfCount `json:"shelf_counts"`
}

// Baselines holds the average page count of read books per book type.
type Baselines map[entities.BookType]float64

// ComputeBaselines averages the page counts of read books with pages > 0,
// separately for each book type.
func ComputeBaselines(books []entities.Book) Baselines {
	sums := make(map[entities.BookType]int)
	counts := make(map[entities.BookType]int)
	for i := range books {
		b := &books[i]
		if !b.IsRead() || b.PageCount() <= 0 {
			continue
		}
		t := typeOf(b)
		sums[t] += b.PageCount()
		counts[t]++
	}

	baselines := make(Baselines, len(entities.BookTypes))
	for _, t := range entities.BookTypes {
		baselines[t] = ratio(float64(sums[t]), float64(counts[t]))
	}
	return baselines
}

// BEq returns the unrounded book-equivalent of a book. Books without pages,
// or of a type with no baseline yet, are worth 0.
func (b Baselines) BEq(book *entities.Book) float64 {
	if book.PageCount() <= 0 {
		return 0
	}
	return ratio(float64(book.PageCount()), b[typeOf(book)])
}

// BookBEq returns the rounded book-equivalent for display, or nil when the
// book has no page count or its type has no baseline.
func (b Baselines) BookBEq(book *entities.Book) *float64 {
	if book.PageCount() <= 0 || b[typeOf(book)] == 0 {
		return nil
	}
	v := Round(b.BEq(book))
	return &v
}

// Compute builds a Snapshot. now decides which year counts as "this year".
func Compute(books []entities.Book, now time.Time) Snapshot {
	baselines := ComputeBaselines(books)

	snap := Snapshot{
		TotalBooks:           len(books),
		AvgPagesTraditional:  Round(baselines[entities.BookTypeTraditional]),
		AvgPagesGraphicNovel: Round(baselines[entities.BookTypeGraphicNovel]),
		ByYear:               []YearStat{},
		RatingDist:           []RatingCount{},
	}

	var beqTraditional, beqGraphic float64
	var ratingSum, ratedRead int
	years := make(map[int]*YearStat)
	var unknownYear *YearStat
	ratings := make(map[int]int)
	shelves := make(map[entities.ExclusiveShelf]int64)

	for i := range books {
		b := &books[i]
		shelves[b.ExclusiveShelf]++
		if b.MyRating >= 1 && b.MyRating <= 5 {
			ratings[b.MyRating]++
		}
		if !b.IsRead() {
			continue
		}

		snap.TotalRead++
		beq := baselines.BEq(b)
		if typeOf(b) == entities.BookTypeGraphicNovel {
			beqGraphic += beq
		} else {
			beqTraditional += beq
		}
		if b.MyRating > 0 {
			ratingSum += b.MyRating
			ratedRead++
		}

		var bucket *YearStat
		if year := readingYear(b); year != nil {
			bucket = years[*year]
			if bucket == nil {
				y := *year
				bucket = &YearStat{Year: &y}
				years[y] = bucket
			}
		} else {
			if unknownYear == nil {
				unknownYear = &YearStat{}
			}
			bucket = unknownYear
		}
		bucket.Count++
		bucket.BEq += beq
	}

	snap.TotalBEqTraditional = Round(beqTraditional)
	snap.TotalBEqGraphicNovel = Round(beqGraphic)
	snap.TotalBEq = Round(beqTraditional + beqGraphic)
	snap.AvgRating = Round(ratio(float64(ratingSum), float64(ratedRead)))

	for _, ys := range years {
		snap.ByYear = append(snap.ByYear, YearStat{Year: ys.Year, Count: ys.Count, BEq: Round(ys.BEq)})
	}
	sort.Slice(snap.ByYear, func(i, j int) bool {
		return *snap.ByYear[i].Year > *snap.ByYear[j].Year
	})
	if unknownYear != nil {
		snap.ByYear = append(snap.ByYear, YearStat{Count: unknownYear.Count, BEq: Round(unknownYear.BEq)})
	}

	if current, ok := years[now.Year()]; ok {
		snap.BooksThisYear = current.Count
		snap.BEqThisYear = Round(current.BEq)
	}

	for r := 1; r <= 5; r++ {
		if ratings[r] > 0 {
			snap.RatingDist = append(snap.RatingDist, RatingCount{Rating: r, Count: ratings[r]})
		}
	}

	snap.ShelfCounts = shelfCounts(shelves)
	return snap
}

// shelfCounts lists every known exclusive shelf, followed by any
// unrecognised values in alphabetical order.
func shelfCounts(shelves map[entities.ExclusiveShelf]int64) []entities.ExclusiveShelfCount {
	counts := make([]entities.ExclusiveShelfCount, 0, len(entities.ExclusiveShelves))
	known := make(map[entities.ExclusiveShelf]bool)
	for _, s := range entities.ExclusiveShelves {
		known[s] = true
		counts = append(counts, entities.ExclusiveShelfCount{Shelf: s, Count: shelves[s]})
	}

	var extra []entities.ExclusiveShelf
	for s := range shelves {
		if !known[s] {
			extra = append(extra, s)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	for _, s := range extra {
		counts = append(counts, entities.ExclusiveShelfCount{Shelf: s, Count: shelves[s]})
	}
	return counts
}

// Round rounds to two decimal places.
func Round(v float64) float64 {
	return math.Round(v*100) / 100
}

// readingYear prefers the year of date_read and falls back to year_read.
func readingYear(b *entities.Book) *int {
	if year := normalize.YearOf(b.DateRead); year != nil {
		return year
	}
	return b.YearRead
}

func typeOf(b *entities.Book) entities.BookType {
	if b.BookType == entities.BookTypeGraphicNovel {
		return entities.BookTypeGraphicNovel
	}
	return entities.BookTypeTraditional
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
