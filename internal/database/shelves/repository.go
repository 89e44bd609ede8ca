// Package shelves provides database operations for free-form shelves.
//
// # Interface Implementation
//
//	var _ http.ShelfStore = (*Repository)(nil)
//
// # Usage
//
//	repo := shelves.NewRepository(db)
//	ids, err := repo.EnsureShelvesExist([]string{"favorites", "sci-fi"})
package shelves

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/booklibrary/internal/entities"
)

var ErrEmptyName = errors.New("shelf name is required")

// Repository handles all shelf database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new shelves repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// EnsureShelvesExist returns the IDs of the named shelves, creating the ones
// that do not exist yet. Names are trimmed; blank names are skipped.
func (r *Repository) EnsureShelvesExist(names []string) ([]uint, error) {
	var ids []uint
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var err error
		ids, err = EnsureInTx(tx, names)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// EnsureInTx is EnsureShelvesExist on a caller's transaction, so shelves
// created for a book roll back with it.
func EnsureInTx(tx *gorm.DB, names []string) ([]uint, error) {
	ids := make([]uint, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		shelf := entities.Shelf{Name: name}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&shelf).Error
		if err != nil {
			return nil, fmt.Errorf("create shelf %q: %w", name, err)
		}
		var stored entities.Shelf
		if err := tx.Where("name = ?", name).First(&stored).Error; err != nil {
			return nil, fmt.Errorf("load shelf %q: %w", name, err)
		}
		ids = append(ids, stored.ID)
	}
	return ids, nil
}

// CreateShelf creates a new, empty shelf.
func (r *Repository) CreateShelf(name string) (*entities.Shelf, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	shelf := &entities.Shelf{Name: name}
	if err := r.db.Create(shelf).Error; err != nil {
		return nil, err
	}
	return shelf, nil
}

// GetShelfByID retrieves a shelf by ID.
func (r *Repository) GetShelfByID(id uint) (*entities.Shelf, error) {
	var shelf entities.Shelf
	if err := r.db.First(&shelf, id).Error; err != nil {
		return nil, err
	}
	return &shelf, nil
}

// GetShelvesWithCounts lists all shelves by name with the number of books on each.
func (r *Repository) GetShelvesWithCounts() ([]entities.ShelfWithCount, error) {
	var shelves []entities.ShelfWithCount
	err := r.db.Table("shelves s").
		Select("s.id AS id, s.name AS name, COUNT(bs.book_id) AS book_count").
		Joins("LEFT JOIN book_shelves bs ON s.id = bs.shelf_id").
		Group("s.id").
		Order("s.name ASC").
		Scan(&shelves).Error
	return shelves, err
}

// RenameShelf changes the name of a shelf.
func (r *Repository) RenameShelf(id uint, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	result := r.db.Model(&entities.Shelf{}).Where("id = ?", id).Update("name", name)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteShelf deletes a shelf and detaches it from its books.
func (r *Repository) DeleteShelf(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM book_shelves WHERE shelf_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&entities.Shelf{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// DeleteOrphanShelves removes shelves with no books.
func (r *Repository) DeleteOrphanShelves() (int64, error) {
	result := r.db.Exec(`
		DELETE FROM shelves
		WHERE id NOT IN (SELECT shelf_id FROM book_shelves)
	`)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ExclusiveShelfCounts counts books per reading status. Statuses with no
// books are omitted.
func (r *Repository) ExclusiveShelfCounts() ([]entities.ExclusiveShelfCount, error) {
	var counts []entities.ExclusiveShelfCount
	err := r.db.Model(&entities.Book{}).
		Select("exclusive_shelf AS shelf, COUNT(*) AS count").
		Group("exclusive_shelf").
		Order("exclusive_shelf ASC").
		Scan(&counts).Error
	return counts, err
}
