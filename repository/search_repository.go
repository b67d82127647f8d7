package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/camden-git/familytreebackend/database"
	"github.com/camden-git/familytreebackend/models"
)

// GormSearchRepository reads and writes search_entries. Listing queries are
// built with squirrel in the database package and run through db.Raw.
type GormSearchRepository struct {
	db *gorm.DB
}

func NewGormSearchRepository(db *gorm.DB) *GormSearchRepository {
	return &GormSearchRepository{db: db}
}

// Upsert writes the entry, replacing any previous projection of the code.
func (r *GormSearchRepository) Upsert(ctx context.Context, entry *models.SearchEntry) error {
	entry.UpdatedAt = time.Now().Unix()
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"full_name", "nickname", "generation_level", "search_text", "updated_at"}),
	}).Create(entry).Error
	if err != nil {
		return fmt.Errorf("failed to upsert search entry %s: %w", entry.Code, err)
	}
	return nil
}

// Delete removes the entry of a code. A missing entry is not an error.
func (r *GormSearchRepository) Delete(ctx context.Context, code string) error {
	if err := r.db.WithContext(ctx).Where("code = ?", code).Delete(&models.SearchEntry{}).Error; err != nil {
		return fmt.Errorf("failed to delete search entry %s: %w", code, err)
	}
	return nil
}

func (r *GormSearchRepository) Get(ctx context.Context, code string) (*models.SearchEntry, error) {
	var entry models.SearchEntry
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get search entry %s: %w", code, err)
	}
	return &entry, nil
}

func (r *GormSearchRepository) List(ctx context.Context, filter database.SearchFilter, limit, offset int) ([]models.SearchEntry, error) {
	sqlStr, args, err := database.ListSearchEntriesSQL(filter, limit, offset)
	if err != nil {
		return nil, err
	}
	var entries []models.SearchEntry
	if err := r.db.WithContext(ctx).Raw(sqlStr, args...).Scan(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list search entries: %w", err)
	}
	return entries, nil
}

func (r *GormSearchRepository) Count(ctx context.Context, filter database.SearchFilter) (int64, error) {
	sqlStr, args, err := database.CountSearchEntriesSQL(filter)
	if err != nil {
		return 0, err
	}
	var total int64
	if err := r.db.WithContext(ctx).Raw(sqlStr, args...).Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count search entries: %w", err)
	}
	return total, nil
}

// MissingCodes returns the codes of people that have no search entry yet.
func (r *GormSearchRepository) MissingCodes(ctx context.Context) ([]string, error) {
	sqlStr, args, err := database.MissingSearchEntriesSQL()
	if err != nil {
		return nil, err
	}
	var codes []string
	if err := r.db.WithContext(ctx).Raw(sqlStr, args...).Scan(&codes).Error; err != nil {
		return nil, fmt.Errorf("failed to list people without search entries: %w", err)
	}
	return codes, nil
}
