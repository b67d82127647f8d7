package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/facette/natsort"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/camden-git/familytreebackend/models"
)

// GormPersonRepository handles database operations for Person and its
// PersonInfo and PersonMedia rows. Pass a transaction handle to make its
// writes part of a larger unit of work.
type GormPersonRepository struct {
	db *gorm.DB
}

// NewGormPersonRepository creates a new instance of GormPersonRepository
func NewGormPersonRepository(db *gorm.DB) *GormPersonRepository {
	return &GormPersonRepository{db: db}
}

// Exists reports whether a person with the given code exists.
func (r *GormPersonRepository) Exists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Person{}).Where("code = ?", code).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check person %s: %w", code, err)
	}
	return count > 0, nil
}

// Get retrieves a person by code without associations.
func (r *GormPersonRepository) Get(ctx context.Context, code string) (*models.Person, error) {
	var person models.Person
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&person).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get person %s: %w", code, err)
	}
	return &person, nil
}

// GetWithDetails retrieves a person by code, preloading Info and Media.
func (r *GormPersonRepository) GetWithDetails(ctx context.Context, code string) (*models.Person, error) {
	var person models.Person
	err := r.db.WithContext(ctx).Preload("Info").Preload("Media").Where("code = ?", code).First(&person).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get person details %s: %w", code, err)
	}
	return &person, nil
}

// Create inserts a person together with its optional Info and Media rows.
func (r *GormPersonRepository) Create(ctx context.Context, person *models.Person) error {
	now := time.Now().Unix()
	if person.CreatedAt == 0 {
		person.CreatedAt = now
	}
	if person.UpdatedAt == 0 {
		person.UpdatedAt = now
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Person{}).Where("code = ?", person.Code).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check person %s: %w", person.Code, err)
		}
		if count > 0 {
			return ErrDuplicateCode
		}

		if err := tx.Omit(clause.Associations).Create(person).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateCode
			}
			return fmt.Errorf("failed to create person %s: %w", person.Code, err)
		}
		if person.Info != nil {
			person.Info.Code = person.Code
			person.Info.UpdatedAt = now
			if err := tx.Create(person.Info).Error; err != nil {
				return fmt.Errorf("failed to create info for person %s: %w", person.Code, err)
			}
		}
		if person.Media != nil {
			person.Media.Code = person.Code
			person.Media.UpdatedAt = now
			if err := tx.Create(person.Media).Error; err != nil {
				return fmt.Errorf("failed to create media for person %s: %w", person.Code, err)
			}
		}
		return nil
	})
}

// Update applies a partial update of person columns. The code column can
// never be changed.
func (r *GormPersonRepository) Update(ctx context.Context, code string, columns map[string]interface{}) error {
	if _, ok := columns["code"]; ok {
		return fmt.Errorf("failed to update person %s: code is immutable", code)
	}

	updates := make(map[string]interface{}, len(columns)+1)
	for k, v := range columns {
		updates[k] = v
	}
	updates["updated_at"] = time.Now().Unix()

	result := r.db.WithContext(ctx).Model(&models.Person{}).Where("code = ?", code).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update person %s: %w", code, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpsertInfo creates or replaces the info row of a person.
func (r *GormPersonRepository) UpsertInfo(ctx context.Context, info *models.PersonInfo) error {
	info.UpdatedAt = time.Now().Unix()
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		UpdateAll: true,
	}).Create(info).Error
	if err != nil {
		return fmt.Errorf("failed to upsert info for person %s: %w", info.Code, err)
	}
	return nil
}

// UpsertMedia creates or replaces the media row of a person.
func (r *GormPersonRepository) UpsertMedia(ctx context.Context, media *models.PersonMedia) error {
	media.UpdatedAt = time.Now().Unix()
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"portrait_path", "updated_at"}),
	}).Create(media).Error
	if err != nil {
		return fmt.Errorf("failed to upsert media for person %s: %w", media.Code, err)
	}
	return nil
}

// Delete removes a person with its info and media rows. Other people that
// reference the code as a relative are left untouched.
func (r *GormPersonRepository) Delete(ctx context.Context, code string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("code = ?", code).Delete(&models.PersonMedia{}).Error; err != nil {
			return fmt.Errorf("failed to delete media for person %s: %w", code, err)
		}
		if err := tx.Where("code = ?", code).Delete(&models.PersonInfo{}).Error; err != nil {
			return fmt.Errorf("failed to delete info for person %s: %w", code, err)
		}
		result := tx.Where("code = ?", code).Delete(&models.Person{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete person %s: %w", code, result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func sortByCode(people []models.Person) {
	sort.SliceStable(people, func(i, j int) bool {
		return natsort.Compare(people[i].Code, people[j].Code)
	})
}

// ListChildren returns everyone whose father or mother is the given code,
// in natural code order.
func (r *GormPersonRepository) ListChildren(ctx context.Context, code string) ([]models.Person, error) {
	var children []models.Person
	err := r.db.WithContext(ctx).Where("father_code = ? OR mother_code = ?", code, code).Find(&children).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list children of %s: %w", code, err)
	}
	sortByCode(children)
	return children, nil
}

// ListSpouses returns the wives of a man (every node whose husband_code is
// the code) or the husband of a woman (the node her own husband_code points
// at). A dangling husband reference yields no spouse.
func (r *GormPersonRepository) ListSpouses(ctx context.Context, code string, gender models.Gender) ([]models.Person, error) {
	switch gender {
	case models.GenderMale:
		var wives []models.Person
		err := r.db.WithContext(ctx).Where("husband_code = ?", code).Find(&wives).Error
		if err != nil {
			return nil, fmt.Errorf("failed to list wives of %s: %w", code, err)
		}
		sortByCode(wives)
		return wives, nil
	case models.GenderFemale:
		self, err := r.Get(ctx, code)
		if err != nil {
			return nil, err
		}
		if self.HusbandCode == nil || *self.HusbandCode == "" {
			return []models.Person{}, nil
		}
		husband, err := r.Get(ctx, *self.HusbandCode)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return []models.Person{}, nil
			}
			return nil, err
		}
		return []models.Person{*husband}, nil
	default:
		return []models.Person{}, nil
	}
}

// ListChildCodesByFather returns the codes whose father_code is the given code.
func (r *GormPersonRepository) ListChildCodesByFather(ctx context.Context, code string) ([]string, error) {
	var codes []string
	err := r.db.WithContext(ctx).Model(&models.Person{}).Where("father_code = ?", code).
		Order("code ASC").Pluck("code", &codes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list children codes of %s: %w", code, err)
	}
	return codes, nil
}

// ListCodes returns every person code.
func (r *GormPersonRepository) ListCodes(ctx context.Context) ([]string, error) {
	var codes []string
	err := r.db.WithContext(ctx).Model(&models.Person{}).Order("code ASC").Pluck("code", &codes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list person codes: %w", err)
	}
	return codes, nil
}
