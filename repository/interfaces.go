package repository

import (
	"context"
	"errors"

	"github.com/camden-git/familytreebackend/database"
	"github.com/camden-git/familytreebackend/models"
)

// ErrDuplicateCode is returned when creating a person whose code is taken.
var ErrDuplicateCode = errors.New("person code already exists")

// Lookups of a missing row return gorm.ErrRecordNotFound.

// PersonRepository defines the relationship store operations over people
// and their one-to-one info and media rows.
type PersonRepository interface {
	Exists(ctx context.Context, code string) (bool, error)
	Get(ctx context.Context, code string) (*models.Person, error)
	GetWithDetails(ctx context.Context, code string) (*models.Person, error)
	Create(ctx context.Context, person *models.Person) error
	Update(ctx context.Context, code string, columns map[string]interface{}) error
	UpsertInfo(ctx context.Context, info *models.PersonInfo) error
	UpsertMedia(ctx context.Context, media *models.PersonMedia) error
	Delete(ctx context.Context, code string) error

	ListChildren(ctx context.Context, code string) ([]models.Person, error)
	ListSpouses(ctx context.Context, code string, gender models.Gender) ([]models.Person, error)
	ListChildCodesByFather(ctx context.Context, code string) ([]string, error)
	ListCodes(ctx context.Context) ([]string, error)
}

// SearchRepository stores the derived search projection.
type SearchRepository interface {
	Upsert(ctx context.Context, entry *models.SearchEntry) error
	Delete(ctx context.Context, code string) error
	Get(ctx context.Context, code string) (*models.SearchEntry, error)
	List(ctx context.Context, filter database.SearchFilter, limit, offset int) ([]models.SearchEntry, error)
	Count(ctx context.Context, filter database.SearchFilter) (int64, error)
	MissingCodes(ctx context.Context) ([]string, error)
}

// UserRepository defines the methods for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Delete(ctx context.Context, id uint) error
}

// PermissionRepository manages permissions and their grants to users.
type PermissionRepository interface {
	ListAll(ctx context.Context) ([]models.Permission, error)
	GetByName(ctx context.Context, name string) (*models.Permission, error)
	UserHasPermission(ctx context.Context, userID uint, name string) (bool, error)
	Grant(ctx context.Context, userID uint, name string) error
	Revoke(ctx context.Context, userID uint, name string) error
	ListForUser(ctx context.Context, userID uint) ([]models.Permission, error)
}

// AuditRepository records graph mutations.
type AuditRepository interface {
	Record(ctx context.Context, entry *models.AuditEntry) error
	ListRecent(ctx context.Context, limit int) ([]models.AuditEntry, error)
}
