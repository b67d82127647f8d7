package repository

import "gorm.io/gorm"

// Repositories groups the stores bound to one database handle. Bound to a
// transaction, every store reads and writes inside that transaction.
type Repositories struct {
	People      PersonRepository
	Search      SearchRepository
	Users       UserRepository
	Permissions PermissionRepository
	Audit       AuditRepository
}

// Factory binds a Repositories set to a database handle or transaction.
type Factory func(db *gorm.DB) Repositories

// NewGormRepositories binds the GORM implementations to db.
func NewGormRepositories(db *gorm.DB) Repositories {
	return Repositories{
		People:      NewGormPersonRepository(db),
		Search:      NewGormSearchRepository(db),
		Users:       NewGormUserRepository(db),
		Permissions: NewGormPermissionRepository(db),
		Audit:       NewGormAuditRepository(db),
	}
}

var (
	_ PersonRepository     = (*GormPersonRepository)(nil)
	_ SearchRepository     = (*GormSearchRepository)(nil)
	_ UserRepository       = (*GormUserRepository)(nil)
	_ PermissionRepository = (*GormPermissionRepository)(nil)
	_ AuditRepository      = (*GormAuditRepository)(nil)
)
