// Package family is the entry point for reading and editing the tree. Every
// mutation checks the actor's capability, then writes the person, its search
// entry and an audit row in one transaction.
package family

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/camden-git/familytreebackend/logger"
	"github.com/camden-git/familytreebackend/models"
	"github.com/camden-git/familytreebackend/permissions"
	"github.com/camden-git/familytreebackend/repository"
	"github.com/camden-git/familytreebackend/search"
)

// Publisher receives change events after their transaction committed.
type Publisher interface {
	Publish(ev models.ChangeEvent)
}

// Options holds listing defaults.
type Options struct {
	DisplayMaxNames int
	PageSize        int
	MaxPageSize     int
	MinListLevel    int
}

type Service struct {
	db        *gorm.DB
	evaluator *permissions.Evaluator
	sync      *search.Synchronizer
	publisher Publisher
	stores    repository.Factory
	opts      Options
	log       zerolog.Logger
}

// NewService wires the service. publisher may be nil.
func NewService(db *gorm.DB, evaluator *permissions.Evaluator, sync *search.Synchronizer, publisher Publisher, opts Options) *Service {
	if opts.PageSize <= 0 {
		opts.PageSize = 24
	}
	if opts.MaxPageSize < opts.PageSize {
		opts.MaxPageSize = opts.PageSize
	}
	return &Service{
		db:        db,
		evaluator: evaluator,
		sync:      sync,
		publisher: publisher,
		stores:    repository.NewGormRepositories,
		opts:      opts,
		log:       logger.Component("family"),
	}
}

// Can reports whether actor holds capability.
func (s *Service) Can(ctx context.Context, actor *models.User, capability string) bool {
	return s.evaluator.Can(ctx, actor, capability)
}

func actorID(actor *models.User) uint {
	if actor == nil {
		return 0
	}
	return actor.ID
}

// translate maps repository errors onto the service's sentinels.
func translate(err error, op, code string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrDuplicateCode):
		return ErrDuplicateCode
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	default:
		return fmt.Errorf("failed to %s person %s: %w", op, code, err)
	}
}

// mutate runs write, the search index update and the audit row in one
// transaction, then publishes ev.
func (s *Service) mutate(ctx context.Context, actor *models.User, action string, ev models.ChangeEvent, write func(tx *gorm.DB) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := write(tx); err != nil {
			return err
		}
		if err := s.sync.Apply(ctx, tx, ev); err != nil {
			return err
		}
		return s.stores(tx).Audit.Record(ctx, &models.AuditEntry{
			UserID: actorID(actor),
			Action: action,
			Code:   ev.Code,
		})
	})
	if err != nil {
		return err
	}

	s.log.Info().Str("action", action).Str("code", ev.Code).Uint("user_id", actorID(actor)).Msg("person changed")
	if s.publisher != nil {
		s.publisher.Publish(ev)
	}
	return nil
}

// CreatePerson adds a person with optional info and portrait.
func (s *Service) CreatePerson(ctx context.Context, actor *models.User, in CreatePersonInput) (string, error) {
	if err := s.evaluator.Require(ctx, actor, permissions.AddMember); err != nil {
		return "", err
	}
	in.clean()
	if err := in.Validate(); err != nil {
		return "", &ValidationError{Err: err}
	}

	person := in.model()
	ev := models.ChangeEvent{Kind: models.ChangeCreated, Code: person.Code, UserID: actorID(actor), At: time.Now().Unix()}
	err := s.mutate(ctx, actor, permissions.AddMember, ev, func(tx *gorm.DB) error {
		return s.stores(tx).People.Create(ctx, person)
	})
	if err != nil {
		return "", translate(err, "create", person.Code)
	}
	return person.Code, nil
}

// UpdatePerson applies a partial update. The code itself cannot change.
func (s *Service) UpdatePerson(ctx context.Context, actor *models.User, code string, in UpdatePersonInput) error {
	if err := s.evaluator.Require(ctx, actor, permissions.EditMember); err != nil {
		return err
	}
	in.clean()
	if err := in.Validate(); err != nil {
		return &ValidationError{Err: err}
	}

	columns := in.columns()
	changed := make([]string, 0, len(columns))
	for col := range columns {
		changed = append(changed, col)
	}
	sort.Strings(changed)

	ev := models.ChangeEvent{Kind: models.ChangeUpdated, Code: code, Changed: changed, UserID: actorID(actor), At: time.Now().Unix()}
	err := s.mutate(ctx, actor, permissions.EditMember, ev, func(tx *gorm.DB) error {
		people := s.stores(tx).People
		if err := people.Update(ctx, code, columns); err != nil {
			return err
		}
		if in.Info != nil {
			if err := people.UpsertInfo(ctx, in.Info.model(code)); err != nil {
				return err
			}
		}
		if in.PortraitPath != nil {
			if err := people.UpsertMedia(ctx, &models.PersonMedia{Code: code, PortraitPath: *in.PortraitPath}); err != nil {
				return err
			}
		}
		return nil
	})
	return translate(err, "update", code)
}

// DeletePerson removes a person with its info, portrait and search entry.
// Relatives pointing at the code keep the now dangling reference.
func (s *Service) DeletePerson(ctx context.Context, actor *models.User, code string) error {
	if err := s.evaluator.Require(ctx, actor, permissions.DeleteMember); err != nil {
		return err
	}
	ev := models.ChangeEvent{Kind: models.ChangeDeleted, Code: code, UserID: actorID(actor), At: time.Now().Unix()}
	err := s.mutate(ctx, actor, permissions.DeleteMember, ev, func(tx *gorm.DB) error {
		return s.stores(tx).People.Delete(ctx, code)
	})
	return translate(err, "delete", code)
}
