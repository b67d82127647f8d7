// Package search keeps the search_entries projection in step with people.
package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/camden-git/familytreebackend/lineage"
	"github.com/camden-git/familytreebackend/logger"
	"github.com/camden-git/familytreebackend/metrics"
	"github.com/camden-git/familytreebackend/models"
	"github.com/camden-git/familytreebackend/normalize"
	"github.com/camden-git/familytreebackend/repository"
)

// Synchronizer recomputes search entries. Every method works on the
// transaction handed to it, so entries commit or roll back with the person
// write that caused them.
type Synchronizer struct {
	cascadeDescendants bool
	stores             repository.Factory
	log                zerolog.Logger
}

// NewSynchronizer returns a synchronizer. With cascadeDescendants set, a
// created or deleted person and a change to a person's name or father also
// refresh every descendant along father links.
func NewSynchronizer(cascadeDescendants bool) *Synchronizer {
	return &Synchronizer{
		cascadeDescendants: cascadeDescendants,
		stores:             repository.NewGormRepositories,
		log:                logger.Component("search"),
	}
}

// Sync resolves the full name of code and upserts its entry. A code with no
// person has its entry removed instead.
func (s *Synchronizer) Sync(ctx context.Context, tx *gorm.DB, code string) error {
	stores := s.stores(tx)
	people := stores.People
	person, err := people.Get(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.Remove(ctx, tx, code)
		}
		return fmt.Errorf("failed to load person %s for search sync: %w", code, err)
	}

	fullName := lineage.NewResolver(people).ResolveFullName(ctx, code, lineage.Options{})
	entry := &models.SearchEntry{
		Code:            person.Code,
		FullName:        fullName,
		Nickname:        person.Nickname,
		GenerationLevel: person.GenerationLevel,
		SearchText:      normalize.Projection(fullName, person.NicknameValue()),
	}
	if err := stores.Search.Upsert(ctx, entry); err != nil {
		return err
	}
	metrics.SearchSync.WithLabelValues(metrics.SyncUpsert).Inc()
	return nil
}

// Remove deletes the entry of code.
func (s *Synchronizer) Remove(ctx context.Context, tx *gorm.DB, code string) error {
	if err := s.stores(tx).Search.Delete(ctx, code); err != nil {
		return err
	}
	metrics.SearchSync.WithLabelValues(metrics.SyncRemove).Inc()
	return nil
}

// Apply brings the index in line with a person mutation.
func (s *Synchronizer) Apply(ctx context.Context, tx *gorm.DB, ev models.ChangeEvent) error {
	switch ev.Kind {
	case models.ChangeCreated:
		if err := s.Sync(ctx, tx, ev.Code); err != nil {
			return err
		}
		// children may have been added before their father
		return s.syncDescendants(ctx, tx, ev.Code)
	case models.ChangeUpdated:
		if !ev.Touches(models.NameAffectingFields...) {
			metrics.SearchSync.WithLabelValues(metrics.SyncSkip).Inc()
			return nil
		}
		if err := s.Sync(ctx, tx, ev.Code); err != nil {
			return err
		}
		if ev.Touches("name", "father_code") {
			return s.syncDescendants(ctx, tx, ev.Code)
		}
		return nil
	case models.ChangeDeleted:
		if err := s.Remove(ctx, tx, ev.Code); err != nil {
			return err
		}
		// children keep pointing at the deleted code, their names lose it
		return s.syncDescendants(ctx, tx, ev.Code)
	default:
		return fmt.Errorf("unknown change kind '%s'", ev.Kind)
	}
}

// syncDescendants re-syncs everyone below root breadth-first, at most
// lineage.MaxHops generations deep.
func (s *Synchronizer) syncDescendants(ctx context.Context, tx *gorm.DB, root string) error {
	if !s.cascadeDescendants {
		return nil
	}
	people := s.stores(tx).People
	visited := map[string]struct{}{root: {}}
	frontier := []string{root}

	for depth := 1; len(frontier) > 0; depth++ {
		if depth > lineage.MaxHops {
			metrics.LineageAnomalies.WithLabelValues(metrics.AnomalyDescendantLimit).Inc()
			s.log.Warn().Str("code", root).Int("depth", depth).Msg("descendant re-sync stopped at depth limit")
			return nil
		}
		var next []string
		for _, parent := range frontier {
			children, err := people.ListChildCodesByFather(ctx, parent)
			if err != nil {
				return err
			}
			for _, child := range children {
				if _, seen := visited[child]; seen {
					continue
				}
				visited[child] = struct{}{}
				if err := s.Sync(ctx, tx, child); err != nil {
					return err
				}
				next = append(next, child)
			}
		}
		frontier = next
	}
	return nil
}

// SyncCode syncs one code in a transaction of its own.
func (s *Synchronizer) SyncCode(ctx context.Context, db *gorm.DB, code string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.Sync(ctx, tx, code)
	})
}
