package family

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/camden-git/familytreebackend/lineage"
	"github.com/camden-git/familytreebackend/models"
	"github.com/camden-git/familytreebackend/permissions"
	"github.com/camden-git/familytreebackend/search"
)

// Relative is a related person as shown on a details page. Name is the
// resolved full name with the nickname appended, as for spouses and mother.
type Relative struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// PersonDetails is everything a details page shows about one person.
type PersonDetails struct {
	Person         *models.Person `json:"person"`
	FullName       string         `json:"full_name"`
	Lineage        []string       `json:"lineage"`
	MotherFullName string         `json:"mother_full_name"`
	Spouses        []Relative     `json:"spouses"`
	Children       []Relative     `json:"children"`
	Gender         models.Gender  `json:"gender,omitempty"`
	AgeAtDeath     *int           `json:"age_at_death,omitempty"`
}

// GetPersonDetails loads a person with its info and portrait and resolves
// the names around it live, independent of the search index.
func (s *Service) GetPersonDetails(ctx context.Context, code string) (*PersonDetails, error) {
	people := s.stores(s.db).People
	person, err := people.GetWithDetails(ctx, code)
	if err != nil {
		return nil, translate(err, "get", code)
	}
	resolver := lineage.NewResolver(people)
	withNickname := lineage.Options{IncludeNickname: true}

	details := &PersonDetails{
		Person:   person,
		FullName: resolver.ResolveFullName(ctx, code, lineage.Options{}),
		Lineage:  resolver.Chain(ctx, code),
		Gender:   person.InferredGender(),
		Spouses:  []Relative{},
		Children: []Relative{},
	}
	if age, ok := person.Info.AgeAtDeath(); ok {
		details.AgeAtDeath = &age
	}
	if person.MotherCode != nil {
		details.MotherFullName = resolver.ResolveFullName(ctx, *person.MotherCode, withNickname)
	}

	spouses, err := people.ListSpouses(ctx, code, details.Gender)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load spouses of %s: %w", code, err)
	}
	for _, sp := range spouses {
		details.Spouses = append(details.Spouses, Relative{Code: sp.Code, Name: resolver.ResolveFullName(ctx, sp.Code, withNickname)})
	}

	children, err := people.ListChildren(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to load children of %s: %w", code, err)
	}
	for _, c := range children {
		details.Children = append(details.Children, Relative{Code: c.Code, Name: resolver.ResolveFullName(ctx, c.Code, withNickname)})
	}
	return details, nil
}

// ListQuery selects a page of the person listing. Page and PageSize are
// clamped. A nil MinLevel uses the configured minimum level; an empty Sort
// orders by full name then code.
type ListQuery struct {
	Page     int
	PageSize int
	Search   string
	MinLevel *int
	Sort     string
}

// ListItem is one row of the person listing.
type ListItem struct {
	Code            string  `json:"code"`
	DisplayName     string  `json:"display_name"`
	Nickname        *string `json:"nickname,omitempty"`
	GenerationLevel int     `json:"generation_level"`
}

// PersonPage is a page of the listing with its totals.
type PersonPage struct {
	Items      []ListItem `json:"items"`
	TotalCount int64      `json:"total_count"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalPages int        `json:"total_pages"`
}

// ListPersons pages through the search index in the requested order.
// Display names are resolved live and truncated.
func (s *Service) ListPersons(ctx context.Context, q ListQuery) (*PersonPage, error) {
	if err := q.Validate(); err != nil {
		return nil, &ValidationError{Err: err}
	}

	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = s.opts.PageSize
	}
	if pageSize > s.opts.MaxPageSize {
		pageSize = s.opts.MaxPageSize
	}

	filter := search.ParseQuery(q.Search)
	filter.Sort = q.Sort
	filter.MinLevel = s.opts.MinListLevel
	if q.MinLevel != nil {
		filter.MinLevel = *q.MinLevel
	}

	stores := s.stores(s.db)
	entries := stores.Search
	total, err := entries.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if totalPages < 1 {
		totalPages = 1
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	rows, err := entries.List(ctx, filter, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}

	resolver := lineage.NewResolver(stores.People)
	items := make([]ListItem, 0, len(rows))
	for _, row := range rows {
		name := resolver.ResolveFullName(ctx, row.Code, lineage.Options{MaxNames: s.opts.DisplayMaxNames})
		if name == "" {
			name = row.FullName
		}
		items = append(items, ListItem{
			Code:            row.Code,
			DisplayName:     name,
			Nickname:        row.Nickname,
			GenerationLevel: row.GenerationLevel,
		})
	}

	return &PersonPage{
		Items:      items,
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// ListAudit returns the newest audit entries. It needs view_logs.
func (s *Service) ListAudit(ctx context.Context, actor *models.User, limit int) ([]models.AuditEntry, error) {
	if err := s.evaluator.Require(ctx, actor, permissions.ViewLogs); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > s.opts.MaxPageSize {
		limit = s.opts.MaxPageSize
	}
	return s.stores(s.db).Audit.ListRecent(ctx, limit)
}
