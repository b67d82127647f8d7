package database

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// SearchMode selects how a search term is matched against search_entries.
type SearchMode int

const (
	// SearchAll matches every entry.
	SearchAll SearchMode = iota
	// SearchExactCode matches one code exactly.
	SearchExactCode
	// SearchText matches a case-insensitive substring of the normalized
	// projection, the nickname or the code. The projection is stored
	// lower-cased, so the term is compared to it directly.
	SearchText
)

// SearchFilter describes a listing over the search index.
type SearchFilter struct {
	Mode     SearchMode
	Term     string // already normalized by the caller
	MinLevel int
	Sort     string
}

// escapeLike escapes LIKE wildcards in user supplied text.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func applySearchFilter(b sq.SelectBuilder, f SearchFilter) sq.SelectBuilder {
	if f.MinLevel > 0 {
		b = b.Where(sq.GtOrEq{"generation_level": f.MinLevel})
	}
	switch f.Mode {
	case SearchExactCode:
		b = b.Where(sq.Eq{"code": f.Term})
	case SearchText:
		pattern := "%" + escapeLike(strings.ToLower(f.Term)) + "%"
		b = b.Where(sq.Or{
			sq.Expr(`search_text LIKE ? ESCAPE '\'`, pattern),
			sq.Expr(`LOWER(nickname) LIKE ? ESCAPE '\'`, pattern),
			sq.Expr(`LOWER(code) LIKE ? ESCAPE '\'`, pattern),
		})
	}
	return b
}

// ListSearchEntriesSQL builds the page query over search_entries.
func ListSearchEntriesSQL(f SearchFilter, limit, offset int) (string, []interface{}, error) {
	if !IsValidSortOrder(f.Sort) {
		f.Sort = DefaultSortOrder
	}
	queryBuilder := applySearchFilter(
		psql.Select("code", "full_name", "nickname", "generation_level", "search_text", "updated_at").
			From("search_entries"),
		f,
	).OrderBy(orderByClauses(f.Sort)...)

	if limit > 0 {
		queryBuilder = queryBuilder.Limit(uint64(limit))
	}
	if offset > 0 {
		queryBuilder = queryBuilder.Offset(uint64(offset))
	}

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("failed to build SQL for ListSearchEntries: %w", err)
	}
	return sqlStr, args, nil
}

// CountSearchEntriesSQL builds the count query matching ListSearchEntriesSQL.
func CountSearchEntriesSQL(f SearchFilter) (string, []interface{}, error) {
	queryBuilder := applySearchFilter(psql.Select("COUNT(*)").From("search_entries"), f)
	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("failed to build SQL for CountSearchEntries: %w", err)
	}
	return sqlStr, args, nil
}

// MissingSearchEntriesSQL selects codes of people that have no search entry.
func MissingSearchEntriesSQL() (string, []interface{}, error) {
	queryBuilder := psql.Select("p.code").
		From("people p").
		LeftJoin("search_entries s ON s.code = p.code").
		Where(sq.Eq{"s.code": nil}).
		OrderBy("p.code ASC")
	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("failed to build SQL for MissingSearchEntries: %w", err)
	}
	return sqlStr, args, nil
}
