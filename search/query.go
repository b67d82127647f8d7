package search

import (
	"strings"

	"github.com/camden-git/familytreebackend/database"
	"github.com/camden-git/familytreebackend/models"
	"github.com/camden-git/familytreebackend/normalize"
)

// ParseQuery turns a raw search box value into a filter. A full person code
// is looked up exactly; anything else is matched as normalized text against
// the name projection, the nickname and the code.
func ParseQuery(q string) database.SearchFilter {
	trimmed := strings.TrimSpace(q)
	if trimmed == "" {
		return database.SearchFilter{Mode: database.SearchAll}
	}
	if upper := strings.ToUpper(trimmed); models.ValidCode(upper) {
		return database.SearchFilter{Mode: database.SearchExactCode, Term: upper}
	}
	return database.SearchFilter{Mode: database.SearchText, Term: normalize.Query(trimmed)}
}
