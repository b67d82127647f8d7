package database

const (
	SortFullNameAsc = "full_name_asc"
	SortCodeAsc     = "code_asc"
	SortLevelAsc    = "level_asc"
	SortLevelDesc   = "level_desc"
)

const DefaultSortOrder = SortFullNameAsc

// IsValidSortOrder checks if a string is a valid sort order constant
func IsValidSortOrder(order string) bool {
	switch order {
	case SortFullNameAsc, SortCodeAsc, SortLevelAsc, SortLevelDesc:
		return true
	default:
		return false
	}
}

// orderByClauses maps a sort order to ORDER BY terms. Code is always the last
// term so paging is stable.
func orderByClauses(order string) []string {
	switch order {
	case SortCodeAsc:
		return []string{"code ASC"}
	case SortLevelAsc:
		return []string{"generation_level ASC", "full_name ASC", "code ASC"}
	case SortLevelDesc:
		return []string{"generation_level DESC", "full_name ASC", "code ASC"}
	default:
		return []string{"full_name ASC", "code ASC"}
	}
}
