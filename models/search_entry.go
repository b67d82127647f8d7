package models

// SearchEntry is the derived search projection of a Person. Only the search
// synchronizer writes it.
type SearchEntry struct {
	Code            string  `gorm:"primaryKey;size:32" json:"code"`
	FullName        string  `gorm:"not null;index" json:"full_name"`
	Nickname        *string `json:"nickname,omitempty"`
	GenerationLevel int     `gorm:"not null;default:0;index" json:"generation_level"`
	SearchText      string  `gorm:"not null" json:"-"`
	UpdatedAt       int64   `gorm:"not null" json:"updated_at"`
}

func (SearchEntry) TableName() string {
	return "search_entries"
}
