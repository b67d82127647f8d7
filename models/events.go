package models

// ChangeKind is the kind of a person mutation.
type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
)

// Person columns whose change alters the search projection.
var NameAffectingFields = []string{
	"name", "father_code", "mother_code", "husband_code", "wife_code", "nickname", "generation_level",
}

// ChangeEvent describes one committed or in-flight person mutation. Changed
// lists the person columns an update touched; it is empty for create and
// delete.
type ChangeEvent struct {
	Kind    ChangeKind `json:"kind"`
	Code    string     `json:"code"`
	Changed []string   `json:"changed,omitempty"`
	UserID  uint       `json:"user_id,omitempty"`
	At      int64      `json:"at"`
}

// Touches reports whether the event changed any of the given columns.
func (e ChangeEvent) Touches(fields ...string) bool {
	for _, c := range e.Changed {
		for _, f := range fields {
			if c == f {
				return true
			}
		}
	}
	return false
}
