package permissions

import "github.com/camden-git/familytreebackend/models"

// Capability keys checked by the family service.
const (
	AddMember    = "add_member"
	EditMember   = "edit_member"
	DeleteMember = "delete_member"
	ViewLogs     = "view_logs"
	ManageUsers  = "manage_users"
)

// PermissionDefinition describes a single, specific permission
type PermissionDefinition struct {
	Key         string `json:"key"`         // unique key, e.g., "add_member"
	Name        string `json:"name"`        // friendly name, e.g., "Add Member"
	Description string `json:"description"` // what the permission allows
}

// PermissionGroupDefinition groups related permissions
type PermissionGroupDefinition struct {
	Key         string                 `json:"key"`  // stored as the permission category
	Name        string                 `json:"name"` // friendly name for the group
	Description string                 `json:"description"`
	Permissions []PermissionDefinition `json:"permissions"`
}

// DefinedPermissionGroups holds all statically defined permission groups and their permissions
var DefinedPermissionGroups = []PermissionGroupDefinition{
	{
		Key:         "family",
		Name:        "Family Tree",
		Description: "Permissions related to editing members of the tree.",
		Permissions: []PermissionDefinition{
			{
				Key:         AddMember,
				Name:        "Add Member",
				Description: "Allows adding new people to the tree.",
			},
			{
				Key:         EditMember,
				Name:        "Edit Member",
				Description: "Allows editing a person's name, relatives, info and portrait.",
			},
			{
				Key:         DeleteMember,
				Name:        "Delete Member",
				Description: "Allows deleting people. Relatives referencing them are kept.",
			},
		},
	},
	{
		Key:         "system",
		Name:        "System Administration",
		Description: "High-level system administration permissions.",
		Permissions: []PermissionDefinition{
			{
				Key:         ViewLogs,
				Name:        "View Audit Log",
				Description: "Allows viewing who changed which member and when.",
			},
			{
				Key:         ManageUsers,
				Name:        "Manage Users",
				Description: "Allows managing user accounts and their grants.",
			},
		},
	},
}

var (
	allPermissionKeysMap map[string]PermissionDefinition
	allPermissionKeys    []string
)

func init() {
	allPermissionKeysMap = make(map[string]PermissionDefinition)
	for _, group := range DefinedPermissionGroups {
		for _, perm := range group.Permissions {
			if _, exists := allPermissionKeysMap[perm.Key]; exists {
				panic("permissions: duplicate key " + perm.Key)
			}
			allPermissionKeysMap[perm.Key] = perm
			allPermissionKeys = append(allPermissionKeys, perm.Key)
		}
	}
}

// GetAllPermissionKeys returns a slice of all unique permission string keys
func GetAllPermissionKeys() []string {
	keys := make([]string, len(allPermissionKeys))
	copy(keys, allPermissionKeys)
	return keys
}

// IsValidPermissionKey checks if a given permission key is defined
func IsValidPermissionKey(key string) bool {
	_, ok := allPermissionKeysMap[key]
	return ok
}

// GetPermissionDefinition retrieves a specific permission definition by its key.
func GetPermissionDefinition(key string) (PermissionDefinition, bool) {
	def, ok := allPermissionKeysMap[key]
	return def, ok
}

// SeedRows converts the definitions into permission rows, using the group
// key as category.
func SeedRows() []models.Permission {
	rows := make([]models.Permission, 0, len(allPermissionKeys))
	for _, group := range DefinedPermissionGroups {
		for _, perm := range group.Permissions {
			rows = append(rows, models.Permission{
				Name:        perm.Key,
				Category:    group.Key,
				Description: perm.Description,
			})
		}
	}
	return rows
}
