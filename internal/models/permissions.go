package models

import "time"

// CapabilitySet is the grant quad shared by direct and set-scoped
// permission rows.
type CapabilitySet struct {
	CanView   bool `gorm:"not null;default:false" json:"canView"`
	CanCreate bool `gorm:"not null;default:false" json:"canCreate"`
	CanEdit   bool `gorm:"not null;default:false" json:"canEdit"`
	CanDelete bool `gorm:"not null;default:false" json:"canDelete"`
}

// Allows returns the boolean for the requested capability. Unknown
// capabilities are denied.
func (c CapabilitySet) Allows(capability Capability) bool {
	switch capability {
	case CapabilityView:
		return c.CanView
	case CapabilityCreate:
		return c.CanCreate
	case CapabilityEdit:
		return c.CanEdit
	case CapabilityDelete:
		return c.CanDelete
	default:
		return false
	}
}

// Empty reports whether no capability is granted. Empty quads are not
// persisted when permission forms are submitted.
func (c CapabilitySet) Empty() bool {
	return !c.CanView && !c.CanCreate && !c.CanEdit && !c.CanDelete
}

// PermissionSet is a named, reusable bundle of grants assignable to many
// users.
type PermissionSet struct {
	Base
	Name        string `gorm:"not null" json:"name" validate:"required,min=2"`
	Description string `json:"description"`
	IsActive    bool   `gorm:"not null;default:true" json:"isActive"`

	Permissions []PermissionSetPermission `gorm:"foreignKey:PermissionSetID;constraint:OnDelete:CASCADE" json:"permissions,omitempty"`
}

// PermissionSetPermission grants capabilities on one object type within a
// permission set. ObjectID is NULL for standard object types and holds the
// CustomObject id when ObjectType is custom_object.
type PermissionSetPermission struct {
	Base
	PermissionSetID string     `gorm:"type:uuid;not null;index" json:"permissionSetId"`
	ObjectType      ObjectType `gorm:"not null" json:"objectType"`
	ObjectID        *string    `gorm:"type:uuid" json:"objectId,omitempty"`
	CapabilitySet
}

// UserPermission has the same shape as PermissionSetPermission but is
// scoped directly to one user. A direct row always wins over any
// set-derived grant for the same (object_type, object_id).
type UserPermission struct {
	Base
	UserID     string     `gorm:"type:uuid;not null;index" json:"userId"`
	ObjectType ObjectType `gorm:"not null" json:"objectType"`
	ObjectID   *string    `gorm:"type:uuid" json:"objectId,omitempty"`
	CapabilitySet
}

// UserPermissionSet assigns a permission set to a user. AssignedAt drives
// the resolver's first-match enumeration order, so it is explicit rather
// than inferred from CreatedAt.
type UserPermissionSet struct {
	Base
	UserID          string         `gorm:"type:uuid;not null;index" json:"userId"`
	PermissionSetID string         `gorm:"type:uuid;not null;index" json:"permissionSetId"`
	PermissionSet   *PermissionSet `json:"permissionSet,omitempty"`
	AssignedAt      time.Time      `gorm:"not null" json:"assignedAt"`
	AssignedBy      string         `gorm:"type:uuid" json:"assignedBy"`
}
