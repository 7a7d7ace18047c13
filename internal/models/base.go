package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base contains common columns for all tables. Deletes are hard deletes;
// removed rows leave no tombstone.
type Base struct {
	ID        string    `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate assigns a UUID rather than a numeric ID.
func (base *Base) BeforeCreate(tx *gorm.DB) error {
	if base.ID == "" {
		base.ID = uuid.New().String()
	}
	return nil
}

type UserRole string

const (
	UserRoleAdmin   UserRole = "admin"
	UserRoleManager UserRole = "manager"
	UserRoleUser    UserRole = "user"
)

// IsValidUserRole checks if a given role is valid.
func IsValidUserRole(role UserRole) bool {
	switch role {
	case UserRoleAdmin, UserRoleManager, UserRoleUser:
		return true
	default:
		return false
	}
}

// ObjectType is a business entity category a permission can be scoped to.
type ObjectType string

const (
	ObjectTypeContact      ObjectType = "contact"
	ObjectTypeAccount      ObjectType = "account"
	ObjectTypeOpportunity  ObjectType = "opportunity"
	ObjectTypeLead         ObjectType = "lead"
	ObjectTypeCustomObject ObjectType = "custom_object"

	// ObjectTypeUser gates the user-administration surface (user accounts,
	// permission sets). It never appears in the permission edit forms for
	// regular data, so in practice only admins pass these checks.
	ObjectTypeUser ObjectType = "user"
)

// StandardObjectTypes are the fixed-schema record types. Grants on these
// carry a NULL object_id, meaning "all records of this type".
func StandardObjectTypes() []ObjectType {
	return []ObjectType{
		ObjectTypeContact,
		ObjectTypeAccount,
		ObjectTypeOpportunity,
		ObjectTypeLead,
	}
}

// PermissionObjectTypes are all object types the permission model covers.
func PermissionObjectTypes() []ObjectType {
	return append(StandardObjectTypes(), ObjectTypeCustomObject)
}

// Capability is one of the four permission verbs.
type Capability string

const (
	CapabilityView   Capability = "view"
	CapabilityCreate Capability = "create"
	CapabilityEdit   Capability = "edit"
	CapabilityDelete Capability = "delete"
)

func IsValidCapability(c Capability) bool {
	switch c {
	case CapabilityView, CapabilityCreate, CapabilityEdit, CapabilityDelete:
		return true
	default:
		return false
	}
}
