// Package permissions decides whether a user may act on an object type.
//
// Resolution precedence is fixed: admin role first, then a direct
// user_permissions row, then the user's active permission sets in
// assignment order, then deny. When several assigned sets carry a grant for
// the same scope, the set assigned earliest wins outright; grants are never
// merged, so an early deny shadows a later allow. That first-match policy
// is deliberate and covered by tests.
package permissions

import (
	"context"

	"gorm.io/gorm"

	"crm/internal/models"
)

// Resolver evaluates permission checks against the database. It only
// reads; absence of data means "no grant", never an error.
type Resolver struct {
	db *gorm.DB
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// Resolve reports whether the user may exercise the capability on the
// given object type. objectID is nil for standard object types and the
// CustomObject id for custom_object checks; a nil objectID matches only
// rows whose object_id is NULL, never as a wildcard. Query failures
// degrade to deny.
func (r *Resolver) Resolve(ctx context.Context, user *models.User, objectType models.ObjectType, objectID *string, capability models.Capability) bool {
	if user == nil {
		return false
	}
	if user.IsAdmin() {
		return true
	}

	// Direct grant wins over anything set-derived, including when it denies.
	var direct models.UserPermission
	err := scopeQuery(r.db.WithContext(ctx).Where("user_id = ?", user.ID), objectType, objectID).
		First(&direct).Error
	if err == nil {
		return direct.Allows(capability)
	}
	if !models.IsNotFound(err) {
		return false
	}

	// Active permission sets in assignment order; first set holding a
	// matching row decides, whatever its answer.
	var assignments []models.UserPermissionSet
	if err := r.db.WithContext(ctx).
		Joins("JOIN permission_sets ON permission_sets.id = user_permission_sets.permission_set_id").
		Where("user_permission_sets.user_id = ? AND permission_sets.is_active = ?", user.ID, true).
		Order("user_permission_sets.assigned_at ASC, user_permission_sets.id ASC").
		Find(&assignments).Error; err != nil {
		return false
	}

	for _, assignment := range assignments {
		var grant models.PermissionSetPermission
		err := scopeQuery(r.db.WithContext(ctx).Where("permission_set_id = ?", assignment.PermissionSetID), objectType, objectID).
			First(&grant).Error
		if err == nil {
			return grant.Allows(capability)
		}
		if !models.IsNotFound(err) {
			return false
		}
	}

	return false
}

func scopeQuery(query *gorm.DB, objectType models.ObjectType, objectID *string) *gorm.DB {
	query = query.Where("object_type = ?", objectType)
	if objectID == nil {
		return query.Where("object_id IS NULL")
	}
	return query.Where("object_id = ?", *objectID)
}

// Grants maps object type to object id to a capability quad. The empty
// object id key stands for "all records of this object type".
type Grants map[models.ObjectType]map[string]models.CapabilitySet

// AllPermissions aggregates a user's grants for display. Admins get the
// full table over every permission-managed object type. For everyone else
// only direct user_permissions rows are reported; set-derived grants do
// not appear in this view even though Resolve consults them. The aggregate
// mirrors the permission edit form, which edits direct rows only.
func (r *Resolver) AllPermissions(ctx context.Context, user *models.User) (Grants, error) {
	grants := make(Grants)

	if user.IsAdmin() {
		everything := models.CapabilitySet{CanView: true, CanCreate: true, CanEdit: true, CanDelete: true}
		for _, objectType := range models.PermissionObjectTypes() {
			grants[objectType] = map[string]models.CapabilitySet{"": everything}
		}
		return grants, nil
	}

	var rows []models.UserPermission
	if err := r.db.WithContext(ctx).Where("user_id = ?", user.ID).Find(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		byID, ok := grants[row.ObjectType]
		if !ok {
			byID = make(map[string]models.CapabilitySet)
			grants[row.ObjectType] = byID
		}
		key := ""
		if row.ObjectID != nil {
			key = *row.ObjectID
		}
		byID[key] = row.CapabilitySet
	}

	return grants, nil
}
