package permissions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"crm/internal/db/testutil"
	"crm/internal/models"
)

func newUser(t *testing.T, db *gorm.DB, username string, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        username + "@crm.test",
		PasswordHash: "x",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func newSet(t *testing.T, db *gorm.DB, name string, active bool, grants ...models.PermissionSetPermission) *models.PermissionSet {
	t.Helper()
	set := &models.PermissionSet{Name: name, IsActive: active, Permissions: grants}
	require.NoError(t, db.Create(set).Error)
	return set
}

func assign(t *testing.T, db *gorm.DB, user *models.User, set *models.PermissionSet, at time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&models.UserPermissionSet{
		UserID:          user.ID,
		PermissionSetID: set.ID,
		AssignedAt:      at,
	}).Error)
}

func TestResolveAdminBypassesEverything(t *testing.T) {
	conn := testutil.MustOpenTestDB(t)
	resolver := NewResolver(conn)
	admin := newUser(t, conn, "root", models.UserRoleAdmin)

	id := "11111111-1111-1111-1111-111111111111"
	for _, objectType := range models.PermissionObjectTypes() {
		for _, capability := range []models.Capability{models.CapabilityView, models.CapabilityCreate, models.CapabilityEdit, models.CapabilityDelete} {
			require.True(t, resolver.Resolve(context.Background(), admin, objectType, nil, capability))
			require.True(t, resolver.Resolve(context.Background(), admin, objectType, &id, capability))
		}
	}
}

func TestResolveDeniesByDefault(t *testing.T) {
	conn := testutil.MustOpenTestDB(t)
	resolver := NewResolver(conn)
	user := newUser(t, conn, "nobody", models.UserRoleUser)

	require.False(t, resolver.Resolve(context.Background(), user, models.ObjectTypeContact, nil, models.CapabilityView))
	require.False(t, resolver.Resolve(context.Background(), nil, models.ObjectTypeContact, nil, models.CapabilityView))
}

func TestResolveDirectGrant(t *testing.T) {
	conn := testutil.MustOpenTestDB(t)
	resolver := NewResolver(conn)
	user := newUser(t, conn, "alice", models.UserRoleUser)

	require.NoError(t, conn.Create(&models.UserPermission{
		UserID:        user.ID,
		ObjectType:    models.ObjectTypeContact,
		CapabilitySet: models.CapabilitySet{CanView: true, CanEdit: true},
	}).Error)

	require.True(t, resolver.Resolve(context.Background(), user, models.ObjectTypeContact, nil, models.CapabilityView))
	require.True(t, resolver.Resolve(context.Background(), user, models.ObjectTypeContact, nil, models.CapabilityEdit))
	require.False(t, resolver.Resolve(context.Background(), user, models.ObjectTypeContact, nil, models.CapabilityCreate))
	require.False(t, resolver.Resolve(context.Background(), user, models.ObjectTypeContact, nil, models.CapabilityDelete))

	// Unknown capabilities are denied, not defaulted.
	require.False(t, resolver.Resolve(context.Background(), user, models.ObjectTypeContact, nil, models.Capability("export")))
}

func TestResolveDirectRowShadowsPermissionSets(t *testing.T) {
	conn := testutil.MustOpenTestDB(t)
	resolver := NewResolver(conn)
	user := newUser(t, conn, "bob", models.UserRoleUser)

	// Set says edit is fine.
	set := newSet(t, conn, "Editors", true, models.PermissionSetPermission{
		ObjectType:    models.ObjectTypeLead,
		CapabilitySet: models.CapabilitySet{CanView: true, CanEdit: true},
	})
	assign(t, conn, user, set, time.Now())

	// Direct row says view only; it must win even though it is stricter.
	require.NoError(t, conn.Create(&models.UserPermission{
		UserID:        user.ID,
		ObjectType:    models.ObjectTypeLead,
		CapabilitySet: models.CapabilitySet{CanView: true},
	}).Error)

	require.True(t, resolver.Resolve(context.Background(), user, models.ObjectTypeLead, nil, models.CapabilityView))
	require.False(t, resolver.Resolve(context.Background(), user, models.ObjectTypeLead, nil, models.CapabilityEdit))
}

func TestResolveFirstAssignedSetWins(t *testing.T) {
	conn := testutil.MustOpenTestDB(t)
	resolver := NewResolver(conn)

	granting := newSet(t, conn, "Granting", true, models.PermissionSetPermission{
		ObjectType:    models.ObjectTypeAccount,
		CapabilitySet: models.CapabilitySet{CanView: true, CanDelete: true},
	})
	denying := newSet(t, conn, "Denying", true, models.PermissionSetPermission{
		ObjectType:    models.ObjectTypeAccount,
		CapabilitySet: models.CapabilitySet{CanView: true},
	})

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	// Granting set assigned first: delete allowed.
	first := newUser(t, conn, "first", models.UserRoleUser)
	assign(t, conn, first, granting, base)
	assign(t, conn, first, denying, base.Add(time.Minute))
	require.True(t, resolver.Resolve(context.Background(), first, models.ObjectTypeAccount, nil, models.CapabilityDelete))

	// Same sets, reversed assignment order: the denying set's row is found
	// first and its answer stands; the later grant is never consulted.
	second := newUser(t, conn, "second", models.UserRoleUser)
	assign(t, conn, second, denying, base)
	assign(t, conn, second, granting, base.Add(time.Minute))
	require.False(t, resolver.Resolve(context.Background(), second, models.ObjectTypeAccount, nil, models.CapabilityDelete))
	require.True(t, resolver.Resolve(context.Background(), second, models.ObjectTypeAccount, nil, models.CapabilityView))
}

func TestResolveSkipsInactiveSets(t *testing.T) {
	conn := testutil.MustOpenTestDB(t)
	resolver := NewResolver(conn)
	user := newUser(t, conn, "carol", models.UserRoleUser)

	inactive := newSet(t, conn, "Disabled", false, models.PermissionSetPermission{
		ObjectType:    models.ObjectTypeContact,
		CapabilitySet: models.CapabilitySet{CanView: true},
	})
	assign(t, conn, user, inactive, time.Now())

	require.False(t, resolver.Resolve(context.Background(), user, models.ObjectTypeContact, nil, models.CapabilityView))
}

func TestResolveObjectIDMatchesExactly(t *testing.T) {
	conn := testutil.MustOpenTestDB(t)
	resolver := NewResolver(conn)
	user := newUser(t, conn, "dave", models.UserRoleUser)

	objectID := "22222222-2222-2222-2222-222222222222"
	require.NoError(t, conn.Create(&models.UserPermission{
		UserID:        user.ID,
		ObjectType:    models.ObjectTypeCustomObject,
		ObjectID:      &objectID,
		CapabilitySet: models.CapabilitySet{CanView: true},
	}).Error)

	require.True(t, resolver.Resolve(context.Background(), user, models.ObjectTypeCustomObject, &objectID, models.CapabilityView))

	// A NULL-scoped check must not pick up the id-scoped row, and an
	// id-scoped check must not pick up rows for other ids.
	require.False(t, resolver.Resolve(context.Background(), user, models.ObjectTypeCustomObject, nil, models.CapabilityView))
	other := "33333333-3333-3333-3333-333333333333"
	require.False(t, resolver.Resolve(context.Background(), user, models.ObjectTypeCustomObject, &other, models.CapabilityView))
}

func TestResolveSetGrant(t *testing.T) {
	conn := testutil.MustOpenTestDB(t)
	resolver := NewResolver(conn)
	user := newUser(t, conn, "erin", models.UserRoleUser)

	set := newSet(t, conn, "Viewers", true, models.PermissionSetPermission{
		ObjectType:    models.ObjectTypeContact,
		CapabilitySet: models.CapabilitySet{CanView: true},
	})
	assign(t, conn, user, set, time.Now())

	require.True(t, resolver.Resolve(context.Background(), user, models.ObjectTypeContact, nil, models.CapabilityView))
	require.False(t, resolver.Resolve(context.Background(), user, models.ObjectTypeContact, nil, models.CapabilityEdit))
}

func TestAllPermissionsAdminTable(t *testing.T) {
	conn := testutil.MustOpenTestDB(t)
	resolver := NewResolver(conn)
	admin := newUser(t, conn, "root", models.UserRoleAdmin)

	grants, err := resolver.AllPermissions(context.Background(), admin)
	require.NoError(t, err)
	require.Len(t, grants, len(models.PermissionObjectTypes()))
	for _, objectType := range models.PermissionObjectTypes() {
		quad := grants[objectType][""]
		require.True(t, quad.CanView && quad.CanCreate && quad.CanEdit && quad.CanDelete)
	}
}

func TestAllPermissionsReportsDirectRowsOnly(t *testing.T) {
	conn := testutil.MustOpenTestDB(t)
	resolver := NewResolver(conn)
	user := newUser(t, conn, "frank", models.UserRoleUser)

	require.NoError(t, conn.Create(&models.UserPermission{
		UserID:        user.ID,
		ObjectType:    models.ObjectTypeContact,
		CapabilitySet: models.CapabilitySet{CanView: true},
	}).Error)

	set := newSet(t, conn, "Leads", true, models.PermissionSetPermission{
		ObjectType:    models.ObjectTypeLead,
		CapabilitySet: models.CapabilitySet{CanView: true},
	})
	assign(t, conn, user, set, time.Now())

	// Resolve honors the set grant...
	require.True(t, resolver.Resolve(context.Background(), user, models.ObjectTypeLead, nil, models.CapabilityView))

	// ...but the aggregate view reports only the direct row.
	grants, err := resolver.AllPermissions(context.Background(), user)
	require.NoError(t, err)
	require.Contains(t, grants, models.ObjectTypeContact)
	require.NotContains(t, grants, models.ObjectTypeLead)
	require.True(t, grants[models.ObjectTypeContact][""].CanView)
}
