package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"crm/internal/api/middleware"
	"crm/internal/events"
	"crm/internal/models"
	"crm/internal/permissions"
	"crm/internal/utils"
	"crm/internal/utils/logger"
)

type UserHandler struct {
	db       *gorm.DB
	resolver *permissions.Resolver
	log      *logger.Logger
}

func NewUserHandler(db *gorm.DB, resolver *permissions.Resolver) *UserHandler {
	return &UserHandler{db: db, resolver: resolver, log: logger.New("UserHandler")}
}

type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,user_role"`
}

type UpdateUserRequest struct {
	Username string `json:"username" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Role     string `json:"role" validate:"required,user_role"`
	IsActive bool   `json:"isActive"`
	Password string `json:"password" validate:"omitempty,min=6"`
}

// List returns all user accounts.
func (h *UserHandler) List(c echo.Context) error {
	var users []models.User
	if err := h.db.Order("created_at ASC, id ASC").Find(&users).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch users"})
	}
	return c.JSON(http.StatusOK, users)
}

// Get returns one user account.
func (h *UserHandler) Get(c echo.Context) error {
	var user models.User
	if err := h.db.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		if models.IsNotFound(err) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch user"})
	}
	return c.JSON(http.StatusOK, user)
}

// Create adds a user account. Username and email uniqueness is verified
// up front so duplicates come back as validation failures. New non-admin
// users start with read-only access to the standard object types.
func (h *UserHandler) Create(c echo.Context) error {
	var req CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if taken, err := models.UsernameTaken(h.db, req.Username, ""); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to check username"})
	} else if taken {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "username already exists"})
	}
	if taken, err := models.EmailTaken(h.db, req.Email, ""); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to check email"})
	} else if taken {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "email already exists"})
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to hash password"})
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashed,
		Role:         models.UserRole(req.Role),
		IsActive:     true,
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return models.AssignDefaultPermissions(tx, &user)
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create user"})
	}

	events.Emit("users.created", &user)
	return c.JSON(http.StatusCreated, user)
}

// Update edits a user account in place. Password is only changed when a
// new one is supplied.
func (h *UserHandler) Update(c echo.Context) error {
	var user models.User
	if err := h.db.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		if models.IsNotFound(err) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch user"})
	}

	var req UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if taken, err := models.UsernameTaken(h.db, req.Username, user.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to check username"})
	} else if taken {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "username already exists"})
	}
	if taken, err := models.EmailTaken(h.db, req.Email, user.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to check email"})
	} else if taken {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "email already exists"})
	}

	user.Username = req.Username
	user.Email = req.Email
	user.Role = models.UserRole(req.Role)
	user.IsActive = req.IsActive
	if req.Password != "" {
		hashed, err := utils.HashPassword(req.Password)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to hash password"})
		}
		user.PasswordHash = hashed
	}

	if err := h.db.Save(&user).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to update user"})
	}

	events.Emit("users.updated", &user)
	return c.JSON(http.StatusOK, user)
}

// Delete removes a user account together with its permission rows, set
// assignments and sessions.
func (h *UserHandler) Delete(c echo.Context) error {
	var user models.User
	if err := h.db.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		if models.IsNotFound(err) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch user"})
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.UserPermission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.UserPermissionSet{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.AuthSession{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to delete user"})
	}

	events.Emit("users.deleted", user.ID)
	return c.NoContent(http.StatusNoContent)
}

// GetPermissions returns the user's direct permission grants, the same
// aggregate the permission edit form is populated from.
func (h *UserHandler) GetPermissions(c echo.Context) error {
	var user models.User
	if err := h.db.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		if models.IsNotFound(err) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch user"})
	}

	grants, err := h.resolver.AllPermissions(c.Request().Context(), &user)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load permissions"})
	}
	return c.JSON(http.StatusOK, grants)
}

type PermissionEntry struct {
	ObjectType string  `json:"objectType" validate:"required,object_type"`
	ObjectID   *string `json:"objectId,omitempty" validate:"omitempty,uuid"`
	CanView    bool    `json:"canView"`
	CanCreate  bool    `json:"canCreate"`
	CanEdit    bool    `json:"canEdit"`
	CanDelete  bool    `json:"canDelete"`
}

type UpdatePermissionsRequest struct {
	Permissions []PermissionEntry `json:"permissions" validate:"dive"`
}

// UpdatePermissions replaces the user's direct grants wholesale: existing
// rows are deleted and the submitted ones inserted, all in one
// transaction. Entries granting nothing are not persisted.
func (h *UserHandler) UpdatePermissions(c echo.Context) error {
	var user models.User
	if err := h.db.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		if models.IsNotFound(err) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch user"})
	}

	var req UpdatePermissionsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.UserPermission{}).Error; err != nil {
			return err
		}
		for _, entry := range req.Permissions {
			quad := models.CapabilitySet{
				CanView:   entry.CanView,
				CanCreate: entry.CanCreate,
				CanEdit:   entry.CanEdit,
				CanDelete: entry.CanDelete,
			}
			if quad.Empty() {
				continue
			}
			row := models.UserPermission{
				UserID:        user.ID,
				ObjectType:    models.ObjectType(entry.ObjectType),
				ObjectID:      entry.ObjectID,
				CapabilitySet: quad,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to update permissions"})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "permissions updated"})
}

type AssignPermissionSetsRequest struct {
	PermissionSetIDs []string `json:"permissionSetIds" validate:"dive,uuid"`
}

// AssignPermissionSets replaces the user's permission-set assignments.
// Submitted order is preserved via staggered assigned_at timestamps, which
// is the order the resolver enumerates sets in.
func (h *UserHandler) AssignPermissionSets(c echo.Context) error {
	var user models.User
	if err := h.db.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		if models.IsNotFound(err) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch user"})
	}

	var req AssignPermissionSetsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	assignedBy := middleware.CurrentUser(c).ID
	base := time.Now()

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.UserPermissionSet{}).Error; err != nil {
			return err
		}
		for i, setID := range req.PermissionSetIDs {
			var set models.PermissionSet
			if err := tx.First(&set, "id = ?", setID).Error; err != nil {
				return err
			}
			assignment := models.UserPermissionSet{
				UserID:          user.ID,
				PermissionSetID: set.ID,
				AssignedAt:      base.Add(time.Duration(i) * time.Millisecond),
				AssignedBy:      assignedBy,
			}
			if err := tx.Create(&assignment).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if models.IsNotFound(err) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "permission set not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to assign permission sets"})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "permission sets assigned"})
}
