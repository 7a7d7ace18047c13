package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"crm/internal/events"
	"crm/internal/models"
	"crm/internal/utils/logger"
)

type PermissionSetHandler struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPermissionSetHandler(db *gorm.DB) *PermissionSetHandler {
	return &PermissionSetHandler{db: db, log: logger.New("PermissionSetHandler")}
}

type GrantEntry struct {
	ObjectType string  `json:"objectType" validate:"required,object_type"`
	ObjectID   *string `json:"objectId,omitempty" validate:"omitempty,uuid"`
	CanView    bool    `json:"canView"`
	CanCreate  bool    `json:"canCreate"`
	CanEdit    bool    `json:"canEdit"`
	CanDelete  bool    `json:"canDelete"`
}

type PermissionSetRequest struct {
	Name        string       `json:"name" validate:"required,min=2"`
	Description string       `json:"description"`
	IsActive    *bool        `json:"isActive"`
	Permissions []GrantEntry `json:"permissions" validate:"dive"`
}

// List returns all permission sets with their grant rows preloaded.
func (h *PermissionSetHandler) List(c echo.Context) error {
	var sets []models.PermissionSet
	if err := h.db.Preload("Permissions").Order("created_at ASC, id ASC").Find(&sets).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch permission sets"})
	}
	return c.JSON(http.StatusOK, sets)
}

// Get returns one permission set with its grants.
func (h *PermissionSetHandler) Get(c echo.Context) error {
	var set models.PermissionSet
	if err := h.db.Preload("Permissions").First(&set, "id = ?", c.Param("id")).Error; err != nil {
		if models.IsNotFound(err) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "permission set not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch permission set"})
	}
	return c.JSON(http.StatusOK, set)
}

// Create adds a permission set and its grant rows in one transaction.
// Grants that allow nothing are dropped.
func (h *PermissionSetHandler) Create(c echo.Context) error {
	var req PermissionSetRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	set := models.PermissionSet{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
	}
	if req.IsActive != nil {
		set.IsActive = *req.IsActive
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&set).Error; err != nil {
			return err
		}
		return createGrants(tx, set.ID, req.Permissions)
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create permission set"})
	}

	events.Emit("permission_sets.created", &set)

	var out models.PermissionSet
	if err := h.db.Preload("Permissions").First(&out, "id = ?", set.ID).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch permission set"})
	}
	return c.JSON(http.StatusCreated, out)
}

// Update edits a permission set. The grant rows are replaced wholesale:
// existing rows deleted, submitted rows inserted, inside one transaction.
func (h *PermissionSetHandler) Update(c echo.Context) error {
	var set models.PermissionSet
	if err := h.db.First(&set, "id = ?", c.Param("id")).Error; err != nil {
		if models.IsNotFound(err) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "permission set not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch permission set"})
	}

	var req PermissionSetRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	set.Name = req.Name
	set.Description = req.Description
	if req.IsActive != nil {
		set.IsActive = *req.IsActive
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&set).Error; err != nil {
			return err
		}
		if err := tx.Where("permission_set_id = ?", set.ID).Delete(&models.PermissionSetPermission{}).Error; err != nil {
			return err
		}
		return createGrants(tx, set.ID, req.Permissions)
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to update permission set"})
	}

	events.Emit("permission_sets.updated", &set)

	var out models.PermissionSet
	if err := h.db.Preload("Permissions").First(&out, "id = ?", set.ID).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch permission set"})
	}
	return c.JSON(http.StatusOK, out)
}

// Delete removes a permission set together with its grants and any user
// assignments pointing at it.
func (h *PermissionSetHandler) Delete(c echo.Context) error {
	var set models.PermissionSet
	if err := h.db.First(&set, "id = ?", c.Param("id")).Error; err != nil {
		if models.IsNotFound(err) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "permission set not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch permission set"})
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("permission_set_id = ?", set.ID).Delete(&models.UserPermissionSet{}).Error; err != nil {
			return err
		}
		if err := tx.Where("permission_set_id = ?", set.ID).Delete(&models.PermissionSetPermission{}).Error; err != nil {
			return err
		}
		return tx.Delete(&set).Error
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to delete permission set"})
	}

	events.Emit("permission_sets.deleted", set.ID)
	return c.NoContent(http.StatusNoContent)
}

func createGrants(tx *gorm.DB, setID string, entries []GrantEntry) error {
	for _, entry := range entries {
		quad := models.CapabilitySet{
			CanView:   entry.CanView,
			CanCreate: entry.CanCreate,
			CanEdit:   entry.CanEdit,
			CanDelete: entry.CanDelete,
		}
		if quad.Empty() {
			continue
		}
		row := models.PermissionSetPermission{
			PermissionSetID: setID,
			ObjectType:      models.ObjectType(entry.ObjectType),
			ObjectID:        entry.ObjectID,
			CapabilitySet:   quad,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}
