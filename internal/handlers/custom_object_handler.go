package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"crm/internal/models"
	"crm/internal/objects"
	"crm/internal/utils/logger"
)

type CustomObjectHandler struct {
	db    *gorm.DB
	store *objects.Store
	log   *logger.Logger
}

func NewCustomObjectHandler(db *gorm.DB) *CustomObjectHandler {
	return &CustomObjectHandler{db: db, store: objects.NewStore(db), log: logger.New("CustomObjectHandler")}
}

type DefineObjectRequest struct {
	Name        string   `json:"name" validate:"required,min=2"`
	Label       string   `json:"label" validate:"required"`
	Description string   `json:"description"`
	FieldNames  []string `json:"field_names"`
	FieldTypes  []string `json:"field_types"`
	FieldLabels []string `json:"field_labels"`
}

type objectResponse struct {
	models.CustomObject
	FieldList []objects.Field `json:"fieldList"`
}

func toObjectResponse(obj models.CustomObject) objectResponse {
	return objectResponse{CustomObject: obj, FieldList: objects.Fields(&obj)}
}

// List returns every custom object definition with its decoded schema.
func (h *CustomObjectHandler) List(c echo.Context) error {
	objs, err := h.store.ListObjects(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch custom objects"})
	}
	out := make([]objectResponse, 0, len(objs))
	for _, obj := range objs {
		out = append(out, toObjectResponse(obj))
	}
	return c.JSON(http.StatusOK, out)
}

// Create defines a new custom object. The field schema arrives as three
// parallel arrays; rows with a blank name are dropped.
func (h *CustomObjectHandler) Create(c echo.Context) error {
	var req DefineObjectRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	fields := objects.ZipFields(req.FieldNames, req.FieldTypes, req.FieldLabels)
	obj, err := h.store.DefineObject(c.Request().Context(), req.Name, req.Label, req.Description, fields)
	if err != nil {
		if err == objects.ErrNameExists {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "custom object name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create custom object"})
	}
	return c.JSON(http.StatusCreated, toObjectResponse(*obj))
}

// Get returns one custom object definition with its decoded schema.
func (h *CustomObjectHandler) Get(c echo.Context) error {
	obj, err := models.CustomObjectByID(h.db, c.Param("id"))
	if err != nil {
		if models.IsNotFound(err) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "custom object not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch custom object"})
	}
	return c.JSON(http.StatusOK, toObjectResponse(*obj))
}

// Delete removes a custom object definition and all of its records.
func (h *CustomObjectHandler) Delete(c echo.Context) error {
	obj, err := models.CustomObjectByID(h.db, c.Param("id"))
	if err != nil {
		if models.IsNotFound(err) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "custom object not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch custom object"})
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("object_id = ?", obj.ID).Delete(&models.CustomRecord{}).Error; err != nil {
			return err
		}
		return tx.Delete(obj).Error
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to delete custom object"})
	}
	return c.NoContent(http.StatusNoContent)
}

type recordResponse struct {
	models.CustomRecord
	Document map[string]string `json:"document"`
}

// ListRecords returns the object's records in insertion order, each with
// its decoded field values.
func (h *CustomObjectHandler) ListRecords(c echo.Context) error {
	obj, err := models.CustomObjectByID(h.db, c.Param("id"))
	if err != nil {
		if models.IsNotFound(err) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "custom object not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch custom object"})
	}

	records, err := h.store.ListRecords(c.Request().Context(), obj)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch records"})
	}

	out := make([]recordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, recordResponse{CustomRecord: rec, Document: objects.Document(&rec)})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"object":  toObjectResponse(*obj),
		"records": out,
	})
}

type CreateRecordRequest struct {
	Values map[string]string `json:"values"`
}

// CreateRecord stores a record for the object. Only keys named in the
// object's schema are kept; schema fields absent from the submission are
// stored as empty strings.
func (h *CustomObjectHandler) CreateRecord(c echo.Context) error {
	obj, err := models.CustomObjectByID(h.db, c.Param("id"))
	if err != nil {
		if models.IsNotFound(err) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "custom object not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch custom object"})
	}

	var req CreateRecordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	rec, err := h.store.CreateRecord(c.Request().Context(), obj, req.Values)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create record"})
	}
	return c.JSON(http.StatusCreated, recordResponse{CustomRecord: *rec, Document: objects.Document(rec)})
}
