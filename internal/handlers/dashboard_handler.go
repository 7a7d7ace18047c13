package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"crm/internal/models"
)

type DashboardHandler struct {
	db *gorm.DB
}

func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{db: db}
}

// Stats returns entity counts plus the most recent contacts, opportunities
// and custom object definitions for the landing page.
func (h *DashboardHandler) Stats(c echo.Context) error {
	counts := map[string]int64{}
	for name, model := range map[string]interface{}{
		"contacts":      &models.Contact{},
		"accounts":      &models.Account{},
		"opportunities": &models.Opportunity{},
		"leads":         &models.Lead{},
		"customObjects": &models.CustomObject{},
	} {
		var n int64
		if err := h.db.Model(model).Count(&n).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load dashboard"})
		}
		counts[name] = n
	}

	var recentContacts []models.Contact
	if err := h.db.Order("created_at DESC").Limit(5).Find(&recentContacts).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load dashboard"})
	}
	var recentOpportunities []models.Opportunity
	if err := h.db.Order("created_at DESC").Limit(5).Find(&recentOpportunities).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load dashboard"})
	}
	var recentObjects []models.CustomObject
	if err := h.db.Order("created_at DESC").Limit(3).Find(&recentObjects).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load dashboard"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"counts":              counts,
		"recentContacts":      recentContacts,
		"recentOpportunities": recentOpportunities,
		"recentCustomObjects": recentObjects,
	})
}
