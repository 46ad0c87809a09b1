package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/canteen-meals-api/models"
	"github.com/kendall-kelly/canteen-meals-api/services"
)

// UpdateSettingsRequest represents the request body for changing the canteen settings
type UpdateSettingsRequest struct {
	DailyMealLimit int    `json:"daily_meal_limit"`
	CompanyName    string `json:"company_name"`
}

// GetSettings handles GET /api/v1/settings
func GetSettings(c *gin.Context) {
	settings, err := services.GetSettingsService().Get(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, settings)
}

// UpdateSettings handles PUT /api/v1/settings (admins only)
func UpdateSettings(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	settings, err := services.GetSettingsService().Update(c.Request.Context(), actor.User, services.SettingsInput{
		DailyMealLimit: req.DailyMealLimit,
		CompanyName:    req.CompanyName,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	recordAudit(c, actor, services.AuditSettingsUpdated, "settings", models.SettingsID, map[string]interface{}{
		"daily_meal_limit": settings.DailyMealLimit,
		"company_name":     settings.CompanyName,
	})
	respondOK(c, http.StatusOK, settings)
}
