package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/canteen-meals-api/services"
	"github.com/kendall-kelly/canteen-meals-api/utils"
	"github.com/shopspring/decimal"
)

// FoodItemRequest represents the request body for creating or replacing a food item
type FoodItemRequest struct {
	Code          CodeString      `json:"code"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	Subsidy       decimal.Decimal `json:"subsidy"`
	Currency      string          `json:"currency"`
	AvailableDays []string        `json:"available_days"`
	Active        *bool           `json:"active"`
}

func (r FoodItemRequest) toInput() services.FoodItemInput {
	return services.FoodItemInput{
		Code:          r.Code.String(),
		Name:          r.Name,
		Price:         r.Price,
		Subsidy:       r.Subsidy,
		Currency:      r.Currency,
		AvailableDays: r.AvailableDays,
		Active:        r.Active,
	}
}

// ListFoodItems handles GET /api/v1/food-items - optional ?active=true|false
func ListFoodItems(c *gin.Context) {
	active, err := utils.QueryBool(c, "active")
	if err != nil {
		respondServiceError(c, err)
		return
	}

	items, err := services.GetCatalogService().ListFoodItems(c.Request.Context(), active)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, items)
}

// CreateFoodItem handles POST /api/v1/food-items (admins only)
func CreateFoodItem(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req FoodItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	item, err := services.GetCatalogService().CreateFoodItem(c.Request.Context(), req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	recordAudit(c, actor, services.AuditFoodItemCreated, "food_item", item.ID, map[string]interface{}{
		"code":    item.Code,
		"price":   item.Price.String(),
		"subsidy": item.Subsidy.String(),
	})
	respondOK(c, http.StatusCreated, item)
}

// UpdateFoodItem handles PUT /api/v1/food-items/:id (admins only)
func UpdateFoodItem(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var req FoodItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	item, err := services.GetCatalogService().UpdateFoodItem(c.Request.Context(), id, req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	recordAudit(c, actor, services.AuditFoodItemUpdated, "food_item", item.ID, map[string]interface{}{
		"code":    item.Code,
		"price":   item.Price.String(),
		"subsidy": item.Subsidy.String(),
		"active":  item.Active,
	})
	respondOK(c, http.StatusOK, item)
}

// DeactivateFoodItem handles DELETE /api/v1/food-items/:id (admins only).
// Food items are never removed because orders reference them.
func DeactivateFoodItem(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		respondServiceError(c, err)
		return
	}

	item, err := services.GetCatalogService().DeactivateFoodItem(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	recordAudit(c, actor, services.AuditFoodItemDisabled, "food_item", item.ID, map[string]interface{}{"code": item.Code})
	respondOK(c, http.StatusOK, item)
}
