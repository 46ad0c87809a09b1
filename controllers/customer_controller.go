package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/canteen-meals-api/services"
	"github.com/kendall-kelly/canteen-meals-api/utils"
)

// CustomerRequest represents the request body for registering or editing a customer
type CustomerRequest struct {
	ExternalID CodeString `json:"external_id"`
	Name       string     `json:"name"`
	Department string     `json:"department"`
	Active     *bool      `json:"active"`
}

func (r CustomerRequest) toInput() services.CustomerInput {
	return services.CustomerInput{
		ExternalID: r.ExternalID.String(),
		Name:       r.Name,
		Department: r.Department,
		Active:     r.Active,
	}
}

// ListCustomers handles GET /api/v1/customers
func ListCustomers(c *gin.Context) {
	active, err := utils.QueryBool(c, "active")
	if err != nil {
		respondServiceError(c, err)
		return
	}

	customers, page, err := services.GetCustomerService().List(c.Request.Context(), services.CustomerFilter{
		Search:     c.Query("search"),
		Department: c.Query("department"),
		Active:     active,
		Page:       utils.QueryInt(c, "page", 1),
		Limit:      utils.QueryInt(c, "limit", services.DefaultPageLimit),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       customers,
		"pagination": page,
	})
}

// CreateCustomer handles POST /api/v1/customers (admins only)
func CreateCustomer(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	customer, err := services.GetCustomerService().Create(c.Request.Context(), req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	recordAudit(c, actor, services.AuditCustomerCreated, "customer", customer.ID, map[string]interface{}{
		"external_id": customer.ExternalID,
		"department":  customer.Department,
	})
	respondOK(c, http.StatusCreated, customer)
}

// UpdateCustomer handles PUT /api/v1/customers/:id (admins only)
func UpdateCustomer(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	customer, err := services.GetCustomerService().Update(c.Request.Context(), id, req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	recordAudit(c, actor, services.AuditCustomerUpdated, "customer", customer.ID, map[string]interface{}{
		"external_id": customer.ExternalID,
		"department":  customer.Department,
		"active":      customer.Active,
	})
	respondOK(c, http.StatusOK, customer)
}

// DeactivateCustomer handles DELETE /api/v1/customers/:id (admins only)
func DeactivateCustomer(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		respondServiceError(c, err)
		return
	}

	customer, err := services.GetCustomerService().Deactivate(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	recordAudit(c, actor, services.AuditCustomerDisabled, "customer", customer.ID, nil)
	respondOK(c, http.StatusOK, customer)
}
