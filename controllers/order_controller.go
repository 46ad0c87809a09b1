package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/canteen-meals-api/services"
	"github.com/kendall-kelly/canteen-meals-api/utils"
)

// CreateOrderRequest represents the request body for issuing a manual order
type CreateOrderRequest struct {
	FoodItemCode    CodeString `json:"food_item_code"`
	CustomerID      uint       `json:"customer_id"`
	IsGuest         bool       `json:"is_guest"`
	GuestName       string     `json:"guest_name"`
	Notes           string     `json:"notes"`
	RequireApproval bool       `json:"require_approval"`
}

// UpdateOrderRequest represents the request body for editing a pending order.
// Omitted fields are left unchanged.
type UpdateOrderRequest struct {
	FoodItemCode *CodeString `json:"food_item_code"`
	CustomerID   *uint       `json:"customer_id"`
	IsGuest      *bool       `json:"is_guest"`
	GuestName    *string     `json:"guest_name"`
	Notes        *string     `json:"notes"`
}

// RejectOrderRequest represents the optional body of a rejection
type RejectOrderRequest struct {
	Reason string `json:"reason"`
}

func (r UpdateOrderRequest) toInput() services.UpdateOrderInput {
	var in services.UpdateOrderInput
	if r.FoodItemCode != nil {
		code := r.FoodItemCode.String()
		in.FoodItemCode = &code
	}
	in.Notes = r.Notes

	if r.IsGuest != nil || r.CustomerID != nil || r.GuestName != nil {
		var identity services.IdentityRequest
		switch {
		case r.IsGuest != nil:
			identity.IsGuest = *r.IsGuest
		case r.CustomerID == nil:
			identity.IsGuest = true
		}
		if r.CustomerID != nil {
			identity.CustomerID = *r.CustomerID
		}
		if r.GuestName != nil {
			identity.GuestName = *r.GuestName
		}
		in.Identity = &identity
	}
	return in
}

// CreateOrder handles POST /api/v1/orders - issues a meal on behalf of a customer or guest
func CreateOrder(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := services.GetOrderService().CreateManual(c.Request.Context(), actor, services.CreateOrderInput{
		FoodItemCode: req.FoodItemCode.String(),
		Identity: services.IdentityRequest{
			CustomerID: req.CustomerID,
			IsGuest:    req.IsGuest,
			GuestName:  req.GuestName,
		},
		Notes:           req.Notes,
		RequireApproval: req.RequireApproval,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, order)
}

// orderFilterFromQuery reads the listing filters shared by ListOrders and GetOrderSummary
func orderFilterFromQuery(c *gin.Context) (services.OrderFilter, error) {
	customerID, err := utils.QueryUint(c, "customerId")
	if err != nil {
		return services.OrderFilter{}, err
	}
	return services.OrderFilter{
		From:       c.Query("from"),
		To:         c.Query("to"),
		Department: c.Query("department"),
		CustomerID: customerID,
		Search:     c.Query("search"),
		Status:     c.Query("status"),
		Page:       utils.QueryInt(c, "page", 1),
		Limit:      utils.QueryInt(c, "limit", services.DefaultPageLimit),
	}, nil
}

// ListOrders handles GET /api/v1/orders - lists orders with filters and pagination
func ListOrders(c *gin.Context) {
	filter, err := orderFilterFromQuery(c)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	list, err := services.GetOrderQueryService().ListOrders(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       list.Orders,
		"pagination": list.Pagination,
		"date_range": list.DateRange,
	})
}

// GetOrderSummary handles GET /api/v1/orders/summary - aggregates the filtered orders
func GetOrderSummary(c *gin.Context) {
	filter, err := orderFilterFromQuery(c)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	summary, err := services.GetOrderQueryService().Summary(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, summary)
}

// GetOrder handles GET /api/v1/orders/:id
func GetOrder(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		respondServiceError(c, err)
		return
	}

	order, err := services.GetOrderService().Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, order)
}

// UpdateOrder handles PUT /api/v1/orders/:id - edits a pending order
func UpdateOrder(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := services.GetOrderService().Update(c.Request.Context(), actor, id, req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, order)
}

// ApproveOrder handles POST /api/v1/orders/:id/approve
func ApproveOrder(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		respondServiceError(c, err)
		return
	}

	order, err := services.GetOrderService().Approve(c.Request.Context(), actor, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, order)
}

// RejectOrder handles POST /api/v1/orders/:id/reject - the body with a reason is optional
func RejectOrder(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var req RejectOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondBindError(c, err)
		return
	}

	order, err := services.GetOrderService().Reject(c.Request.Context(), actor, id, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, order)
}

// ReprintOrder handles POST /api/v1/orders/:id/reprint
func ReprintOrder(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		respondServiceError(c, err)
		return
	}

	order, printed, err := services.GetOrderService().Reprint(c.Request.Context(), actor, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"order":   order,
		"printed": printed,
	})
}

// GetOrderTicket handles GET /api/v1/orders/:id/ticket - links to the archived ticket copy
func GetOrderTicket(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		respondServiceError(c, err)
		return
	}

	url, err := services.GetOrderService().TicketURL(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"url": url})
}
