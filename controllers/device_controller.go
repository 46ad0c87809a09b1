package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/canteen-meals-api/services"
)

// DeviceEventRequest is the payload posted by the biometric attendance device
type DeviceEventRequest struct {
	ExternalUserID CodeString `json:"externalUserId"`
	WorkCode       CodeString `json:"workCode"`
	VerifyTime     string     `json:"verifyTime"`
}

// IngestDeviceEvent handles POST /api/v1/device/events. The device only gets
// a terse answer; printing and notification happen afterwards.
func IngestDeviceEvent(c *gin.Context) {
	var req DeviceEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := services.GetOrderService().IngestDeviceEvent(c.Request.Context(), c.ClientIP(), services.DeviceEvent{
		ExternalUserID: req.ExternalUserID.String(),
		WorkCode:       req.WorkCode.String(),
		VerifyTime:     req.VerifyTime,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	status := http.StatusCreated
	if result.Duplicate {
		status = http.StatusOK
	}
	respondOK(c, status, gin.H{
		"order_id":  result.Order.ID,
		"reference": result.Order.Reference,
		"status":    result.Order.Status,
		"duplicate": result.Duplicate,
	})
}
