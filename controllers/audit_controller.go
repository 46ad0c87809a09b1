package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/canteen-meals-api/services"
	"github.com/kendall-kelly/canteen-meals-api/utils"
)

// ListAuditLogs handles GET /api/v1/audit-logs (admins only) - newest first
func ListAuditLogs(c *gin.Context) {
	logs, page, err := services.GetAuditService().List(c.Request.Context(), services.AuditFilter{
		Action:      c.Query("action"),
		SubjectType: c.Query("subjectType"),
		Page:        utils.QueryInt(c, "page", 1),
		Limit:       utils.QueryInt(c, "limit", services.DefaultPageLimit),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       logs,
		"pagination": page,
	})
}
