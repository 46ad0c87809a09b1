package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/canteen-meals-api/middleware"
	"github.com/kendall-kelly/canteen-meals-api/models"
	"github.com/kendall-kelly/canteen-meals-api/services"
	"github.com/kendall-kelly/canteen-meals-api/utils"
)

func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// respondServiceError translates an engine error into the error envelope.
// Unclassified errors are logged and reported without detail.
func respondServiceError(c *gin.Context, err error) {
	var paramErr *utils.ParamError
	if errors.As(err, &paramErr) {
		respondError(c, http.StatusBadRequest, paramErr.Code, paramErr.Message)
		return
	}

	se, ok := services.AsServiceError(err)
	if !ok {
		log.Printf("Request %s %s failed: %v", c.Request.Method, c.FullPath(), err)
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "An unexpected error occurred")
		return
	}

	switch se.Kind {
	case services.KindNotFound:
		respondError(c, http.StatusNotFound, se.Code, se.Message)
	case services.KindLimitExceeded:
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    se.Code,
				"message": se.Message,
				"count":   se.Count,
				"limit":   se.Limit,
			},
		})
	default:
		// validation and invalid state
		respondError(c, http.StatusBadRequest, se.Code, se.Message)
	}
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "VALIDATION_ERROR",
			"message": "Invalid request data",
			"details": err.Error(),
		},
	})
}

// currentActor builds the audit actor from the operator loaded by middleware
func currentActor(c *gin.Context) (services.Actor, bool) {
	user, err := middleware.GetOperator(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return services.Actor{}, false
	}
	return services.Actor{User: user, IPAddress: c.ClientIP()}, true
}

func currentOperator(c *gin.Context) (*models.User, bool) {
	user, err := middleware.GetOperator(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return nil, false
	}
	return user, true
}

// recordAudit writes an audit entry for an admin action. Failures are only logged.
func recordAudit(c *gin.Context, actor services.Actor, action, subjectType string, subjectID uint, details map[string]interface{}) {
	audit := services.GetAuditService()
	if audit == nil {
		return
	}
	err := audit.Record(c.Request.Context(), services.AuditEntry{
		Action:      action,
		SubjectType: subjectType,
		SubjectID:   strconv.FormatUint(uint64(subjectID), 10),
		Actor:       actor,
		Details:     details,
	})
	if err != nil {
		log.Printf("warning: %s audit failed: %v", action, err)
	}
}
