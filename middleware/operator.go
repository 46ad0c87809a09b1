package middleware

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/canteen-meals-api/config"
	"github.com/kendall-kelly/canteen-meals-api/models"
	"gorm.io/gorm"
)

const operatorKey = "operator"

// LoadOperator resolves the operator profile of the authenticated token.
// Tokens without a provisioned profile are rejected with 403.
func LoadOperator() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth0ID, err := GetUserID(c)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
			return
		}

		var user models.User
		err = config.GetDB().WithContext(c.Request.Context()).Where("auth0_id = ?", auth0ID).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			abortWithError(c, http.StatusForbidden, "USER_NOT_FOUND", "User profile not found. Please create a profile first.")
			return
		}
		if err != nil {
			log.Printf("Failed to load operator %s: %v", auth0ID, err)
			abortWithError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load user profile")
			return
		}

		c.Set(operatorKey, &user)
		c.Next()
	}
}

// GetOperator returns the operator stored by LoadOperator
func GetOperator(c *gin.Context) (*models.User, error) {
	value, exists := c.Get(operatorKey)
	if !exists {
		return nil, &AuthError{Code: "MISSING_OPERATOR", Message: "Operator not found in context"}
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil, &AuthError{Code: "INVALID_OPERATOR", Message: "Operator is not in the expected format"}
	}
	return user, nil
}

// RequireRole only lets operators holding one of the roles through
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := GetOperator(c)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not retrieve operator")
			return
		}

		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}

		abortWithError(c, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions to access this resource")
	}
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
