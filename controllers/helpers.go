package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rui-valente/shopfloor-api/config"
	"github.com/rui-valente/shopfloor-api/middleware"
	"github.com/rui-valente/shopfloor-api/models"
	"github.com/rui-valente/shopfloor-api/workflow"
)

// currentOperator resolves the authenticated operator from the JWT
// subject. On failure it writes the error response and returns false.
func currentOperator(c *gin.Context) (*models.Operator, bool) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return nil, false
	}

	db := config.GetDB()
	var operator models.Operator
	if err := db.Where("auth0_id = ?", auth0ID).First(&operator).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "OPERATOR_NOT_FOUND",
				"message": "Operator profile not found. Please register first.",
			},
		})
		return nil, false
	}

	return &operator, true
}

// requireSupervisor resolves the authenticated operator and rejects the
// request when they do not have the supervisor role
func requireSupervisor(c *gin.Context) (*models.Operator, bool) {
	operator, ok := currentOperator(c)
	if !ok {
		return nil, false
	}

	if !operator.IsSupervisor() {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Only supervisors can perform this action",
			},
		})
		return nil, false
	}

	return operator, true
}

// workflowError writes the HTTP response for a workflow engine error
func workflowError(c *gin.Context, err error) {
	var wfErr *workflow.Error
	if errors.As(err, &wfErr) {
		status := http.StatusConflict
		switch wfErr {
		case workflow.ErrNotFound, workflow.ErrTaskNotFound:
			status = http.StatusNotFound
		case workflow.ErrStationNotAuthorized:
			status = http.StatusForbidden
		case workflow.ErrNoStationsConfigured:
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{
			"success": false,
			"error": gin.H{
				"code":    wfErr.Code,
				"message": wfErr.Message,
			},
		})
		return
	}

	log.Printf("workflow error: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "An unexpected error occurred",
		},
	})
}
