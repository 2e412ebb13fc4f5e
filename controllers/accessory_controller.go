package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rui-valente/shopfloor-api/config"
	"github.com/rui-valente/shopfloor-api/models"
)

// CreateAccessoryRequest represents the request body for creating an accessory
type CreateAccessoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// CreateAccessory handles POST /api/v1/accessories (supervisors only)
func CreateAccessory(c *gin.Context) {
	if _, ok := requireSupervisor(c); !ok {
		return
	}

	var req CreateAccessoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	accessory := models.Accessory{
		Name:        req.Name,
		Description: req.Description,
	}

	db := config.GetDB()
	if err := db.Create(&accessory).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create accessory",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    accessory,
	})
}

// ListAccessories handles GET /api/v1/accessories
func ListAccessories(c *gin.Context) {
	if _, ok := currentOperator(c); !ok {
		return
	}

	db := config.GetDB()
	var accessories []models.Accessory
	if err := db.Order("name asc").Find(&accessories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load accessories",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    accessories,
	})
}
