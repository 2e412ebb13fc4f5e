package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rui-valente/shopfloor-api/config"
	"github.com/rui-valente/shopfloor-api/middleware"
	"github.com/rui-valente/shopfloor-api/models"
	"github.com/rui-valente/shopfloor-api/services"
)

// UpdateOperatorStationsRequest represents the request body for replacing
// an operator's authorized stations
type UpdateOperatorStationsRequest struct {
	StationIDs []uint `json:"station_ids" binding:"required"`
}

// CreateOperator handles POST /api/v1/operators - registers the calling user
// as an operator, using their Auth0 profile for name and email
func CreateOperator(c *gin.Context) {
	// Get the Auth0 user ID from the validated JWT
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user ID from token",
			},
		})
		return
	}

	// Get the access token to call Auth0's /userinfo endpoint
	accessToken, err := middleware.GetAccessToken(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_TOKEN",
				"message": "Access token not found",
			},
		})
		return
	}

	// Fetch user info from Auth0
	cfg := config.GetConfig()
	auth0Service := services.NewAuth0Service(cfg)
	userInfo, err := auth0Service.GetUserInfo(accessToken)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "AUTH0_ERROR",
				"message": "Failed to fetch user information from Auth0",
			},
		})
		return
	}

	// Validate that required fields are present
	if userInfo.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_EMAIL",
				"message": "Email not provided by Auth0",
			},
		})
		return
	}

	if userInfo.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_NAME",
				"message": "Name not provided by Auth0",
			},
		})
		return
	}

	// Get role from custom claims (if present)
	claims, err := middleware.GetClaims(c)
	role := models.RoleOperator // default role
	if err == nil {
		if customClaims, ok := claims.CustomClaims.(*middleware.CustomClaims); ok && customClaims.Role != "" {
			role = customClaims.Role
		}
	}

	operator := models.Operator{
		Auth0ID: auth0ID,
		Name:    userInfo.Name,
		Email:   userInfo.Email,
		Role:    role,
	}

	db := config.GetDB()
	if err := db.Create(&operator).Error; err != nil {
		// Check for duplicate Auth0ID or email (works with both PostgreSQL and SQLite)
		errMsg := strings.ToLower(err.Error())
		if strings.Contains(errMsg, "duplicate") ||
			strings.Contains(errMsg, "unique constraint") ||
			strings.Contains(errMsg, "unique") {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "OPERATOR_EXISTS",
					"message": "An operator with this Auth0 ID or email already exists",
				},
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create operator",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    operator,
	})
}

// GetMyProfile handles GET /api/v1/operators/me - the calling operator's
// profile with their authorized stations
func GetMyProfile(c *gin.Context) {
	operator, ok := currentOperator(c)
	if !ok {
		return
	}

	db := config.GetDB()
	if err := db.Preload("Stations").First(operator, operator.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load operator profile",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    operator,
	})
}

// ListOperators handles GET /api/v1/operators (supervisors only)
func ListOperators(c *gin.Context) {
	if _, ok := requireSupervisor(c); !ok {
		return
	}

	db := config.GetDB()
	var operators []models.Operator
	if err := db.Preload("Stations").Order("id asc").Find(&operators).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load operators",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    operators,
	})
}

// UpdateOperatorStations handles PUT /api/v1/operators/:id/stations -
// replaces the operator's authorized station set (supervisors only)
func UpdateOperatorStations(c *gin.Context) {
	if _, ok := requireSupervisor(c); !ok {
		return
	}

	var req UpdateOperatorStationsRequest
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

	db := config.GetDB()
	var operator models.Operator
	if err := db.First(&operator, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Operator not found",
			},
		})
		return
	}

	var stations []models.Station
	if len(req.StationIDs) > 0 {
		if err := db.Find(&stations, req.StationIDs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to load stations",
				},
			})
			return
		}
		if len(stations) != len(req.StationIDs) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NOT_FOUND",
					"message": "One or more stations do not exist",
				},
			})
			return
		}
	}

	if err := db.Model(&operator).Association("Stations").Replace(stations); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update authorized stations",
			},
		})
		return
	}

	if err := db.Preload("Stations").First(&operator, operator.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load operator",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    operator,
	})
}

// DeleteOperator handles DELETE /api/v1/operators/:id (supervisors only).
// Operators who performed tasks cannot be removed; the work ledger must
// stay attributable.
func DeleteOperator(c *gin.Context) {
	if _, ok := requireSupervisor(c); !ok {
		return
	}

	db := config.GetDB()
	var operator models.Operator
	if err := db.First(&operator, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Operator not found",
			},
		})
		return
	}

	var taskRefs int64
	if err := db.Model(&models.Task{}).Where("operator_id = ?", operator.ID).Count(&taskRefs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to check operator references",
			},
		})
		return
	}

	if taskRefs > 0 {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "OPERATOR_IN_USE",
				"message": "Operator has recorded tasks and cannot be deleted",
			},
		})
		return
	}

	if err := db.Delete(&operator).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete operator",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Operator deleted",
	})
}
