package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rui-valente/shopfloor-api/config"
	"github.com/rui-valente/shopfloor-api/models"
)

// CreateStationRequest represents the request body for creating a station
type CreateStationRequest struct {
	Name     string `json:"name" binding:"required"`
	Sequence int    `json:"sequence" binding:"required,gt=0"`
}

// CreateStation handles POST /api/v1/stations - adds a workstation to the line (supervisors only)
func CreateStation(c *gin.Context) {
	if _, ok := requireSupervisor(c); !ok {
		return
	}

	var req CreateStationRequest
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

	station := models.Station{
		Name:     req.Name,
		Sequence: req.Sequence,
	}

	db := config.GetDB()
	if err := db.Create(&station).Error; err != nil {
		// Sequence positions must be unique across the whole line
		errMsg := strings.ToLower(err.Error())
		if strings.Contains(errMsg, "duplicate") || strings.Contains(errMsg, "unique") {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DUPLICATE_SEQUENCE",
					"message": "A station with this sequence position already exists",
				},
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create station",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    station,
	})
}

// ListStations handles GET /api/v1/stations - lists stations in sequence order
func ListStations(c *gin.Context) {
	if _, ok := currentOperator(c); !ok {
		return
	}

	db := config.GetDB()
	var stations []models.Station
	if err := db.Order("sequence asc").Find(&stations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load stations",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stations,
	})
}

// DeleteStation handles DELETE /api/v1/stations/:id (supervisors only).
// A station referenced by orders or historical tasks cannot be removed;
// the work ledger must stay intact.
func DeleteStation(c *gin.Context) {
	if _, ok := requireSupervisor(c); !ok {
		return
	}

	db := config.GetDB()
	var station models.Station
	if err := db.First(&station, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Station not found",
			},
		})
		return
	}

	var orderRefs, taskRefs int64
	if err := db.Model(&models.ProductionOrder{}).Where("station_id = ?", station.ID).Count(&orderRefs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to check station references",
			},
		})
		return
	}
	if err := db.Model(&models.Task{}).Where("station_id = ?", station.ID).Count(&taskRefs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to check station references",
			},
		})
		return
	}

	if orderRefs > 0 || taskRefs > 0 {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "STATION_IN_USE",
				"message": "Station is referenced by orders or tasks and cannot be deleted",
			},
		})
		return
	}

	if err := db.Delete(&station).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete station",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Station deleted",
	})
}
