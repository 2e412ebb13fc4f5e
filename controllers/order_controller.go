package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/rui-valente/shopfloor-api/config"
	"github.com/rui-valente/shopfloor-api/models"
	"github.com/rui-valente/shopfloor-api/services"
	"github.com/rui-valente/shopfloor-api/workflow"
)

// CreateOrderRequest represents the request body for creating a production order
type CreateOrderRequest struct {
	SerialNumber       string     `json:"serial_number" binding:"required"`
	AccessoryID        uint       `json:"accessory_id" binding:"required"`
	AssignedOperatorID *uint      `json:"assigned_operator_id"`
	DueDate            *time.Time `json:"due_date"`
}

// ScheduleOrderRequest documents the PATCH body for an order's scheduling
// hints. Fields absent from the body are left unchanged; an explicit null
// clears the field.
type ScheduleOrderRequest struct {
	AssignedOperatorID *uint      `json:"assigned_operator_id"`
	DueDate            *time.Time `json:"due_date"`
}

// CreateOrder handles POST /api/v1/orders - puts a new order on the line (supervisors only)
func CreateOrder(c *gin.Context) {
	if _, ok := requireSupervisor(c); !ok {
		return
	}

	var req CreateOrderRequest
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

	engine := workflow.NewEngine(config.GetDB())
	order, err := engine.CreateOrder(workflow.CreateOrderInput{
		SerialNumber:       req.SerialNumber,
		AccessoryID:        req.AccessoryID,
		AssignedOperatorID: req.AssignedOperatorID,
		DueDate:            req.DueDate,
	})
	if err != nil {
		workflowError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    order,
	})
}

// ListOrders handles GET /api/v1/orders - lists orders, optionally
// filtered by station, status or assignment
func ListOrders(c *gin.Context) {
	if _, ok := currentOperator(c); !ok {
		return
	}

	db := config.GetDB()
	query := db.Preload("Accessory").Preload("Station").Preload("AssignedOperator")

	if stationID := c.Query("station_id"); stationID != "" {
		query = query.Where("station_id = ?", stationID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if assigned := c.Query("assigned_operator_id"); assigned != "" {
		if assigned == "none" {
			query = query.Where("assigned_operator_id IS NULL")
		} else {
			query = query.Where("assigned_operator_id = ?", assigned)
		}
	}

	var orders []models.ProductionOrder
	if err := query.Order("id asc").Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load orders",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}

// GetOrder handles GET /api/v1/orders/:id - a single order with its task
// history and a presigned URL for the reference drawing, if any
func GetOrder(c *gin.Context) {
	if _, ok := currentOperator(c); !ok {
		return
	}

	db := config.GetDB()
	var order models.ProductionOrder
	err := db.Preload("Accessory").Preload("Station").Preload("AssignedOperator").
		Preload("Tasks").Preload("Tasks.Station").Preload("Tasks.Operator").
		First(&order, c.Param("id")).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}

	if order.ImageS3Key != nil {
		if s3Service := services.GetS3Service(); s3Service != nil {
			if url, err := s3Service.GetPresignedURL(*order.ImageS3Key); err == nil && url != "" {
				order.ImageURL = &url
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// GetOrderQueue handles GET /api/v1/orders/queue - the orders the calling
// operator may claim, split into assigned-to-me and the unassigned pool
func GetOrderQueue(c *gin.Context) {
	operator, ok := currentOperator(c)
	if !ok {
		return
	}

	engine := workflow.NewEngine(config.GetDB())
	queue, err := engine.VisibleOrders(operator.ID)
	if err != nil {
		workflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    queue,
	})
}

// ScheduleOrder handles PATCH /api/v1/orders/:id/schedule - sets or clears
// the assigned operator and due date (supervisors only). Assignment is a
// scheduling hint affecting queue visibility, not enforced exclusivity.
// Only the fields present in the body are updated, so a due-date change
// cannot wipe the assignment (and vice versa).
func ScheduleOrder(c *gin.Context) {
	if _, ok := requireSupervisor(c); !ok {
		return
	}

	// Bind to raw JSON first: a field set to null and a field left out of
	// the body both bind to nil, and only the former should clear
	var fields map[string]json.RawMessage
	if err := c.ShouldBindJSON(&fields); err != nil {
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

	var req ScheduleOrderRequest
	updates := map[string]interface{}{}
	if raw, ok := fields["assigned_operator_id"]; ok {
		if err := json.Unmarshal(raw, &req.AssignedOperatorID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Invalid assigned_operator_id",
				},
			})
			return
		}
		updates["assigned_operator_id"] = req.AssignedOperatorID
	}
	if raw, ok := fields["due_date"]; ok {
		if err := json.Unmarshal(raw, &req.DueDate); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Invalid due_date",
				},
			})
			return
		}
		updates["due_date"] = req.DueDate
	}

	db := config.GetDB()
	var order models.ProductionOrder
	if err := db.First(&order, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}

	if order.IsCompleted() {
		workflowError(c, workflow.ErrOrderAlreadyCompleted)
		return
	}

	if req.AssignedOperatorID != nil {
		var operator models.Operator
		if err := db.First(&operator, *req.AssignedOperatorID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NOT_FOUND",
					"message": "Assigned operator not found",
				},
			})
			return
		}
	}

	if len(updates) > 0 {
		if err := db.Model(&order).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to update order schedule",
				},
			})
			return
		}
	}

	if err := db.Preload("Accessory").Preload("Station").Preload("AssignedOperator").First(&order, order.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load order",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// DeleteOrder handles DELETE /api/v1/orders/:id (supervisors only).
// The order's tasks go with it.
func DeleteOrder(c *gin.Context) {
	if _, ok := requireSupervisor(c); !ok {
		return
	}

	db := config.GetDB()
	var order models.ProductionOrder
	if err := db.First(&order, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		return tx.Delete(&order).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete order",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order deleted",
	})
}

// ClaimOrder handles POST /api/v1/orders/:id/claim - the calling operator
// starts working the order at its current station
func ClaimOrder(c *gin.Context) {
	operator, ok := currentOperator(c)
	if !ok {
		return
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Invalid order id",
			},
		})
		return
	}

	engine := workflow.NewEngine(config.GetDB())
	task, err := engine.Claim(uint(orderID), operator.ID)
	if err != nil {
		workflowError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    task,
	})
}
