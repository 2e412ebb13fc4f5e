package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rui-valente/shopfloor-api/config"
	"github.com/rui-valente/shopfloor-api/workflow"
)

// CompleteTask handles POST /api/v1/tasks/:id/complete - closes the
// calling operator's task and advances the order down the line
func CompleteTask(c *gin.Context) {
	operator, ok := currentOperator(c)
	if !ok {
		return
	}

	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Invalid task id",
			},
		})
		return
	}

	engine := workflow.NewEngine(config.GetDB())
	order, err := engine.Complete(uint(taskID), operator.ID)
	if err != nil {
		workflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// GetOpenTask handles GET /api/v1/tasks/open - the calling operator's
// open task, or null if they have none
func GetOpenTask(c *gin.Context) {
	operator, ok := currentOperator(c)
	if !ok {
		return
	}

	engine := workflow.NewEngine(config.GetDB())
	task, err := engine.OpenTask(operator.ID)
	if err != nil {
		workflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    task,
	})
}
