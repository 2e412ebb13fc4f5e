package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rui-valente/shopfloor-api/config"
	"github.com/rui-valente/shopfloor-api/workflow"
)

// GetStationStats handles GET /api/v1/stats/stations - pending and
// in-progress order counts per station, in line order
func GetStationStats(c *gin.Context) {
	if _, ok := currentOperator(c); !ok {
		return
	}

	engine := workflow.NewEngine(config.GetDB())
	workloads, err := engine.Workload()
	if err != nil {
		workflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    workloads,
	})
}
