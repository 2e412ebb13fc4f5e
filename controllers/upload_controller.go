package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rui-valente/shopfloor-api/config"
	"github.com/rui-valente/shopfloor-api/models"
	"github.com/rui-valente/shopfloor-api/services"
	"github.com/rui-valente/shopfloor-api/utils"
)

// UploadOrderImage handles POST /api/v1/orders/:id/image - attaches a PNG
// reference drawing to an order (supervisors only). A previous drawing is
// replaced and removed from S3.
func UploadOrderImage(c *gin.Context) {
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

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FILE",
				"message": "No image file provided",
			},
		})
		return
	}

	if err := utils.ValidateImageFile(fileHeader); err != nil {
		uploadErr, ok := err.(*utils.FileUploadError)
		code := "INVALID_FILE"
		if ok {
			code = uploadErr.Code
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    code,
				"message": err.Error(),
			},
		})
		return
	}

	s3Service := services.GetS3Service()
	if s3Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "STORAGE_UNAVAILABLE",
				"message": "File storage is not configured",
			},
		})
		return
	}

	s3Key, err := s3Service.UploadOrderImage(order.ID, fileHeader)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOAD_ERROR",
				"message": "Failed to upload image",
			},
		})
		return
	}

	// Drop the old drawing, if any; the database record is the authority
	oldKey := order.ImageS3Key
	if err := db.Model(&order).Update("image_s3_key", s3Key).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to save image reference",
			},
		})
		return
	}
	if oldKey != nil && *oldKey != s3Key {
		// Best effort: the database already points at the new drawing
		if err := s3Service.DeleteFile(*oldKey); err != nil {
			log.Printf("Failed to delete replaced order image %s: %v", *oldKey, err)
		}
	}

	order.ImageS3Key = &s3Key
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}
