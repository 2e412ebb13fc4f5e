package controllers

import (
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rui-valente/shopfloor-api/middleware"
	"github.com/rui-valente/shopfloor-api/models"
)

func setupControllerTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	// A single connection so every query sees the same in-memory database
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.Station{},
		&models.Operator{},
		&models.Accessory{},
		&models.ProductionOrder{},
		&models.Task{},
	); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	return router
}

// mockAuthMiddleware simulates the Auth0 JWT middleware for testing
// It sets up the context exactly as the real EnsureValidToken middleware does
func mockAuthMiddleware(auth0ID, role, accessToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Set the user_id (Auth0 ID from 'sub' claim)
		c.Set("user_id", auth0ID)

		// Set the access token for calling /userinfo
		c.Set("access_token", accessToken)

		// Create custom claims matching the real structure
		customClaims := &middleware.CustomClaims{
			Role: role,
		}

		// Store in context the same way the real middleware does
		mockClaims := &validator.ValidatedClaims{
			CustomClaims: customClaims,
		}
		c.Set("validated_claims", mockClaims)

		c.Next()
	}
}

func seedStation(t *testing.T, db *gorm.DB, name string, sequence int) models.Station {
	t.Helper()
	station := models.Station{Name: name, Sequence: sequence}
	if err := db.Create(&station).Error; err != nil {
		t.Fatalf("Failed to create station %s: %v", name, err)
	}
	return station
}

func seedOperator(t *testing.T, db *gorm.DB, name, role string, stations ...models.Station) models.Operator {
	t.Helper()
	operator := models.Operator{
		Auth0ID:  "auth0|" + name,
		Name:     name,
		Email:    name + "@example.com",
		Role:     role,
		Stations: stations,
	}
	if err := db.Create(&operator).Error; err != nil {
		t.Fatalf("Failed to create operator %s: %v", name, err)
	}
	return operator
}

func seedAccessory(t *testing.T, db *gorm.DB, name string) models.Accessory {
	t.Helper()
	accessory := models.Accessory{Name: name}
	if err := db.Create(&accessory).Error; err != nil {
		t.Fatalf("Failed to create accessory %s: %v", name, err)
	}
	return accessory
}
