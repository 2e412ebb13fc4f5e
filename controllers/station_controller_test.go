package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rui-valente/shopfloor-api/config"
	"github.com/rui-valente/shopfloor-api/models"
)

func TestCreateStation(t *testing.T) {
	db := setupControllerTestDB(t)
	config.SetDB(db)

	supervisor := seedOperator(t, db, "sofia", models.RoleSupervisor)
	operator := seedOperator(t, db, "alice", models.RoleOperator)

	tests := []struct {
		name           string
		auth0ID        string
		role           string
		requestBody    map[string]interface{}
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "Successfully create station as supervisor",
			auth0ID:        supervisor.Auth0ID,
			role:           models.RoleSupervisor,
			requestBody:    map[string]interface{}{"name": "Welding", "sequence": 3},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Fail as operator",
			auth0ID:        operator.Auth0ID,
			role:           models.RoleOperator,
			requestBody:    map[string]interface{}{"name": "Paint", "sequence": 5},
			expectedStatus: http.StatusForbidden,
			expectedError:  "FORBIDDEN",
		},
		{
			name:           "Fail with duplicate sequence",
			auth0ID:        supervisor.Auth0ID,
			role:           models.RoleSupervisor,
			requestBody:    map[string]interface{}{"name": "Other", "sequence": 3},
			expectedStatus: http.StatusConflict,
			expectedError:  "DUPLICATE_SEQUENCE",
		},
		{
			name:           "Fail with missing sequence",
			auth0ID:        supervisor.Auth0ID,
			role:           models.RoleSupervisor,
			requestBody:    map[string]interface{}{"name": "Paint"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter()
			router.POST("/stations",
				mockAuthMiddleware(tt.auth0ID, tt.role, "mock-token"),
				CreateStation,
			)

			body, _ := json.Marshal(tt.requestBody)
			req, _ := http.NewRequest(http.MethodPost, "/stations", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedError != "" {
				var response map[string]interface{}
				assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
				errorData := response["error"].(map[string]interface{})
				assert.Equal(t, tt.expectedError, errorData["code"])
			}
		})
	}
}

func TestListStationsOrdered(t *testing.T) {
	db := setupControllerTestDB(t)
	config.SetDB(db)

	// Created out of order on purpose
	seedStation(t, db, "Assembly", 30)
	seedStation(t, db, "Prep", 10)
	seedStation(t, db, "Welding", 20)
	alice := seedOperator(t, db, "alice", models.RoleOperator)

	router := setupTestRouter()
	router.GET("/stations",
		mockAuthMiddleware(alice.Auth0ID, models.RoleOperator, "mock-token"),
		ListStations,
	)

	req, _ := http.NewRequest(http.MethodGet, "/stations", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].([]interface{})
	assert.Len(t, data, 3)

	names := []string{}
	for _, item := range data {
		names = append(names, item.(map[string]interface{})["name"].(string))
	}
	assert.Equal(t, []string{"Prep", "Welding", "Assembly"}, names)
}

func TestDeleteStationProtected(t *testing.T) {
	db := setupControllerTestDB(t)
	config.SetDB(db)

	prep := seedStation(t, db, "Prep", 1)
	seedStation(t, db, "Paint", 2)
	accessory := seedAccessory(t, db, "Side Mirror")
	supervisor := seedOperator(t, db, "sofia", models.RoleSupervisor)

	order := models.ProductionOrder{SerialNumber: "SN-1", AccessoryID: accessory.ID, StationID: prep.ID, Status: models.StatusPending}
	assert.NoError(t, db.Create(&order).Error)

	router := setupTestRouter()
	auth := mockAuthMiddleware(supervisor.Auth0ID, models.RoleSupervisor, "mock-token")
	router.DELETE("/stations/:id", auth, DeleteStation)

	// Station referenced by an order cannot be deleted
	req, _ := http.NewRequest(http.MethodDelete, "/stations/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	errorData := response["error"].(map[string]interface{})
	assert.Equal(t, "STATION_IN_USE", errorData["code"])

	// Unreferenced station can
	req, _ = http.NewRequest(http.MethodDelete, "/stations/2", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	assert.NoError(t, db.Model(&models.Station{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
