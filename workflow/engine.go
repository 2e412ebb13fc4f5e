package workflow

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/rui-valente/shopfloor-api/metrics"
	"github.com/rui-valente/shopfloor-api/models"
)

// Engine is the production workflow state machine. It owns every order
// and task transition: order creation, claiming, completion and station
// advancement. All mutations run inside a single database transaction so
// a crash can never leave an order in progress without an open task, or
// a closed task whose order did not advance.
type Engine struct {
	db *gorm.DB
}

// NewEngine creates a workflow engine on top of the given database
func NewEngine(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

// CreateOrderInput carries the fields for creating a production order.
// AssignedOperatorID and DueDate are optional scheduling hints.
type CreateOrderInput struct {
	SerialNumber       string
	AccessoryID        uint
	AssignedOperatorID *uint
	DueDate            *time.Time
}

// Queue is the set of orders an operator may claim, partitioned into
// orders scheduled for them and the unassigned pool. Orders assigned to
// a different operator are not visible at all.
type Queue struct {
	Assigned   []models.ProductionOrder `json:"assigned"`
	Unassigned []models.ProductionOrder `json:"unassigned"`
}

// StationWorkload is the number of waiting and in-progress orders at one
// station, for the statistics surface.
type StationWorkload struct {
	StationID  uint   `json:"station_id"`
	Name       string `json:"name"`
	Sequence   int    `json:"sequence"`
	Pending    int64  `json:"pending"`
	InProgress int64  `json:"in_progress"`
}

// OrderedStations returns all stations sorted by sequence position
func (e *Engine) OrderedStations() ([]models.Station, error) {
	var stations []models.Station
	if err := e.db.Order("sequence asc").Find(&stations).Error; err != nil {
		return nil, err
	}
	return stations, nil
}

// FirstStation returns the station with the smallest sequence position,
// or nil if no stations are configured
func (e *Engine) FirstStation() (*models.Station, error) {
	return firstStation(e.db)
}

// NextStation returns the station immediately after the given one in
// sequence order, or nil if the given station is the last
func (e *Engine) NextStation(station *models.Station) (*models.Station, error) {
	return nextStation(e.db, station)
}

func firstStation(tx *gorm.DB) (*models.Station, error) {
	var station models.Station
	err := tx.Order("sequence asc").First(&station).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &station, nil
}

func nextStation(tx *gorm.DB, station *models.Station) (*models.Station, error) {
	var next models.Station
	err := tx.Where("sequence > ?", station.Sequence).Order("sequence asc").First(&next).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &next, nil
}

// CreateOrder creates a production order pending at the first station
func (e *Engine) CreateOrder(input CreateOrderInput) (*models.ProductionOrder, error) {
	var order models.ProductionOrder

	err := e.db.Transaction(func(tx *gorm.DB) error {
		first, err := firstStation(tx)
		if err != nil {
			return err
		}
		if first == nil {
			return ErrNoStationsConfigured
		}

		var accessory models.Accessory
		if err := tx.First(&accessory, input.AccessoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if input.AssignedOperatorID != nil {
			var operator models.Operator
			if err := tx.First(&operator, *input.AssignedOperatorID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrNotFound
				}
				return err
			}
		}

		order = models.ProductionOrder{
			SerialNumber:       input.SerialNumber,
			AccessoryID:        input.AccessoryID,
			StationID:          first.ID,
			Status:             models.StatusPending,
			AssignedOperatorID: input.AssignedOperatorID,
			DueDate:            input.DueDate,
		}
		if err := tx.Create(&order).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateSerial
			}
			return err
		}

		return tx.Preload("Accessory").Preload("Station").First(&order, order.ID).Error
	})
	if err != nil {
		return nil, err
	}

	metrics.OrdersCreated.Inc()
	return &order, nil
}

// VisibleOrders returns the orders the operator may claim: orders at one
// of their authorized stations that have not completed production.
//
// Orders assigned to a different operator are excluded entirely rather
// than shown in the unassigned pool. That narrow visibility matches the
// original scheduling behavior; widening it is a product decision.
func (e *Engine) VisibleOrders(operatorID uint) (*Queue, error) {
	authorized := e.db.Table("operator_stations").
		Select("station_id").
		Where("operator_id = ?", operatorID)

	queue := &Queue{
		Assigned:   []models.ProductionOrder{},
		Unassigned: []models.ProductionOrder{},
	}

	// Orders scheduled for this operator, most urgent due date first,
	// orders without a due date last
	err := e.db.Preload("Accessory").Preload("Station").
		Where("status <> ?", models.StatusCompleted).
		Where("station_id IN (?)", authorized).
		Where("assigned_operator_id = ?", operatorID).
		Order("due_date IS NULL, due_date asc, id asc").
		Find(&queue.Assigned).Error
	if err != nil {
		return nil, err
	}

	err = e.db.Preload("Accessory").Preload("Station").
		Where("status <> ?", models.StatusCompleted).
		Where("station_id IN (?)", authorized).
		Where("assigned_operator_id IS NULL").
		Order("id asc").
		Find(&queue.Unassigned).Error
	if err != nil {
		return nil, err
	}

	return queue, nil
}

// Claim opens a task for the operator on a pending order at its current
// station and moves the order to in_progress. When two operators race
// for the same order, the status flip below is guarded by the order's
// current state, so exactly one claim succeeds; the loser gets
// ErrOrderNotAtStation.
func (e *Engine) Claim(orderID, operatorID uint) (*models.Task, error) {
	var task models.Task
	var stationName string

	err := e.db.Transaction(func(tx *gorm.DB) error {
		var operator models.Operator
		if err := tx.First(&operator, operatorID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var order models.ProductionOrder
		if err := tx.Preload("Station").First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if order.Status == models.StatusCompleted {
			return ErrOrderAlreadyCompleted
		}

		var authorized int64
		err := tx.Table("operator_stations").
			Where("operator_id = ? AND station_id = ?", operatorID, order.StationID).
			Count(&authorized).Error
		if err != nil {
			return err
		}
		if authorized == 0 {
			return ErrStationNotAuthorized
		}

		var open int64
		err = tx.Model(&models.Task{}).
			Where("operator_id = ? AND completed = ?", operatorID, false).
			Count(&open).Error
		if err != nil {
			return err
		}
		if open > 0 {
			return ErrOperatorBusy
		}

		// Guarded status flip: only succeeds if the order is still pending
		// at the station we read above
		result := tx.Model(&models.ProductionOrder{}).
			Where("id = ? AND status = ? AND station_id = ?", order.ID, models.StatusPending, order.StationID).
			Update("status", models.StatusInProgress)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			metrics.ClaimConflicts.Inc()
			return ErrOrderNotAtStation
		}

		task = models.Task{
			OrderID:    order.ID,
			StationID:  order.StationID,
			OperatorID: operatorID,
			StartedAt:  time.Now(),
		}
		if err := tx.Create(&task).Error; err != nil {
			// The partial unique index backs up the open-task check above
			if isUniqueViolation(err) {
				return ErrOperatorBusy
			}
			return err
		}

		stationName = order.Station.Name
		return tx.Preload("Station").Preload("Operator").First(&task, task.ID).Error
	})
	if err != nil {
		return nil, err
	}

	metrics.TasksClaimed.WithLabelValues(stationName).Inc()
	return &task, nil
}

// Complete closes the operator's task and advances the owning order: to
// pending at the next station in sequence, or to completed after the
// last station (the current station then stays where production
// finished). Completing is idempotent-hostile on purpose: a task closes
// exactly once, a second attempt gets ErrTaskAlreadyClosed.
func (e *Engine) Complete(taskID, operatorID uint) (*models.ProductionOrder, error) {
	var order models.ProductionOrder
	var stationName string
	var finished bool

	err := e.db.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		err := tx.Where("id = ? AND operator_id = ?", taskID, operatorID).First(&task).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return err
		}

		if task.Completed {
			return ErrTaskAlreadyClosed
		}

		// Guarded close, like the claim's status flip: the task row we read
		// may have been closed by a concurrent duplicate submit after our
		// read. Only one close may win, or the order would advance twice.
		now := time.Now()
		result := tx.Model(&models.Task{}).
			Where("id = ? AND completed = ?", task.ID, false).
			Updates(map[string]interface{}{
				"ended_at":  now,
				"completed": true,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrTaskAlreadyClosed
		}

		if err := tx.First(&order, task.OrderID).Error; err != nil {
			return err
		}

		var current models.Station
		if err := tx.First(&current, order.StationID).Error; err != nil {
			return err
		}
		stationName = current.Name

		next, err := nextStation(tx, &current)
		if err != nil {
			return err
		}

		if next == nil {
			// Last station: the order finished production
			finished = true
			err = tx.Model(&order).Update("status", models.StatusCompleted).Error
		} else {
			// Advance; a fresh claim is required at the next station
			err = tx.Model(&order).Updates(map[string]interface{}{
				"status":     models.StatusPending,
				"station_id": next.ID,
			}).Error
		}
		if err != nil {
			return err
		}

		return tx.Preload("Accessory").Preload("Station").First(&order, order.ID).Error
	})
	if err != nil {
		return nil, err
	}

	metrics.TasksCompleted.WithLabelValues(stationName).Inc()
	if finished {
		metrics.OrdersCompleted.Inc()
	}
	return &order, nil
}

// OpenTask returns the operator's open task, or nil if they have none.
// The one-open-task invariant guarantees there is at most one.
func (e *Engine) OpenTask(operatorID uint) (*models.Task, error) {
	var task models.Task
	err := e.db.Preload("Station").Preload("Order").Preload("Order.Accessory").
		Where("operator_id = ? AND completed = ?", operatorID, false).
		First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Workload returns the pending and in-progress order counts per station,
// in sequence order
func (e *Engine) Workload() ([]StationWorkload, error) {
	stations, err := e.OrderedStations()
	if err != nil {
		return nil, err
	}

	workloads := make([]StationWorkload, 0, len(stations))
	for _, station := range stations {
		w := StationWorkload{
			StationID: station.ID,
			Name:      station.Name,
			Sequence:  station.Sequence,
		}
		err := e.db.Model(&models.ProductionOrder{}).
			Where("station_id = ? AND status = ?", station.ID, models.StatusPending).
			Count(&w.Pending).Error
		if err != nil {
			return nil, err
		}
		err = e.db.Model(&models.ProductionOrder{}).
			Where("station_id = ? AND status = ?", station.ID, models.StatusInProgress).
			Count(&w.InProgress).Error
		if err != nil {
			return nil, err
		}
		workloads = append(workloads, w)
	}

	return workloads, nil
}

// isUniqueViolation reports whether the error is a unique constraint
// violation (works with both PostgreSQL and SQLite)
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique")
}
