package workflow

// Error is a workflow failure with a stable machine-readable code.
// All workflow errors are recoverable and user-facing; callers map the
// code to their own presentation (the HTTP layer maps them to statuses).
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	// ErrDuplicateSerial is returned when creating an order with a serial
	// number that already exists
	ErrDuplicateSerial = &Error{Code: "DUPLICATE_SERIAL", Message: "An order with this serial number already exists"}

	// ErrNoStationsConfigured is returned when creating an order before
	// any station has been configured
	ErrNoStationsConfigured = &Error{Code: "NO_STATIONS_CONFIGURED", Message: "No stations are configured"}

	// ErrOperatorBusy is returned when the operator already has an open
	// task somewhere on the line
	ErrOperatorBusy = &Error{Code: "OPERATOR_BUSY", Message: "Operator already has an open task"}

	// ErrStationNotAuthorized is returned when the operator is not
	// authorized for the order's current station
	ErrStationNotAuthorized = &Error{Code: "STATION_NOT_AUTHORIZED", Message: "Operator is not authorized for this station"}

	// ErrOrderNotAtStation is returned when the order is not pending at
	// the claimed station, including when a concurrent claim won the race
	ErrOrderNotAtStation = &Error{Code: "ORDER_NOT_AT_STATION", Message: "Order is not pending at this station"}

	// ErrOrderAlreadyCompleted is returned when claiming an order that has
	// already passed the last station
	ErrOrderAlreadyCompleted = &Error{Code: "ORDER_ALREADY_COMPLETED", Message: "Order has already finished production"}

	// ErrTaskNotFound is returned when no task matches the given identity
	// and operator ownership
	ErrTaskNotFound = &Error{Code: "TASK_NOT_FOUND", Message: "No such task for this operator"}

	// ErrTaskAlreadyClosed is returned when completing a task that was
	// already closed
	ErrTaskAlreadyClosed = &Error{Code: "TASK_ALREADY_CLOSED", Message: "Task is already closed"}

	// ErrNotFound is returned for unknown order, operator or accessory
	// identities
	ErrNotFound = &Error{Code: "NOT_FOUND", Message: "Record not found"}
)
