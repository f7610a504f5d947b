package board

import (
	"fmt"
)

// UnknownServiceError reports a stop event referencing a service id
// missing from the calendar index. That is a data integrity violation
// in the schedule store, not a user error, and never an empty board.
type UnknownServiceError struct {
	TripID    string
	ServiceID int
}

func (e *UnknownServiceError) Error() string {
	return fmt.Sprintf("trip '%s' references unknown service %d", e.TripID, e.ServiceID)
}
