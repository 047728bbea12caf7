package orders

import "fmt"

type Status string

// remember to add new statuses to validNext
const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

var validNext = map[Status]map[Status]bool{
	StatusPending:   {StatusCompleted: true, StatusCancelled: true},
	StatusCompleted: {StatusCancelled: true},
	StatusCancelled: {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func ToStatus(s string) (Status, error) {
	status := Status(s)
	if _, ok := validNext[status]; ok {
		return status, nil
	}
	return "", fmt.Errorf("invalid order status %q", s)
}
