package review

import "fmt"

// ValidationError is a policy violation: an expected business outcome that
// drives the automatic-reject path. It is never surfaced as an invocation
// failure, unlike infrastructure errors which always propagate.
type ValidationError struct {
	ServiceID string
	Reason    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("service %s: %s", e.ServiceID, e.Reason)
}
