package tutor

import (
	"encoding/json"
	"fmt"
)

// ServiceError indicates the service returned a non-2xx status.
type ServiceError struct {
	Status int
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("tutor service returned HTTP %d", e.Status)
}

// InvalidResponseError indicates the service returned a body that does
// not conform to the result schema.
type InvalidResponseError struct {
	Content json.RawMessage
	Err     error
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("invalid tutor service response: %v", e.Err)
}

func (e *InvalidResponseError) Unwrap() error { return e.Err }
