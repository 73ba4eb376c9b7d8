package metadata

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrAllGatewaysExhausted = errors.New("metadata unavailable from every gateway")
	ErrMalformedURIShape    = errors.New("token uri is not a string")
)

// GatewayError is a failed attempt against a single gateway: the request
// couldn't be made, the status wasn't 2xx or the body wasn't a JSON object.
type GatewayError struct {
	Gateway string
	URL     string
	Status  int
	Err     error
}

func (e *GatewayError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %s", e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.URL, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// ExhaustedError carries every gateway failure of a resolution that
// produced no record. It matches ErrAllGatewaysExhausted with errors.Is.
type ExhaustedError struct {
	Token    string
	Attempts []*GatewayError
}

func (e *ExhaustedError) Error() string {
	msgs := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		msgs = append(msgs, a.Error())
	}
	return fmt.Sprintf(
		"token %s: %s (%s)",
		e.Token,
		ErrAllGatewaysExhausted,
		strings.Join(msgs, "; "),
	)
}

func (e *ExhaustedError) Is(target error) bool {
	return target == ErrAllGatewaysExhausted
}
