package events

import (
	"errors"
	"fmt"
)

var ErrMalformedEvent = errors.New("malformed event")

func ErrorMalformedEvent(err error) error {
	return fmt.Errorf("%w: cause=%w", ErrMalformedEvent, err)
}
