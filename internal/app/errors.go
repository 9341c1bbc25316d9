package app

import (
	"errors"
	"fmt"
)

var ErrInitializing = errors.New("error initializing")

func ErrorInitializing(component string, err error) error {
	return fmt.Errorf("%w: component=%s cause=%w", ErrInitializing, component, err)
}
