package accounts

import (
	"errors"
	"fmt"
)

var ErrResolvingAccount = errors.New("error resolving account id")

func ErrorResolvingAccount(err error) error {
	return fmt.Errorf("%w: cause=%w", ErrResolvingAccount, err)
}
