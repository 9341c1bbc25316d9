package notifications

import (
	"errors"
	"fmt"
)

var (
	ErrPublishingNotification = errors.New("error publishing notification")
	ErrRenderingNotification  = errors.New("error rendering notification")
)

func ErrorPublishingNotification(topic string, err error) error {
	return fmt.Errorf("%w: topic=%s cause=%w", ErrPublishingNotification, topic, err)
}

func ErrorRenderingNotification(subject string, err error) error {
	return fmt.Errorf("%w: subject=%q cause=%w", ErrRenderingNotification, subject, err)
}
