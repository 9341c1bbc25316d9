package metrics

import (
	"errors"
	"fmt"
)

var ErrPublishingMetrics = errors.New("error publishing metrics")

func ErrorPublishingMetrics(namespace string, err error) error {
	return fmt.Errorf("%w: namespace=%s cause=%w", ErrPublishingMetrics, namespace, err)
}
