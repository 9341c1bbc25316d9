package reports

import (
	"errors"
	"fmt"
)

var (
	ErrRenderingReport = errors.New("error rendering report")
	ErrUploadingReport = errors.New("error uploading report")
)

func ErrorRenderingReport(runID string, err error) error {
	return fmt.Errorf("%w: run=%s cause=%w", ErrRenderingReport, runID, err)
}

func ErrorUploadingReport(bucket, key string, err error) error {
	return fmt.Errorf("%w: bucket=%s key=%s cause=%w", ErrUploadingReport, bucket, key, err)
}
