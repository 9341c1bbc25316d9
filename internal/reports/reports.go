package reports

import (
	"autoapprove/internal/relay"
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

const keyPrefix = "approvals"

//go:embed templates/run-report.txt
var runReportTemplate string

// DefaultTemplate parses the embedded run report template.
func DefaultTemplate() (*template.Template, error) {
	return template.New("run-report").Funcs(FuncMap()).Parse(runReportTemplate)
}

// S3API is the subset of the S3 client used to upload reports.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// RunReport is the data the report template renders.
type RunReport struct {
	relay.Summary
	Approved        int
	AlreadyApproved int
	Deferred        int
	Skipped         int
	Failed          int
}

func NewRunReport(summary relay.Summary) RunReport {
	return RunReport{
		Summary:         summary,
		Approved:        summary.Count(relay.OutcomeApproved),
		AlreadyApproved: summary.Count(relay.OutcomeAlreadyApproved),
		Deferred:        summary.Count(relay.OutcomeDeferred),
		Skipped:         summary.Count(relay.OutcomeSkipped),
		Failed:          summary.Count(relay.OutcomeFailed),
	}
}

// Key returns approvals/<yyyy-mm-dd>/<run-id>.txt, dated by the start of the pass.
func Key(summary relay.Summary) string {
	return fmt.Sprintf("%s/%s/%s.txt", keyPrefix, summary.StartedAt.UTC().Format("2006-01-02"), summary.RunID)
}

func Render(tmpl *template.Template, summary relay.Summary) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, NewRunReport(summary)); err != nil {
		return "", ErrorRenderingReport(summary.RunID, err)
	}
	return buf.String(), nil
}

// Writer uploads a plain-text log of every pass. Nothing reads the reports back.
type Writer struct {
	client S3API
	bucket string
	tmpl   *template.Template
	logger *zap.Logger
}

func NewWriter(client S3API, bucket string, tmpl *template.Template, logger *zap.Logger) *Writer {
	return &Writer{
		client: client,
		bucket: bucket,
		tmpl:   tmpl,
		logger: logger,
	}
}

func (w *Writer) Record(ctx context.Context, summary relay.Summary) error {
	content, err := Render(w.tmpl, summary)
	if err != nil {
		return err
	}

	key := Key(summary)
	_, err = w.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(w.bucket),
		Key:         aws.String(key),
		Body:        strings.NewReader(content),
		ContentType: aws.String("text/plain"),
	})
	if err != nil {
		return ErrorUploadingReport(w.bucket, key, err)
	}

	w.logger.Info("Uploaded run report",
		zap.String("bucket", w.bucket),
		zap.String("key", key),
	)
	return nil
}
