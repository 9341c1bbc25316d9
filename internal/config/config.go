package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws/arn"
)

const (
	DomainIDEnv                 = "DOMAIN_ID"
	ProjectIDEnv                = "PROJECT_ID"
	TopicArnEnv                 = "SNS_TOPIC_ARN"
	DecisionCommentEnv          = "DECISION_COMMENT"
	MaxAttemptsEnv              = "MAX_ATTEMPTS"
	MaxBackoffEnv               = "MAX_BACKOFF"
	CallTimeoutEnv              = "CALL_TIMEOUT"
	MetricsNamespaceEnv         = "METRICS_NAMESPACE"
	ReportBucketEnv             = "REPORT_BUCKET"
	StackNameEnv                = "STACK_NAME"
	LogLevelEnv                 = "LOG_LEVEL"
	PolicyModeEnv               = "POLICY_MODE"
	AllowedRequesterProjectsEnv = "POLICY_ALLOWED_REQUESTER_PROJECTS"
	DeniedRequesterProjectsEnv  = "POLICY_DENIED_REQUESTER_PROJECTS"
	AllowedEntityTypesEnv       = "POLICY_ALLOWED_ENTITY_TYPES"
	AllowedOwnerProjectsEnv     = "POLICY_ALLOWED_OWNER_PROJECTS"
	DefaultDecisionComment      = "Subscription request is auto-approved by Lambda"
	DefaultMaxAttempts          = 3
	DefaultMaxBackoff           = 5 * time.Second
	DefaultCallTimeout          = 10 * time.Second
	DefaultLogLevel             = "info"
	PolicyModeApproveAll        = "approve-all"
	PolicyModeRules             = "rules"
	DomainIDPlaceholder         = "enter domain"
	ProjectIDPlaceholder        = "enter owning project"
	TopicArnPlaceholder         = "ARN of SNS topic"
	snsService                  = "sns"
	listSeparator               = ","
)

// Placeholders are the documented stand-in values that must never reach a live target.
var Placeholders = map[string]string{
	DomainIDEnv:  DomainIDPlaceholder,
	ProjectIDEnv: ProjectIDPlaceholder,
	TopicArnEnv:  TopicArnPlaceholder,
}

// Policy selects and parameterises the approval policy.
type Policy struct {
	Mode                     string
	AllowedRequesterProjects []string
	DeniedRequesterProjects  []string
	AllowedEntityTypes       []string
	AllowedOwnerProjects     []string
}

type Config struct {
	DomainID         string
	ProjectID        string
	TopicArn         string
	DecisionComment  string
	MaxAttempts      int
	MaxBackoff       time.Duration
	CallTimeout      time.Duration
	MetricsNamespace string
	ReportBucket     string
	StackName        string
	LogLevel         string
	Policy           Policy
}

// FromEnv builds a validated Config from the process environment.
func FromEnv() (Config, error) {
	return Load(os.Getenv)
}

// Load builds a Config using getenv and validates it. The returned Config is
// populated even when validation fails so callers can still log with it.
func Load(getenv func(string) string) (Config, error) {
	var errs []error

	cfg := Config{
		DomainID:         strings.TrimSpace(getenv(DomainIDEnv)),
		ProjectID:        strings.TrimSpace(getenv(ProjectIDEnv)),
		TopicArn:         strings.TrimSpace(getenv(TopicArnEnv)),
		DecisionComment:  valueOrDefault(getenv(DecisionCommentEnv), DefaultDecisionComment),
		MetricsNamespace: strings.TrimSpace(getenv(MetricsNamespaceEnv)),
		ReportBucket:     strings.TrimSpace(getenv(ReportBucketEnv)),
		StackName:        strings.TrimSpace(getenv(StackNameEnv)),
		LogLevel:         valueOrDefault(getenv(LogLevelEnv), DefaultLogLevel),
		Policy: Policy{
			Mode:                     valueOrDefault(getenv(PolicyModeEnv), PolicyModeApproveAll),
			AllowedRequesterProjects: splitList(getenv(AllowedRequesterProjectsEnv)),
			DeniedRequesterProjects:  splitList(getenv(DeniedRequesterProjectsEnv)),
			AllowedEntityTypes:       splitList(getenv(AllowedEntityTypesEnv)),
			AllowedOwnerProjects:     splitList(getenv(AllowedOwnerProjectsEnv)),
		},
	}

	var err error
	if cfg.MaxAttempts, err = parseInt(getenv(MaxAttemptsEnv), DefaultMaxAttempts); err != nil {
		errs = append(errs, ErrorInvalidValue(MaxAttemptsEnv, err))
	}
	if cfg.MaxBackoff, err = parseDuration(getenv(MaxBackoffEnv), DefaultMaxBackoff); err != nil {
		errs = append(errs, ErrorInvalidValue(MaxBackoffEnv, err))
	}
	if cfg.CallTimeout, err = parseDuration(getenv(CallTimeoutEnv), DefaultCallTimeout); err != nil {
		errs = append(errs, ErrorInvalidValue(CallTimeoutEnv, err))
	}

	if err := cfg.Validate(); err != nil {
		errs = append(errs, err)
	}

	return cfg, errors.Join(errs...)
}

// Validate refuses any configuration that would run against an undefined target.
func (c Config) Validate() error {
	var errs []error

	required := []struct {
		name  string
		value string
	}{
		{DomainIDEnv, c.DomainID},
		{ProjectIDEnv, c.ProjectID},
		{TopicArnEnv, c.TopicArn},
	}
	for _, r := range required {
		switch {
		case r.value == "":
			errs = append(errs, ErrorMissingValue(r.name))
		case strings.EqualFold(r.value, Placeholders[r.name]):
			errs = append(errs, ErrorPlaceholderValue(r.name, r.value))
		}
	}

	if c.TopicArn != "" && !strings.EqualFold(c.TopicArn, TopicArnPlaceholder) {
		if err := validateTopicArn(c.TopicArn); err != nil {
			errs = append(errs, err)
		}
	}

	if c.MaxAttempts < 1 {
		errs = append(errs, ErrorInvalidValue(MaxAttemptsEnv, errors.New("must be at least 1")))
	}
	if c.CallTimeout <= 0 {
		errs = append(errs, ErrorInvalidValue(CallTimeoutEnv, errors.New("must be positive")))
	}
	if c.MaxBackoff < 0 {
		errs = append(errs, ErrorInvalidValue(MaxBackoffEnv, errors.New("must not be negative")))
	}

	switch c.Policy.Mode {
	case PolicyModeApproveAll, PolicyModeRules:
	default:
		errs = append(errs, ErrorUnknownPolicyMode(c.Policy.Mode))
	}

	return errors.Join(errs...)
}

func validateTopicArn(value string) error {
	if !arn.IsARN(value) {
		return ErrorInvalidTopicArn(value, errors.New("not an ARN"))
	}
	parsed, err := arn.Parse(value)
	if err != nil {
		return ErrorInvalidTopicArn(value, err)
	}
	if parsed.Service != snsService {
		return ErrorInvalidTopicArn(value, errors.New("not an SNS topic"))
	}
	return nil
}

func parseDuration(value string, def time.Duration) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return def, nil
	}
	return time.ParseDuration(value)
}

func parseInt(value string, def int) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return def, nil
	}
	return strconv.Atoi(value)
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, listSeparator) {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func valueOrDefault(value, def string) string {
	if value = strings.TrimSpace(value); value != "" {
		return value
	}
	return def
}
