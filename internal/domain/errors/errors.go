package errors

import "errors"

var (
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrMalformedResponse   = errors.New("malformed response")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrDuplicateRecord     = errors.New("duplicate record")
	ErrPublishFailure      = errors.New("publish failure")
	ErrAcknowledgeFailure  = errors.New("acknowledge failure")
)

// Workflow stage tags attached to telemetry exception records.
const (
	StageFeed        = "feed"
	StageOrder       = "order"
	StageRoute       = "route"
	StagePersist     = "persist"
	StagePublish     = "publish"
	StageAcknowledge = "acknowledge"
)
