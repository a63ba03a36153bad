package domain

import "errors"

var (
	ErrStopNotFound         = errors.New("stop not found")
	ErrEmptyStopID          = errors.New("stop id must not be empty")
	ErrUnknownTransportMode = errors.New("unknown transport mode")
	ErrDecode               = errors.New("decode failed")
	ErrActivitiesDisabled   = errors.New("live activities are disabled")
	ErrSessionNotFound      = errors.New("session not found")
	ErrDeliveryFailed       = errors.New("activity delivery failed")
	ErrSchedulerStopped     = errors.New("scheduler stopped")
	ErrInvalidCoordinates   = errors.New("invalid coordinates")
	ErrUpstream             = errors.New("transit API error")
	ErrInvalidQuery         = errors.New("invalid query")
)
