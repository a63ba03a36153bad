package errors

import "net/http"

var (
	ErrStopNotFound = New(
		"STOP_NOT_FOUND",
		"Stop not found",
		http.StatusNotFound,
	)

	ErrSessionNotFound = New(
		"SESSION_NOT_FOUND",
		"Session not found or already closed",
		http.StatusNotFound,
	)

	ErrInvalidCoordinates = New(
		"INVALID_COORDINATES",
		"Invalid coordinates provided",
		http.StatusBadRequest,
	)

	ErrInvalidTransportMode = New(
		"INVALID_TRANSPORT_MODE",
		"Invalid transport mode",
		http.StatusBadRequest,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrActivitiesDisabled = New(
		"ACTIVITIES_DISABLED",
		"Live activities are disabled",
		http.StatusConflict,
	)

	ErrUpstream = New(
		"UPSTREAM_ERROR",
		"Transit backend request failed",
		http.StatusBadGateway,
	)

	ErrStoreError = New(
		"STORE_ERROR",
		"Store operation failed",
		http.StatusInternalServerError,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
