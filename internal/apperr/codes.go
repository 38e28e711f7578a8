package apperr

import "net/http"

var (
	ErrCategoryNotFound = New(
		"CATEGORY_NOT_FOUND",
		"Category not found",
		http.StatusNotFound,
	)

	ErrBookmarkNotFound = New(
		"BOOKMARK_NOT_FOUND",
		"Bookmark not found",
		http.StatusNotFound,
	)

	ErrIconNotFound = New(
		"ICON_NOT_FOUND",
		"Icon not found",
		http.StatusNotFound,
	)

	ErrInvalidCoordinates = New(
		"INVALID_COORDINATES",
		"Invalid coordinates provided",
		http.StatusBadRequest,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrInvalidRecord = New(
		"INVALID_RECORD",
		"Record could not be decoded",
		http.StatusUnprocessableEntity,
	)

	ErrRejected = New(
		"REJECTED",
		"The bookmark engine rejected the operation",
		http.StatusConflict,
	)

	ErrForbidden = New(
		"FORBIDDEN",
		"Access denied",
		http.StatusForbidden,
	)

	ErrRateLimited = New(
		"RATE_LIMITED",
		"Too many requests",
		http.StatusTooManyRequests,
	)

	ErrReloadInProgress = New(
		"RELOAD_IN_PROGRESS",
		"Reload already in progress, please wait",
		http.StatusTooManyRequests,
	)

	ErrInternal = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
