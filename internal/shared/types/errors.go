package types

import "errors"

var (
	ErrUnauthorized          = errors.New("unauthorized")
	ErrTimeout               = errors.New("request timed out")
	ErrNotLoggedIn           = errors.New("not logged in")
	ErrSessionExpired        = errors.New("session expired, please log in again")
	ErrInvalidPage           = errors.New("page must be >= 1 and page size must be > 0")
	ErrInvalidDate           = errors.New("dates must use the YYYY-MM-DD format")
	ErrUnknownFilter         = errors.New("unknown filter field")
	ErrUnknownSortKey        = errors.New("unknown sort key")
	ErrInvalidSortOrder      = errors.New("sort order must be asc or desc")
	ErrSuperseded            = errors.New("response superseded by a newer query")
	ErrUnsupportedReportType = errors.New("unsupported report type")
)
