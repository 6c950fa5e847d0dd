package server

import "taskhub/internal/service"

const (
	// Validation (1xxx)
	ErrCodeInvalidArgument = 1000
	ErrCodeInvalidJSON     = 1001
	ErrCodeRequestTooLarge = 1002
	ErrCodeInvalidQuery    = 1003
	ErrCodeInvalidID       = 1004

	// Domain state (2xxx)
	ErrCodeNotFound             = 2000
	ErrCodeTaskNotFound         = 2001
	ErrCodeUserNotFound         = 2002
	ErrCodeCommentNotFound      = 2003
	ErrCodeNotificationNotFound = 2004
	ErrCodeConflict             = 2102
	ErrCodeUsernameTaken        = 2103
	ErrCodeEmailTaken           = 2104
	ErrCodeVersionConflict      = 2105

	// Auth & limits (3xxx)
	ErrCodeUnauthorized      = 3001
	ErrCodeForbidden         = 3002
	ErrCodeResourceExhausted = 3003
	ErrCodeInvalidLogin      = 3004

	// Internal/system (4xxx)
	ErrCodeInternal     = 4001
	ErrCodeStoreFailure = 4002
)

func defaultErrorCodeByStatus(status int) int {
	switch status {
	case 400:
		return ErrCodeInvalidArgument
	case 401:
		return ErrCodeUnauthorized
	case 403:
		return ErrCodeForbidden
	case 404:
		return ErrCodeNotFound
	case 409:
		return ErrCodeConflict
	case 429:
		return ErrCodeResourceExhausted
	case 500:
		return ErrCodeInternal
	default:
		return 0
	}
}

// errorCodeByMessage refines the numeric code for fixed service messages.
var errorCodeByMessage = map[string]int{
	service.MsgTaskNotFound:         ErrCodeTaskNotFound,
	service.MsgUserNotFound:         ErrCodeUserNotFound,
	service.MsgCommentNotFound:      ErrCodeCommentNotFound,
	service.MsgNotificationNotFound: ErrCodeNotificationNotFound,
	service.MsgUsernameTaken:        ErrCodeUsernameTaken,
	service.MsgEmailTaken:           ErrCodeEmailTaken,
	service.MsgTaskConflict:         ErrCodeVersionConflict,
	service.MsgUserConflict:         ErrCodeVersionConflict,
	service.MsgInvalidCredentials:   ErrCodeInvalidLogin,
}
