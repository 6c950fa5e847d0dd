package service

import "taskhub/internal/api"

// Result codes for expected failures.
const (
	CodeUnauthorized    = "unauthorized"
	CodeForbidden       = "forbidden"
	CodeNotFound        = "not_found"
	CodeInvalidArgument = "invalid_argument"
	CodeConflict        = "conflict"
)

// Fixed failure messages.
const (
	MsgAuthRequired         = "Authentication required"
	MsgPermissionDenied     = "Permission denied"
	MsgTaskNotFound         = "Task not found"
	MsgUserNotFound         = "User not found"
	MsgCommentNotFound      = "Comment not found"
	MsgNotificationNotFound = "Notification not found"
	MsgUsernameTaken        = "Username already exists"
	MsgEmailTaken           = "Email already exists"
	MsgTaskConflict         = "Task was modified concurrently"
	MsgUserConflict         = "User was modified concurrently"
	MsgInvalidCredentials   = "Invalid username or password"
)

// Result is the uniform outcome of a service operation. Expected failures
// (denied, missing, invalid) come back with Success false; unexpected ones
// are returned as a separate error.
type Result[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

func ok[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

func okMessage[T any](data T, message string) Result[T] {
	return Result[T]{Success: true, Data: data, Message: message}
}

func fail[T any](code, message string) Result[T] {
	return Result[T]{Code: code, Error: message}
}

func unauthorized[T any]() Result[T] {
	return fail[T](CodeUnauthorized, MsgAuthRequired)
}

func forbidden[T any]() Result[T] {
	return fail[T](CodeForbidden, MsgPermissionDenied)
}

func invalidArgument[T any](message string) Result[T] {
	return fail[T](CodeInvalidArgument, message)
}

// Envelope converts r for JSON transport.
func (r Result[T]) Envelope() api.Envelope {
	env := api.Envelope{Success: r.Success, Message: r.Message, Error: r.Error, Code: r.Code}
	if r.Success {
		env.Data = r.Data
	}
	return env
}
