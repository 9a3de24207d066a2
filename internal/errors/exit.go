package errors

import (
	"context"
	stderrors "errors"
)

// Process exit codes of the batch commands. Codes are stable so schedulers
// can tell bad input apart from failed runs.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitConfig      = 2
	ExitInput       = 3
	ExitModel       = 4
	ExitStorage     = 5
	ExitPublish     = 6
	ExitInterrupted = 130
)

// TypeOf returns the type of the outermost AppError in err's chain.
func TypeOf(err error) (ErrorType, bool) {
	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		return "", false
	}
	return appErr.Type, true
}

// ExitCode maps err to a process exit code. A nil error is ExitOK and a
// cancelled context is ExitInterrupted.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if stderrors.Is(err, context.Canceled) {
		return ExitInterrupted
	}

	t, ok := TypeOf(err)
	if !ok {
		return ExitFailure
	}
	switch t {
	case ErrTypeConfig:
		return ExitConfig
	case ErrTypeNotFound, ErrTypeParsing, ErrTypeSchema, ErrTypeValidation:
		return ExitInput
	case ErrTypeModel:
		return ExitModel
	case ErrTypeStorage:
		return ExitStorage
	case ErrTypePublish:
		return ExitPublish
	default:
		return ExitFailure
	}
}
