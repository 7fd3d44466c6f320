package reproject

import (
	"errors"
	"fmt"
)

var (
	// ErrInputShape matches every *InputShapeError.
	ErrInputShape = errors.New("invalid input shape")
	// ErrTransform matches every *TransformError.
	ErrTransform = errors.New("coordinate transform failed")
)

// InputShapeError reports a payload that cannot be processed at all, such as
// missing query parameters or a structure nested beyond the depth limit.
type InputShapeError struct {
	Path   string
	Reason string
}

func (e *InputShapeError) Error() string {
	if e.Path == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid input at %s: %s", e.Path, e.Reason)
}

func (e *InputShapeError) Is(target error) bool { return target == ErrInputShape }

// TransformError reports a located coordinate pair that could not be
// converted. Err holds the provider error, if any.
type TransformError struct {
	Path   string
	Reason string
	Err    error
}

func (e *TransformError) Error() string {
	msg := fmt.Sprintf("transform failed at %s: %s", e.Path, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TransformError) Unwrap() error { return e.Err }

func (e *TransformError) Is(target error) bool { return target == ErrTransform }
