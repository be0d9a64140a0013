package endpoint

import (
	"errors"
	"fmt"

	apierrors "github.com/kbukum/apikit/errors"
)

// Stage names a step of the call pipeline.
type Stage string

// Pipeline stages.
const (
	StageBuild   Stage = "build"
	StageHandler Stage = "handler"
	StageProcess Stage = "process"
	StageRefine  Stage = "refine"
)

// Error reports which stage of an endpoint call failed.
type Error struct {
	Stage    Stage
	Endpoint string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("endpoint %s: %s: %v", e.Endpoint, e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func stageError(stage Stage, endpoint string, err error) *Error {
	return &Error{Stage: stage, Endpoint: endpoint, Err: err}
}

// postCallError wraps a process or refine failure with its kind unless the
// caller already classified it.
func postCallError(stage Stage, endpoint string, kind apierrors.Kind, err error) *Error {
	if apierrors.KindOf(err) == "" {
		err = apierrors.Wrap(kind, string(stage)+" failed", err).WithOp("endpoint." + string(stage))
	}
	return stageError(stage, endpoint, err)
}

// StageOf returns the failing stage of an endpoint error, or "".
func StageOf(err error) Stage {
	var e *Error
	if errors.As(err, &e) {
		return e.Stage
	}
	return ""
}

// IsBuildError reports whether the call failed before anything was sent.
func IsBuildError(err error) bool { return StageOf(err) == StageBuild }

// IsHandlerError reports whether the handler stack failed.
func IsHandlerError(err error) bool { return StageOf(err) == StageHandler }

// IsPostCallError reports whether a response was received but could not be
// processed or refined.
func IsPostCallError(err error) bool {
	s := StageOf(err)
	return s == StageProcess || s == StageRefine
}
