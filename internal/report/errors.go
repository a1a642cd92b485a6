package report

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind string

const (
	KindUnauthenticated Kind = "unauthenticated"
	KindInvalidArgument Kind = "invalid-argument"
	KindQueryFailure    Kind = "query-failure"
	KindRenderFailure   Kind = "render-failure"
	KindUploadFailure   Kind = "upload-failure"
	KindLinkFailure     Kind = "link-issuance-failure"

	// KindInternal is what callers see in place of any internal kind.
	KindInternal Kind = "internal"
)

// Internal reports whether the failure detail must stay on the server side.
func (k Kind) Internal() bool {
	return k != KindUnauthenticated && k != KindInvalidArgument
}

// Stage is a step of a single report invocation.
type Stage string

const (
	StageIdle        Stage = "idle"
	StageAuthorizing Stage = "authorizing"
	StageQuerying    Stage = "querying"
	StageAggregating Stage = "aggregating"
	StageRendering   Stage = "rendering"
	StageUploading   Stage = "uploading"
	StageIssuingLink Stage = "issuing-link"
	StageDone        Stage = "done"
)

// Error is the terminal Failed(kind) state of an invocation.
// Message is safe to show to the caller only when Kind is not internal.
type Error struct {
	Kind    Kind
	Stage   Stage
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s (%s): %v", msg, e.Stage, e.Err)
	}
	return fmt.Sprintf("%s (%s)", msg, e.Stage)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a pipeline error of the given kind.
func IsKind(err error, kind Kind) bool {
	var rerr *Error
	return errors.As(err, &rerr) && rerr.Kind == kind
}

func fail(kind Kind, stage Stage, msg string, err error) *Error {
	return &Error{Kind: kind, Stage: stage, Message: msg, Err: err}
}

// InternalMessage replaces the detail of internal failures for callers.
const InternalMessage = "An internal error occurred while generating the report."

// Public splits err into the code and message a caller may see.
func Public(err error) (Kind, string) {
	var rerr *Error
	if errors.As(err, &rerr) && !rerr.Kind.Internal() {
		return rerr.Kind, rerr.Message
	}
	return KindInternal, InternalMessage
}
