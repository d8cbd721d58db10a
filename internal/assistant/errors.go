package assistant

import "fmt"

// Kind names one failure class of the pipeline. Every failed Result carries one.
type Kind string

const (
	KindUserNotFound            Kind = "user_not_found"
	KindNoChildrenRegistered    Kind = "no_children_registered"
	KindClassificationAmbiguous Kind = "classification_ambiguous"
	KindExtractionParse         Kind = "extraction_parse"
	KindExtractionValidation    Kind = "extraction_validation"
	KindChildNotResolved        Kind = "child_not_resolved"
	KindCredentialMissing       Kind = "credential_missing"
	KindBackendCallFailed       Kind = "backend_call_failed"
	KindModelCallFailed         Kind = "model_call_failed"
	KindRecordNotFound          Kind = "record_not_found"

	// Handled locally by substituting the current time; never reaches a Result.
	KindTimestampUnparseable Kind = "timestamp_unparseable"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error

	// Choices lists valid child names for KindChildNotResolved and for a
	// query that names no child.
	Choices []string
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}
