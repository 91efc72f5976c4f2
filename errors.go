package gotara

import "fmt"

// TranslationError reports a translation that stopped part way, for example
// when a document's context is cancelled between nodes.
type TranslationError struct {
	Message   string
	Direction TranslationDirection // Resolved direction, if known
	Cause     error
}

func (e *TranslationError) Error() string {
	msg := e.Message
	if e.Direction != "" {
		msg = fmt.Sprintf("translating %s: %s", e.Direction, msg)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *TranslationError) Unwrap() error {
	return e.Cause
}

// DirectionError reports a direction that is neither auto nor one of the two
// concrete directions. It is raised before any tokenizing or rule work.
type DirectionError struct {
	Direction string
}

func (e *DirectionError) Error() string {
	return fmt.Sprintf("invalid translation direction %q", e.Direction)
}

// CacheError indicates a cache operation failure. Translations never fail
// because of one; only cache setup and import report them.
type CacheError struct {
	Message   string
	Cause     error
	Retryable bool // Transient: a later attempt may succeed
}

func (e *CacheError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cache error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("cache error: %s", e.Message)
}

func (e *CacheError) Unwrap() error {
	return e.Cause
}

// ProcessorError indicates a document that could not be parsed or rebuilt.
type ProcessorError struct {
	Message     string
	Cause       error
	ContentType string // "html", "text", ...
	NodeID      string // Offending node, if any
}

func (e *ProcessorError) Error() string {
	where := e.ContentType
	if e.NodeID != "" {
		where += ", node " + e.NodeID
	}
	if e.Cause != nil {
		return fmt.Sprintf("processor error (%s): %s: %v", where, e.Message, e.Cause)
	}
	return fmt.Sprintf("processor error (%s): %s", where, e.Message)
}

func (e *ProcessorError) Unwrap() error {
	return e.Cause
}
