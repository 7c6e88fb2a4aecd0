package types

import "errors"

// Sentinel errors for Groupsight operations.
var (
	// ErrEmptyExpression indicates an empty or whitespace-only condition.
	ErrEmptyExpression = errors.New("expression is empty")

	// ErrUnsupportedConstruct indicates the expression references a
	// construct the local evaluator cannot resolve (group-membership
	// checks, app.* attributes).
	ErrUnsupportedConstruct = errors.New("expression contains unsupported construct")

	// ErrParse indicates the expression text is malformed.
	ErrParse = errors.New("expression parse failed")

	// ErrStaleResponse indicates a directory response arrived for a
	// superseded request generation and must be discarded.
	ErrStaleResponse = errors.New("directory response is stale")

	// ErrEmptyID indicates an empty identifier string.
	ErrEmptyID = errors.New("identifier is empty")
)
