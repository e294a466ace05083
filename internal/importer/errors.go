package importer

import (
	"errors"
	"fmt"
)

// FailureCode classifies where in the pipeline an import attempt died.
type FailureCode string

const (
	// FailFeedUnavailable: the odds feed fetch itself failed; nothing was
	// built or mutated.
	FailFeedUnavailable FailureCode = "FeedUnavailable"
	// FailInvalidSelection: the caller selected no markets, or only markets
	// that were never built for the match. Rejected before any network call.
	FailInvalidSelection FailureCode = "InvalidSelection"
	// FailMatchCreation: the catalog rejected the match for a reason other
	// than an external-id conflict. No markets were attempted.
	FailMatchCreation FailureCode = "MatchCreationFailed"
	// FailMarketCreation: a single market creation failed. Never terminal on
	// its own; recorded as a warning on the result.
	FailMarketCreation FailureCode = "MarketCreationFailed"
	// FailTotalImport: every attempted market creation failed.
	FailTotalImport FailureCode = "TotalImportFailure"
)

// Error is a terminal import failure carrying its taxonomy code.
type Error struct {
	Code FailureCode
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf extracts the taxonomy code from an import error, or "" when err is
// not an import failure.
func CodeOf(err error) FailureCode {
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Code
	}
	return ""
}

// ErrImportInFlight rejects a second import command for an external id whose
// previous command has not finished yet.
var ErrImportInFlight = errors.New("import already in flight for this match")

// Warning records one non-fatal per-market failure on an otherwise
// successful import.
type Warning struct {
	MarketKey   string `json:"marketKey"`
	MarketLabel string `json:"marketLabel"`
	Reason      string `json:"reason"`
}
