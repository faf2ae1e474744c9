package plan

import (
	"errors"
	"fmt"
	"strings"
)

// RejectionError is implemented by every error that terminates a run
// before a submission script is written.
type RejectionError interface {
	error
	// Rejection returns the short kind name of the rejection (e.g. "NodeRange").
	Rejection() string
}

// UsageError represents bad arguments or an unusable input file
type UsageError struct {
	Reason string
}

func (e *UsageError) Error() string     { return e.Reason }
func (e *UsageError) Rejection() string { return "Usage" }

// AuthorizationError represents a missing access group
type AuthorizationError struct {
	Group  string // Group the user must belong to
	Reason string // What the group grants
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("you must be part of the %s Unix group %s", e.Group, e.Reason)
}
func (e *AuthorizationError) Rejection() string { return "Authorization" }

// InvalidQueueError represents an unrecognised queue token
type InvalidQueueError struct {
	Token string
	Valid []string
}

func (e *InvalidQueueError) Error() string {
	return fmt.Sprintf("invalid option %q for a queue; must be one of %s",
		e.Token, strings.Join(e.Valid, ", "))
}
func (e *InvalidQueueError) Rejection() string { return "InvalidQueue" }

// InvalidAllocationError represents an allocation the user cannot use
type InvalidAllocationError struct {
	Requested string   // Requested allocation (empty when none are available)
	Available []string // Allocations the user belongs to
}

func (e *InvalidAllocationError) Error() string {
	if len(e.Available) == 0 {
		return "you are not a member of any compute allocation"
	}
	return fmt.Sprintf("you must choose an allocation that you are a part of (%s), not %q",
		strings.Join(e.Available, ", "), e.Requested)
}
func (e *InvalidAllocationError) Rejection() string { return "InvalidAllocation" }

// NoCapacityError represents an allocation with nothing to run on
type NoCapacityError struct {
	Allocation string
	Resource   string // "nodes" or "core tiers"
}

func (e *NoCapacityError) Error() string {
	if e.Allocation == "" {
		return fmt.Sprintf("there are no %s available", e.Resource)
	}
	return fmt.Sprintf("there are no %s available for the %s allocation", e.Resource, e.Allocation)
}
func (e *NoCapacityError) Rejection() string { return "NoCapacity" }

// NodeRangeError represents a node count outside 1 ≤ n < Max
type NodeRangeError struct {
	Requested int
	Max       int
}

func (e *NodeRangeError) Error() string {
	return fmt.Sprintf("you must select at least one node and less than %d (requested %d)",
		e.Max, e.Requested)
}
func (e *NodeRangeError) Rejection() string { return "NodeRange" }

// CoreRangeError represents a core count above every available node tier
type CoreRangeError struct {
	Requested int
	Max       int
}

func (e *CoreRangeError) Error() string {
	return fmt.Sprintf("no node in this allocation has %d cores; the largest available has %d",
		e.Requested, e.Max)
}
func (e *CoreRangeError) Rejection() string { return "CoreRange" }

// MemoryRangeError represents a per-node memory request the nodes cannot satisfy
type MemoryRangeError struct {
	Requested int
	Max       int
}

func (e *MemoryRangeError) Error() string {
	return fmt.Sprintf("memory per node must be between 1 and %d Gb (requested %d Gb)",
		e.Max, e.Requested)
}
func (e *MemoryRangeError) Rejection() string { return "MemoryRange" }

// WalltimeRangeError represents a non-positive walltime
type WalltimeRangeError struct {
	Requested int
	Unit      TimeUnit
}

func (e *WalltimeRangeError) Error() string {
	return fmt.Sprintf("walltime must be at least 1 %s (requested %d)", e.Unit, e.Requested)
}
func (e *WalltimeRangeError) Rejection() string { return "WalltimeRange" }

// AnswerError represents an answer that could not be read or parsed
type AnswerError struct {
	Question string // Question key
	Answer   string // Raw answer
	Err      error  // Underlying error
}

func (e *AnswerError) Error() string {
	return fmt.Sprintf("cannot use %q as the answer for %s: %v", e.Answer, e.Question, e.Err)
}
func (e *AnswerError) Rejection() string { return "Answer" }
func (e *AnswerError) Unwrap() error     { return e.Err }

// InvalidVersionError represents a version that is not offered on this cluster
type InvalidVersionError struct {
	Requested string
}

func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("choose a valid version of Gaussian, not %s", e.Requested)
}
func (e *InvalidVersionError) Rejection() string { return "InvalidVersion" }

// ParseError represents a malformed directive in the Gaussian input file
type ParseError struct {
	Line    int    // Line number where error occurred
	Content string // Line content
	Reason  string // Reason for parse failure
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("input parse error at line %d (%s): %s", e.Line, e.Content, e.Reason)
}
func (e *ParseError) Rejection() string { return "Parse" }

// OversubscribedCoresError represents an input asking for more cores than a node has
type OversubscribedCoresError struct {
	Requested int
	Available int
}

func (e *OversubscribedCoresError) Error() string {
	return fmt.Sprintf("input requests %d cores but the nodes have %d", e.Requested, e.Available)
}
func (e *OversubscribedCoresError) Rejection() string { return "OversubscribedCores" }

// LindaMismatchError represents disagreement between the node count and
// the %LindaWorkers directive
type LindaMismatchError struct {
	NodeCount      int
	DirectiveFound bool
}

func (e *LindaMismatchError) Error() string {
	if e.DirectiveFound {
		return fmt.Sprintf("input contains %%LindaWorkers but only %d node was requested", e.NodeCount)
	}
	return fmt.Sprintf("input lacks %%LindaWorkers but %d nodes were requested", e.NodeCount)
}
func (e *LindaMismatchError) Rejection() string { return "LindaMismatch" }

// Helper functions for creating errors

// NewUsageError creates a new UsageError
func NewUsageError(format string, a ...interface{}) *UsageError {
	return &UsageError{Reason: fmt.Sprintf(format, a...)}
}

// NewAnswerError creates a new AnswerError
func NewAnswerError(question string, answer string, err error) *AnswerError {
	return &AnswerError{Question: question, Answer: answer, Err: err}
}

// NewParseError creates a new ParseError
func NewParseError(line int, content string, reason string) *ParseError {
	return &ParseError{Line: line, Content: content, Reason: reason}
}

// IsRejection checks if an error is (or wraps) a RejectionError
func IsRejection(err error) bool {
	var re RejectionError
	return errors.As(err, &re)
}

// IsUsageError checks if an error is a UsageError
func IsUsageError(err error) bool {
	var ue *UsageError
	return errors.As(err, &ue)
}

// Exit codes returned by the CLI.
const (
	ExitOK       = 0
	ExitRejected = 1
	ExitUsage    = 2
)

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case IsUsageError(err):
		return ExitUsage
	default:
		return ExitRejected
	}
}
