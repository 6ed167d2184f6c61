package game

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a kind of rule violation.
type ErrorCode string

const (
	CodeIllegalPlay       ErrorCode = "ILLEGAL_PLAY"
	CodeIllegalDiscard    ErrorCode = "ILLEGAL_DISCARD"
	CodeNoJesterCharge    ErrorCode = "NO_JESTER_CHARGE"
	CodeCannotYield       ErrorCode = "CANNOT_YIELD"
	CodeEmptyDeck         ErrorCode = "EMPTY_DECK"
	CodeInvalidSelection  ErrorCode = "INVALID_SELECTION"
	CodeWrongPhase        ErrorCode = "WRONG_PHASE"
	CodeGameOver          ErrorCode = "GAME_OVER"
	CodeInvalidNomination ErrorCode = "INVALID_NOMINATION"
)

// RuleError is returned by every rejected engine action. The engine state is
// unchanged whenever one is returned.
type RuleError struct {
	Code    ErrorCode
	Message string
}

func (e *RuleError) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches any RuleError with the same code, so callers can compare
// against the sentinels below with errors.Is.
func (e *RuleError) Is(target error) bool {
	t, ok := target.(*RuleError)
	return ok && t.Code == e.Code
}

// Sentinels for errors.Is.
var (
	ErrIllegalPlay       = &RuleError{Code: CodeIllegalPlay}
	ErrIllegalDiscard    = &RuleError{Code: CodeIllegalDiscard}
	ErrNoJesterCharge    = &RuleError{Code: CodeNoJesterCharge}
	ErrCannotYield       = &RuleError{Code: CodeCannotYield}
	ErrEmptyDeck         = &RuleError{Code: CodeEmptyDeck}
	ErrInvalidSelection  = &RuleError{Code: CodeInvalidSelection}
	ErrWrongPhase        = &RuleError{Code: CodeWrongPhase}
	ErrGameOver          = &RuleError{Code: CodeGameOver}
	ErrInvalidNomination = &RuleError{Code: CodeInvalidNomination}
)

func ruleErrorf(code ErrorCode, format string, args ...any) *RuleError {
	return &RuleError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the code of a RuleError, or "" for any other error.
func CodeOf(err error) ErrorCode {
	var re *RuleError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}
