package errors

import "fmt"

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Error codes group failures by taxonomy. UserMessage is what the bot shows
// in chat, Message is what gets logged.
const (
	CodeValidation         = "E100"
	CodeAuthorization      = "E110"
	CodeNotLinked          = "E120"
	CodeSessionExpired     = "E130"
	CodeUpstreamData       = "E200"
	CodeRankingUnavailable = "E210"
	CodeRender             = "E220"
	CodeDatabase           = "E300"
	CodeExternalAPI        = "E310"
)

type AppError struct {
	Code        string
	Message     string
	UserMessage string
	Severity    Severity
	Retryable   bool
	cause       error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

func (e *AppError) Cause() error {
	return e.Unwrap()
}

// NewValidationError reports malformed user input: a bad account id or a
// callback payload that does not decode. No collaborator is contacted and no
// state is mutated for these.
func NewValidationError(msg string) *AppError {
	return &AppError{
		Code:        CodeValidation,
		Message:     msg,
		UserMessage: msg,
		Severity:    SeverityLow,
		Retryable:   false,
	}
}

// NewAuthorizationError reports a button press by someone other than the
// session owner. The user message says nothing about who the owner is.
func NewAuthorizationError() *AppError {
	return &AppError{
		Code:        CodeAuthorization,
		Message:     "callback rejected: acting user is not the session owner",
		UserMessage: "This menu belongs to another user.",
		Severity:    SeverityLow,
		Retryable:   false,
	}
}

// NewNotLinkedError tells the user to link an account first.
func NewNotLinkedError() *AppError {
	return &AppError{
		Code:        CodeNotLinked,
		Message:     "user has no linked account",
		UserMessage: "You have not linked an account yet. Use /link <account id> first.",
		Severity:    SeverityLow,
		Retryable:   false,
	}
}

// NewSessionExpiredError reports a confirmation pressed with no matching
// pending state, e.g. after a restart dropped in-memory sessions.
func NewSessionExpiredError() *AppError {
	return &AppError{
		Code:        CodeSessionExpired,
		Message:     "no pending confirmation for this message",
		UserMessage: "This session has expired. Please start over with /link.",
		Severity:    SeverityLow,
		Retryable:   false,
	}
}

// NewUpstreamDataError reports a roster fetch failure or an empty/private
// profile. Terminal for the current flow.
func NewUpstreamDataError(cause error) *AppError {
	msg := "showcase data unavailable"
	if cause != nil {
		msg = fmt.Sprintf("showcase data unavailable: %s", cause.Error())
	}

	return &AppError{
		Code:        CodeUpstreamData,
		Message:     msg,
		UserMessage: "Could not fetch account data. The profile may be private or the service is down.",
		Severity:    SeverityMedium,
		Retryable:   true,
		cause:       cause,
	}
}

// NewRankingUnavailableError marks the non-fatal degradation of a view when
// ranking data cannot be fetched.
func NewRankingUnavailableError(cause error) *AppError {
	return &AppError{
		Code:        CodeRankingUnavailable,
		Message:     "ranking data unavailable",
		UserMessage: "Ranking data is currently unavailable.",
		Severity:    SeverityLow,
		Retryable:   true,
		cause:       cause,
	}
}

// NewRenderError reports a card rendering failure, terminal for the current
// step. The underlying description is surfaced to the user per the failure
// contract of the card flow.
func NewRenderError(cause error) *AppError {
	msg := "card rendering failed"
	if cause != nil {
		msg = fmt.Sprintf("card rendering failed: %s", cause.Error())
	}

	return &AppError{
		Code:        CodeRender,
		Message:     msg,
		UserMessage: msg,
		Severity:    SeverityMedium,
		Retryable:   true,
		cause:       cause,
	}
}

func NewDatabaseError(cause error) *AppError {
	var underlyingMsg string
	if cause != nil {
		underlyingMsg = cause.Error()
	}

	return &AppError{
		Code:        CodeDatabase,
		Message:     fmt.Sprintf("database error: %s", underlyingMsg),
		UserMessage: "Temporary problem, please try again later.",
		Severity:    SeverityHigh,
		Retryable:   true,
		cause:       cause,
	}
}

func NewExternalAPIError(apiName string, cause error) *AppError {
	return &AppError{
		Code:        CodeExternalAPI,
		Message:     fmt.Sprintf("external API error: %s", apiName),
		UserMessage: "The service is temporarily unavailable.",
		Severity:    SeverityMedium,
		Retryable:   true,
		cause:       cause,
	}
}
