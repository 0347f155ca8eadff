package domain

import "errors"

// Sentinel errors for the chat domain. Callers compare with errors.Is.
var (
	// ErrBlankMessage is returned when a submission is empty after trimming.
	// It is a silent rejection: nothing is appended and no error is shown.
	ErrBlankMessage = errors.New("message is blank")
	// ErrAwaitingReply is returned when a submission arrives while a reply is pending.
	ErrAwaitingReply         = errors.New("a reply is already pending")
	ErrConversationClosed    = errors.New("conversation is closed")
	ErrConversationNotFound  = errors.New("conversation not found")
	ErrResponderNotAvailable = errors.New("responder not available")
)
