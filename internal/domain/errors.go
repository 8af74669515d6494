package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrQuotaExceeded      = errors.New("quota exceeded")
	ErrAccountFrozen      = errors.New("account frozen")
	ErrRateLimited        = errors.New("rate limited")
	ErrSynthesisFailure   = errors.New("synthesis failure")
	ErrDuplicateOperation = errors.New("duplicate operation")
	ErrQueueClosed        = errors.New("queue closed")
	ErrTextTooLong        = errors.New("text too long")
	ErrUnknownVoice       = errors.New("unknown voice")
)
