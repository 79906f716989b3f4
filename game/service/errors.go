package service

import (
	"context"
	"errors"

	"github.com/wricardo/mastermind/game/engine"
	"github.com/wricardo/mastermind/game/leaderboard"
	"github.com/wricardo/mastermind/game/session"
)

var (
	ErrConfigNotFound    = engine.ErrConfigNotFound
	ErrInvalidConfigName = errors.New("invalid configuration name")
)

// Error kinds reported to presentation layers
const (
	KindNotFound        = "not_found"
	KindAlreadyExists   = "already_exists"
	KindInvalidSymbol   = "invalid_symbol"
	KindIndexOutOfRange = "index_out_of_range"
	KindLengthMismatch  = "length_mismatch"
	KindInvalidArgument = "invalid_argument"
	KindInvalidConfig   = "invalid_config"
	KindPersistence     = "persistence"
	KindCanceled        = "canceled"
	KindInternal        = "internal"
)

// ErrorKind classifies err by the sentinel it wraps
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, ErrConfigNotFound):
		return KindNotFound
	case errors.Is(err, session.ErrSessionAlreadyExists):
		return KindAlreadyExists
	case errors.Is(err, engine.ErrInvalidSymbol):
		return KindInvalidSymbol
	case errors.Is(err, session.ErrIndexOutOfRange):
		return KindIndexOutOfRange
	case errors.Is(err, engine.ErrLengthMismatch):
		return KindLengthMismatch
	case errors.Is(err, session.ErrInvalidArgument),
		errors.Is(err, session.ErrInvalidSessionID),
		errors.Is(err, ErrInvalidConfigName):
		return KindInvalidArgument
	case errors.Is(err, engine.ErrInvalidConfig):
		return KindInvalidConfig
	case errors.Is(err, leaderboard.ErrPersistence):
		return KindPersistence
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindInternal
	}
}
