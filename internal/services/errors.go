// Package services implements the presence-status synchronization engine:
// status mutations, the chat dirty tracker, the pending-removal scheduler,
// the pinned-message synchronizer, and the background driver loop.
//
// This file centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers. Mapping to
// user-facing messages or HTTP status codes is performed at the
// handler/controller layer.
package services

import "errors"

var (
	// ErrStatusNotFound indicates that no status record exists for the
	// presented webhook token. This is a benign negative outcome, not a
	// storage failure.
	ErrStatusNotFound = errors.New("status record not found")

	// ErrUnknownStatusToken is returned when a status token is outside the
	// allowed set (came, left, stay).
	ErrUnknownStatusToken = errors.New("unknown status token")

	// ErrUnknownNamePart is returned when a rename targets an unsupported
	// display name field.
	ErrUnknownNamePart = errors.New("unknown name part")

	// ErrUserNotFound indicates that a rename addressed a user that was
	// never seen by the bot.
	ErrUserNotFound = errors.New("user not found")
)
