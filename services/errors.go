package services

import "errors"

// Validation errors are returned before any remote call is made.
var (
	ErrPermissionDenied     = errors.New("contacts permission not granted")
	ErrEmptyDescription     = errors.New("challenge description is required")
	ErrInvalidRecipient     = errors.New("invalid recipient")
	ErrSelfRequest          = errors.New("cannot send a buddy request to yourself")
	ErrEmptyMessage         = errors.New("message is required")
	ErrMessageTooLong       = errors.New("message is too long")
	ErrInvalidWalletAddress = errors.New("invalid wallet address")
	ErrInvalidWorkout       = errors.New("invalid workout")
	ErrInvalidDeviceToken   = errors.New("invalid device token")
)

// State and access errors.
var (
	ErrUserNotFound          = errors.New("user not found")
	ErrRequestNotFound       = errors.New("buddy request not found")
	ErrRequestNotPending     = errors.New("buddy request already answered")
	ErrRequestAlreadyPending = errors.New("a buddy request between these users is already pending")
	ErrAlreadyBuddies        = errors.New("users are already buddies")
	ErrNotRecipient          = errors.New("only the recipient can answer a buddy request")
	ErrNotBuddies            = errors.New("users are not buddies")
	ErrWalletNotConnected    = errors.New("wallet not connected")
	ErrVideoNotFound         = errors.New("coliseum video not found")
	ErrNoThumbnail           = errors.New("video has no thumbnail yet")
	ErrWorkoutsUnavailable   = errors.New("workout history is not configured")
)
