package service

import "errors"

var (
	// ErrValidation covers malformed or missing input fields.
	ErrValidation = errors.New("validation_failed")

	// ErrUnauthenticated covers every access-token failure mode. Callers are
	// never told whether the token was expired, malformed or unknown.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden is returned when the caller is authenticated but lacks the
	// role required for the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound is returned when the referenced entity does not exist.
	ErrNotFound = errors.New("not_found")

	// ErrConflict is the generic uniqueness or state-transition conflict.
	ErrConflict = errors.New("conflict")

	// ErrAlreadyInClan rejects joins, approvals and accepts for players that
	// already hold a membership.
	ErrAlreadyInClan = errors.New("already_in_clan")

	// ErrOwnerMustTransfer rejects an owner leaving without first handing the
	// clan to someone else.
	ErrOwnerMustTransfer = errors.New("owner_must_transfer")

	// ErrSoleOwner rejects demoting or kicking the last remaining owner.
	ErrSoleOwner = errors.New("sole_owner")

	// ErrDuplicatePending rejects a second pending application or invitation
	// for the same (clan, player).
	ErrDuplicatePending = errors.New("duplicate_pending")

	// ErrInvalidOrExpired covers refresh tokens that are unknown, expired or
	// already rotated.
	ErrInvalidOrExpired = errors.New("invalid_or_expired_token")

	// ErrStateNotFound covers OAuth correlation states that are unknown,
	// expired or already consumed.
	ErrStateNotFound = errors.New("state_not_found")

	// ErrUpstream is returned when Steam or Discord fail or time out.
	ErrUpstream = errors.New("upstream_unavailable")
)
