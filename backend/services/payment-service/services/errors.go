package services

import "errors"

var (
	ErrDealNotFound        = errors.New("deal not found")
	ErrDealInactive        = errors.New("deal is inactive")
	ErrUpstreamUnavailable = errors.New("deal service unavailable")
	ErrMalformedAmount     = errors.New("malformed amount")
	ErrPersistenceFailure  = errors.New("failed to persist transaction")
	ErrPublishFailure      = errors.New("failed to publish event")
	ErrMissingNonce        = errors.New("missing payment method nonce")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrPaymentDeclined     = errors.New("payment declined")
)
