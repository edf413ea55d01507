package models

import "errors"

// Custom errors
var (
	// Validation failures surfaced to the caller before any mutation.
	ErrInvalidAmount       = errors.New("wager amount must be a positive integer")
	ErrUnauthenticated     = errors.New("caller is not authenticated")
	ErrMarketClosed        = errors.New("market is not accepting wagers")
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrSettlementFailed is returned when the settlement transaction could
	// not complete after bounded retries. No partial state is persisted.
	ErrSettlementFailed = errors.New("settlement failed")

	// ErrOddsComputationSkipped marks a prize whose total adjusted rating
	// was zero or negative. Non-fatal: the batch continues.
	ErrOddsComputationSkipped = errors.New("odds computation skipped for prize")

	ErrNotFound     = errors.New("record not found")
	ErrDuplicateKey = errors.New("duplicate key violation")
	ErrInvalidID    = errors.New("invalid ID format")
)
