package economy

import "errors"

var (
	// ErrNegativeBalance is returned when a money operation would go below zero.
	// Locking and refund bookkeeping should make this impossible.
	ErrNegativeBalance = errors.New("negative balance")

	// ErrInvalidTransition is returned when an order leaves a terminal status.
	ErrInvalidTransition = errors.New("invalid order status transition")

	// ErrInvalidTransactionStatus is returned when an unprocessed order is
	// registered as a wallet transaction.
	ErrInvalidTransactionStatus = errors.New("transaction status must be terminal")

	// ErrStorageFull is returned when an add exceeds a storage limit.
	ErrStorageFull = errors.New("storage full")

	// ErrInsufficientResources is returned when removing more than is stored.
	ErrInsufficientResources = errors.New("insufficient resources")
)
