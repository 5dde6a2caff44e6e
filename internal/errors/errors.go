package errors

import "errors"

// Domain entity errors represent missing entities in the wallet or analytic
// store. These errors indicate that a referenced row does not exist.
var (
	// ErrAssetNotFound indicates that an asset with the given B3 code does not exist.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrEarningNotFound indicates that an earning with the given ID does not exist.
	ErrEarningNotFound = errors.New("earning not found")

	// ErrTransactionNotFound indicates that a transaction with the given ID does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrYieldNotFound indicates that no earning_yield row exists for the given earning ID.
	ErrYieldNotFound = errors.New("earning yield not found")
)

// Input errors represent notifications or events that can never be
// processed. They are logged and acknowledged without retry so that poison
// messages do not block a queue.
var (
	// ErrMalformedNotification indicates a text notification that does not
	// match the envelope or its source grammar.
	ErrMalformedNotification = errors.New("malformed notification")

	// ErrMalformedEvent indicates a structured event that fails schema or
	// consistency validation, or carries an id the processor cannot parse.
	ErrMalformedEvent = errors.New("malformed event")

	// ErrUnknownSource indicates a notification from a source the router
	// has no grammar for.
	ErrUnknownSource = errors.New("unknown notification source")
)
