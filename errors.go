package portfolio

import (
	"errors"
	"fmt"
)

// Recoverable errors. The ledger state is unchanged when one of these is
// returned, so the caller can correct the request and retry.
var (
	// ErrInvalidTransactionDate reports a transaction dated on a day the
	// market has no record for (weekend, holiday, or out of range).
	ErrInvalidTransactionDate = errors.New("no market data for transaction date")

	// ErrTickerNotFound reports a ticker symbol unknown to the market data
	// provider.
	ErrTickerNotFound = errors.New("ticker not found")

	// ErrNoDataForRange reports a fetch over a range that contains no
	// trading days. A refresh treats it as "already up to date".
	ErrNoDataForRange = errors.New("no market data for requested range")

	// ErrRequestCancelled reports a request abandoned because its context
	// was cancelled before completion.
	ErrRequestCancelled = errors.New("request cancelled")

	// ErrLedgerBusy reports a mutation rejected because one request is in
	// flight and another is already waiting.
	ErrLedgerBusy = errors.New("ledger busy")
)

// TransportError wraps a failure to reach or decode the market data
// provider. It is fatal: the ledger gives up on the request rather than
// retrying with possibly inconsistent data.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("transport: %s: %v", e.Op, e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// StorageError wraps a failure to read or write the on-disk record
// streams. It is fatal.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage: %s %s: %v", e.Op, e.Path, e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }

// IsFatal reports whether err denotes a transport or storage failure, as
// opposed to a recoverable request error.
func IsFatal(err error) bool {
	var te *TransportError
	var se *StorageError
	return errors.As(err, &te) || errors.As(err, &se)
}
