package runner

import "github.com/pkg/errors"

var (
	ErrMarginCeiling    = errors.New("margin in use above configured ceiling")
	ErrGasCap           = errors.New("gas estimate above configured cap")
	ErrSizingExhausted  = errors.New("no clear quote within sizing attempts")
	ErrRetriesExhausted = errors.New("trade submission retries exhausted")
	ErrApproval         = errors.New("token approval failed")
	ErrTradeReverted    = errors.New("trade transaction reverted")
)

// IsPolicyAbort reports errors that end a cycle on purpose. They are
// logged as warnings and never retried.
func IsPolicyAbort(err error) bool {
	return errors.Is(err, ErrMarginCeiling) ||
		errors.Is(err, ErrGasCap) ||
		errors.Is(err, ErrSizingExhausted)
}

const (
	outcomeTraded  = "traded"
	outcomeSkipped = "skipped"
	outcomeAborted = "aborted"
	outcomeFailed  = "failed"
)

func outcomeOf(err error, traded bool) string {
	switch {
	case err == nil && traded:
		return outcomeTraded
	case err == nil:
		return outcomeSkipped
	case IsPolicyAbort(err):
		return outcomeAborted
	default:
		return outcomeFailed
	}
}
