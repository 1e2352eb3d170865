package circuitbreaker

import (
	"context"
	"errors"
	"net"
	"os"
)

// httpStatusError matches retry.StatusError and provider API errors.
type httpStatusError interface {
	HTTPStatus() int
}

// ClassifyError weighs a fetch error for breaker tracking. Timeouts
// weigh heaviest since they cost a full retry round; upstream throttling
// counts at half weight; 4xx responses are the caller's fault and do
// not count against the provider.
func ClassifyError(err error) float64 {
	if err == nil {
		return 0
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return 1.5
	}

	var he httpStatusError
	if errors.As(err, &he) {
		return classifyStatus(he.HTTPStatus())
	}

	var netErr *net.OpError
	if errors.As(err, &netErr) {
		return 1.0
	}

	return 1.0
}

func classifyStatus(status int) float64 {
	switch {
	case status == 429:
		return 0.5
	case status >= 500:
		return 1.0
	default:
		return 0
	}
}
