package fetch

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"
)

// Probe status strings for non-HTTP outcomes.
const (
	ProbeTimeout = "T/O"
	ProbeError   = "ERR"
)

// Probe checks reachability of a URL for the health-check command. It
// returns the HTTP status code as a string, or a short marker for
// timeouts and transport errors. The body is never read.
func (c *Client) Probe(ctx context.Context, url string) string {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ProbeError
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
			return ProbeTimeout
		}
		return ProbeError
	}
	resp.Body.Close()
	return strconv.Itoa(resp.StatusCode)
}
