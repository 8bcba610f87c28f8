package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// PostJSON sends body to url and treats any non-2xx status as an error. The
// label prefixes every error so callers can tell sinks apart in logs.
func PostJSON(ctx context.Context, client *http.Client, url string, body []byte, label string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", label, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", label, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errorResponse(resp, label)
	}
	return drain(resp, label)
}

func drain(resp *http.Response, label string) error {
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		if closeErr := resp.Body.Close(); closeErr != nil {
			return errors.Join(
				fmt.Errorf("drain %s response body: %w", label, err),
				fmt.Errorf("close response body: %w", closeErr),
			)
		}
		return fmt.Errorf("drain %s response body: %w", label, err)
	}
	if err := resp.Body.Close(); err != nil {
		return fmt.Errorf("close response body: %w", err)
	}
	return nil
}

func errorResponse(resp *http.Response, label string) error {
	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if readErr != nil {
		if closeErr := resp.Body.Close(); closeErr != nil {
			return errors.Join(
				fmt.Errorf("read %s error response: %w", label, readErr),
				fmt.Errorf("close response body: %w", closeErr),
			)
		}
		return fmt.Errorf("read %s error response: %w", label, readErr)
	}
	if err := resp.Body.Close(); err != nil {
		return fmt.Errorf("close response body: %w", err)
	}
	return fmt.Errorf("%s %s: %s", label, resp.Status, strings.TrimSpace(string(respBody)))
}
