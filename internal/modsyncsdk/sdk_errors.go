package modsyncsdk

import (
	"errors"
	"fmt"

	"github.com/imroc/req/v3"

	"github.com/stopperw/modsync/internal/api"
)

var (
	ErrNoServerURL   = errors.New("sdk: server url missing")
	ErrUnauthorized  = errors.New("sdk: invalid api key")
	ErrNotFound      = errors.New("sdk: not found")
	ErrAlreadyExists = errors.New("sdk: already exists")
)

// handleAPIError folds transport failures and API error envelopes into one
// error value. Auth and not-found map onto sentinels so callers can branch
// with errors.Is.
func handleAPIError(resp *req.Response, requestErr error, operation string) error {
	if requestErr != nil {
		return fmt.Errorf("http request error: %s: %w", operation, requestErr)
	}

	if !resp.IsErrorState() {
		return nil
	}

	var kind error
	switch resp.GetStatusCode() {
	case 401:
		kind = ErrUnauthorized
	case 404:
		kind = ErrNotFound
	}

	if apiErr, ok := resp.ErrorResult().(*api.Error); ok {
		if apiErr.Code == api.CodeAlreadyExists {
			kind = ErrAlreadyExists
		}
		if kind != nil {
			return fmt.Errorf("%s: %w: %s", operation, kind, apiErr.Message)
		}
		return fmt.Errorf("%s: %w", operation, apiErr)
	}

	if kind != nil {
		return fmt.Errorf("%s: %w", operation, kind)
	}
	return fmt.Errorf("api error: %s: %s", operation, resp.Status)
}
