package provider

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

// Kind classifies a provider failure for callers above the gateway.
type Kind int

const (
	// Upstream covers every failure that is not one of the kinds below,
	// including network errors and timeouts.
	Upstream Kind = iota
	// AuthExpired means the provider rejected the credential. It must be
	// surfaced for re-consent and never retried.
	AuthExpired
	// NotFound means the requested message or thread does not exist.
	NotFound
)

func (k Kind) String() string {
	switch k {
	case AuthExpired:
		return "auth_expired"
	case NotFound:
		return "not_found"
	default:
		return "upstream"
	}
}

// Error is returned by every Provider method.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Classify wraps err into an *Error. Status codes win when the error carries
// one; otherwise the message text decides. Classifying an *Error again keeps
// its original kind.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var perr *Error
	if errors.As(err, &perr) {
		return &Error{Kind: perr.Kind, Op: op, Err: err}
	}
	return &Error{Kind: kindOf(err), Op: op, Err: err}
}

func kindOf(err error) Kind {
	switch statusCode(err) {
	case http.StatusUnauthorized:
		return AuthExpired
	case http.StatusNotFound:
		return NotFound
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "invalid"), strings.Contains(msg, "expected oauth"):
		return AuthExpired
	case strings.Contains(msg, "not found"):
		return NotFound
	}
	return Upstream
}

func statusCode(err error) int {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
		return retrieveErr.Response.StatusCode
	}
	return 0
}

// KindOf reports the kind of a classified error, or Upstream for anything else.
func KindOf(err error) Kind {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Kind
	}
	return Upstream
}

func IsAuthExpired(err error) bool {
	return err != nil && KindOf(err) == AuthExpired
}

func IsNotFound(err error) bool {
	return err != nil && KindOf(err) == NotFound
}
