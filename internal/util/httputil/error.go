package httputil

import (
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Error is an error that is shown to the client as is. Redirects are errors too, so that a page
// can stop building and send the browser elsewhere with a plain return.
type Error struct {
	code     int
	message  string
	location string
}

func (e *Error) Error() string {
	if e.location != "" {
		return fmt.Sprintf("http %v to %v: %v", e.code, e.location, e.message)
	}
	return fmt.Sprintf("http %v: %v", e.code, e.message)
}

func (e *Error) Code() int        { return e.code }
func (e *Error) Message() string  { return e.message }
func (e *Error) Location() string { return e.location }

func (e *Error) IsRedirect() bool {
	return e.code >= 300 && e.code < 400 && e.location != ""
}

func (e *Error) ApplyHeaders(w http.ResponseWriter) {
	if e.IsRedirect() {
		w.Header().Set("Location", e.location)
	}
}

func MakeError(code int, message string) error {
	return &Error{code: code, message: message}
}

// MakeRedirectError makes a redirect. A code outside of 3xx gives a plain error.
func MakeRedirectError(code int, message string, location string) error {
	e := &Error{code: code, message: message}
	if code >= 300 && code < 400 {
		e.location = location
	}
	return e
}

// WriteErrorResponse writes err as a plain text response. Errors other than *Error become 500,
// and their text is not sent to the client.
func WriteErrorResponse(err error, w http.ResponseWriter) error {
	code, message := http.StatusInternalServerError, "internal server error"
	var httpErr *Error
	if errors.As(err, &httpErr) {
		code, message = httpErr.code, httpErr.message
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if httpErr != nil {
		httpErr.ApplyHeaders(w)
	}
	w.WriteHeader(code)
	if _, err := io.WriteString(w, message); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}
