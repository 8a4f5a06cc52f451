package gateway

import (
	"errors"
	"fmt"
)

// RemoteError is any gateway call rejected by the server or the transport.
// StatusCode is 0 when the request never produced a response.
type RemoteError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *RemoteError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Body != "":
		return fmt.Sprintf("%s: server returned %d: %s", e.Op, e.StatusCode, e.Body)
	default:
		return fmt.Sprintf("%s: server returned %d", e.Op, e.StatusCode)
	}
}

func (e *RemoteError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a RemoteError for a 404.
func IsNotFound(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.StatusCode == 404
}
