package cli

import (
	"errors"
	"fmt"
)

var errNoServer = errors.New("no server configured; pass --server, set BOARDSYNC_SERVER, or run `boardsync config set --server <url>`")

type badArgError struct {
	arg  string
	want string
}

func (e badArgError) Error() string {
	return fmt.Sprintf("invalid argument %q: want %s", e.arg, e.want)
}

func errBadArg(arg, want string) error {
	return badArgError{arg: arg, want: want}
}
