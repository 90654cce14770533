package host

import "errors"

// ErrClosed is returned by Trigger once the transport has no more signals.
var ErrClosed = errors.New("host closed")
