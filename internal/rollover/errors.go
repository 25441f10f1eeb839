package rollover

import "errors"

// ErrUnauthenticated is returned by a Handler's Refresh when the server no
// longer accepts the client's credential.
var ErrUnauthenticated = errors.New("not authenticated")
