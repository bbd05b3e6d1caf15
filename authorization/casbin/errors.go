package casbin

import "errors"

var ErrNilAdapter = errors.New("casbin adapter must not be nil")
