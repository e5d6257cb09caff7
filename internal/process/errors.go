package process

import "errors"

// ErrInvalidPID is returned for pids that would address the caller's own group.
var ErrInvalidPID = errors.New("process: invalid pid")
