package blast

import (
	"errors"
)

// Sentinel kinds for search errors.
var (
	ErrNoResult   = errors.New("no search result")
	ErrBadHit     = errors.New("malformed hit")
	ErrPollLimit  = errors.New("gave up waiting for remote search")
	ErrRemote     = errors.New("remote search failed")
	ErrNoRID      = errors.New("no request id from remote search")
	ErrSearchTool = errors.New("search program failed")
)
