package server

import "errors"

// ErrNilChecker indicates Options.Checker is nil.
var ErrNilChecker = errors.New("server: checker is required")
