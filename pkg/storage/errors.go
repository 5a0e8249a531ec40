package storage

import "errors"

var (
	// ErrConnect is returned by Connect only when it gives up, i.e. on shutdown.
	ErrConnect = errors.New("storage connect")
	// ErrWrite marks a failed insert; the transaction has been rolled back.
	ErrWrite = errors.New("storage write")
	// ErrCommit marks a failed commit.
	ErrCommit = errors.New("storage commit")
)
