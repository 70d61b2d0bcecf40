package world

import "errors"

// Topology errors returned by edit operations. They are always wrapped with
// the failing operation; test with errors.Is.
var (
	ErrInvalidVertex      = errors.New("vertex does not exist")
	ErrInvalidWall        = errors.New("wall does not exist")
	ErrInvalidRoom        = errors.New("room does not exist")
	ErrSelfConnection     = errors.New("wall cannot connect to itself")
	ErrVertexAlreadySplit = errors.New("vertex already split")
	ErrEmptyRoom          = errors.New("room needs at least one point")
	ErrInvalidHeight      = errors.New("room height must be positive")
)
