package session

import "errors"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrEpisodeNotFound = errors.New("episode not found")
	ErrOrderNotFound   = errors.New("order not found")
)
