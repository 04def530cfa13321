package domain

import "github.com/cockroachdb/errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrDuplicateAccount = errors.New("account already linked to this guild")
	ErrInvalidRiotID    = errors.New("invalid riot id, expected GameName#TagLine")
	ErrNotInGame        = errors.New("player is not in a game")
	ErrNoPlayers        = errors.New("no players registered for this guild")
	ErrUnknownTier      = errors.New("unknown tier")
	ErrUnknownDivision  = errors.New("unknown division")
	ErrInvalidGuildID   = errors.New("invalid guild id")
)
