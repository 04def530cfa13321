package domain

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// RiotID is the human-facing GameName#TagLine identity.
type RiotID struct {
	GameName string
	TagLine  string
}

// ParseRiotID splits on the first '#'. Game names may contain spaces; tag lines may not be empty.
func ParseRiotID(raw string) (RiotID, error) {
	name, tag, ok := strings.Cut(strings.TrimSpace(raw), "#")
	if !ok {
		return RiotID{}, errors.Wrapf(ErrInvalidRiotID, "%q has no tag line", raw)
	}
	name, tag = strings.TrimSpace(name), strings.TrimSpace(tag)
	if name == "" || tag == "" {
		return RiotID{}, errors.Wrapf(ErrInvalidRiotID, "%q", raw)
	}
	return RiotID{GameName: name, TagLine: tag}, nil
}

func (r RiotID) String() string {
	return r.GameName + "#" + r.TagLine
}
