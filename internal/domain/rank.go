package domain

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Tier is ordered ascending: a greater value is a stronger tier.
type Tier int

const (
	TierIron Tier = iota
	TierBronze
	TierSilver
	TierGold
	TierPlatinum
	TierEmerald
	TierDiamond
	TierMaster
	TierGrandmaster
	TierChallenger
)

var tierNames = [...]string{
	TierIron:        "IRON",
	TierBronze:      "BRONZE",
	TierSilver:      "SILVER",
	TierGold:        "GOLD",
	TierPlatinum:    "PLATINUM",
	TierEmerald:     "EMERALD",
	TierDiamond:     "DIAMOND",
	TierMaster:      "MASTER",
	TierGrandmaster: "GRANDMASTER",
	TierChallenger:  "CHALLENGER",
}

func ParseTier(s string) (Tier, error) {
	up := strings.ToUpper(strings.TrimSpace(s))
	for i, name := range tierNames {
		if name == up {
			return Tier(i), nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownTier, "%q", s)
}

func (t Tier) String() string {
	if t < TierIron || t > TierChallenger {
		return "UNKNOWN"
	}
	return tierNames[t]
}

// Title returns "Gold", "Grandmaster", ...
func (t Tier) Title() string {
	s := t.String()
	return s[:1] + strings.ToLower(s[1:])
}

// IsApex reports whether the tier has no divisions.
func (t Tier) IsApex() bool {
	switch t {
	case TierMaster, TierGrandmaster, TierChallenger:
		return true
	default:
		return false
	}
}

// Division is ordered ascending, IV being the lowest.
type Division int

const (
	DivisionNone Division = iota - 1
	DivisionIV
	DivisionIII
	DivisionII
	DivisionI
)

func ParseDivision(s string) (Division, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return DivisionNone, nil
	case "IV":
		return DivisionIV, nil
	case "III":
		return DivisionIII, nil
	case "II":
		return DivisionII, nil
	case "I":
		return DivisionI, nil
	default:
		return DivisionNone, errors.Wrapf(ErrUnknownDivision, "%q", s)
	}
}

func (d Division) String() string {
	switch d {
	case DivisionIV:
		return "IV"
	case DivisionIII:
		return "III"
	case DivisionII:
		return "II"
	case DivisionI:
		return "I"
	default:
		return ""
	}
}
