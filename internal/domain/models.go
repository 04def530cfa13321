package domain

import (
	"time"
)

const QueueRankedSolo = "RANKED_SOLO_5x5"

type Account struct {
	Puuid    string
	GameName string
	TagLine  string
}

func (a Account) RiotID() RiotID {
	return RiotID{GameName: a.GameName, TagLine: a.TagLine}
}

type Summoner struct {
	Puuid         string
	SummonerLevel int
	ProfileIconID int
}

type LeagueEntry struct {
	QueueType    string
	Tier         Tier
	Division     Division
	LeaguePoints int
	Wins         int
	Losses       int
}

type ChampionMastery struct {
	ChampionID     int
	ChampionLevel  int
	ChampionPoints int
}

type ChampionRotation struct {
	FreeChampionIDs              []int
	FreeChampionIDsForNewPlayers []int
	MaxNewPlayerLevel            int
}

type ActiveGame struct {
	GameID        int64
	GameMode      string
	GameType      string
	GameStartTime time.Time
	GameLength    time.Duration
	Participants  []Participant
}

// Participant.Puuid is empty for players hidden by streamer mode.
type Participant struct {
	Puuid      string
	RiotID     string
	ChampionID int
	TeamID     int
}

type MatchSummary struct {
	MatchID   string
	GameEndAt time.Time
}

type GuildPlayer struct {
	DiscordUserID string
	RiotID        string
	Puuid         string
	AddedAt       time.Time
}

// LPHistory maps puuid -> date key (YYYY-MM-DD, UTC) -> LP at the first observation that day.
type LPHistory map[string]map[string]int

// Champion is a Data Dragon catalog entry. Key is the asset name used in image URLs.
type Champion struct {
	ID   int
	Key  string
	Name string
}

// PatchNote is the newest entry on the official patch notes page.
type PatchNote struct {
	Title    string
	URL      string
	ImageURL string
}
