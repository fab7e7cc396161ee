package api

import (
	"encoding/json"
	"strings"

	"rivals-tracker/internal/constants"
	"rivals-tracker/internal/domain"
)

// Only the fields the tracker reads are declared; everything else in the payload is ignored.
type PlayerResponse struct {
	Player         PlayerInfo        `json:"player"`
	HeroesRanked   []domain.HeroStat `json:"heroes_ranked"`
	HeroesUnranked []domain.HeroStat `json:"heroes_unranked"`
}

type PlayerInfo struct {
	PlayerName string `json:"player_name"`
	Icon       struct {
		PlayerIcon string `json:"player_icon"`
		Banner     string `json:"banner"`
	} `json:"icon"`
	Rank struct {
		Rank  string `json:"rank"`
		Image string `json:"image"`
	} `json:"rank"`
	Team struct {
		ClubTeamMiniName string `json:"club_team_mini_name"`
	} `json:"team"`
}

type MatchHistoryResponse struct {
	MatchHistory []json.RawMessage `json:"match_history"`
}

// Heroes picks the ranked or unranked rows; missing lists come back empty.
func (p *PlayerResponse) Heroes(ranked bool) []domain.HeroStat {
	if p == nil {
		return nil
	}
	if ranked {
		return p.HeroesRanked
	}
	return p.HeroesUnranked
}

// Profile resolves display fields with their defaults. The banner is only served by API v2.
func (p *PlayerResponse) Profile(requested, apiVersion string) domain.PlayerProfile {
	var info PlayerInfo
	if p != nil {
		info = p.Player
	}

	name := info.PlayerName
	if name == "" {
		name = requested
	}
	if name == "" {
		name = "Unknown Player"
	}

	rank := info.Rank.Rank
	if rank == "" {
		rank = "Unranked"
	}

	team := info.Team.ClubTeamMiniName
	if team == "" {
		team = "No Team"
	}

	banner := constants.DefaultBannerPath
	if apiVersion == "v2" && info.Icon.Banner != "" {
		banner = AssetURL(info.Icon.Banner)
	}

	return domain.PlayerProfile{
		DisplayName: name,
		IconURL:     AssetURL(info.Icon.PlayerIcon),
		RankName:    rank,
		RankURL:     AssetURL(info.Rank.Image),
		TeamName:    team,
		BannerURL:   banner,
	}
}

// AssetURL prefixes relative upstream asset paths with the asset host.
func AssetURL(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http") {
		return path
	}
	return constants.AssetBaseURL + path
}

func DecodePlayer(raw []byte) (*PlayerResponse, error) {
	var p PlayerResponse
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
