package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

type Role string

const (
	RoleVanguard   Role = "Vanguard"
	RoleDuelist    Role = "Duelist"
	RoleStrategist Role = "Strategist"
)

// display order of the role chart
var Roles = []Role{RoleVanguard, RoleDuelist, RoleStrategist}

func ParseRole(s string) (Role, bool) {
	for _, r := range Roles {
		if strings.EqualFold(string(r), strings.TrimSpace(s)) {
			return r, true
		}
	}
	return "", false
}

// Number accepts JSON numbers, numeric strings and null. Anything else, NaN and infinities decode to 0.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*n = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*n = 0
			return nil
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			*n = 0
			return nil
		}
		*n = finite(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		*n = 0
		return nil
	}
	*n = finite(v)
	return nil
}

func finite(v float64) Number {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return Number(v)
}

func (n Number) Float() float64 { return float64(n) }

func (n Number) Int() int { return int(n) }

type HeroStat struct {
	HeroName string `json:"hero_name"`
	Matches  Number `json:"matches"`
	Kills    Number `json:"kills"`
	Deaths   Number `json:"deaths"`
	Assists  Number `json:"assists"`
	Wins     Number `json:"wins"`
	MVP      Number `json:"mvp"`
	SVP      Number `json:"svp"`
	PlayTime Number `json:"play_time"` // seconds
}

type Slice struct {
	Label      string  `json:"label"`
	StartAngle float64 `json:"start_angle"`
	EndAngle   float64 `json:"end_angle"`
	Color      string  `json:"color"`
	Count      float64 `json:"count"`
	Percent    float64 `json:"percent"`
	Path       string  `json:"path"`
}

type CacheEntry struct {
	PlayerKey string
	Payload   json.RawMessage
	CachedAt  time.Time
}

type UpdateLock struct {
	PlayerKey   string
	LockedUntil time.Time
}

type PlayerProfile struct {
	DisplayName string `json:"display_name"`
	IconURL     string `json:"icon_url,omitempty"`
	RankName    string `json:"rank_name"`
	RankURL     string `json:"rank_url,omitempty"`
	TeamName    string `json:"team_name"`
	BannerURL   string `json:"banner_url"`
}

type KDAStats struct {
	KDA             float64 `json:"kda"`
	Kills           float64 `json:"kills"`
	Deaths          float64 `json:"deaths"`
	Assists         float64 `json:"assists"`
	Matches         int     `json:"matches"`
	Wins            int     `json:"wins"`
	WinRate         float64 `json:"win_rate"`
	MVP             int     `json:"mvp"`
	SVP             int     `json:"svp"`
	PlayTimeSeconds float64 `json:"play_time_seconds"`
}
