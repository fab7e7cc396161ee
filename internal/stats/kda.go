package stats

import (
	"fmt"
	"strings"
	"time"

	"rivals-tracker/internal/chart"
	"rivals-tracker/internal/domain"
)

// Filter narrows the hero rows feeding the KDA block. Hero and Role are cumulative.
type Filter struct {
	Hero string
	Role domain.Role
}

func (f Filter) Active() bool {
	return f.Hero != "" || f.Role != ""
}

func (f Filter) Match(h domain.HeroStat) bool {
	if f.Hero != "" && !strings.EqualFold(strings.TrimSpace(h.HeroName), strings.TrimSpace(f.Hero)) {
		return false
	}
	if f.Role != "" {
		role, ok := chart.RoleOf(h.HeroName)
		if !ok || role != f.Role {
			return false
		}
	}
	return true
}

// SelectRole sets the role and drops a selected hero that belongs to a different role.
func (f Filter) SelectRole(role domain.Role) Filter {
	f.Role = role
	if role != "" && f.Hero != "" {
		if heroRole, ok := chart.RoleOf(f.Hero); ok && heroRole != role {
			f.Hero = ""
		}
	}
	return f
}

func Apply(heroes []domain.HeroStat, f Filter) []domain.HeroStat {
	if !f.Active() {
		return heroes
	}
	out := make([]domain.HeroStat, 0, len(heroes))
	for _, h := range heroes {
		if f.Match(h) {
			out = append(out, h)
		}
	}
	return out
}

// Compute totals the filtered rows and derives per-match averages.
func Compute(heroes []domain.HeroStat, f Filter) domain.KDAStats {
	rows := Apply(heroes, f)
	if len(rows) == 0 {
		return domain.KDAStats{}
	}

	var kills, deaths, assists, matches, wins, mvp, svp, playTime float64
	for _, h := range rows {
		kills += h.Kills.Float()
		deaths += h.Deaths.Float()
		assists += h.Assists.Float()
		matches += h.Matches.Float()
		wins += h.Wins.Float()
		mvp += h.MVP.Float()
		svp += h.SVP.Float()
		playTime += h.PlayTime.Float()
	}

	var avgKills, avgDeaths, avgAssists, winRate float64
	if matches > 0 {
		avgKills = kills / matches
		avgDeaths = deaths / matches
		avgAssists = assists / matches
		winRate = wins * 100 / matches
	}

	kda := avgKills + avgAssists
	if avgDeaths > 0 {
		kda = (avgKills + avgAssists) / avgDeaths
	}

	return domain.KDAStats{
		KDA:             kda,
		Kills:           avgKills,
		Deaths:          avgDeaths,
		Assists:         avgAssists,
		Matches:         int(matches),
		Wins:            int(wins),
		WinRate:         winRate,
		MVP:             int(mvp),
		SVP:             int(svp),
		PlayTimeSeconds: playTime,
	}
}

// FormatPlayTime renders seconds as M:SS.
func FormatPlayTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int64(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// FormatRemaining renders a countdown as MM:SS.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	return fmt.Sprintf("%02d:%02d", ms/60000, (ms%60000)/1000)
}
