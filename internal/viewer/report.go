package viewer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"rivals-tracker/internal/chart"
	"rivals-tracker/internal/service"
	"rivals-tracker/internal/stats"
)

const (
	RoleChartTitle = "Hero Role Distribution"
	HeroChartTitle = "Heroes Played"
)

// Charts returns the role and hero pie charts, highlighting the active filters.
func Charts(sum *service.Summary) (roles, heroes chart.PieChart) {
	roles = chart.PieChart{Title: RoleChartTitle, Slices: sum.RoleChart, Selected: sum.Role}
	heroes = chart.PieChart{Title: HeroChartTitle, Slices: sum.HeroChart}
	if sum.Hero != "" {
		heroes.Selected = chart.CapitalizeWords(sum.Hero)
	}
	return roles, heroes
}

// WriteReport prints the page state and, when data is loaded, the stats and chart legends.
func WriteReport(w io.Writer, snap Snapshot, sum *service.Summary) error {
	var b strings.Builder

	name := snap.Player
	if sum != nil {
		p := sum.Profile
		name = p.DisplayName
		fmt.Fprintf(&b, "%s [%s] %s\n", p.DisplayName, p.RankName, p.TeamName)
	} else {
		fmt.Fprintf(&b, "%s\n", name)
	}

	fmt.Fprintf(&b, "Data: %s", snap.DataState)
	if !snap.CachedAt.IsZero() {
		fmt.Fprintf(&b, " (cached %s)", snap.CachedAt.Local().Format("15:04:05"))
	}
	b.WriteString("\n")

	if snap.LockState == Locked {
		fmt.Fprintf(&b, "Update: available in %s\n", stats.FormatRemaining(snap.Remaining))
	} else {
		b.WriteString("Update: available\n")
	}
	if snap.UpdateMessage != "" {
		fmt.Fprintf(&b, "%s\n", snap.UpdateMessage)
	}
	if snap.Error != "" {
		fmt.Fprintf(&b, "Error: %s\n", snap.Error)
	}

	if sum != nil {
		mode := "unranked"
		if sum.Ranked {
			mode = "ranked"
		}
		fmt.Fprintf(&b, "Mode: %s  Role: %s  Hero: %s\n", mode, orAll(sum.Role), orAll(chart.CapitalizeWords(sum.Hero)))

		s := sum.Stats
		fmt.Fprintf(&b, "KDA %.2f | K %.1f D %.1f A %.1f | Matches %d | Wins %d (%.1f%%) | MVP %d | SVP %d | Play time %s\n",
			s.KDA, s.Kills, s.Deaths, s.Assists, s.Matches, s.Wins, s.WinRate, s.MVP, s.SVP, stats.FormatPlayTime(s.PlayTimeSeconds))
		if sum.RecentMatches > 0 {
			fmt.Fprintf(&b, "Recent matches: %d\n", sum.RecentMatches)
		}

		roles, heroes := Charts(sum)
		for _, c := range []chart.PieChart{roles, heroes} {
			fmt.Fprintf(&b, "%s\n", c.Title)
			for _, line := range c.Legend() {
				fmt.Fprintf(&b, "  %s\n", line)
			}
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteCharts writes roles.svg and heroes.svg into dir.
func WriteCharts(dir string, sum *service.Summary) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	roles, heroes := Charts(sum)
	var written []string
	for name, c := range map[string]chart.PieChart{"roles.svg": roles, "heroes.svg": heroes} {
		path := filepath.Join(dir, name)
		f, err := os.Create(path)
		if err != nil {
			return written, fmt.Errorf("failed to create %s: %w", path, err)
		}
		err = c.Render(f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func orAll(s string) string {
	if s == "" {
		return "all"
	}
	return s
}
