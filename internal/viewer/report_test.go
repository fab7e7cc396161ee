package viewer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"rivals-tracker/internal/api"
	"rivals-tracker/internal/service"
	"rivals-tracker/internal/stats"
)

func spidermanSummary(t *testing.T) *service.Summary {
	t.Helper()
	player, err := api.DecodePlayer([]byte(`{"player":{"player_name":"Spiderman123"},"heroes_unranked":[{"hero_name":"hulk","matches":10,"wins":5},{"hero_name":"iron man","matches":30,"wins":15}]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return service.Build(player, "spiderman123", "v1", false, stats.Filter{})
}

func TestWriteReport(t *testing.T) {
	snap := Snapshot{
		Player:        "spiderman123",
		DataState:     Fresh,
		LockState:     Locked,
		Remaining:     29*time.Minute + 5*time.Second,
		UpdateMessage: UpdateRequestedMessage,
	}

	var b strings.Builder
	if err := WriteReport(&b, snap, spidermanSummary(t)); err != nil {
		t.Fatalf("write report: %v", err)
	}
	out := b.String()

	for _, want := range []string{
		"Spiderman123 [Unranked] No Team",
		"Data: fresh",
		"Update: available in 29:05",
		UpdateRequestedMessage,
		"Mode: unranked  Role: all  Hero: all",
		"Wins 20 (50.0%)",
		"Duelist 30 matches (75.0%)",
		"Iron Man 30 matches (75.0%)",
		"Total: 40 matches",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in report:\n%s", want, out)
		}
	}
}

func TestWriteReportWithoutData(t *testing.T) {
	var b strings.Builder
	_ = WriteReport(&b, Snapshot{Player: "ghost", DataState: Stale, Error: "Player not found"}, nil)
	out := b.String()
	if !strings.Contains(out, "Error: Player not found") || !strings.Contains(out, "Update: available") {
		t.Fatalf("unexpected report:\n%s", out)
	}
	if strings.Contains(out, "KDA") {
		t.Fatalf("expected no stats without data")
	}
}

func TestWriteCharts(t *testing.T) {
	dir := t.TempDir()
	paths, err := WriteCharts(dir, spidermanSummary(t))
	if err != nil {
		t.Fatalf("write charts: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected two files, got %v", paths)
	}
	b, err := os.ReadFile(filepath.Join(dir, "roles.svg"))
	if err != nil {
		t.Fatalf("read roles.svg: %v", err)
	}
	if !strings.Contains(string(b), RoleChartTitle) || strings.Count(string(b), "<path") != 2 {
		t.Fatalf("unexpected roles.svg:\n%s", b)
	}
}
