package service

import (
	"context"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"rivals-tracker/internal/api"
	"rivals-tracker/internal/config"
	"rivals-tracker/internal/domain"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
)

const spidermanPayload = `{
	"player": {"player_name": "Spiderman123", "rank": {"rank": "Gold II"}},
	"heroes_unranked": [
		{"hero_name": "hulk", "matches": 10, "kills": 50, "deaths": 20, "assists": 30, "wins": 6, "play_time": 3600},
		{"hero_name": "iron man", "matches": 30, "kills": 150, "deaths": 60, "assists": 30, "wins": 15, "play_time": 7200}
	]
}`

func newTestService(t *testing.T, historyStatus int) *SummaryService {
	t.Helper()
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/match-history"):
			w.WriteHeader(historyStatus)
			_, _ = w.Write([]byte(`{"match_history":[{"id":1},{"id":2},{"id":3}]}`))
		case r.URL.Path == "/v1/player/Spiderman123":
			_, _ = w.Write([]byte(spidermanPayload))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"Player not found"}`))
		}
	}))
	t.Cleanup(upstream.Close)

	client := api.NewRivalsClient(&config.Config{
		APIKey:          "secret",
		APIVersion:      "v1",
		UpstreamBaseURL: upstream.URL,
	}, zerolog.New(io.Discard))
	return NewSummaryService(client, zerolog.New(io.Discard))
}

func TestGetSummarySpidermanScenario(t *testing.T) {
	svc := newTestService(t, http.StatusOK)

	summary, err := svc.GetSummary(context.Background(), SummaryRequest{Player: "Spiderman123"})
	if err != nil {
		t.Fatalf("get summary failed: %v", err)
	}

	type row struct {
		Label string
		Count float64
		Span  float64
	}
	var got []row
	for _, s := range summary.RoleChart {
		got = append(got, row{s.Label, s.Count, s.EndAngle - s.StartAngle})
	}
	want := []row{{"Vanguard", 10, 90}, {"Duelist", 30, 270}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("role chart mismatch (-want +got):\n%s", diff)
	}
	if math.Abs(summary.RoleChart[1].Percent-75) > 1e-9 {
		t.Fatalf("expected Duelist at 75%%, got %v", summary.RoleChart[1].Percent)
	}

	if len(summary.HeroChart) != 2 || summary.HeroChart[0].Label != "Iron Man" {
		t.Fatalf("expected Iron Man first in hero chart, got %+v", summary.HeroChart)
	}
	if summary.RecentMatches != 3 {
		t.Fatalf("expected 3 recent matches, got %d", summary.RecentMatches)
	}
	if summary.Profile.DisplayName != "Spiderman123" || summary.Profile.RankName != "Gold II" {
		t.Fatalf("unexpected profile %+v", summary.Profile)
	}
	if summary.Stats.Matches != 40 || summary.Stats.Wins != 21 {
		t.Fatalf("unexpected stats %+v", summary.Stats)
	}
}

func TestGetSummaryRoleFilter(t *testing.T) {
	svc := newTestService(t, http.StatusOK)

	summary, err := svc.GetSummary(context.Background(), SummaryRequest{Player: "Spiderman123", Role: "vanguard", Hero: "iron man"})
	if err != nil {
		t.Fatalf("get summary failed: %v", err)
	}
	if summary.Hero != "" {
		t.Fatalf("expected hero of another role to be cleared, got %q", summary.Hero)
	}
	if len(summary.HeroChart) != 1 || summary.HeroChart[0].Label != "Hulk" {
		t.Fatalf("expected only Hulk, got %+v", summary.HeroChart)
	}
	if summary.Stats.Matches != 10 {
		t.Fatalf("expected 10 matches, got %d", summary.Stats.Matches)
	}
	if len(summary.RoleChart) != 2 {
		t.Fatalf("role chart should ignore the filter, got %d slices", len(summary.RoleChart))
	}
}

func TestGetSummaryHistoryFailureIsNotFatal(t *testing.T) {
	svc := newTestService(t, http.StatusInternalServerError)

	summary, err := svc.GetSummary(context.Background(), SummaryRequest{Player: "Spiderman123"})
	if err != nil {
		t.Fatalf("get summary failed: %v", err)
	}
	if summary.RecentMatches != 0 {
		t.Fatalf("expected 0 recent matches, got %d", summary.RecentMatches)
	}
}

func TestGetSummaryErrors(t *testing.T) {
	svc := newTestService(t, http.StatusOK)

	_, err := svc.GetSummary(context.Background(), SummaryRequest{Player: "ghost"})
	ue, ok := domain.AsUpstream(err)
	if !ok || ue.Status != http.StatusNotFound {
		t.Fatalf("expected upstream 404, got %v", err)
	}

	if _, err := svc.GetSummary(context.Background(), SummaryRequest{Player: "  "}); !errors.Is(err, domain.ErrPlayerMissing) {
		t.Fatalf("expected missing player error, got %v", err)
	}

	if _, err := svc.GetSummary(context.Background(), SummaryRequest{Player: "Spiderman123", Role: "Tank"}); !domain.IsValidation(err) {
		t.Fatalf("expected unknown role, got %v", err)
	}
}
