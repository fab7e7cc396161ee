package service

import (
	"context"
	"fmt"
	"strings"

	"rivals-tracker/internal/api"
	"rivals-tracker/internal/chart"
	"rivals-tracker/internal/constants"
	"rivals-tracker/internal/domain"
	"rivals-tracker/internal/stats"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type SummaryRequest struct {
	Player string `json:"player"`
	Ranked bool   `json:"ranked,omitempty"`
	Role   string `json:"role,omitempty"`
	Hero   string `json:"hero,omitempty"`
}

type Summary struct {
	Profile       domain.PlayerProfile `json:"profile"`
	Stats         domain.KDAStats      `json:"stats"`
	RoleChart     []domain.Slice       `json:"role_chart"`
	HeroChart     []domain.Slice       `json:"hero_chart"`
	RecentMatches int                  `json:"recent_matches"`
	Ranked        bool                 `json:"ranked"`
	Role          string               `json:"role,omitempty"`
	Hero          string               `json:"hero,omitempty"`
}

// ParseFilter turns request strings into a stats filter. An empty role means all roles.
func ParseFilter(role, hero string) (stats.Filter, error) {
	f := stats.Filter{Hero: strings.TrimSpace(hero)}
	if strings.TrimSpace(role) == "" {
		return f, nil
	}
	r, ok := domain.ParseRole(role)
	if !ok {
		return stats.Filter{}, &domain.ValidationError{Msg: fmt.Sprintf("unknown role %q", role)}
	}
	return f.SelectRole(r), nil
}

// Build derives every chart and stat block from one player payload.
func Build(player *api.PlayerResponse, requested, apiVersion string, ranked bool, f stats.Filter) *Summary {
	heroes := player.Heroes(ranked)
	return &Summary{
		Profile:   player.Profile(requested, apiVersion),
		Stats:     stats.Compute(heroes, f),
		RoleChart: chart.RoleSlices(heroes),
		HeroChart: chart.HeroSlices(heroes, f.Role),
		Ranked:    ranked,
		Role:      string(f.Role),
		Hero:      f.Hero,
	}
}

type SummaryService struct {
	rivals *api.RivalsClient
	logger zerolog.Logger
}

func NewSummaryService(rivals *api.RivalsClient, logger zerolog.Logger) *SummaryService {
	return &SummaryService{rivals: rivals, logger: logger}
}

// GetSummary fetches the player and its match history concurrently.
// A failed history fetch only zeroes the recent match count.
func (s *SummaryService) GetSummary(ctx context.Context, req SummaryRequest) (*Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	player := strings.TrimSpace(req.Player)
	if player == "" {
		return nil, domain.ErrPlayerMissing
	}
	filter, err := ParseFilter(req.Role, req.Hero)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("player", player).
		Bool("ranked", req.Ranked).
		Str("role", string(filter.Role)).
		Str("hero", filter.Hero).
		Msg("building player summary")

	var (
		profile *api.PlayerResponse
		history *api.MatchHistoryResponse
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		apiCtx, apiCancel := context.WithTimeout(gctx, constants.ExternalAPITimeout)
		defer apiCancel()

		p, err := s.rivals.GetPlayer(apiCtx, player)
		if err != nil {
			return fmt.Errorf("failed to fetch player: %w", err)
		}
		profile = p
		return nil
	})
	g.Go(func() error {
		apiCtx, apiCancel := context.WithTimeout(gctx, constants.ExternalAPITimeout)
		defer apiCancel()

		h, err := s.rivals.GetMatchHistory(apiCtx, player)
		if err != nil {
			s.logger.Warn().Err(err).Str("player", player).Msg("failed to fetch match history")
			return nil
		}
		history = h
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Str("player", player).Msg("failed to build summary")
		return nil, err
	}

	summary := Build(profile, player, s.rivals.Version(), req.Ranked, filter)
	if history != nil {
		summary.RecentMatches = len(history.MatchHistory)
	}
	return summary, nil
}
