package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"rivals-tracker/internal/domain"
	"rivals-tracker/internal/service"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
)

const (
	RivalsTrackerPath         = "/rivals.v1.RivalsTracker/"
	GetPlayerSummaryProcedure = "/rivals.v1.RivalsTracker/GetPlayerSummary"
)

type TrackerServer struct {
	summarySvc *service.SummaryService
	logger     zerolog.Logger
}

func NewTrackerServer(summarySvc *service.SummaryService, logger zerolog.Logger) *TrackerServer {
	return &TrackerServer{summarySvc: summarySvc, logger: logger}
}

func (s *TrackerServer) GetPlayerSummary(ctx context.Context, req *connect.Request[service.SummaryRequest]) (*connect.Response[service.Summary], error) {
	start := time.Now()
	defer func() {
		s.logger.Debug().Dur("duration", time.Since(start)).Msg("GetPlayerSummary finished")
	}()

	summary, err := s.summarySvc.GetSummary(ctx, *req.Msg)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(summary), nil
}

// Handler mounts the tracker procedures under RivalsTrackerPath.
func (s *TrackerServer) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(GetPlayerSummaryProcedure, connect.NewUnaryHandler(
		GetPlayerSummaryProcedure,
		s.GetPlayerSummary,
		opts...,
	))
	return RivalsTrackerPath, mux
}

func toConnectError(err error) *connect.Error {
	switch {
	case domain.IsValidation(err):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case domain.IsConfig(err):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case domain.IsNetwork(err):
		return connect.NewError(connect.CodeUnavailable, err)
	}

	if ue, ok := domain.AsUpstream(err); ok {
		code := connect.CodeUnavailable
		switch ue.Status {
		case http.StatusNotFound:
			code = connect.CodeNotFound
		case http.StatusTooManyRequests:
			code = connect.CodeResourceExhausted
		case http.StatusBadRequest:
			code = connect.CodeInvalidArgument
		case http.StatusUnauthorized, http.StatusForbidden:
			code = connect.CodePermissionDenied
		}
		if msg := ue.Message(); msg != "" {
			err = fmt.Errorf("%s: %w", msg, err)
		}
		return connect.NewError(code, err)
	}
	return connect.NewError(connect.CodeInternal, err)
}
