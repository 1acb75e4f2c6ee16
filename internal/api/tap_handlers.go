package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/taplistapp/taplist-server/internal/domain"
)

func (s *Server) registerTapRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTaps",
		Method:      http.MethodGet,
		Path:        "/api/v1/taps",
		Summary:     "List taps",
		Description: "Returns all tap assignments ordered by position",
		Tags:        []string{"Taps"},
	}, s.handleListTaps)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTap",
		Method:      http.MethodGet,
		Path:        "/api/v1/taps/{position}",
		Summary:     "Get tap",
		Description: "Returns the assignment at one position",
		Tags:        []string{"Taps"},
	}, s.handleGetTap)

	huma.Register(s.api, huma.Operation{
		OperationID: "listFreePositions",
		Method:      http.MethodGet,
		Path:        "/api/v1/taps/positions/free",
		Summary:     "List free positions",
		Description: "Returns the unassigned tap positions",
		Tags:        []string{"Taps"},
	}, s.handleListFreePositions)
}

// === DTOs ===

// ListTapsResponse contains all tap assignments.
type ListTapsResponse struct {
	Taps  []*domain.TapAssignment `json:"taps" doc:"Assignments ordered by position"`
	Total int                     `json:"total" doc:"Number of assigned taps"`
}

// ListTapsOutput wraps the list taps response for Huma.
type ListTapsOutput struct {
	Body ListTapsResponse
}

// GetTapInput contains parameters for getting a tap.
type GetTapInput struct {
	Position int `path:"position" minimum:"1" doc:"Tap position"`
}

// TapOutput wraps a single tap assignment for Huma.
type TapOutput struct {
	Body domain.TapAssignment
}

// FreePositionsResponse contains the unassigned positions.
type FreePositionsResponse struct {
	Positions []int `json:"positions" doc:"Free tap positions in ascending order"`
	TapCount  int   `json:"tap_count" doc:"Number of physical taps"`
}

// FreePositionsOutput wraps the free positions response for Huma.
type FreePositionsOutput struct {
	Body FreePositionsResponse
}

// === Handlers ===

func (s *Server) handleListTaps(ctx context.Context, _ *struct{}) (*ListTapsOutput, error) {
	taps, err := s.taps.List(ctx)
	if err != nil {
		return nil, err
	}
	if taps == nil {
		taps = []*domain.TapAssignment{}
	}
	return &ListTapsOutput{Body: ListTapsResponse{Taps: taps, Total: len(taps)}}, nil
}

func (s *Server) handleGetTap(ctx context.Context, input *GetTapInput) (*TapOutput, error) {
	tap, err := s.taps.Get(ctx, input.Position)
	if err != nil {
		return nil, err
	}
	return &TapOutput{Body: *tap}, nil
}

func (s *Server) handleListFreePositions(ctx context.Context, _ *struct{}) (*FreePositionsOutput, error) {
	positions, err := s.taps.FreePositions(ctx)
	if err != nil {
		return nil, err
	}
	return &FreePositionsOutput{Body: FreePositionsResponse{
		Positions: positions,
		TapCount:  s.taps.TapCount(),
	}}, nil
}
