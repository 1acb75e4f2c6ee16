package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/taplistapp/taplist-server/internal/domain"
)

func (s *Server) registerHistoryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listHistory",
		Method:      http.MethodGet,
		Path:        "/api/v1/history",
		Summary:     "List history",
		Description: "Returns history entries ranked by usage, optionally filtered by a search term",
		Tags:        []string{"History"},
	}, s.handleListHistory)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteHistoryEntry",
		Method:      http.MethodDelete,
		Path:        "/api/v1/history/{id}",
		Summary:     "Delete history entry",
		Description: "Removes one history entry; tap assignments are unaffected",
		Tags:        []string{"History"},
	}, s.handleDeleteHistoryEntry)

	huma.Register(s.api, huma.Operation{
		OperationID: "clearHistory",
		Method:      http.MethodDelete,
		Path:        "/api/v1/history",
		Summary:     "Clear history",
		Description: "Removes every history entry",
		Tags:        []string{"History"},
	}, s.handleClearHistory)
}

// === DTOs ===

// ListHistoryInput contains parameters for listing history.
type ListHistoryInput struct {
	Search string `query:"search" doc:"Substring matched against brewery and name"`
	Limit  int    `query:"limit" minimum:"0" maximum:"100" doc:"Maximum entries returned (default 10)"`
}

// ListHistoryResponse contains ranked history entries.
type ListHistoryResponse struct {
	Entries []*domain.HistoryEntry `json:"entries" doc:"Entries ranked by usage count, then recency"`
	Total   int                    `json:"total" doc:"Number of entries returned"`
}

// ListHistoryOutput wraps the history listing for Huma.
type ListHistoryOutput struct {
	Body ListHistoryResponse
}

// DeleteHistoryInput contains parameters for deleting one entry.
type DeleteHistoryInput struct {
	ID int64 `path:"id" doc:"History entry ID"`
}

// ClearHistoryResponse reports how many entries were removed.
type ClearHistoryResponse struct {
	Deleted int `json:"deleted" doc:"Number of entries removed"`
}

// ClearHistoryOutput wraps the clear response for Huma.
type ClearHistoryOutput struct {
	Body ClearHistoryResponse
}

// === Handlers ===

func (s *Server) handleListHistory(ctx context.Context, input *ListHistoryInput) (*ListHistoryOutput, error) {
	var entries []*domain.HistoryEntry
	var err error
	if input.Search != "" {
		entries, err = s.history.Search(ctx, input.Search, input.Limit)
	} else {
		entries, err = s.history.Top(ctx, input.Limit)
	}
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []*domain.HistoryEntry{}
	}
	return &ListHistoryOutput{Body: ListHistoryResponse{Entries: entries, Total: len(entries)}}, nil
}

func (s *Server) handleDeleteHistoryEntry(ctx context.Context, input *DeleteHistoryInput) (*struct{}, error) {
	if err := s.history.Delete(ctx, input.ID); err != nil {
		return nil, err
	}
	return &struct{}{}, nil
}

func (s *Server) handleClearHistory(ctx context.Context, _ *struct{}) (*ClearHistoryOutput, error) {
	deleted, err := s.history.Clear(ctx)
	if err != nil {
		return nil, err
	}
	return &ClearHistoryOutput{Body: ClearHistoryResponse{Deleted: deleted}}, nil
}
