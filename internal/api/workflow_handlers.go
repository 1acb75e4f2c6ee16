package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/taplistapp/taplist-server/internal/domain"
	"github.com/taplistapp/taplist-server/internal/errors"
	"github.com/taplistapp/taplist-server/internal/workflow"
)

func (s *Server) registerWorkflowRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "startAddWorkflow",
		Method:      http.MethodPost,
		Path:        "/api/v1/workflows/add",
		Summary:     "Start add workflow",
		Description: "Opens a guided dialogue that assigns a beverage to a free tap",
		Tags:        []string{"Workflows"},
	}, s.handleStartAdd)

	huma.Register(s.api, huma.Operation{
		OperationID: "startEditWorkflow",
		Method:      http.MethodPost,
		Path:        "/api/v1/workflows/edit",
		Summary:     "Start edit workflow",
		Description: "Opens a guided dialogue that changes one field of an assigned tap",
		Tags:        []string{"Workflows"},
	}, s.handleStartEdit)

	huma.Register(s.api, huma.Operation{
		OperationID: "startDeleteWorkflow",
		Method:      http.MethodPost,
		Path:        "/api/v1/workflows/delete",
		Summary:     "Start delete workflow",
		Description: "Opens a confirmation dialogue that frees an assigned tap",
		Tags:        []string{"Workflows"},
	}, s.handleStartDelete)

	huma.Register(s.api, huma.Operation{
		OperationID: "advanceWorkflow",
		Method:      http.MethodPost,
		Path:        "/api/v1/workflows/{id}/advance",
		Summary:     "Advance workflow",
		Description: "Delivers one operator event to a workflow session",
		Tags:        []string{"Workflows"},
	}, s.handleAdvance)

	huma.Register(s.api, huma.Operation{
		OperationID: "cancelWorkflow",
		Method:      http.MethodPost,
		Path:        "/api/v1/workflows/{id}/cancel",
		Summary:     "Cancel workflow",
		Description: "Discards a workflow session without writing anything",
		Tags:        []string{"Workflows"},
	}, s.handleCancel)
}

// === DTOs ===

// StartWorkflowRequest selects the tap a workflow targets.
type StartWorkflowRequest struct {
	Position int `json:"position" minimum:"1" doc:"Tap position"`
}

// StartWorkflowInput wraps the start request for Huma.
type StartWorkflowInput struct {
	Body StartWorkflowRequest
}

// WorkflowOutput wraps the engine envelope for Huma.
type WorkflowOutput struct {
	Body workflow.Response
}

// EventRequest is the wire form of one operator event. Type selects the
// variant; exactly the matching payload field is read.
type EventRequest struct {
	Type      string `json:"type" enum:"text,choose_source,choose_history,choose_candidate,manual,select_field,confirm" doc:"Event variant"`
	Text      string `json:"text,omitempty" doc:"Free-form text (type=text)"`
	Source    string `json:"source,omitempty" enum:",history,new" doc:"Beverage source (type=choose_source)"`
	HistoryID int64  `json:"history_id,omitempty" doc:"History entry ID (type=choose_history)"`
	Index     *int   `json:"index,omitempty" doc:"Candidate index (type=choose_candidate)"`
	Field     string `json:"field,omitempty" doc:"Field name (type=select_field)"`
	Confirmed *bool  `json:"confirmed,omitempty" doc:"Answer (type=confirm)"`
}

// AdvanceInput wraps an advance request for Huma.
type AdvanceInput struct {
	ID   string `path:"id" doc:"Workflow session ID"`
	Body EventRequest
}

// CancelInput wraps a cancel request for Huma.
type CancelInput struct {
	ID string `path:"id" doc:"Workflow session ID"`
}

// decodeEvent converts the wire form into a typed workflow event. The
// decoding happens once, here; the engine never sees raw operator input.
func decodeEvent(req EventRequest) (workflow.Event, error) {
	switch req.Type {
	case "text":
		return workflow.TextEvent{Text: req.Text}, nil
	case "choose_source":
		return workflow.ChooseSourceEvent{Source: workflow.Source(req.Source)}, nil
	case "choose_history":
		return workflow.ChooseHistoryEvent{ID: req.HistoryID}, nil
	case "choose_candidate":
		if req.Index == nil {
			return nil, errors.Validation("choose_candidate requires an index")
		}
		return workflow.ChooseCandidateEvent{Index: *req.Index}, nil
	case "manual":
		return workflow.ManualEvent{}, nil
	case "select_field":
		return workflow.SelectFieldEvent{Field: domain.Field(req.Field)}, nil
	case "confirm":
		if req.Confirmed == nil {
			return nil, errors.Validation("confirm requires an answer")
		}
		return workflow.ConfirmEvent{Confirmed: *req.Confirmed}, nil
	default:
		return nil, errors.Validationf("unknown event type %q", req.Type)
	}
}

// === Handlers ===

func (s *Server) handleStartAdd(ctx context.Context, input *StartWorkflowInput) (*WorkflowOutput, error) {
	resp, err := s.engine.StartAdd(ctx, input.Body.Position)
	if err != nil {
		return nil, err
	}
	return &WorkflowOutput{Body: *resp}, nil
}

func (s *Server) handleStartEdit(ctx context.Context, input *StartWorkflowInput) (*WorkflowOutput, error) {
	resp, err := s.engine.StartEdit(ctx, input.Body.Position)
	if err != nil {
		return nil, err
	}
	return &WorkflowOutput{Body: *resp}, nil
}

func (s *Server) handleStartDelete(ctx context.Context, input *StartWorkflowInput) (*WorkflowOutput, error) {
	resp, err := s.engine.StartDelete(ctx, input.Body.Position)
	if err != nil {
		return nil, err
	}
	return &WorkflowOutput{Body: *resp}, nil
}

func (s *Server) handleAdvance(ctx context.Context, input *AdvanceInput) (*WorkflowOutput, error) {
	event, err := decodeEvent(input.Body)
	if err != nil {
		return nil, err
	}

	resp, err := s.engine.Advance(ctx, input.ID, event)
	if err != nil {
		return nil, err
	}
	return &WorkflowOutput{Body: *resp}, nil
}

func (s *Server) handleCancel(ctx context.Context, input *CancelInput) (*WorkflowOutput, error) {
	resp, err := s.engine.Cancel(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &WorkflowOutput{Body: *resp}, nil
}
