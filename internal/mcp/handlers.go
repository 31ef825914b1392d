package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tetherdocs/tether/internal/errors"
	"github.com/tetherdocs/tether/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	env *ops.Env
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(env *ops.Env) *Handlers {
	return &Handlers{env: env}
}

// Request types for each tool

// SyncRequest represents the arguments for artifact_sync.
type SyncRequest struct {
	RunID   string `json:"run_id,omitempty"`
	Path    string `json:"path"`
	Content string `json:"content,omitempty"`
}

// MoveRequest represents the arguments for artifact_move.
type MoveRequest struct {
	RunID    string `json:"run_id,omitempty"`
	OldPath  string `json:"old_path"`
	NewPath  string `json:"new_path"`
	RefsOnly bool   `json:"refs_only,omitempty"`
}

// AddCommentRequest represents the arguments for artifact_add_comment.
type AddCommentRequest struct {
	RunID      string `json:"run_id,omitempty"`
	Path       string `json:"path"`
	TargetText string `json:"target_text"`
	Message    string `json:"message"`
	Author     string `json:"author"`
}

// ListCommentsRequest represents the arguments for artifact_list_comments.
type ListCommentsRequest struct {
	RunID  string `json:"run_id,omitempty"`
	Path   string `json:"path"`
	Status string `json:"status,omitempty"`
}

// ResolveCommentRequest represents the arguments for artifact_resolve_comment.
type ResolveCommentRequest struct {
	RunID     string `json:"run_id,omitempty"`
	CommentID string `json:"comment_id"`
	Resolver  string `json:"resolver"`
}

// ListVersionsRequest represents the arguments for artifact_list_versions.
type ListVersionsRequest struct {
	RunID string `json:"run_id,omitempty"`
	Path  string `json:"path"`
}

// GetVersionRequest represents the arguments for artifact_get_version.
type GetVersionRequest struct {
	RunID   string `json:"run_id,omitempty"`
	Path    string `json:"path"`
	Version int64  `json:"version"`
}

// ListArtifactsRequest represents the arguments for artifact_list.
type ListArtifactsRequest struct {
	RunID string `json:"run_id,omitempty"`
}

// Handler implementations

// HandleSync handles the artifact_sync tool call.
func (h *Handlers) HandleSync(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SyncRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Sync(h.env, ops.SyncInput{
		RunID:   input.RunID,
		Path:    input.Path,
		Content: input.Content,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleMove handles the artifact_move tool call.
func (h *Handlers) HandleMove(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[MoveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Move(h.env, ops.MoveInput{
		RunID:    input.RunID,
		OldPath:  input.OldPath,
		NewPath:  input.NewPath,
		RefsOnly: input.RefsOnly,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleAddComment handles the artifact_add_comment tool call.
func (h *Handlers) HandleAddComment(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AddCommentRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.AddComment(h.env, ops.AddCommentInput{
		RunID:      input.RunID,
		Path:       input.Path,
		TargetText: input.TargetText,
		Message:    input.Message,
		Author:     input.Author,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleListComments handles the artifact_list_comments tool call.
func (h *Handlers) HandleListComments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListCommentsRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ListComments(h.env, ops.ListCommentsInput{
		RunID:  input.RunID,
		Path:   input.Path,
		Status: input.Status,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleResolveComment handles the artifact_resolve_comment tool call.
func (h *Handlers) HandleResolveComment(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ResolveCommentRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ResolveComment(h.env, ops.ResolveCommentInput{
		RunID:     input.RunID,
		CommentID: input.CommentID,
		Resolver:  input.Resolver,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleListVersions handles the artifact_list_versions tool call.
func (h *Handlers) HandleListVersions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListVersionsRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ListVersions(h.env, ops.ListVersionsInput{
		RunID: input.RunID,
		Path:  input.Path,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleGetVersion handles the artifact_get_version tool call.
func (h *Handlers) HandleGetVersion(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GetVersionRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.GetVersion(h.env, ops.GetVersionInput{
		RunID:   input.RunID,
		Path:    input.Path,
		Version: input.Version,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleListArtifacts handles the artifact_list tool call.
func (h *Handlers) HandleListArtifacts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListArtifactsRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ListArtifacts(h.env, ops.ListArtifactsInput{
		RunID: input.RunID,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if tErr, ok := err.(*errors.TetherError); ok {
		errorObj := map[string]any{
			"code":    tErr.Code,
			"message": tErr.Message,
			"status":  tErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if tErr.Code != errors.ErrInternal && tErr.Details != nil {
			errorObj["details"] = tErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
