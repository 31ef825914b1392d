package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tetherdocs/tether/internal/config"
	"github.com/tetherdocs/tether/internal/db"
	"github.com/tetherdocs/tether/internal/ops"
)

// testHandlers creates handlers backed by a temporary database.
func testHandlers(t *testing.T) *Handlers {
	t.Helper()

	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("failed to init db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	return NewHandlers(ops.NewEnv(database, config.DefaultConfig()))
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

// decodeResult unmarshals a tool result's text payload into out.
func decodeResult(t *testing.T, result *mcp.CallToolResult, out any) {
	t.Helper()
	text := result.Content[0].(mcp.TextContent).Text
	if err := json.Unmarshal([]byte(text), out); err != nil {
		t.Fatalf("failed to decode result %q: %v", text, err)
	}
}

// errorCode extracts the error code from an error result payload.
func errorCode(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	decodeResult(t, result, &payload)
	return payload.Error.Code
}

func TestHandleSync(t *testing.T) {
	h := testHandlers(t)
	ctx := context.Background()

	result, err := h.HandleSync(ctx, makeRequest(map[string]any{
		"path":    "docs/plan.md",
		"content": "# Plan\nstep one\nstep two",
	}))
	if err != nil {
		t.Fatalf("HandleSync() error = %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %v", result.Content)
	}

	var out ops.SyncOutput
	decodeResult(t, result, &out)
	if out.Status != ops.StatusRegistered || out.Version != 1 {
		t.Errorf("got status=%s version=%d", out.Status, out.Version)
	}
	if out.Title != "Plan" {
		t.Errorf("title = %q, want Plan", out.Title)
	}

	// Identical content again: unchanged
	result, err = h.HandleSync(ctx, makeRequest(map[string]any{
		"path":    "docs/plan.md",
		"content": "# Plan\nstep one\nstep two",
	}))
	if err != nil {
		t.Fatal(err)
	}
	decodeResult(t, result, &out)
	if out.Status != ops.StatusUnchanged {
		t.Errorf("status = %s, want unchanged", out.Status)
	}
}

func TestHandleSync_MissingPath(t *testing.T) {
	h := testHandlers(t)

	result, err := h.HandleSync(context.Background(), makeRequest(map[string]any{
		"content": "body",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Fatal("expected error result")
	}
	if code := errorCode(t, result); code != "INVALID_REQUEST" {
		t.Errorf("code = %s, want INVALID_REQUEST", code)
	}
}

func TestHandleAddAndListComments(t *testing.T) {
	h := testHandlers(t)
	ctx := context.Background()

	syncResult, err := h.HandleSync(ctx, makeRequest(map[string]any{
		"path":    "doc.md",
		"content": "alpha\nthe target\nomega",
	}))
	if err != nil || syncResult.IsError {
		t.Fatalf("sync failed: %v %v", err, syncResult)
	}

	addResult, err := h.HandleAddComment(ctx, makeRequest(map[string]any{
		"path":        "doc.md",
		"target_text": "the target",
		"message":     "please expand",
		"author":      "alice",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if addResult.IsError {
		t.Fatalf("unexpected error result: %v", addResult.Content)
	}
	var addOut ops.AddCommentOutput
	decodeResult(t, addResult, &addOut)
	if addOut.CommentID == "" {
		t.Fatal("empty comment_id")
	}

	listResult, err := h.HandleListComments(ctx, makeRequest(map[string]any{
		"path":   "doc.md",
		"status": "open",
	}))
	if err != nil {
		t.Fatal(err)
	}
	var listOut ops.ListCommentsOutput
	decodeResult(t, listResult, &listOut)
	if len(listOut.Comments) != 1 {
		t.Fatalf("got %d comments, want 1", len(listOut.Comments))
	}
	if listOut.Comments[0].CommentID != addOut.CommentID {
		t.Error("listed comment id mismatch")
	}
}

func TestHandleResolveComment(t *testing.T) {
	h := testHandlers(t)
	ctx := context.Background()

	if r, err := h.HandleSync(ctx, makeRequest(map[string]any{
		"path": "doc.md", "content": "target line",
	})); err != nil || r.IsError {
		t.Fatalf("sync failed: %v %v", err, r)
	}
	addResult, err := h.HandleAddComment(ctx, makeRequest(map[string]any{
		"path": "doc.md", "target_text": "target", "message": "m", "author": "a",
	}))
	if err != nil {
		t.Fatal(err)
	}
	var addOut ops.AddCommentOutput
	decodeResult(t, addResult, &addOut)

	result, err := h.HandleResolveComment(ctx, makeRequest(map[string]any{
		"comment_id": addOut.CommentID,
		"resolver":   "bob",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %v", result.Content)
	}

	// Resolving again is an error
	result, err = h.HandleResolveComment(ctx, makeRequest(map[string]any{
		"comment_id": addOut.CommentID,
		"resolver":   "carol",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Fatal("double resolve should be an error result")
	}
	if code := errorCode(t, result); code != "INVALID_REQUEST" {
		t.Errorf("code = %s, want INVALID_REQUEST", code)
	}
}

func TestHandleMove(t *testing.T) {
	h := testHandlers(t)
	ctx := context.Background()

	if r, err := h.HandleSync(ctx, makeRequest(map[string]any{
		"path": "a.md", "content": "body",
	})); err != nil || r.IsError {
		t.Fatalf("sync failed: %v %v", err, r)
	}

	// The real filesystem has no a.md, so a plain move fails UNAVAILABLE.
	result, err := h.HandleMove(ctx, makeRequest(map[string]any{
		"old_path": "a.md",
		"new_path": "b.md",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Fatal("expected error result for missing file")
	}
	if code := errorCode(t, result); code != "UNAVAILABLE" {
		t.Errorf("code = %s, want UNAVAILABLE", code)
	}
}

func TestHandleVersions(t *testing.T) {
	h := testHandlers(t)
	ctx := context.Background()

	for _, content := range []string{"# V1\none", "# V2\none\ntwo"} {
		if r, err := h.HandleSync(ctx, makeRequest(map[string]any{
			"path": "doc.md", "content": content,
		})); err != nil || r.IsError {
			t.Fatalf("sync failed: %v %v", err, r)
		}
	}

	listResult, err := h.HandleListVersions(ctx, makeRequest(map[string]any{"path": "doc.md"}))
	if err != nil {
		t.Fatal(err)
	}
	var listOut ops.ListVersionsOutput
	decodeResult(t, listResult, &listOut)
	if len(listOut.Versions) != 2 {
		t.Fatalf("got %d versions, want 2", len(listOut.Versions))
	}

	getResult, err := h.HandleGetVersion(ctx, makeRequest(map[string]any{
		"path":    "doc.md",
		"version": 1,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if getResult.IsError {
		t.Fatalf("unexpected error result: %v", getResult.Content)
	}
	var getOut ops.GetVersionOutput
	decodeResult(t, getResult, &getOut)
	if getOut.Content != "# V1\none" || getOut.Title != "V1" {
		t.Errorf("v1 snapshot = %q / %q", getOut.Title, getOut.Content)
	}
}

func TestHandleGetVersion_NotFound(t *testing.T) {
	h := testHandlers(t)

	result, err := h.HandleGetVersion(context.Background(), makeRequest(map[string]any{
		"path":    "nope.md",
		"version": 1,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Fatal("expected error result")
	}
	if code := errorCode(t, result); code != "NOT_FOUND" {
		t.Errorf("code = %s, want NOT_FOUND", code)
	}
}

func TestHandleListArtifacts(t *testing.T) {
	h := testHandlers(t)
	ctx := context.Background()

	for _, path := range []string{"b.md", "a.md"} {
		if r, err := h.HandleSync(ctx, makeRequest(map[string]any{
			"path": path, "content": "body of " + path,
		})); err != nil || r.IsError {
			t.Fatalf("sync failed: %v %v", err, r)
		}
	}

	result, err := h.HandleListArtifacts(ctx, makeRequest(map[string]any{}))
	if err != nil {
		t.Fatal(err)
	}
	var out ops.ListArtifactsOutput
	decodeResult(t, result, &out)
	if len(out.Artifacts) != 2 {
		t.Fatalf("got %d artifacts, want 2", len(out.Artifacts))
	}
	if out.Artifacts[0].Path != "a.md" {
		t.Errorf("ordering = %s first, want a.md", out.Artifacts[0].Path)
	}
	// Paths are not on disk, so the registry reports them missing
	if out.Artifacts[0].Status != ops.ArtifactStatusMissing {
		t.Errorf("status = %s, want missing", out.Artifacts[0].Status)
	}
}

func TestValidateDisabledTools(t *testing.T) {
	unknown := ValidateDisabledTools([]string{"artifact_sync", "bogus_tool"})
	if len(unknown) != 1 || unknown[0] != "bogus_tool" {
		t.Errorf("unknown = %v, want [bogus_tool]", unknown)
	}
}

func TestToolRegistry_Complete(t *testing.T) {
	want := []string{
		"artifact_sync", "artifact_move", "artifact_add_comment",
		"artifact_list_comments", "artifact_resolve_comment",
		"artifact_list_versions", "artifact_get_version", "artifact_list",
	}
	names := AllToolNames()
	if len(names) != len(want) {
		t.Fatalf("registry has %d tools, want %d", len(names), len(want))
	}
	for _, name := range want {
		if _, ok := toolRegistry[name]; !ok {
			t.Errorf("tool %s missing from registry", name)
		}
	}
}
