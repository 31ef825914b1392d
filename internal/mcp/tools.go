package mcp

import "github.com/mark3labs/mcp-go/mcp"

// Tool definitions for the artifact engine. Every operation takes a
// run_id (defaulted to "default") so independent runs stay isolated.

var syncToolDef = mcp.NewTool("artifact_sync",
	mcp.WithDescription("Submit a full content snapshot for an artifact path. Registers unknown paths, short-circuits unchanged content, otherwise commits a new version and relocates open comment anchors."),
	mcp.WithString("run_id", mcp.Description("Run scope (default: \"default\")")),
	mcp.WithString("path", mcp.Required(), mcp.Description("Artifact path")),
	mcp.WithString("content", mcp.Description("Full document content snapshot")),
)

var moveToolDef = mcp.NewTool("artifact_move",
	mcp.WithDescription("Move an artifact to a new path, preserving identity, version history, and comments. With refs_only the file must already exist at the new path."),
	mcp.WithString("run_id", mcp.Description("Run scope (default: \"default\")")),
	mcp.WithString("old_path", mcp.Required(), mcp.Description("Current artifact path")),
	mcp.WithString("new_path", mcp.Required(), mcp.Description("New artifact path")),
	mcp.WithBoolean("refs_only", mcp.Description("Only update the stored path; the file was already moved")),
)

var addCommentToolDef = mcp.NewTool("artifact_add_comment",
	mcp.WithDescription("Add a comment anchored to an exact passage of the artifact's latest content."),
	mcp.WithString("run_id", mcp.Description("Run scope (default: \"default\")")),
	mcp.WithString("path", mcp.Required(), mcp.Description("Artifact path")),
	mcp.WithString("target_text", mcp.Required(), mcp.Description("Exact text passage the comment attaches to")),
	mcp.WithString("message", mcp.Required(), mcp.Description("Comment body")),
	mcp.WithString("author", mcp.Required(), mcp.Description("Author identity")),
)

var listCommentsToolDef = mcp.NewTool("artifact_list_comments",
	mcp.WithDescription("List an artifact's comments, optionally filtered by status."),
	mcp.WithString("run_id", mcp.Description("Run scope (default: \"default\")")),
	mcp.WithString("path", mcp.Required(), mcp.Description("Artifact path")),
	mcp.WithString("status", mcp.Description("Filter: open|resolved|all (default: all)")),
)

var resolveCommentToolDef = mcp.NewTool("artifact_resolve_comment",
	mcp.WithDescription("Resolve an open comment. Resolution happens exactly once and is never reversed."),
	mcp.WithString("run_id", mcp.Description("Run scope (default: \"default\")")),
	mcp.WithString("comment_id", mcp.Required(), mcp.Description("Comment id")),
	mcp.WithString("resolver", mcp.Required(), mcp.Description("Resolver identity")),
)

var listVersionsToolDef = mcp.NewTool("artifact_list_versions",
	mcp.WithDescription("List an artifact's version history ascending by version."),
	mcp.WithString("run_id", mcp.Description("Run scope (default: \"default\")")),
	mcp.WithString("path", mcp.Required(), mcp.Description("Artifact path")),
)

var getVersionToolDef = mcp.NewTool("artifact_get_version",
	mcp.WithDescription("Get the full content of one specific version of an artifact."),
	mcp.WithString("run_id", mcp.Description("Run scope (default: \"default\")")),
	mcp.WithString("path", mcp.Required(), mcp.Description("Artifact path")),
	mcp.WithNumber("version", mcp.Required(), mcp.Description("Version number (1-based)")),
)

var listArtifactsToolDef = mcp.NewTool("artifact_list",
	mcp.WithDescription("List all tracked artifacts in a run with present/missing status and comment/version counts."),
	mcp.WithString("run_id", mcp.Description("Run scope (default: \"default\")")),
)
