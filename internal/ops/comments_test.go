package ops

import (
	"testing"

	"github.com/tetherdocs/tether/internal/errors"
)

func TestAddComment(t *testing.T) {
	env, _ := testEnv(t)
	mustSync(t, env, "doc.md", "# Doc\nthe exact target\nmore text")

	id := mustComment(t, env, "doc.md", "exact target", "what does this mean")
	if id == "" {
		t.Fatal("empty comment id")
	}

	out, err := ListComments(env, ListCommentsInput{Path: "doc.md"})
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Comments) != 1 {
		t.Fatalf("got %d comments, want 1", len(out.Comments))
	}
	c := out.Comments[0]
	if c.CommentID != id || c.TargetText != "exact target" {
		t.Errorf("got id=%s target=%q", c.CommentID, c.TargetText)
	}
	if c.LineHint != 2 {
		t.Errorf("line_hint = %d, want 2", c.LineHint)
	}
	if c.Status != "open" || c.Orphaned {
		t.Errorf("new comment: status=%s orphaned=%v", c.Status, c.Orphaned)
	}
}

func TestAddComment_Validation(t *testing.T) {
	env, _ := testEnv(t)
	mustSync(t, env, "doc.md", "content here")

	tests := []struct {
		name  string
		input AddCommentInput
	}{
		{"missing path", AddCommentInput{TargetText: "content", Message: "m", Author: "a"}},
		{"missing target", AddCommentInput{Path: "doc.md", Message: "m", Author: "a"}},
		{"missing message", AddCommentInput{Path: "doc.md", TargetText: "content", Author: "a"}},
		{"missing author", AddCommentInput{Path: "doc.md", TargetText: "content", Message: "m"}},
		{"target not in content", AddCommentInput{Path: "doc.md", TargetText: "absent", Message: "m", Author: "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AddComment(env, tt.input)
			if !errors.Is(err, errors.ErrInvalidRequest) {
				t.Errorf("error = %v, want INVALID_REQUEST", err)
			}
		})
	}
}

func TestAddComment_UnknownArtifact(t *testing.T) {
	env, _ := testEnv(t)
	_, err := AddComment(env, AddCommentInput{
		Path: "nope.md", TargetText: "x", Message: "m", Author: "a",
	})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("error = %v, want NOT_FOUND", err)
	}
}

func TestAddComment_DuplicateTargetTakesEarliest(t *testing.T) {
	env, _ := testEnv(t)
	mustSync(t, env, "doc.md", "dup\nmiddle\ndup\n")

	mustComment(t, env, "doc.md", "dup", "note")

	out, err := ListComments(env, ListCommentsInput{Path: "doc.md"})
	if err != nil {
		t.Fatal(err)
	}
	if got := out.Comments[0].LineHint; got != 1 {
		t.Errorf("line_hint = %d, want 1 (earliest occurrence)", got)
	}
}

func TestListComments_Filters(t *testing.T) {
	env, _ := testEnv(t)
	mustSync(t, env, "doc.md", "one\ntwo\nthree")
	mustComment(t, env, "doc.md", "one", "first")
	id2 := mustComment(t, env, "doc.md", "two", "second")
	if _, err := ResolveComment(env, ResolveCommentInput{CommentID: id2, Resolver: "alice"}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		status string
		want   int
	}{
		{"", 2},
		{FilterAll, 2},
		{FilterOpen, 1},
		{FilterResolved, 1},
	}
	for _, tt := range tests {
		out, err := ListComments(env, ListCommentsInput{Path: "doc.md", Status: tt.status})
		if err != nil {
			t.Fatalf("status=%q error = %v", tt.status, err)
		}
		if len(out.Comments) != tt.want {
			t.Errorf("status=%q returned %d comments, want %d", tt.status, len(out.Comments), tt.want)
		}
	}

	_, err := ListComments(env, ListCommentsInput{Path: "doc.md", Status: "bogus"})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("bogus status error = %v, want INVALID_REQUEST", err)
	}
}

func TestListComments_CreationOrder(t *testing.T) {
	env, _ := testEnv(t)
	mustSync(t, env, "doc.md", "a\nb\nc")
	first := mustComment(t, env, "doc.md", "c", "latest line, earliest comment")
	second := mustComment(t, env, "doc.md", "a", "earliest line, latest comment")

	out, err := ListComments(env, ListCommentsInput{Path: "doc.md"})
	if err != nil {
		t.Fatal(err)
	}
	if out.Comments[0].CommentID != first || out.Comments[1].CommentID != second {
		t.Error("comments should be ordered by creation, not by position in content")
	}
}

func TestResolveComment(t *testing.T) {
	env, _ := testEnv(t)
	mustSync(t, env, "doc.md", "target here")
	id := mustComment(t, env, "doc.md", "target", "note")

	out, err := ResolveComment(env, ResolveCommentInput{CommentID: id, Resolver: "alice"})
	if err != nil {
		t.Fatalf("ResolveComment() error = %v", err)
	}
	if !out.Resolved {
		t.Error("resolved = false")
	}

	listed, err := ListComments(env, ListCommentsInput{Path: "doc.md", Status: FilterResolved})
	if err != nil {
		t.Fatal(err)
	}
	c := listed.Comments[0]
	if c.ResolvedBy == nil || *c.ResolvedBy != "alice" {
		t.Errorf("resolved_by = %v, want alice", c.ResolvedBy)
	}
	if c.ResolvedAt == nil {
		t.Error("resolved_at not set")
	}
}

func TestResolveComment_Twice(t *testing.T) {
	env, _ := testEnv(t)
	mustSync(t, env, "doc.md", "target here")
	id := mustComment(t, env, "doc.md", "target", "note")

	if _, err := ResolveComment(env, ResolveCommentInput{CommentID: id, Resolver: "alice"}); err != nil {
		t.Fatal(err)
	}
	_, err := ResolveComment(env, ResolveCommentInput{CommentID: id, Resolver: "bob"})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("second resolve error = %v, want INVALID_REQUEST", err)
	}

	// First resolution stands
	listed, err := ListComments(env, ListCommentsInput{Path: "doc.md"})
	if err != nil {
		t.Fatal(err)
	}
	if *listed.Comments[0].ResolvedBy != "alice" {
		t.Error("second resolve must not overwrite the first")
	}
}

func TestResolveComment_Validation(t *testing.T) {
	env, _ := testEnv(t)

	_, err := ResolveComment(env, ResolveCommentInput{Resolver: "a"})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("missing comment_id = %v, want INVALID_REQUEST", err)
	}
	_, err = ResolveComment(env, ResolveCommentInput{CommentID: "c1"})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("missing resolver = %v, want INVALID_REQUEST", err)
	}
	_, err = ResolveComment(env, ResolveCommentInput{CommentID: "no-such", Resolver: "a"})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("unknown comment = %v, want NOT_FOUND", err)
	}
}

func TestResolveComment_WrongRun(t *testing.T) {
	env, _ := testEnv(t)
	if _, err := Sync(env, SyncInput{RunID: "run-a", Path: "doc.md", Content: "target"}); err != nil {
		t.Fatal(err)
	}
	out, err := AddComment(env, AddCommentInput{
		RunID: "run-a", Path: "doc.md", TargetText: "target", Message: "m", Author: "a",
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = ResolveComment(env, ResolveCommentInput{RunID: "run-b", CommentID: out.CommentID, Resolver: "x"})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("cross-run resolve = %v, want NOT_FOUND", err)
	}
}
