package main

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/tetherdocs/tether/internal/config"
	"github.com/tetherdocs/tether/internal/errors"
	"github.com/tetherdocs/tether/internal/ops"
)

// newCLIEnv builds the shared operation environment for CLI commands.
func newCLIEnv(database *sql.DB, cfg *config.Config) *ops.Env {
	return ops.NewEnv(database, cfg)
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(env *ops.Env) *cli.App {
	app := &cli.App{
		Name:    "tether",
		Usage:   "Artifact version store with text-anchored comments",
		Version: Version,
		Commands: []*cli.Command{
			syncCmd(env),
			moveCmd(env),
			commentCmd(env),
			commentsCmd(env),
			resolveCmd(env),
			versionsCmd(env),
			showCmd(env),
			listCmd(env),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// runFlag is shared by every command.
func runFlag() *cli.StringFlag {
	return &cli.StringFlag{Name: "run", Aliases: []string{"r"}, Value: "default", Usage: "Run scope"}
}

// identityFlag names the acting author/resolver, defaulting to $TETHER_AUTHOR.
func identityFlag(name, usage string) *cli.StringFlag {
	return &cli.StringFlag{Name: name, Value: os.Getenv("TETHER_AUTHOR"), Usage: usage}
}

// syncCmd creates the sync command. The CLI reads the file itself; the
// engine only ever receives content as input.
func syncCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:      "sync",
		Usage:     "Sync a file (register new or update existing)",
		ArgsUsage: "<path>",
		Flags:     []cli.Flag{runFlag()},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("path argument is required"))
			}
			path := c.Args().First()

			data, err := os.ReadFile(path)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: file not found: %s", path), 1)
			}

			output, err := ops.Sync(env, ops.SyncInput{
				RunID:   c.String("run"),
				Path:    path,
				Content: string(data),
			})
			if err != nil {
				return outputError(err)
			}

			switch output.Status {
			case ops.StatusRegistered:
				fmt.Printf("Artifact registered: %s\n", path)
				fmt.Printf("  Title: %s\n", output.Title)
				fmt.Printf("  Version: %d\n", output.Version)
			case ops.StatusSynced:
				fmt.Printf("Artifact synced: %s\n", path)
				fmt.Printf("  Title: %s\n", output.Title)
				fmt.Printf("  Version: %d\n", output.Version)
				if output.CommentsRelocated > 0 || output.CommentsOrphaned > 0 {
					fmt.Printf("  %d comments relocated, %d orphaned\n",
						output.CommentsRelocated, output.CommentsOrphaned)
				}
			default:
				fmt.Printf("Status: %s\n", output.Status)
			}
			return nil
		},
	}
}

// moveCmd creates the move command.
func moveCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:      "move",
		Usage:     "Move an artifact to a new path (preserves comments)",
		ArgsUsage: "<old_path> <new_path>",
		Flags: []cli.Flag{
			runFlag(),
			&cli.BoolFlag{Name: "refs-only", Usage: "Only update references; the file was already moved"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return outputError(errors.NewInvalidRequest("old_path and new_path arguments are required"))
			}
			oldPath, newPath := c.Args().Get(0), c.Args().Get(1)
			refsOnly := c.Bool("refs-only")

			if refsOnly {
				if _, err := os.Stat(newPath); err != nil {
					fmt.Fprintf(os.Stderr, "error: new file not found: %s\n", newPath)
					fmt.Fprintln(os.Stderr, "When using --refs-only, the file must already exist at the new location.")
					return cli.Exit("", 1)
				}
			} else {
				if _, err := os.Stat(oldPath); err != nil {
					fmt.Fprintf(os.Stderr, "error: source file not found: %s\n", oldPath)
					fmt.Fprintln(os.Stderr, "Use --refs-only if the file was already moved.")
					return cli.Exit("", 1)
				}
			}

			output, err := ops.Move(env, ops.MoveInput{
				RunID:    c.String("run"),
				OldPath:  oldPath,
				NewPath:  newPath,
				RefsOnly: refsOnly,
			})
			if err != nil {
				if errors.Is(err, errors.ErrNotFound) {
					fmt.Fprintf(os.Stderr, "error: %v\n", err)
					fmt.Fprintln(os.Stderr)
					fmt.Fprintln(os.Stderr, "The artifact must be synced first. Run:")
					fmt.Fprintf(os.Stderr, "  tether sync %s\n", oldPath)
					return cli.Exit("", 1)
				}
				return outputError(err)
			}

			if output.FileMoved {
				fmt.Printf("File moved: %s → %s\n", oldPath, newPath)
			}
			fmt.Printf("Artifact refs updated: %s → %s\n", oldPath, newPath)
			fmt.Printf("  %d comments preserved\n", output.CommentsPreserved)
			return nil
		},
	}
}

// commentCmd creates the comment command.
func commentCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:      "comment",
		Usage:     "Add a comment anchored to specific text",
		ArgsUsage: "<path> <target_text> <message>",
		Flags: []cli.Flag{
			runFlag(),
			identityFlag("author", "Comment author identity"),
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 3 {
				return outputError(errors.NewInvalidRequest("path, target_text, and message arguments are required"))
			}

			output, err := ops.AddComment(env, ops.AddCommentInput{
				RunID:      c.String("run"),
				Path:       c.Args().Get(0),
				TargetText: c.Args().Get(1),
				Message:    c.Args().Get(2),
				Author:     c.String("author"),
			})
			if err != nil {
				return outputError(err)
			}

			fmt.Printf("Comment added: %s\n", output.CommentID)
			return nil
		},
	}
}

// commentsCmd creates the comments command.
func commentsCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:      "comments",
		Usage:     "List comments on an artifact",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			runFlag(),
			&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Value: "all", Usage: "Filter: open|resolved|all"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("path argument is required"))
			}

			output, err := ops.ListComments(env, ops.ListCommentsInput{
				RunID:  c.String("run"),
				Path:   c.Args().First(),
				Status: c.String("status"),
			})
			if err != nil {
				return outputError(err)
			}

			if len(output.Comments) == 0 {
				fmt.Println("No comments.")
				return nil
			}

			for _, cm := range output.Comments {
				status := cm.Status
				if cm.Orphaned {
					status += ", orphaned"
				}
				fmt.Printf("[%s] %q - %s (%s)\n", cm.CommentID, truncate(cm.TargetText, 30), cm.Message, status)
			}
			return nil
		},
	}
}

// resolveCmd creates the resolve command.
func resolveCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:      "resolve",
		Usage:     "Resolve a comment",
		ArgsUsage: "<comment_id>",
		Flags: []cli.Flag{
			runFlag(),
			identityFlag("resolver", "Resolver identity"),
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("comment_id argument is required"))
			}
			commentID := c.Args().First()

			_, err := ops.ResolveComment(env, ops.ResolveCommentInput{
				RunID:     c.String("run"),
				CommentID: commentID,
				Resolver:  c.String("resolver"),
			})
			if err != nil {
				return outputError(err)
			}

			fmt.Printf("Comment resolved: %s\n", commentID)
			return nil
		},
	}
}

// versionsCmd creates the versions command.
func versionsCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:      "versions",
		Usage:     "List all versions of an artifact",
		ArgsUsage: "<path>",
		Flags:     []cli.Flag{runFlag()},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("path argument is required"))
			}

			output, err := ops.ListVersions(env, ops.ListVersionsInput{
				RunID: c.String("run"),
				Path:  c.Args().First(),
			})
			if err != nil {
				return outputError(err)
			}

			if len(output.Versions) == 0 {
				fmt.Println("No versions found. Run `tether sync` first.")
				return nil
			}

			fmt.Printf("%-8s %-20s CHANGES\n", "VERSION", "TIMESTAMP")
			for _, v := range output.Versions {
				changes := fmt.Sprintf("+%d -%d lines", v.LinesAdded, v.LinesRemoved)
				if v.Version == 1 {
					changes = "(initial)"
				}
				fmt.Printf("%-8d %-20s %s\n", v.Version, formatTimestamp(v.SyncedAt), changes)
			}
			return nil
		},
	}
}

// showCmd creates the show command.
func showCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show content of a specific version",
		ArgsUsage: "<path> <version>",
		Flags:     []cli.Flag{runFlag()},
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return outputError(errors.NewInvalidRequest("path and version arguments are required"))
			}
			version, err := strconv.ParseInt(c.Args().Get(1), 10, 64)
			if err != nil {
				return outputError(errors.NewInvalidRequest("version must be an integer"))
			}

			output, err := ops.GetVersion(env, ops.GetVersionInput{
				RunID:   c.String("run"),
				Path:    c.Args().First(),
				Version: version,
			})
			if err != nil {
				return outputError(err)
			}

			fmt.Printf("# %s (version %d)\n", output.Title, output.Version)
			fmt.Printf("# Synced: %s\n", formatTimestamp(output.SyncedAt))
			fmt.Printf("# %s\n", strings.Repeat("-", 60))
			fmt.Println()
			fmt.Println(output.Content)
			return nil
		},
	}
}

// listCmd creates the list command.
func listCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List all tracked artifacts in a run",
		Flags: []cli.Flag{runFlag()},
		Action: func(c *cli.Context) error {
			output, err := ops.ListArtifacts(env, ops.ListArtifactsInput{
				RunID: c.String("run"),
			})
			if err != nil {
				return outputError(err)
			}

			if len(output.Artifacts) == 0 {
				fmt.Println("No tracked artifacts.")
				return nil
			}

			fmt.Printf("%-30s %-8s %-8s %-8s %-20s\n", "PATH", "STATUS", "COMMENTS", "VERSIONS", "TITLE")
			for _, a := range output.Artifacts {
				status := a.Status
				if status == ops.ArtifactStatusMissing {
					status = "MISSING"
				}
				title := "-"
				if a.Title != nil {
					title = truncate(*a.Title, 20)
				}
				fmt.Printf("%-30s %-8s %-8d %-8d %-20s\n", a.Path, status, a.CommentCount, a.VersionCount, title)
			}
			return nil
		},
	}
}

// Helper functions

// outputError formats error for CLI.
func outputError(err error) error {
	if tErr, ok := err.(*errors.TetherError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", tErr.Code, tErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// truncate shortens a string to max characters, adding an ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// formatTimestamp formats a Unix timestamp as "2006-01-02 15:04" UTC.
func formatTimestamp(unix int64) string {
	return time.Unix(unix, 0).UTC().Format("2006-01-02 15:04")
}
