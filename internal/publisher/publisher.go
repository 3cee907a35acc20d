package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"repcal/lib/timezone"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("repcal.internal.publisher")

// Publisher commits the data files and generated pages and pushes
// them to the hosting branch. It shells out to the system git binary,
// there is no clone-state of its own to manage.
type Publisher struct {
	Dir    string
	Remote string
	Branch string
	// paths staged for the calendar commit, relative to Dir
	Paths []string
}

func New(dir string, paths []string) Publisher {
	return Publisher{
		Dir:    dir,
		Remote: "origin",
		Branch: "main",
		Paths:  paths,
	}
}

func (p Publisher) git(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = p.Dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("git %s: %w: %s",
			strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}

// Verify checks that git is installed, the working directory is a
// repository and a remote is configured.
func (p Publisher) Verify(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Verify")
	defer span.End()

	if _, err := exec.LookPath("git"); err != nil {
		return fmt.Errorf("git is not installed: %w", err)
	}
	if _, err := p.git(ctx, "rev-parse", "--git-dir"); err != nil {
		return fmt.Errorf("%s is not a git repository: %w", p.Dir, err)
	}
	remotes, err := p.git(ctx, "remote")
	if err != nil {
		return err
	}
	if strings.TrimSpace(remotes) == "" {
		return fmt.Errorf("no git remote configured in %s", p.Dir)
	}
	return nil
}

// Changed reports whether any of the published paths differ from the
// last commit.
func (p Publisher) Changed(ctx context.Context) (bool, error) {
	ctx, span := tracer.Start(ctx, "Changed")
	defer span.End()

	args := append([]string{"status", "--porcelain", "--"}, p.Paths...)
	out, err := p.git(ctx, args...)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// CommitMessage is what Publish uses for the calendar commit.
func CommitMessage() string {
	return "Update calendar - " + timezone.Now().Format("2006-01-02 15:04:05")
}

// Publish stages the published paths, commits, and pushes. Hosts
// whose default branch predates the main rename get a second push
// attempt on master. A clean tree is a no-op, not an error.
func (p Publisher) Publish(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Publish", trace.WithAttributes(
		attribute.String("remote", p.Remote),
		attribute.String("branch", p.Branch),
	))
	defer span.End()

	changed, err := p.Changed(ctx)
	if err != nil {
		return err
	}
	if !changed {
		slog.InfoContext(ctx, "no changes to publish")
		return nil
	}

	args := append([]string{"add", "--"}, p.Paths...)
	if _, err := p.git(ctx, args...); err != nil {
		return err
	}
	if _, err := p.git(ctx, "commit", "-m", CommitMessage()); err != nil {
		return err
	}

	_, err = p.git(ctx, "push", p.Remote, p.Branch)
	if err != nil && p.Branch == "main" {
		slog.WarnContext(ctx, "push to main failed, retrying on master", "err", err)
		_, err = p.git(ctx, "push", p.Remote, "master")
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "push failed")
		return err
	}

	slog.InfoContext(ctx, "published calendar", "remote", p.Remote, "branch", p.Branch)
	return nil
}
