// Package git probes the local working copy for the validation gate's
// context: current branch and working-tree cleanliness. Best effort: a
// missing git binary or a non-repo directory degrades to empty answers.
package git

import (
	"context"
	"os/exec"
	"strings"
)

// EnvProbe shells out to git. It implements app.EnvironmentProbe.
type EnvProbe struct{}

// NewEnvProbe creates a probe for the current working directory.
func NewEnvProbe() *EnvProbe {
	return &EnvProbe{}
}

// CurrentBranch returns the checked-out branch, or empty when unknown.
func (p *EnvProbe) CurrentBranch(ctx context.Context) string {
	out, err := exec.CommandContext(ctx, "git", "rev-parse", "--abbrev-ref", "HEAD").Output()
	if err != nil {
		return ""
	}
	branch := strings.TrimSpace(string(out))
	if branch == "HEAD" {
		// Detached head.
		return ""
	}
	return branch
}

// WorkingTreeClean reports whether the working tree has no pending changes.
// Unknown state counts as clean so validation stays advisory.
func (p *EnvProbe) WorkingTreeClean(ctx context.Context) bool {
	out, err := exec.CommandContext(ctx, "git", "status", "--porcelain").Output()
	if err != nil {
		return true
	}
	return strings.TrimSpace(string(out)) == ""
}
