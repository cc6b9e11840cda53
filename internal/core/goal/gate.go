// Package goal contains the pure business rules for goal transitions.
// The gate evaluates a candidate goal against a read-only snapshot of
// current state and returns results; it never mutates anything.
package goal

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Severity classifies a validation result.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Statuses a goal may hold.
const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
	StatusArchived   = "archived"
)

// legalTransitions maps a current status to the statuses it may move to.
// Archived is terminal.
var legalTransitions = map[string][]string{
	StatusTodo:       {StatusInProgress},
	StatusInProgress: {StatusDone, StatusTodo},
	StatusDone:       {StatusArchived},
	StatusArchived:   {},
}

// wipCap is the number of concurrent in_progress goals tolerated before the
// gate warns.
const wipCap = 3

// ValidStatus reports whether s is one of the goal statuses.
func ValidStatus(s string) bool {
	_, ok := legalTransitions[s]
	return ok
}

// Result is the outcome of a single rule evaluation. Results are data, not
// errors; callers aggregate severities and decide whether to proceed.
type Result struct {
	Rule       string
	Valid      bool
	Severity   Severity
	Message    string
	Suggestion string
}

// Candidate is the goal under evaluation. PrevStatus is the persisted status
// when the candidate is a transition of an existing goal; empty for creates.
type Candidate struct {
	ID            string
	Title         string
	Status        string
	PrevStatus    string
	Description   string
	BranchName    string
	GitHubIssueID int64
}

// Snapshot is the read-only view of an existing goal the gate compares
// against.
type Snapshot struct {
	ID            string
	Title         string
	Status        string
	BranchName    string
	GitHubIssueID int64
}

// Context carries the state the rules need: the full current goal set, the
// current git branch, and whether the working tree is clean.
type Context struct {
	Goals            []Snapshot
	CurrentBranch    string
	WorkingTreeClean bool
}

// rule is a single pure check.
type rule struct {
	name string
	eval func(Candidate, Context) []Result
}

// Gate runs the fixed ordered rule set.
type Gate struct {
	// Strict stops evaluation at the first error-severity result.
	Strict bool
	rules  []rule
}

// NewGate returns a gate with the full rule set in canonical order.
func NewGate() *Gate {
	return &Gate{
		rules: []rule{
			{"title_uniqueness", checkTitleUniqueness},
			{"title_format", checkTitleFormat},
			{"status_transition", checkStatusTransition},
			{"branch_consistency", checkBranchConsistency},
			{"wip_cap", checkWIPCap},
			{"issue_reference", checkIssueReference},
			{"description_quality", checkDescriptionQuality},
		},
	}
}

// Evaluate runs every rule against the candidate. Each rule runs
// independently; a panicking rule is converted into a synthetic
// error-severity result so the batch always completes.
func (g *Gate) Evaluate(c Candidate, ctx Context) []Result {
	var results []Result
	for _, r := range g.rules {
		for _, res := range g.run(r, c, ctx) {
			results = append(results, res)
			if g.Strict && !res.Valid && res.Severity == SeverityError {
				return results
			}
		}
	}
	return results
}

// HasErrors reports whether any result carries error severity.
func HasErrors(results []Result) bool {
	for _, r := range results {
		if !r.Valid && r.Severity == SeverityError {
			return true
		}
	}
	return false
}

func (g *Gate) run(r rule, c Candidate, ctx Context) (results []Result) {
	defer func() {
		if p := recover(); p != nil {
			results = []Result{{
				Rule:     r.name,
				Valid:    false,
				Severity: SeverityError,
				Message:  fmt.Sprintf("rule %s panicked: %v", r.name, p),
			}}
		}
	}()
	return r.eval(c, ctx)
}

// checkTitleUniqueness rejects a title another goal already uses,
// case-insensitively.
func checkTitleUniqueness(c Candidate, ctx Context) []Result {
	for _, g := range ctx.Goals {
		if g.ID == c.ID {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(g.Title), strings.TrimSpace(c.Title)) {
			return []Result{{
				Rule:       "title_uniqueness",
				Valid:      false,
				Severity:   SeverityError,
				Message:    fmt.Sprintf("title duplicates goal %s (%q)", g.ID, g.Title),
				Suggestion: "pick a distinct title or update the existing goal",
			}}
		}
	}
	return []Result{{Rule: "title_uniqueness", Valid: true, Severity: SeverityInfo, Message: "title is unique"}}
}

// checkTitleFormat requires a non-empty title of 3-100 characters. Lengths
// are counted in runes so non-ASCII titles measure the same as ASCII ones.
func checkTitleFormat(c Candidate, _ Context) []Result {
	title := strings.TrimSpace(c.Title)
	length := utf8.RuneCountInString(title)
	switch {
	case title == "":
		return []Result{{
			Rule:     "title_format",
			Valid:    false,
			Severity: SeverityError,
			Message:  "title is empty",
		}}
	case length < 3:
		return []Result{{
			Rule:       "title_format",
			Valid:      false,
			Severity:   SeverityError,
			Message:    fmt.Sprintf("title %q is shorter than 3 characters", title),
			Suggestion: "describe the goal in a short sentence",
		}}
	case length > 100:
		return []Result{{
			Rule:       "title_format",
			Valid:      false,
			Severity:   SeverityError,
			Message:    fmt.Sprintf("title is %d characters, max is 100", length),
			Suggestion: "move detail into the description",
		}}
	}
	return []Result{{Rule: "title_format", Valid: true, Severity: SeverityInfo, Message: "title format ok"}}
}

// checkStatusTransition confines status values to the enum and transitions
// to the legal graph. Creates (no previous status) may start at any valid
// status.
func checkStatusTransition(c Candidate, _ Context) []Result {
	if !ValidStatus(c.Status) {
		return []Result{{
			Rule:     "status_transition",
			Valid:    false,
			Severity: SeverityError,
			Message:  fmt.Sprintf("unknown status %q", c.Status),
		}}
	}
	if c.PrevStatus == "" || c.PrevStatus == c.Status {
		return []Result{{Rule: "status_transition", Valid: true, Severity: SeverityInfo, Message: "status ok"}}
	}
	if !ValidStatus(c.PrevStatus) {
		return []Result{{
			Rule:     "status_transition",
			Valid:    false,
			Severity: SeverityError,
			Message:  fmt.Sprintf("unknown current status %q", c.PrevStatus),
		}}
	}
	for _, next := range legalTransitions[c.PrevStatus] {
		if next == c.Status {
			return []Result{{Rule: "status_transition", Valid: true, Severity: SeverityInfo, Message: "transition ok"}}
		}
	}
	return []Result{{
		Rule:       "status_transition",
		Valid:      false,
		Severity:   SeverityError,
		Message:    fmt.Sprintf("illegal transition %s -> %s", c.PrevStatus, c.Status),
		Suggestion: fmt.Sprintf("legal next statuses from %s: %s", c.PrevStatus, strings.Join(legalTransitions[c.PrevStatus], ", ")),
	}}
}

// checkBranchConsistency warns when in_progress lacks a branch or todo
// carries one.
func checkBranchConsistency(c Candidate, _ Context) []Result {
	if c.Status == StatusInProgress && c.BranchName == "" {
		return []Result{{
			Rule:       "branch_consistency",
			Valid:      false,
			Severity:   SeverityWarning,
			Message:    "in_progress goal has no branch",
			Suggestion: "set a branch name so merged-PR detection can find it",
		}}
	}
	if c.Status == StatusTodo && c.BranchName != "" {
		return []Result{{
			Rule:       "branch_consistency",
			Valid:      false,
			Severity:   SeverityWarning,
			Message:    fmt.Sprintf("todo goal carries branch %q", c.BranchName),
			Suggestion: "clear the branch or start the goal",
		}}
	}
	return []Result{{Rule: "branch_consistency", Valid: true, Severity: SeverityInfo, Message: "branch/status consistent"}}
}

// checkWIPCap warns when the candidate would push concurrent in_progress
// goals past the cap.
func checkWIPCap(c Candidate, ctx Context) []Result {
	inProgress := 0
	for _, g := range ctx.Goals {
		if g.ID == c.ID {
			continue
		}
		if g.Status == StatusInProgress {
			inProgress++
		}
	}
	if c.Status == StatusInProgress {
		inProgress++
	}
	if inProgress > wipCap {
		return []Result{{
			Rule:       "wip_cap",
			Valid:      false,
			Severity:   SeverityWarning,
			Message:    fmt.Sprintf("%d goals in progress, cap is %d", inProgress, wipCap),
			Suggestion: "finish or park an in-progress goal first",
		}}
	}
	return []Result{{Rule: "wip_cap", Valid: true, Severity: SeverityInfo, Message: "wip within cap"}}
}

// checkIssueReference rejects a github issue id already claimed by a
// different goal.
func checkIssueReference(c Candidate, ctx Context) []Result {
	if c.GitHubIssueID == 0 {
		return []Result{{Rule: "issue_reference", Valid: true, Severity: SeverityInfo, Message: "no issue reference"}}
	}
	for _, g := range ctx.Goals {
		if g.ID == c.ID {
			continue
		}
		if g.GitHubIssueID == c.GitHubIssueID {
			return []Result{{
				Rule:     "issue_reference",
				Valid:    false,
				Severity: SeverityError,
				Message:  fmt.Sprintf("issue #%d is already linked to goal %s", c.GitHubIssueID, g.ID),
			}}
		}
	}
	return []Result{{Rule: "issue_reference", Valid: true, Severity: SeverityInfo, Message: "issue reference ok"}}
}

// checkDescriptionQuality nudges toward useful descriptions. Advisory only,
// never blocking.
func checkDescriptionQuality(c Candidate, _ Context) []Result {
	desc := strings.TrimSpace(c.Description)
	switch {
	case desc == "":
		return []Result{{
			Rule:       "description_quality",
			Valid:      false,
			Severity:   SeverityInfo,
			Message:    "goal has no description",
			Suggestion: "add context and acceptance criteria",
		}}
	case utf8.RuneCountInString(desc) < 20:
		return []Result{{
			Rule:       "description_quality",
			Valid:      false,
			Severity:   SeverityWarning,
			Message:    "description is very short",
			Suggestion: "explain what done looks like",
		}}
	case !hasAcceptanceCriteria(desc):
		return []Result{{
			Rule:       "description_quality",
			Valid:      false,
			Severity:   SeverityInfo,
			Message:    "description has no discernible acceptance criteria",
			Suggestion: "add a checklist or an 'acceptance' section",
		}}
	}
	return []Result{{Rule: "description_quality", Valid: true, Severity: SeverityInfo, Message: "description ok"}}
}

// hasAcceptanceCriteria looks for checklist markers or acceptance wording.
func hasAcceptanceCriteria(desc string) bool {
	lower := strings.ToLower(desc)
	markers := []string{"- [ ]", "- [x]", "acceptance", "criteria", "done when", "* [ ]"}
	for _, m := range markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}
