// ABOUTME: Version requirement parsing and negotiation for script handshakes
// ABOUTME: Wraps Masterminds/semver; distinguishes malformed from unsatisfied versions

// Package version decides whether a script's reported version satisfies the
// host's requirement. Negotiation runs exactly once per script, during
// registration, before any hook is delivered to it.
package version

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/mauromedda/hookwire/pkg/hook"
)

// Requirement is a predicate over semantic versions, such as "^1.0.0",
// "=1.2.3", ">=0.4.0" or ">=1.2.0, <2.0.0".
type Requirement struct {
	raw         string
	constraints *semver.Constraints
}

// ParseRequirement parses a requirement expression.
func ParseRequirement(s string) (*Requirement, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty version requirement")
	}
	c, err := semver.NewConstraint(s)
	if err != nil {
		return nil, fmt.Errorf("invalid version requirement %q: %w", s, err)
	}
	return &Requirement{raw: s, constraints: c}, nil
}

// MustParseRequirement is ParseRequirement for package-level literals.
func MustParseRequirement(s string) *Requirement {
	r, err := ParseRequirement(s)
	if err != nil {
		panic(err)
	}
	return r
}

// String returns the requirement as written.
func (r *Requirement) String() string {
	if r == nil {
		return "*"
	}
	return r.raw
}

// Matches reports whether v satisfies the requirement.
func (r *Requirement) Matches(v *semver.Version) bool {
	if r == nil {
		return true
	}
	return r.constraints.Check(v)
}

// RejectReason says why negotiation failed.
type RejectReason int

const (
	// NotRejected is the reason of an accepted result.
	NotRejected RejectReason = iota
	// RejectMalformed means the script reported something that is not a
	// semantic version.
	RejectMalformed
	// RejectUnsatisfied means the version is well formed but fails the
	// requirement, e.g. an incompatible major version.
	RejectUnsatisfied
)

// String returns a short label for the reason.
func (r RejectReason) String() string {
	switch r {
	case NotRejected:
		return "accepted"
	case RejectMalformed:
		return "malformed version"
	case RejectUnsatisfied:
		return "unsatisfied requirement"
	default:
		return fmt.Sprintf("RejectReason(%d)", int(r))
	}
}

// Result is the outcome of Negotiate.
type Result struct {
	Accepted    bool
	Reason      RejectReason
	Detail      string
	Reported    string
	Requirement string
	// Version is the parsed reported version; nil when malformed.
	Version *semver.Version
}

// Err returns nil for accepted results, otherwise an error wrapping
// hook.ErrVersionMismatch.
func (r Result) Err() error {
	if r.Accepted {
		return nil
	}
	return fmt.Errorf("%w: %s: %s", hook.ErrVersionMismatch, r.Reason, r.Detail)
}

// Negotiate evaluates the reported version against req. A nil requirement
// accepts every well-formed version.
func Negotiate(reported string, req *Requirement) Result {
	res := Result{Reported: reported, Requirement: req.String()}

	v, err := semver.StrictNewVersion(strings.TrimSpace(reported))
	if err != nil {
		res.Reason = RejectMalformed
		res.Detail = fmt.Sprintf("reported version %q: %v", reported, err)
		return res
	}
	res.Version = v

	if req == nil {
		res.Accepted = true
		return res
	}

	ok, errs := req.constraints.Validate(v)
	if ok {
		res.Accepted = true
		return res
	}

	res.Reason = RejectUnsatisfied
	reasons := make([]string, 0, len(errs))
	for _, e := range errs {
		reasons = append(reasons, e.Error())
	}
	if len(reasons) == 0 {
		reasons = append(reasons, fmt.Sprintf("%s does not satisfy %s", v, req))
	}
	res.Detail = strings.Join(reasons, "; ")
	return res
}
