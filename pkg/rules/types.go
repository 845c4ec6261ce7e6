package rules

import (
	"strings"

	"github.com/arthur-debert/pylon/pkg/errors"
	"github.com/arthur-debert/pylon/pkg/glob"
)

// BaseDirKind tags how a rule's working directory is resolved
type BaseDirKind int

const (
	// RelativeToDocument resolves against the referencing document's
	// parent directory, optionally joined with a subpath
	RelativeToDocument BaseDirKind = iota
	// AbsoluteFromRoot resolves against the project root, unconditionally
	AbsoluteFromRoot
)

// BaseDir is a rule's working-directory specification.
// A leading separator means absolute-from-root; anything else
// (".", "./sub", "sub") is relative to the referencing document.
type BaseDir struct {
	kind    BaseDirKind
	subpath string
}

// NewBaseDir classifies a working-directory spec string
func NewBaseDir(spec string) BaseDir {
	if strings.HasPrefix(spec, "/") {
		return BaseDir{kind: AbsoluteFromRoot, subpath: strings.TrimPrefix(spec, "/")}
	}

	sub := strings.TrimPrefix(spec, "./")
	if sub == "." {
		sub = ""
	}
	return BaseDir{kind: RelativeToDocument, subpath: sub}
}

// Kind returns the resolution mode for this base directory
func (b BaseDir) Kind() BaseDirKind {
	return b.kind
}

// Subpath returns the path component joined during resolution.
// For AbsoluteFromRoot the leading separator is already stripped.
func (b BaseDir) Subpath() string {
	return b.subpath
}

// String returns the spec in its original spelling
func (b BaseDir) String() string {
	if b.kind == AbsoluteFromRoot {
		return "/" + b.subpath
	}
	if b.subpath == "" {
		return "."
	}
	return "./" + b.subpath
}

// OpKind tags an operation as builtin or shell
type OpKind int

const (
	// OpCopy is the builtin copy operation
	OpCopy OpKind = iota
	// OpShell runs a command template through the platform shell
	OpShell
)

// OpCopyToken is the symbol the configuration layer uses to name the
// builtin copy operation
const OpCopyToken = "OP_COPY"

// Operation is one step of a rule's pipeline. Immutable once part of a rule.
type Operation struct {
	Kind    OpKind
	Command string // command template, shell operations only
}

// ParseOperation converts a manifest operation string into an Operation.
// The exact symbol OP_COPY selects the builtin copy; any other OP_-prefixed
// symbol is a configuration error; everything else is a shell command.
func ParseOperation(s string) (Operation, error) {
	if s == OpCopyToken {
		return Operation{Kind: OpCopy}, nil
	}
	if strings.HasPrefix(s, "OP_") {
		return Operation{}, errors.Newf(errors.ErrOpInvalid,
			"unknown builtin operation %q (only %s is supported)", s, OpCopyToken)
	}
	if strings.TrimSpace(s) == "" {
		return Operation{}, errors.New(errors.ErrOpInvalid, "operation cannot be empty")
	}
	return Operation{Kind: OpShell, Command: s}, nil
}

// ParseOperations converts an ordered list of manifest operation strings
func ParseOperations(specs []string) ([]Operation, error) {
	ops := make([]Operation, 0, len(specs))
	for i, s := range specs {
		op, err := ParseOperation(s)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrOpInvalid,
				"invalid operation at position %d", i+1)
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// RuleID identifies a registered rule within its registry
type RuleID int

// Rule is one registered transformation: how to produce assets matching
// the target glob. Read-only during a build pass.
type Rule struct {
	// ID is assigned at registration time
	ID RuleID

	// Name is an optional human-readable label used in logs and errors
	Name string

	// BaseDir is the working-directory specification
	BaseDir BaseDir

	// TargetGlob selects the asset URIs this rule can produce
	TargetGlob *glob.Pattern

	// Ops is the ordered operation list
	Ops []Operation

	// Autorun optionally overrides the glob that triggers re-runs when a
	// watched source file changes. Nil means the target glob.
	Autorun *glob.Pattern
}

// NewRule builds a rule from manifest-level strings. autorunGlob may be
// empty, in which case the target glob doubles as the autorun trigger.
func NewRule(name, baseDir, targetGlob string, ops []Operation, autorunGlob string) (Rule, error) {
	target, err := glob.Compile(targetGlob)
	if err != nil {
		return Rule{}, err
	}

	var autorun *glob.Pattern
	if autorunGlob != "" {
		autorun, err = glob.Compile(autorunGlob)
		if err != nil {
			return Rule{}, err
		}
	}

	if len(ops) == 0 {
		return Rule{}, errors.Newf(errors.ErrConfigValid,
			"rule %q has no operations", displayName(name, targetGlob))
	}

	return Rule{
		Name:       displayName(name, targetGlob),
		BaseDir:    NewBaseDir(baseDir),
		TargetGlob: target,
		Ops:        ops,
		Autorun:    autorun,
	}, nil
}

// Matches reports whether this rule can produce the given asset URI
func (r *Rule) Matches(uri string) bool {
	return r.TargetGlob.Matches(uri)
}

// AutorunGlob returns the effective autorun trigger glob
func (r *Rule) AutorunGlob() *glob.Pattern {
	if r.Autorun != nil {
		return r.Autorun
	}
	return r.TargetGlob
}

func displayName(name, targetGlob string) string {
	if name != "" {
		return name
	}
	return targetGlob
}
