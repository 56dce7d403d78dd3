// Package revision parses and resolves revision expressions like `HEAD`,
// `@^`, `main~3`, or an abbreviated object id.
package revision

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/grit-vcs/grit/pkg/database"
)

const (
	HEAD = "HEAD"

	// CommitType restricts resolution to commit objects.
	CommitType = "commit"
)

var ErrInvalidObject = errors.New("invalid object")

var invalidName = []*regexp.Regexp{
	regexp.MustCompile(`^\.`),
	regexp.MustCompile(`^/\.`),
	regexp.MustCompile(`\.\.`),
	regexp.MustCompile(`^/`),
	regexp.MustCompile(`/$`),
	regexp.MustCompile(`\.lock$`),
	regexp.MustCompile(`@\{`),
	regexp.MustCompile(`[\x00-\x20*:?\[\\^~\x7f]`),
}

var (
	parentPattern   = regexp.MustCompile(`^(.+)\^$`)
	ancestorPattern = regexp.MustCompile(`^(.+)~(\d+)$`)
)

var refAliases = map[string]string{
	"@": HEAD,
}

// ValidRef reports whether a name is usable as a ref name.
func ValidRef(name string) bool {
	for _, pattern := range invalidName {
		if pattern.MatchString(name) {
			return false
		}
	}
	return name != ""
}

// HintedError carries extra lines of context for the user, like the
// candidate list for an ambiguous abbreviated oid.
type HintedError struct {
	Message string
	Hint    []string
}

type refReader interface {
	ReadRef(name string) (string, error)
}

type objectStore interface {
	PrefixMatch(name string) ([]string, error)
	Load(oid string) (database.Object, error)
}

type Revision struct {
	refs    refReader
	objects objectStore
	expr    string
	query   rev

	// Errors collects hinted context when Resolve fails.
	Errors []HintedError
}

func New(refs refReader, objects objectStore, expr string) *Revision {
	return &Revision{
		refs:    refs,
		objects: objects,
		expr:    expr,
		query:   parse(expr),
	}
}

// Resolve evaluates the expression to a full object id. A non-empty
// requiredType additionally demands the resolved object's kind.
func (r *Revision) Resolve(requiredType string) (string, error) {
	if r.query != nil {
		oid, err := r.query.resolve(r)
		if err != nil {
			return "", err
		}

		if oid != "" && requiredType != "" {
			o, err := r.loadTypedObject(oid, requiredType)
			if err != nil {
				return "", err
			}
			if o == nil {
				oid = ""
			}
		}
		if oid != "" {
			return oid, nil
		}
	}

	return "", fmt.Errorf("%w: Not a valid object name: '%s'.", ErrInvalidObject, r.expr)
}

func (r *Revision) readRef(name string) (string, error) {
	oid, err := r.refs.ReadRef(name)
	if err != nil || oid != "" {
		return oid, err
	}

	candidates, err := r.objects.PrefixMatch(name)
	if err != nil {
		return "", err
	}

	switch len(candidates) {
	case 0:
		return "", nil
	case 1:
		return candidates[0], nil
	default:
		r.logAmbiguousOID(name, candidates)
		return "", nil
	}
}

func (r *Revision) commitParent(oid string) (string, error) {
	if oid == "" {
		return "", nil
	}

	o, err := r.loadTypedObject(oid, CommitType)
	if err != nil {
		return "", err
	}
	if commit, ok := o.(*database.Commit); ok {
		return commit.Parent, nil
	}
	return "", nil
}

// loadTypedObject loads an object, recording a hinted error and returning
// nil when it is not of the required type.
func (r *Revision) loadTypedObject(oid, requiredType string) (database.Object, error) {
	o, err := r.objects.Load(oid)
	if err != nil {
		return nil, err
	}

	if o.Type() != requiredType {
		r.Errors = append(r.Errors, HintedError{
			Message: fmt.Sprintf("object %s is a %s, not a %s", oid, o.Type(), requiredType),
		})
		return nil, nil
	}
	return o, nil
}

func (r *Revision) logAmbiguousOID(name string, candidates []string) {
	hint := []string{"The candidates are:"}

	sort.Strings(candidates)
	for _, oid := range candidates {
		o, err := r.objects.Load(oid)
		if err != nil {
			continue
		}

		info := fmt.Sprintf("  %s %s", database.ShortOID(oid), o.Type())
		if commit, ok := o.(*database.Commit); ok {
			info = fmt.Sprintf("%s %s - %s", info, commit.Author.ShortDate(), commit.TitleLine())
		}
		hint = append(hint, info)
	}

	r.Errors = append(r.Errors, HintedError{
		Message: fmt.Sprintf("short SHA1 %s is ambiguous", name),
		Hint:    hint,
	})
}

type rev interface {
	resolve(r *Revision) (string, error)
}

type revRef struct {
	name string
}

func (q revRef) resolve(r *Revision) (string, error) {
	return r.readRef(q.name)
}

type revParent struct {
	rev rev
}

func (q revParent) resolve(r *Revision) (string, error) {
	oid, err := q.rev.resolve(r)
	if err != nil {
		return "", err
	}
	return r.commitParent(oid)
}

type revAncestor struct {
	rev rev
	n   int
}

func (q revAncestor) resolve(r *Revision) (string, error) {
	oid, err := q.rev.resolve(r)
	if err != nil {
		return "", err
	}

	for i := 0; i < q.n; i++ {
		oid, err = r.commitParent(oid)
		if err != nil {
			return "", err
		}
	}
	return oid, nil
}

func parse(expr string) rev {
	if match := parentPattern.FindStringSubmatch(expr); match != nil {
		if inner := parse(match[1]); inner != nil {
			return revParent{rev: inner}
		}
		return nil
	}

	if match := ancestorPattern.FindStringSubmatch(expr); match != nil {
		inner := parse(match[1])
		if inner == nil {
			return nil
		}
		n, err := strconv.Atoi(match[2])
		if err != nil {
			return nil
		}
		return revAncestor{rev: inner, n: n}
	}

	if ValidRef(expr) {
		name := expr
		if alias, ok := refAliases[expr]; ok {
			name = alias
		}
		return revRef{name: name}
	}
	return nil
}
