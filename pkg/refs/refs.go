// Package refs stores references: HEAD, branch heads, and the symrefs that
// connect them. Every update goes through the lockfile protocol.
package refs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/grit-vcs/grit/pkg/lockfile"
	"github.com/grit-vcs/grit/pkg/revision"
)

const HEAD = "HEAD"

var ErrInvalidBranch = errors.New("invalid branch")

var symrefPattern = regexp.MustCompile(`^ref: (.+)$`)

// Ref is either a SymRef naming another ref or an OIDRef holding a raw id.
type Ref interface {
	isRef()
}

type SymRef struct {
	Path string
}

func (SymRef) isRef() {}

func (r SymRef) IsHead() bool {
	return r.Path == HEAD
}

// ShortName strips the refs/heads prefix for display.
func (r SymRef) ShortName() string {
	return strings.TrimPrefix(r.Path, "refs/heads/")
}

type OIDRef struct {
	OID string
}

func (OIDRef) isRef() {}

type Refs struct {
	pathname  string
	refsPath  string
	headsPath string
}

func New(pathname string) *Refs {
	refsPath := filepath.Join(pathname, "refs")
	return &Refs{
		pathname:  pathname,
		refsPath:  refsPath,
		headsPath: filepath.Join(refsPath, "heads"),
	}
}

// UpdateHead advances HEAD. When HEAD is a symref the write lands on the
// branch it names, so the symref itself is preserved.
func (r *Refs) UpdateHead(oid string) error {
	path := filepath.Join(r.pathname, HEAD)
	for {
		ref, err := r.readOIDOrSymRef(path)
		if err != nil {
			return err
		}
		sym, ok := ref.(SymRef)
		if !ok {
			break
		}
		path = filepath.Join(r.pathname, sym.Path)
	}
	return r.updateRefFile(path, oid)
}

// ReadHead resolves HEAD to an oid, or "" before the first commit.
func (r *Refs) ReadHead() (string, error) {
	return r.readSymRef(filepath.Join(r.pathname, HEAD))
}

// ReadRef resolves a ref name against the repo root, refs/, and refs/heads/.
func (r *Refs) ReadRef(name string) (string, error) {
	path := r.pathForName(name)
	if path == "" {
		return "", nil
	}
	return r.readSymRef(path)
}

func (r *Refs) CreateBranch(branchName, startOID string) error {
	if !revision.ValidRef(branchName) {
		return fmt.Errorf("%w: '%s' is not a valid branch name.", ErrInvalidBranch, branchName)
	}
	if startOID == "" {
		return fmt.Errorf("%w: refusing to create branch '%s' without a start point.", ErrInvalidBranch, branchName)
	}

	path := filepath.Join(r.headsPath, branchName)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: A branch named '%s' already exists.", ErrInvalidBranch, branchName)
	}

	return r.updateRefFile(path, startOID)
}

// ListBranches returns the names of all branches under refs/heads, sorted.
func (r *Refs) ListBranches() ([]string, error) {
	entries, err := os.ReadDir(r.headsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// CurrentRef chases symrefs from source and returns the last symref in the
// chain, which names the currently checked out branch.
func (r *Refs) CurrentRef(source string) (SymRef, error) {
	ref, err := r.readOIDOrSymRef(filepath.Join(r.pathname, source))
	if err != nil {
		return SymRef{}, err
	}

	if sym, ok := ref.(SymRef); ok {
		return r.CurrentRef(sym.Path)
	}
	return SymRef{Path: source}, nil
}

// ReadOID resolves either kind of ref to an oid.
func (r *Refs) ReadOID(ref Ref) (string, error) {
	switch ref := ref.(type) {
	case SymRef:
		return r.ReadRef(ref.Path)
	case OIDRef:
		return ref.OID, nil
	default:
		return "", fmt.Errorf("unknown ref type %T", ref)
	}
}

func (r *Refs) pathForName(name string) string {
	prefixes := []string{r.pathname, r.refsPath, r.headsPath}
	for _, prefix := range prefixes {
		path := filepath.Join(prefix, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func (r *Refs) updateRefFile(path, oid string) error {
	lock := lockfile.New(path)

	if err := lock.Hold(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		// The ref's directory does not exist yet; create it and retry.
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := lock.Hold(); err != nil {
			return err
		}
	}

	if err := lock.Write([]byte(oid + "\n")); err != nil {
		return err
	}
	return lock.Commit()
}

func (r *Refs) readOIDOrSymRef(path string) (Ref, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	content := strings.TrimSpace(string(data))
	if match := symrefPattern.FindStringSubmatch(content); match != nil {
		return SymRef{Path: match[1]}, nil
	}
	return OIDRef{OID: content}, nil
}

func (r *Refs) readSymRef(path string) (string, error) {
	ref, err := r.readOIDOrSymRef(path)
	if err != nil {
		return "", err
	}

	switch ref := ref.(type) {
	case SymRef:
		return r.readSymRef(filepath.Join(r.pathname, ref.Path))
	case OIDRef:
		return ref.OID, nil
	default:
		return "", nil
	}
}
