package main

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Namer maps discovered files to the manifest they are recorded in.
type Namer struct {
	cfg       RunConfig
	ext       string
	aggregate string

	// owners remembers which directory first claimed each target in this run.
	owners map[string]string
}

// NewNamer prepares a namer for one run. In aggregate mode the single target
// is computed here, once.
func NewNamer(cfg RunConfig) (*Namer, error) {
	n := &Namer{
		cfg:    cfg,
		ext:    manifestExtension(cfg.Algorithm),
		owners: make(map[string]string),
	}
	if cfg.Mode == ModeAggregate {
		prefix := strings.TrimPrefix(flatten(cfg.SearchPath), "-")
		if prefix == "" {
			return nil, &NamingError{Path: cfg.SearchPath, Reason: "search path flattens to an empty name"}
		}
		n.aggregate = filepath.Join(cfg.SavePath, n.fileName(prefix))
	}
	return n, nil
}

// AggregateTarget returns the run-wide target in aggregate mode. It does not
// append: an earlier manifest is backed up, never extended.
func (n *Namer) AggregateTarget() (OutputTarget, bool) {
	if n.cfg.Mode != ModeAggregate {
		return OutputTarget{}, false
	}
	return OutputTarget{Path: n.aggregate}, true
}

// IsManifest reports whether path is a manifest or backup this tool writes
// into the save path, so a save path inside the search path is not hashed.
func (n *Namer) IsManifest(path string) bool {
	if filepath.Dir(path) != n.cfg.SavePath {
		return false
	}
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	return strings.EqualFold(ext, n.ext) || strings.EqualFold(ext, "bak")
}

// Name returns the target for file.
func (n *Namer) Name(file DiscoveredFile) (OutputTarget, error) {
	var prefix string
	switch n.cfg.Mode {
	case ModeAggregate:
		return OutputTarget{Path: n.aggregate}, nil

	case ModePerDirectory:
		parent := file.ParentName()
		if parent == "" {
			return OutputTarget{}, &NamingError{Path: file.Path, Reason: "file has no parent directory name"}
		}
		prefix = parent
		if grandparent := file.GrandparentName(); grandparent != "" {
			prefix = grandparent + "_" + parent
		}

	case ModePerFile:
		prefix = strings.TrimLeft(flatten(filepath.Dir(file.Path)), "-")
		if prefix == "" {
			return OutputTarget{}, &NamingError{Path: file.Path, Reason: "containing directory flattens to an empty name"}
		}

	default:
		return OutputTarget{}, fmt.Errorf("unsupported output mode %d", n.cfg.Mode)
	}

	// Unrelated directories may not share a target unless merging was asked for.
	target := OutputTarget{Path: filepath.Join(n.cfg.SavePath, n.fileName(prefix)), Append: true}
	if err := n.claim(target.Path, filepath.Dir(file.Path)); err != nil {
		return OutputTarget{}, err
	}
	return target, nil
}

// claim records dir as the owner of target and rejects a second, unrelated
// directory unless merging was allowed.
func (n *Namer) claim(target, dir string) error {
	owner, ok := n.owners[target]
	if !ok {
		n.owners[target] = dir
		return nil
	}
	if owner == dir || n.cfg.AllowMerge {
		return nil
	}
	return &NamingError{
		Path:   dir,
		Reason: fmt.Sprintf("manifest %s already holds files from %s (use --allow-merge to combine them)", filepath.Base(target), owner),
	}
}

func (n *Namer) fileName(prefix string) string {
	if n.cfg.Tag != "" {
		prefix += "_" + n.cfg.Tag
	}
	return prefix + "." + n.ext
}

// flatten turns a path into a single file name by replacing separators with dashes.
func flatten(path string) string {
	return strings.ReplaceAll(filepath.ToSlash(path), "/", "-")
}

// manifestExtension is the file extension used for an algorithm's manifests.
func manifestExtension(algorithm string) string {
	algorithm = strings.ToLower(strings.TrimSpace(algorithm))
	if algorithm == "" {
		return defaultAlgorithm
	}
	return algorithm
}
