package watch

import (
	"path/filepath"

	"github.com/gobwas/glob"
	"github.com/pkg/errors"
)

// Filter selects paths by include and exclude glob patterns. A pattern matches
// a path if it matches either the whole slash-separated path or its base name,
// so "*.go" selects Go files in any directory.
type Filter struct {
	include []glob.Glob
	exclude []glob.Glob
}

// NewFilter compiles the given patterns. With no include patterns every path
// not excluded is selected.
func NewFilter(include, exclude []string) (*Filter, error) {
	f := &Filter{}

	var err error
	if f.include, err = compileAll(include); err != nil {
		return nil, errors.Wrap(err, "error compiling include pattern")
	}
	if f.exclude, err = compileAll(exclude); err != nil {
		return nil, errors.Wrap(err, "error compiling exclude pattern")
	}

	return f, nil
}

func compileAll(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, errors.Wrapf(err, "%q", p)
		}
		globs = append(globs, g)
	}

	return globs, nil
}

// Match reports whether path is selected.
func (f *Filter) Match(path string) bool {
	slashed := filepath.ToSlash(filepath.Clean(path))
	base := filepath.Base(slashed)

	matches := func(globs []glob.Glob) bool {
		for _, g := range globs {
			if g.Match(slashed) || g.Match(base) {
				return true
			}
		}

		return false
	}

	if matches(f.exclude) {
		return false
	}

	return len(f.include) == 0 || matches(f.include)
}
