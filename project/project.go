package project

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Project is a tree of Python sources below a root directory.
type Project struct {
	RootDir  string
	Files    []string
	Packages []*Package
}

// Package is a directory holding an __init__.py.
type Package struct {
	Name    string // dotted, relative to the project root
	Dir     string
	Files   []string
	Project *Project
}

// Load scans the current directory.
func Load(exclude []string) (*Project, error) {
	return LoadFrom(".", exclude)
}

// LoadFrom collects the .py files below rootDir, skipping directories whose
// base name is in exclude.
func LoadFrom(rootDir string, exclude []string) (*Project, error) {
	info, err := os.Stat(rootDir)
	if err != nil {
		return nil, fmt.Errorf("stat project root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project root %s is not a directory", rootDir)
	}

	proj := &Project{RootDir: rootDir}
	packages := make(map[string]*Package)
	err = filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != rootDir && slices.Contains(exclude, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsSource(path) {
			return nil
		}
		proj.Files = append(proj.Files, path)

		dir := filepath.Dir(path)
		if pkg, ok := packages[dir]; ok {
			pkg.Files = append(pkg.Files, path)
			return nil
		}
		if _, err := os.Stat(filepath.Join(dir, "__init__.py")); err != nil {
			return nil
		}
		pkg := &Package{
			Name:    packageName(rootDir, dir),
			Dir:     dir,
			Files:   []string{path},
			Project: proj,
		}
		packages[dir] = pkg
		proj.Packages = append(proj.Packages, pkg)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", rootDir, err)
	}
	return proj, nil
}

// IsSource reports whether path names a Python source file.
func IsSource(path string) bool {
	return filepath.Ext(path) == ".py"
}

func packageName(root, dir string) string {
	rel, err := filepath.Rel(root, dir)
	if err != nil || rel == "." {
		return filepath.Base(dir)
	}
	return strings.ReplaceAll(filepath.ToSlash(rel), "/", ".")
}

// Package returns the package a file belongs to, or nil.
func (p *Project) Package(file string) *Package {
	dir := filepath.Dir(file)
	for _, pkg := range p.Packages {
		if pkg.Dir == dir {
			return pkg
		}
	}
	return nil
}
