package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"arrimeta/internal/header"
)

// ErrNoClips is returned when a search finds no supported files.
var ErrNoClips = errors.New("no supported clip files found")

// Find returns the supported files under root, sorted by path. root may also
// be a single file. With firstPerDir only the first frame of each directory
// is kept, which is how multi-frame clips are laid out on camera media.
// Hidden files and directories are skipped; cards written on macOS carry
// "._" resource forks next to every frame.
func Find(root string, exts []string, firstPerDir bool) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	if !info.IsDir() {
		if !header.SupportedExtension(root, exts) {
			return nil, fmt.Errorf("%s: %w", root, ErrNoClips)
		}
		return []string{root}, nil
	}

	var found []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && header.SupportedExtension(path, exts) {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("%s: %w", root, ErrNoClips)
	}

	sort.Strings(found)
	if firstPerDir {
		found = firstInEachDir(found)
	}
	return found, nil
}

// FindAll runs Find over several roots, dropping duplicates. It fails only
// when no root yields a file.
func FindAll(roots []string, exts []string, firstPerDir bool) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	var errs []error
	for _, root := range roots {
		paths, err := Find(root, exts, firstPerDir)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, p := range paths {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	if len(out) == 0 {
		if len(errs) == 0 {
			return nil, ErrNoClips
		}
		return nil, errors.Join(errs...)
	}
	return out, nil
}

// firstInEachDir keeps the first path seen for every directory. Sorting
// full paths does not group a directory's files together when it also holds
// subdirectories, so directories are tracked explicitly.
func firstInEachDir(paths []string) []string {
	out := make([]string, 0, len(paths))
	seen := make(map[string]bool)
	for _, p := range paths {
		dir := filepath.Dir(p)
		if seen[dir] {
			continue
		}
		seen[dir] = true
		out = append(out, p)
	}
	return out
}
