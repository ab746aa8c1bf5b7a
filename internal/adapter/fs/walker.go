package fs

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"ngramlm/internal/port"
)

// maxLineSize bounds a single corpus line.
const maxLineSize = 4 * 1024 * 1024

type Walker struct {
	excludes []string
}

func NewWalker(excludes []string) *Walker {
	return &Walker{excludes: excludes}
}

// Walk returns the files under root matching any of patterns, sorted by path.
// A pattern without glob syntax names a file directly and may be absolute.
func (w *Walker) Walk(root string, patterns []string) ([]port.FileInfo, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]port.FileInfo)
	var globs []string
	for _, pattern := range patterns {
		if hasMeta(pattern) {
			globs = append(globs, filepath.ToSlash(pattern))
			continue
		}
		path := pattern
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("corpus file %s: %w", pattern, err)
		}
		seen[path] = port.FileInfo{Path: path, ModTime: info.ModTime().Unix(), Size: info.Size()}
	}

	if len(globs) > 0 {
		err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			relPath, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			relPath = filepath.ToSlash(relPath)

			if info.IsDir() {
				if relPath != "." && w.shouldExclude(relPath+"/") {
					return filepath.SkipDir
				}
				return nil
			}

			if matchAny(globs, relPath) && !w.shouldExclude(relPath) {
				seen[path] = port.FileInfo{
					Path:    path,
					ModTime: info.ModTime().Unix(),
					Size:    info.Size(),
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	files := make([]port.FileInfo, 0, len(seen))
	for _, f := range seen {
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func (w *Walker) shouldExclude(path string) bool {
	return matchAny(w.excludes, path)
}

func matchAny(patterns []string, path string) bool {
	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// CorpusReader reads one sentence per line from every matched file.
type CorpusReader struct {
	walker port.FileWalker
}

func NewCorpusReader(walker port.FileWalker) *CorpusReader {
	return &CorpusReader{walker: walker}
}

// ReadLines returns the lines of all files matching patterns, in path order.
// It fails if nothing matches.
func (r *CorpusReader) ReadLines(root string, patterns []string) ([]string, error) {
	files, err := r.walker.Walk(root, patterns)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no corpus files match %v under %s", patterns, root)
	}

	var lines []string
	for _, f := range files {
		fileLines, err := ReadLines(f.Path)
		if err != nil {
			return nil, err
		}
		lines = append(lines, fileLines...)
	}
	return lines, nil
}

// ReadLines reads a file line by line, dropping line terminators.
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return lines, nil
}
