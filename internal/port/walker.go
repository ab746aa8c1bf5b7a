package port

type FileWalker interface {
	Walk(root string, patterns []string) ([]FileInfo, error)
}

type FileInfo struct {
	Path    string
	ModTime int64
	Size    int64
}

// CorpusReader yields the raw lines of a dataset, one sentence per line.
type CorpusReader interface {
	ReadLines(root string, patterns []string) ([]string, error)
}
