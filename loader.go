package temples

import (
	"io/fs"

	internalLoader "github.com/zipang/temples/internal/loader"
)

// NewLoader constructs a loader reading "<name>.html" files below dir, using
// the internal implementation while keeping the concrete type hidden from
// consumers.
func NewLoader(dir string) Loader {
	return internalLoader.Dir(dir)
}

// NewFSLoader constructs a loader reading "<name>.html" files from fsys, for
// instance an embed.FS.
func NewFSLoader(fsys fs.FS) Loader {
	return internalLoader.New(fsys)
}
