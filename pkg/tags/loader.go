package tags

import (
	"bytes"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/flosch/pongo2/v6"
)

// FSLoader serves templates from an fs.FS, such as an embedded directory or
// os.DirFS. Includes and extends resolve relative to the including template.
type FSLoader struct {
	fsys fs.FS
}

func NewFSLoader(fsys fs.FS) *FSLoader {
	return &FSLoader{fsys: fsys}
}

// Abs calculates the path to a template. When a template includes another
// one, base is the including template's path.
func (l *FSLoader) Abs(base, name string) string {
	if strings.HasPrefix(name, "/") || base == "" {
		return strings.TrimPrefix(path.Clean(name), "/")
	}
	return path.Join(path.Dir(base), name)
}

// Get returns a reader over the template's content.
func (l *FSLoader) Get(name string) (io.Reader, error) {
	b, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(b), nil
}

var _ pongo2.TemplateLoader = new(FSLoader)
