package file

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

// RenameExt returns base name of <path> with extension replaced by <ext>
func RenameExt(path string, ext string) string {
	base := filepath.Base(path)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + ext
}

// Walk returns sorted paths of regular files with extension <ext> (case insensitive) under <dir>
func Walk(dir string, ext string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && strings.EqualFold(filepath.Ext(path), ext) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "Walk directory %v", dir)
	}
	sort.Strings(paths)
	return paths, nil
}
