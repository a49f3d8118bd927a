// Finds markdown files in a mirror.

package wiki

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// FindMarkdownFiles returns every .md file under root in lexical order.
// Directories whose name starts with a dot, such as .git, are skipped.
func FindMarkdownFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && strings.EqualFold(filepath.Ext(path), ".md") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return files, nil
}
