package scanner

import (
	"os"
	"path/filepath"
	"strings"
)

// VaultScan holds everything discovered from scanning a single vault
type VaultScan struct {
	RootDir   string
	NotePaths []string // absolute paths to .md files, in walk order
	Dirs      []string // every directory visited, root included
}

// ScanVault recursively scans a single vault directory
func ScanVault(rootDir string) (*VaultScan, error) {
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, err
	}

	scan := &VaultScan{
		RootDir: absRoot,
	}

	if err := walkVault(absRoot, scan); err != nil {
		return nil, err
	}

	return scan, nil
}

// walkVault recursively walks a directory collecting notes
func walkVault(dir string, scan *VaultScan) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	scan.Dirs = append(scan.Dirs, dir)

	for _, entry := range entries {
		name := entry.Name()
		absPath := filepath.Join(dir, name)

		if entry.IsDir() {
			if ShouldSkipDir(name) {
				continue
			}
			if err := walkVault(absPath, scan); err != nil {
				return err
			}
		} else if IsNoteFile(name) {
			scan.NotePaths = append(scan.NotePaths, absPath)
		}
	}

	return nil
}

// IsNoteFile returns true if the file is a markdown note
func IsNoteFile(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".md")
}

// ShouldSkipDir reports directories that are never scanned or watched.
// Hidden directories cover editor state such as .obsidian and .trash.
func ShouldSkipDir(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	switch name {
	case "node_modules", "vendor", "__pycache__", "target", "build", "dist":
		return true
	}
	return false
}
