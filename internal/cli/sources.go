package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"habitmap/internal/blocks"
	"habitmap/internal/render"
)

const exprContainerID = "expr"

// blockSelection describes where command line blocks come from
type blockSelection struct {
	exprs     []string // lines of an ad-hoc block
	blockFile string   // file holding a bare block body
	index     int      // block position within each note, -1 for all
}

// resolveContainers turns note arguments, -e lines and a block file into
// containers, ad-hoc blocks first.
func resolveContainers(args, exprs []string, blockFile string) ([]render.Container, error) {
	return blockSelection{exprs: exprs, blockFile: blockFile, index: -1}.resolve(args)
}

func (s blockSelection) resolve(args []string) ([]render.Container, error) {
	var out []render.Container

	if len(s.exprs) > 0 {
		out = append(out, render.Container{
			ID:     exprContainerID,
			Source: strings.Join(s.exprs, "\n") + "\n",
		})
	}

	if s.blockFile != "" {
		content, err := os.ReadFile(s.blockFile)
		if err != nil {
			return nil, fmt.Errorf("read block file: %w", err)
		}
		out = append(out, render.Container{ID: s.blockFile, Source: string(content)})
	}

	for _, arg := range args {
		note, err := filepath.Abs(arg)
		if err != nil {
			return nil, err
		}
		found, err := blocks.Containers(note)
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			return nil, fmt.Errorf("no %s blocks in %s", blocks.Language, arg)
		}
		if s.index >= 0 {
			if s.index >= len(found) {
				return nil, fmt.Errorf("%s has %d blocks, no block %d", arg, len(found), s.index)
			}
			found = found[s.index : s.index+1]
		}
		out = append(out, found...)
	}
	return out, nil
}
