package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cleared-dev/conferencia/internal/model"
)

// Export writes one notes file and one divergences file per direction into
// dir and returns the paths written.
func Export(dir string, res *model.Result) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating export dir: %w", err)
	}

	var paths []string
	for _, dirn := range []model.Direction{model.DirectionEntrada, model.DirectionSaida} {
		prefix := strings.ToLower(string(dirn)) + "s"

		var notes []model.MatchedNote
		for _, n := range res.Notes {
			if n.Direction == dirn {
				notes = append(notes, n)
			}
		}
		var divs []model.Divergence
		for _, d := range res.Divergences {
			if d.Direction == dirn {
				divs = append(divs, d)
			}
		}

		notesPath := filepath.Join(dir, prefix+"-corretas.csv")
		if err := writeFile(notesPath, func(f *os.File) error { return WriteNotes(f, notes) }); err != nil {
			return nil, err
		}
		divsPath := filepath.Join(dir, prefix+"-divergencias.csv")
		if err := writeFile(divsPath, func(f *os.File) error { return WriteDivergences(f, divs) }); err != nil {
			return nil, err
		}
		paths = append(paths, notesPath, divsPath)
	}
	return paths, nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
