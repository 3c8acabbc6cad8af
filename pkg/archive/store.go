// Package archive manages the on-disk artifact tree. New artifacts land in
// an active directory per mode; validated artifacts are renamed into one of
// four archive destinations keyed by (mode, stability).
package archive

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/zen-systems/pulseforge/pkg/item"
	"github.com/zen-systems/pulseforge/pkg/mode"
)

// Store manages the artifact directory tree under a base path.
type Store struct {
	BasePath string
}

// NewStore creates the store and ensures the full directory tree exists.
// An empty basePath defaults to ~/.pulseforge/artifacts.
func NewStore(basePath string) (*Store, error) {
	if basePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		basePath = filepath.Join(home, ".pulseforge", "artifacts")
	}

	s := &Store{BasePath: basePath}
	dirs := []string{
		s.activeDir(mode.Script),
		s.activeDir(mode.Content),
	}
	for _, m := range []mode.Mode{mode.Script, mode.Content} {
		for _, st := range []item.Status{item.StatusStable, item.StatusUnstable} {
			dirs = append(dirs, s.archiveDir(m, st))
		}
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0755); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) activeDir(m mode.Mode) string {
	return filepath.Join(s.BasePath, "active", m.String())
}

func (s *Store) archiveDir(m mode.Mode, st item.Status) string {
	return filepath.Join(s.BasePath, "archive", fmt.Sprintf("%s_%s", st, m))
}

// PlaceActive writes content into the active directory for the mode and
// returns the file's path. Script artifacts get a .py extension so the
// sandbox interpreter picks them up directly.
func (s *Store) PlaceActive(m mode.Mode, content string) (string, error) {
	ext := ".txt"
	if m == mode.Script {
		ext = ".py"
	}
	name := fmt.Sprintf("%s_%s%s", m, uuid.NewString()[:8], ext)
	path := filepath.Join(s.activeDir(m), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("persist %s artifact: %w", m, err)
	}
	return path, nil
}

// Archive moves a validated artifact into the destination keyed by
// (mode, status). It is a rename, not a copy. Unknown statuses file under
// the unstable destination.
func (s *Store) Archive(path string, m mode.Mode, st item.Status) (string, error) {
	if !m.Valid() {
		return "", fmt.Errorf("cannot archive artifact with unknown mode tag %d", m)
	}
	if st != item.StatusStable {
		st = item.StatusUnstable
	}
	dest := filepath.Join(s.archiveDir(m, st), filepath.Base(path))
	if err := os.Rename(path, dest); err != nil {
		return "", fmt.Errorf("archive %s: %w", filepath.Base(path), err)
	}
	return dest, nil
}
