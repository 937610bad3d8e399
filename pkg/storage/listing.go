package storage

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"markan/pkg/models"
	"markan/pkg/utils"
)

// ListNotes reads every note file directly inside dirPath, newest first.
//
// Files are read in parallel. If the directory is denied, or any read fails,
// the result is an empty (non-nil) slice.
func (g *Gateway) ListNotes(ctx context.Context, dirPath string) []models.NoteFile {
	dir, ok := g.resolve(ctx, opList, dirPath)
	if !ok {
		return []models.NoteFile{}
	}

	names, err := g.readDirNames(dir)
	if err != nil {
		g.ioFailed(opList, dir, err)
		return []models.NoteFile{}
	}

	candidates := names[:0]
	for _, name := range names {
		if g.IsNoteFile(name) {
			candidates = append(candidates, name)
		}
	}

	results := make([]*models.NoteFile, len(candidates))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.concurrency)
	for i, name := range candidates {
		i, name := i, name
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			note, err := g.readNote(dir, name)
			if err != nil {
				return err
			}
			results[i] = note
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		g.ioFailed(opList, dir, err)
		return []models.NoteFile{}
	}

	notes := make([]models.NoteFile, 0, len(results))
	for _, note := range results {
		if note != nil {
			notes = append(notes, *note)
		}
	}
	SortNewestFirst(notes)
	return notes
}

// EntryNames returns the names of every entry directly inside dirPath,
// readable or not. The boolean is false when the directory is denied or
// cannot be read.
func (g *Gateway) EntryNames(ctx context.Context, dirPath string) ([]string, bool) {
	dir, ok := g.resolve(ctx, opList, dirPath)
	if !ok {
		return nil, false
	}
	names, err := g.readDirNames(dir)
	if err != nil {
		g.ioFailed(opList, dir, err)
		return nil, false
	}
	return names, true
}

func (g *Gateway) readDirNames(dir string) ([]string, error) {
	f, err := g.fs.Open(dir)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.Readdirnames(-1)
}

// readNote loads one listing entry. Entries that turn out to be directories
// are skipped with a nil note.
func (g *Gateway) readNote(dir, name string) (*models.NoteFile, error) {
	path := filepath.Join(dir, name)

	info, err := g.fs.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, nil
	}

	data, err := afero.ReadFile(g.fs, path)
	if err != nil {
		return nil, err
	}

	ext := filepath.Ext(name)
	return &models.NoteFile{
		ID:           utils.NoteID(path),
		FilePath:     path,
		FileName:     name,
		Title:        strings.TrimSuffix(name, ext),
		Content:      string(data),
		Extension:    strings.TrimPrefix(strings.ToLower(ext), "."),
		ModifiedTime: info.ModTime(),
		CreatedTime:  createdTime(info),
	}, nil
}

// SortNewestFirst orders notes by modification time, newest first, breaking
// ties by file name.
func SortNewestFirst(notes []models.NoteFile) {
	sort.SliceStable(notes, func(i, j int) bool {
		if !notes[i].ModifiedTime.Equal(notes[j].ModifiedTime) {
			return notes[i].ModifiedTime.After(notes[j].ModifiedTime)
		}
		return notes[i].FileName < notes[j].FileName
	})
}
