package core

// batch.go imports a directory of exported CSV pairs in one sweep,
// the bulk path for bootstrapping years of history.

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// BatchImport discovers {year}_{season}_study.csv files under dir,
// pairs each with its optional {year}_{season}_text.csv, and runs
// preview plus confirm per pair. A failing file is recorded and the
// batch moves on; one bad export never blocks the rest.
func (s *Service) BatchImport(ctx context.Context, dir string) (*BatchResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var studyFiles []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(e.Name()), "_study.csv") {
			studyFiles = append(studyFiles, e.Name())
		}
	}
	sort.Strings(studyFiles)

	result := &BatchResult{Errors: []BatchFileError{}, Sessions: []CommitResult{}}

	for _, name := range studyFiles {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		commit, err := s.importPair(ctx, dir, name)
		if err != nil {
			s.log.Warn("batch file failed", "file", name, "error", err)
			result.Errors = append(result.Errors, BatchFileError{
				File:  name,
				Error: err.Error(),
			})
			continue
		}

		result.Imported++
		result.Sessions = append(result.Sessions, *commit)
	}

	s.log.Info("batch import finished",
		"dir", dir, "imported", result.Imported, "failed", len(result.Errors))

	return result, nil
}

// importPair previews and immediately confirms one study/text pair.
func (s *Service) importPair(ctx context.Context, dir, studyName string) (*CommitResult, error) {
	studyData, err := os.ReadFile(filepath.Join(dir, studyName))
	if err != nil {
		return nil, err
	}
	study := FileUpload{Name: studyName, Data: studyData}

	var text *FileUpload
	textName := studyName[:len(studyName)-len("_study.csv")] + "_text.csv"
	if textData, err := os.ReadFile(filepath.Join(dir, textName)); err == nil {
		text = &FileUpload{Name: textName, Data: textData}
	}

	preview, err := s.Preview(ctx, study, text)
	if err != nil {
		return nil, err
	}

	return s.Confirm(ctx, preview.PreviewID)
}
