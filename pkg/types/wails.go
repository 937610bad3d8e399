package types

import (
	"markan/pkg/models"
)

// FileDetail is the note shape handed to the UI. Times are Unix milliseconds
// so the frontend can build Date values directly.
type FileDetail struct {
	ID           string `json:"id"`
	FilePath     string `json:"filePath"`
	FileName     string `json:"fileName"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	Extension    string `json:"extension"`
	ModifiedTime int64  `json:"modifiedTime"`
	CreatedTime  int64  `json:"createdTime"`
}

// ConvertToFileDetail converts a models.NoteFile to FileDetail
func ConvertToFileDetail(note models.NoteFile) FileDetail {
	return FileDetail{
		ID:           note.ID,
		FilePath:     note.FilePath,
		FileName:     note.FileName,
		Title:        note.Title,
		Content:      note.Content,
		Extension:    note.Extension,
		ModifiedTime: note.ModifiedTime.UnixMilli(),
		CreatedTime:  note.CreatedTime.UnixMilli(),
	}
}

// ConvertToFileDetails converts a slice of models.NoteFile, never returning nil
func ConvertToFileDetails(notes []models.NoteFile) []FileDetail {
	details := make([]FileDetail, len(notes))
	for i, note := range notes {
		details[i] = ConvertToFileDetail(note)
	}
	return details
}
