package models

import "time"

// NoteFile is a note read from disk by a directory listing.
type NoteFile struct {
	ID           string    `json:"id"`
	FilePath     string    `json:"filePath"`
	FileName     string    `json:"fileName"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Extension    string    `json:"extension"`
	ModifiedTime time.Time `json:"modifiedTime"`
	CreatedTime  time.Time `json:"createdTime"`
}
