package domain

import "time"

// Template is a .docx file in the template directory.
type Template struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}

// Loaded is a template together with its raw package bytes.
type Loaded struct {
	Template
	Data []byte
}

// Inspection reports how a template lines up with the placeholder vocabulary.
type Inspection struct {
	Name         string   `json:"name"`
	Placeholders []string `json:"placeholders"`
	Missing      []string `json:"missing"`
	Unknown      []string `json:"unknown"`
	TableRows    int      `json:"table_rows"`
}
