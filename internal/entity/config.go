package entity

import "strings"

// Link is one entry of the `link:` block. Name comes from the trailing comment of the line.
type Link struct {
	Link string `json:"link"`
	Name string `json:"name"`
}

// ConfigFile is a downloader job description as shown in the panel.
type ConfigFile struct {
	Filename   string `json:"filename"`
	Links      []Link `json:"links"`
	RawContent string `json:"rawContent"` // Original file text, untouched
}

// AppConfig is the content of the side-file. Only copyPaths is known.
type AppConfig struct {
	CopyPaths map[string]string `json:"copyPaths"`
}

func NewAppConfig() *AppConfig {
	return &AppConfig{CopyPaths: make(map[string]string)}
}

// ProtectedFileName is the example config. It cannot be deleted.
const ProtectedFileName = "example.yml"

func IsProtected(filename string) bool {
	return strings.EqualFold(filename, ProtectedFileName)
}
