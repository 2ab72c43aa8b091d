// Package fileutil provides small file-system helpers shared by the CLI's
// CI output writer and the file notification sink.
//
// EnsureDir and EnsureDirForFile create directories recursively so a
// writer can assume its target directory exists before writing to it.
package fileutil
