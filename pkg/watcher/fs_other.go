//go:build !linux

package watcher

// DetectFilesystemType reports FSTypeUnknown outside Linux; the watcher then
// relies on fsnotify and falls back to polling only if that fails.
func DetectFilesystemType(path string) FilesystemType {
	return FSTypeUnknown
}
