package library

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// imageExtensions lists the file extensions treated as images.
var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".bmp":  {},
	".webp": {},
}

// ImageFile describes a single image inside a category directory.
type ImageFile struct {
	Name string
	Size int64
}

// Library provides access to a directory tree with one sub-directory of
// images per category. All paths handed out or accepted by the library are
// validated to stay inside the base directory.
type Library struct {
	baseDir string
}

// New creates a library rooted at baseDir.
func New(baseDir string) (*Library, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolving library dir: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("library dir not accessible: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("library path is not a directory: %s", abs)
	}
	return &Library{baseDir: abs}, nil
}

// BaseDir returns the absolute base directory of the library.
func (l *Library) BaseDir() string {
	return l.baseDir
}

// IsImageFile reports whether a filename has a recognized image extension.
func IsImageFile(name string) bool {
	_, ok := imageExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Categories returns the names of all category directories that contain at
// least one image, sorted alphabetically.
func (l *Library) Categories() ([]string, error) {
	entries, err := os.ReadDir(l.baseDir)
	if err != nil {
		return nil, fmt.Errorf("reading library dir: %w", err)
	}

	var categories []string
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		files, err := l.List(entry.Name())
		if err != nil {
			continue
		}
		if len(files) > 0 {
			categories = append(categories, entry.Name())
		}
	}
	sort.Strings(categories)
	return categories, nil
}

// List returns the image files of a category in name order.
func (l *Library) List(category string) ([]ImageFile, error) {
	dir, err := l.resolve(category)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading category %s: %w", category, err)
	}

	var files []ImageFile
	for _, entry := range entries {
		if entry.IsDir() || !IsImageFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, ImageFile{Name: entry.Name(), Size: info.Size()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// ReadFile reads the bytes of an image inside a category.
func (l *Library) ReadFile(category, filename string) ([]byte, error) {
	path, err := l.resolve(category, filename)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s/%s: %w", category, filename, err)
	}
	return data, nil
}

// Stat returns the name and size of an image inside a category.
func (l *Library) Stat(category, filename string) (ImageFile, error) {
	path, err := l.resolve(category, filename)
	if err != nil {
		return ImageFile{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return ImageFile{}, fmt.Errorf("stat %s/%s: %w", category, filename, err)
	}
	if info.IsDir() {
		return ImageFile{}, fmt.Errorf("%s/%s is a directory", category, filename)
	}
	return ImageFile{Name: filename, Size: info.Size()}, nil
}

// Delete removes an image file from a category.
func (l *Library) Delete(category, filename string) error {
	path, err := l.resolve(category, filename)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return err
	}
	return nil
}

// resolve joins path components under the base directory and rejects any
// component that would escape it.
func (l *Library) resolve(components ...string) (string, error) {
	for _, c := range components {
		if c == "" || c == "." || c == ".." || strings.ContainsAny(c, `/\`) {
			return "", fmt.Errorf("invalid path component: %q", c)
		}
	}
	path := filepath.Join(append([]string{l.baseDir}, components...)...)
	if !strings.HasPrefix(path, l.baseDir+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes library dir: %q", path)
	}
	return path, nil
}
