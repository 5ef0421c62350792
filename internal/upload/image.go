// Package upload validates and stores product image files.
package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
)

// ImageFieldName is the form field image uploads are reported under.
const ImageFieldName = "image_files"

// ImagePrefix is the content type prefix every image upload must carry.
const ImagePrefix = "image/"

var (
	ErrNotImage = errors.New("selected file must be an image")
	ErrTooLarge = errors.New("selected file is too large")
)

// ImageFile is one submitted file. Open yields its content.
type ImageFile struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// FromFileHeader adapts a parsed multipart file.
func FromFileHeader(fh *multipart.FileHeader) ImageFile {
	return ImageFile{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// CheckFileType reports whether the declared content type starts with prefix.
func (f ImageFile) CheckFileType(prefix string) bool {
	return strings.HasPrefix(strings.ToLower(f.ContentType), prefix)
}

// CheckFileSize reports whether the file fits in maxKB kilobytes.
func (f ImageFile) CheckFileSize(maxKB int) bool {
	return f.Size <= int64(maxKB)*1024
}

// FileError describes the first rejected file of a submission.
type FileError struct {
	Field    string
	Filename string
	MaxKB    int
	Err      error
}

func (e *FileError) Error() string {
	if errors.Is(e.Err, ErrTooLarge) {
		return fmt.Sprintf("%s: must not exceed %d KB", e.Err, e.MaxKB)
	}
	return e.Err.Error()
}

func (e *FileError) Unwrap() error { return e.Err }

// ValidateImages checks files in order and stops at the first violation.
// A file that fails both checks is reported as not being an image.
func ValidateImages(files []ImageFile, maxKB int) error {
	for _, file := range files {
		if !file.CheckFileType(ImagePrefix) {
			return &FileError{Field: ImageFieldName, Filename: file.Filename, MaxKB: maxKB, Err: ErrNotImage}
		}
		if !file.CheckFileSize(maxKB) {
			return &FileError{Field: ImageFieldName, Filename: file.Filename, MaxKB: maxKB, Err: ErrTooLarge}
		}
	}
	return nil
}
