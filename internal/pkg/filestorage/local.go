package filestorage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/akhaled/studenthub/internal/pkg/logger"
)

// allowedExtensions is the set of image extensions accepted for upload.
var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// LocalStorage stores uploaded images on the local filesystem.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a LocalStorage rooted at basePath, creating the
// directory if needed.
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create upload directory")
		return nil, fmt.Errorf("failed to create upload directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Upload directory ensured")

	return &LocalStorage{basePath: basePath}, nil
}

// AllowedExtension reports whether a filename carries an accepted image
// extension. The check is case-insensitive.
func AllowedExtension(filename string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// SanitizeFilename strips directory components and unsafe characters from
// an uploaded filename so it can be joined with the upload directory.
func SanitizeFilename(filename string) string {
	// Drop any path the client sent, for both separator conventions.
	filename = filepath.Base(filename)
	if idx := strings.LastIndexAny(filename, `/\`); idx >= 0 {
		filename = filename[idx+1:]
	}

	var b strings.Builder
	for _, r := range filename {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	sanitized := strings.Trim(b.String(), ".")
	return sanitized
}

// SaveImage stores an uploaded image under the upload directory as
// {unixTimestamp}_{sanitizedName}. Disallowed extensions are silently
// ignored and return an empty filename.
func (ls *LocalStorage) SaveImage(fileHeader *multipart.FileHeader) (string, error) {
	if fileHeader == nil || fileHeader.Filename == "" {
		return "", nil
	}

	if !AllowedExtension(fileHeader.Filename) {
		logger.Warn().Str("filename", fileHeader.Filename).Msg("Upload ignored: extension not allowed")
		return "", nil
	}

	src, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded file")
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	storedName := fmt.Sprintf("%d_%s", time.Now().Unix(), SanitizeFilename(fileHeader.Filename))
	dstPath := ls.Path(storedName)

	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, src); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to write uploaded file content")
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	logger.Info().Str("filename", fileHeader.Filename).Str("saved_as", storedName).Msg("Image saved")
	return storedName, nil
}

// DeleteImage removes a stored image by filename. A missing file is treated
// as already deleted.
func (ls *LocalStorage) DeleteImage(filename string) error {
	if filename == "" {
		return nil
	}

	if base := filepath.Base(filename); base == "" || base == "." || base == string(filepath.Separator) {
		return fmt.Errorf("invalid filename: %s", filename)
	}

	// Path keeps only the filename portion before joining.
	physicalPath := ls.Path(filename)
	if _, err := os.Stat(physicalPath); os.IsNotExist(err) {
		logger.Warn().Str("path", physicalPath).Msg("Image to delete does not exist")
		return nil
	}

	if err := os.Remove(physicalPath); err != nil {
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete image")
		return fmt.Errorf("failed to delete image: %w", err)
	}

	logger.Info().Str("path", physicalPath).Msg("Image deleted")
	return nil
}

// Path returns the full filesystem path for a stored filename.
func (ls *LocalStorage) Path(filename string) string {
	return filepath.Join(ls.basePath, filepath.Base(filename))
}
