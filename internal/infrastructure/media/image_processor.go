// Package media provides property photo processing utilities
package media

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// Widths of the WebP renditions generated for each property photo.
var renditionWidths = []int{1200, 600, 300}

// ImageProcessor handles photo ingestion for the property catalog.
type ImageProcessor struct {
	basePath string // Points to ~/aldiyar-server/media
}

// NewImageProcessor creates a new ImageProcessor instance
func NewImageProcessor(basePath string) *ImageProcessor {
	return &ImageProcessor{
		basePath: basePath,
	}
}

var binaryPattern = regexp.MustCompile(`^data:image/\w+;base64,`)

// ProcessPropertyPhoto decodes a base64 photo upload, stores the original
// under photos/{propertyID}/, and generates WebP renditions. Returns the
// relative URL paths (original first, then renditions widest first).
func (p *ImageProcessor) ProcessPropertyPhoto(data, propertyID string) (string, []string, error) {
	if data == "" {
		return "", nil, fmt.Errorf("empty base64 data")
	}

	ext := extractExtension(data)
	if ext == "" {
		return "", nil, fmt.Errorf("unsupported image format")
	}

	timestamp := time.Now().UnixMilli()
	filename := fmt.Sprintf("%s-%d.%s", propertyID, timestamp, ext)

	photoDir := filepath.Join(p.basePath, "photos", propertyID)
	if err := os.MkdirAll(photoDir, 0755); err != nil {
		return "", nil, fmt.Errorf("failed to create photo directory: %w", err)
	}

	originalPath, err := writeBinaryImage(data, filename, photoDir)
	if err != nil {
		return "", nil, err
	}

	renditions, err := p.generateRenditions(originalPath, propertyID, timestamp, photoDir)
	if err != nil {
		os.Remove(originalPath)
		return "", nil, fmt.Errorf("failed to generate renditions: %w", err)
	}

	relativeOriginal := fmt.Sprintf("/media/photos/%s/%s", propertyID, filename)
	relativeRenditions := make([]string, len(renditions))
	for i, path := range renditions {
		relativeRenditions[i] = fmt.Sprintf("/media/photos/%s/%s", propertyID, filepath.Base(path))
	}

	return relativeOriginal, relativeRenditions, nil
}

// DeletePropertyPhotos removes every stored file for a property.
func (p *ImageProcessor) DeletePropertyPhotos(propertyID string) error {
	if propertyID == "" {
		return fmt.Errorf("empty property id")
	}
	photoDir := filepath.Join(p.basePath, "photos", propertyID)
	if err := os.RemoveAll(photoDir); err != nil {
		return fmt.Errorf("failed to remove photo directory: %w", err)
	}
	return nil
}

// generateRenditions creates the WebP renditions for a stored original.
func (p *ImageProcessor) generateRenditions(originalPath, propertyID string, timestamp int64, targetDir string) ([]string, error) {
	file, err := os.Open(originalPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open original file: %w", err)
	}
	defer file.Close()

	img, err := imaging.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	paths := make([]string, len(renditionWidths))
	for i, width := range renditionWidths {
		resized := imaging.Resize(img, width, 0, imaging.Lanczos)

		renditionName := fmt.Sprintf("%s-%d_%dpx.webp", propertyID, timestamp, width)
		renditionPath := filepath.Join(targetDir, renditionName)

		if err := webp.Save(renditionPath, resized, &webp.Options{Quality: 85}); err != nil {
			for j := range i {
				os.Remove(paths[j])
			}
			return nil, fmt.Errorf("failed to save WebP rendition %s: %w", renditionName, err)
		}
		paths[i] = renditionPath
	}

	return paths, nil
}

// extractExtension auto-detects file extension from the data URL MIME type.
func extractExtension(data string) string {
	switch {
	case hasMIME(data, "image/png"):
		return "png"
	case hasMIME(data, "image/jpeg"), hasMIME(data, "image/jpg"):
		return "jpg"
	case hasMIME(data, "image/webp"):
		return "webp"
	default:
		return ""
	}
}

func hasMIME(data, mime string) bool {
	prefix := "data:" + mime
	return len(data) >= len(prefix) && data[:len(prefix)] == prefix
}

// writeBinaryImage decodes a binary data URL and writes it to disk.
func writeBinaryImage(data, filename, targetDir string) (string, error) {
	if !binaryPattern.MatchString(data) {
		return "", fmt.Errorf("invalid binary image base64 format")
	}

	b64Data := binaryPattern.ReplaceAllString(data, "")
	decoded, err := base64.StdEncoding.DecodeString(b64Data)
	if err != nil {
		return "", fmt.Errorf("failed to decode base64: %w", err)
	}

	fullPath := filepath.Join(targetDir, filename)
	if err := os.WriteFile(fullPath, decoded, 0644); err != nil {
		return "", fmt.Errorf("failed to write binary file: %w", err)
	}

	return fullPath, nil
}
