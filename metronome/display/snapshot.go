package display

import (
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// SnapshotScale is the dot size of saved snapshots.
const SnapshotScale = 4

// SavePNGToDir rasterizes the display and saves it with a timestamped name.
// An empty directory means the working directory.
func SavePNGToDir(lines [Rows]string, baseName, directory string) (string, error) {
	img := Rasterize(lines, SnapshotScale)

	timestamp := time.Now().Format("20060102_150405.000")
	filename := fmt.Sprintf("%s_%s.png", baseName, timestamp)

	var outputDir string
	if directory != "" {
		outputDir = directory
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %v", err)
		}
		outputDir = cwd
	}

	filePath := filepath.Join(outputDir, filename)
	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create file %s: %v", filePath, err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("failed to encode PNG: %v", err)
	}

	b := img.Bounds()
	slog.Info("Snapshot saved", "path", filePath, "size", fmt.Sprintf("%dx%d", b.Dx(), b.Dy()), "format", "PNG")
	return filePath, nil
}
