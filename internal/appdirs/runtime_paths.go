package appdirs

import (
	"path/filepath"
	"strings"
)

const (
	ClipsRootName    = "clips"
	MetadataRootName = "metadata"
	dbFileName       = "clipforge.db"
)

// ClipsRootFor is the directory holding extracted clips, one subdir per video.
func ClipsRootFor(paths Paths) string {
	return filepath.Join(normalizeOutputDir(paths.OutputDir), ClipsRootName)
}

func ClipsDirFor(paths Paths, videoName string) string {
	return filepath.Join(ClipsRootFor(paths), videoName)
}

func MetadataRootFor(paths Paths) string {
	return filepath.Join(normalizeOutputDir(paths.OutputDir), MetadataRootName)
}

func MetadataDirFor(paths Paths, videoName string) string {
	return filepath.Join(MetadataRootFor(paths), videoName)
}

func DBPathFor(paths Paths) string {
	return filepath.Join(normalizeCacheDir(paths.CacheDir), dbFileName)
}

func ResolveClipsDir(videoName string) (string, error) {
	paths, err := Resolve()
	if err != nil {
		return "", err
	}
	return ClipsDirFor(paths, videoName), nil
}

func ResolveMetadataDir(videoName string) (string, error) {
	paths, err := Resolve()
	if err != nil {
		return "", err
	}
	return MetadataDirFor(paths, videoName), nil
}

func ResolveDBPath() (string, error) {
	paths, err := Resolve()
	if err != nil {
		return "", err
	}
	return DBPathFor(paths), nil
}

func normalizeOutputDir(outputDir string) string {
	cleaned := strings.TrimSpace(outputDir)
	if cleaned == "" {
		return "."
	}
	return filepath.Clean(cleaned)
}

func normalizeCacheDir(cacheDir string) string {
	cleaned := strings.TrimSpace(cacheDir)
	if cleaned == "" {
		return "cache"
	}
	return filepath.Clean(cleaned)
}
