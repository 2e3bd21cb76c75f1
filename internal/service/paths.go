package service

import (
	"fmt"
	"path/filepath"
	"strings"

	"clipforge/internal/appdirs"
)

var appDirsResolver = appdirs.Resolve

func resolveClipsDir(videoName string) (string, error) {
	dirs, err := appDirsResolver()
	if err != nil {
		return "", err
	}
	return appdirs.ClipsDirFor(dirs, videoName), nil
}

func resolveMetadataDir(videoName string) (string, error) {
	dirs, err := appDirsResolver()
	if err != nil {
		return "", err
	}
	return appdirs.MetadataDirFor(dirs, videoName), nil
}

// resolveFramesDir holds the throwaway frame grabs for one task.
func resolveFramesDir(taskId string) (string, error) {
	if strings.TrimSpace(taskId) == "" {
		return "", fmt.Errorf("task id is empty")
	}
	dirs, err := appDirsResolver()
	if err != nil {
		return "", err
	}
	cacheRoot := strings.TrimSpace(dirs.CacheDir)
	if cacheRoot == "" {
		cacheRoot = "cache"
	}
	return filepath.Join(cacheRoot, "frames", taskId), nil
}
