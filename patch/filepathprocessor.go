package patch

import (
	"fmt"
	"os"
	"strings"

	"github.com/bitrise-io/go-utils/v2/env"
)

type pathModifier interface {
	AbsPath(pth string) (string, error)
}

type pathChecker interface {
	IsPathExists(pth string) (bool, error)
	IsDirExists(pth string) (bool, error)
}

// FilePathProcessor accepts patch file paths separated by the newline (`\n`) character
// and returns a slice of absolute paths.
type FilePathProcessor interface {
	ProcessFilePaths(string) ([]string, error)
}

type filePathProcessor struct {
	repository   env.Repository
	pathModifier pathModifier
	pathChecker  pathChecker
}

// NewFilePathProcessor returns a FilePathProcessor handling paths given as environment
// variables, relative paths and absolute paths. Every path must exist and must not be a
// directory.
func NewFilePathProcessor(repository env.Repository, modifier pathModifier, checker pathChecker) FilePathProcessor {
	return filePathProcessor{
		repository:   repository,
		pathModifier: modifier,
		pathChecker:  checker,
	}
}

func (f filePathProcessor) ProcessFilePaths(filePaths string) ([]string, error) {
	filePaths = strings.TrimSpace(filePaths)
	if filePaths == "" {
		return nil, nil
	}

	var processedFilePaths []string

	list := strings.Split(filePaths, "\n")
	for _, item := range list {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		expanded, err := f.expand(item)
		if err != nil {
			return nil, err
		}

		path, err := f.pathModifier.AbsPath(expanded)
		if err != nil {
			return nil, err
		}

		exists, err := f.pathChecker.IsPathExists(path)
		if err != nil {
			return nil, fmt.Errorf("failed to check if path (%s) exists: %w", path, err)
		}
		if !exists {
			return nil, fmt.Errorf("patch (%s) does not exist", path)
		}

		isDir, err := f.pathChecker.IsDirExists(path)
		if err != nil {
			return nil, fmt.Errorf("failed to check if path (%s) is a directory: %w", path, err)
		}
		if isDir {
			return nil, fmt.Errorf("path (%s) is a directory, please make sure to only provide patch files", path)
		}

		processedFilePaths = append(processedFilePaths, path)
	}

	return processedFilePaths, nil
}

func (f filePathProcessor) expand(item string) (string, error) {
	var missing string
	expanded := os.Expand(item, func(key string) string {
		value := f.repository.Get(key)
		if value == "" && missing == "" {
			missing = key
		}
		return value
	})
	if missing != "" {
		return "", fmt.Errorf("invalid item (%s): environment variable %s isn't set", item, missing)
	}
	return expanded, nil
}
