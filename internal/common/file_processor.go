package common

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"resumebuilder/internal/errors"
	"resumebuilder/internal/schemas"
	"resumebuilder/internal/types"
	"resumebuilder/internal/upload"
	"resumebuilder/internal/utils"

	"gopkg.in/yaml.v3"
)

// FileProcessor handles common file operations
type FileProcessor struct {
	logger      *errors.Logger
	maxFileSize int64
}

// NewFileProcessor creates a new file processor instance.
// maxFileSize bounds uploads; zero means unlimited.
func NewFileProcessor(logger *errors.Logger, maxFileSize int64) *FileProcessor {
	return &FileProcessor{logger: logger, maxFileSize: maxFileSize}
}

// ReadFile reads content from a file with proper error handling
func (fp *FileProcessor) ReadFile(filename string) ([]byte, error) {
	file, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("File not found: %s", filename), err)
		}
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", filename), err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			// Log the error but don't override the main operation result
			if fp.logger != nil {
				fp.logger.Warn("Failed to close file", "filename", filename, "error", err)
			}
		}
	}()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to read file content: %s", filename), err)
	}

	return content, nil
}

// WriteFile writes content to a file, creating its directory
func (fp *FileProcessor) WriteFile(filename, content string) error {
	if err := utils.WriteFileAtomic(filename, []byte(content)); err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}
	return nil
}

// ReadUpload validates and reads a resume document for the enhancement service
func (fp *FileProcessor) ReadUpload(filename string) (upload.File, error) {
	if err := utils.ValidateInputFile(filename); err != nil {
		return upload.File{}, errors.NewValidationError("INVALID_INPUT_FILE",
			fmt.Sprintf("Invalid file %s", filename), err)
	}

	if fp.maxFileSize > 0 {
		info, err := os.Stat(filename)
		if err == nil && info.Size() > fp.maxFileSize {
			return upload.File{}, errors.NewValidationError("FILE_TOO_LARGE",
				fmt.Sprintf("File %s is %s, the limit is %s", filename,
					utils.FormatFileSize(info.Size()), utils.FormatFileSize(fp.maxFileSize)), nil)
		}
	}

	content, err := fp.ReadFile(filename)
	if err != nil {
		return upload.File{}, err
	}

	if fp.logger != nil {
		fp.logger.Debug("Upload read", "filename", filename, "size", len(content))
	}
	return upload.File{Name: filepath.Base(filename), Content: content}, nil
}

// LoadRecord reads a resume record from a JSON or YAML file and validates its shape
func (fp *FileProcessor) LoadRecord(filename string) (types.ResumeRecord, error) {
	if !utils.IsRecordFile(filename) {
		return types.ResumeRecord{}, errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("Record files must be .json, .yaml or .yml: %s", filename), nil)
	}

	content, err := fp.ReadFile(filename)
	if err != nil {
		return types.ResumeRecord{}, err
	}

	doc := content
	if utils.IsYAMLFile(filename) {
		doc, err = yamlToJSON(content)
		if err != nil {
			return types.ResumeRecord{}, errors.NewValidationError("INVALID_RECORD",
				fmt.Sprintf("Cannot parse YAML record: %s", filename), err)
		}
	}

	if err := schemas.ValidateRecord(doc); err != nil {
		return types.ResumeRecord{}, errors.NewValidationError("INVALID_RECORD",
			fmt.Sprintf("Invalid record: %s", filename), err)
	}

	var record types.ResumeRecord
	if err := json.Unmarshal(doc, &record); err != nil {
		return types.ResumeRecord{}, errors.NewValidationError("INVALID_RECORD",
			fmt.Sprintf("Invalid record: %s", filename), err)
	}
	return record.Normalize(), nil
}

func yamlToJSON(content []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return json.Marshal(doc)
}
