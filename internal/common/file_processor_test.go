package common

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"resumebuilder/internal/errors"
	"resumebuilder/internal/types"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}

func TestLoadRecord(t *testing.T) {
	fp := NewFileProcessor(errors.NewNopLogger(), 0)

	tests := []struct {
		name        string
		file        string
		content     string
		expectError bool
		expected    types.ResumeRecord
	}{
		{
			name: "yaml draft",
			file: "draft.yaml",
			content: `name: Jane
job_title: Eng
skills: [Go, SQL]
experience:
  - position: Engineer
    company: Acme
    years: "2019-2023"
`,
			expected: types.ResumeRecord{
				Name:       "Jane",
				JobTitle:   "Eng",
				Skills:     []string{"Go", "SQL"},
				Experience: []types.ExperienceEntry{{Position: "Engineer", Company: "Acme", Years: "2019-2023"}},
			},
		},
		{
			name:     "json with null lists",
			file:     "record.json",
			content:  `{"name": "Jane", "skills": null, "experience": null}`,
			expected: types.ResumeRecord{Name: "Jane", Skills: []string{}, Experience: []types.ExperienceEntry{}},
		},
		{
			name:     "empty yaml",
			file:     "empty.yml",
			content:  "",
			expected: types.ResumeRecord{Skills: []string{}, Experience: []types.ExperienceEntry{}},
		},
		{name: "wrong field type", file: "bad.json", content: `{"skills": "Go"}`, expectError: true},
		{name: "broken yaml", file: "bad.yaml", content: "name: [unterminated", expectError: true},
		{name: "unsupported extension", file: "draft.txt", content: "name: Jane", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := fp.LoadRecord(writeTemp(t, tt.file, tt.content))
			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error but got none")
				}
				if !errors.IsUserError(err) {
					t.Errorf("Expected a validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error but got: %v", err)
			}
			if !record.Equal(tt.expected) {
				t.Errorf("Expected %+v, got %+v", tt.expected, record)
			}
		})
	}
}

func TestReadUpload(t *testing.T) {
	path := writeTemp(t, "resume.txt", "Jane Doe\nEngineer")

	file, err := NewFileProcessor(errors.NewNopLogger(), 0).ReadUpload(path)
	if err != nil {
		t.Fatalf("Expected no error but got: %v", err)
	}
	if file.Name != "resume.txt" {
		t.Errorf("Expected name 'resume.txt', got '%s'", file.Name)
	}
	if string(file.Content) != "Jane Doe\nEngineer" {
		t.Errorf("Unexpected content: %q", file.Content)
	}

	_, err = NewFileProcessor(errors.NewNopLogger(), 4).ReadUpload(path)
	if !errors.HasCode(err, "FILE_TOO_LARGE") {
		t.Errorf("Expected FILE_TOO_LARGE, got %v", err)
	}

	_, err = NewFileProcessor(errors.NewNopLogger(), 0).ReadUpload(filepath.Join(t.TempDir(), "missing.pdf"))
	if !errors.IsUserError(err) {
		t.Errorf("Expected a validation error, got %v", err)
	}
}

func TestRunFileCommand(t *testing.T) {
	path := writeTemp(t, "draft.json", `{"name": "Jane", "skills": ["Go"]}`)
	var out bytes.Buffer
	runner := Runner{Logger: errors.NewNopLogger(), Out: &out}

	var logged bool
	err := RunFileCommand(context.Background(), runner, CommandConfig{OutputFormat: "json"}, path,
		(*FileProcessor).LoadRecord,
		func(ctx context.Context, r types.ResumeRecord) (types.ResumeRecord, error) {
			r.Name = strings.ToUpper(r.Name)
			return r, nil
		},
		func(r types.ResumeRecord, cfg CommandConfig) { logged = true },
	)
	if err != nil {
		t.Fatalf("Expected no error but got: %v", err)
	}
	if !logged {
		t.Errorf("Expected logDetails to be called")
	}
	if !strings.Contains(out.String(), `"name": "JANE"`) {
		t.Errorf("Expected formatted record in output, got %s", out.String())
	}
}

func TestHandleOutputToFile(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "out.json")
	handler := NewOutputHandler(errors.NewNopLogger(), nil)

	if err := handler.HandleOutput(map[string]int{"score": 80}, CommandConfig{OutputFile: target, OutputFormat: "json"}); err != nil {
		t.Fatalf("Expected no error but got: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	if !strings.Contains(string(data), `"score": 80`) {
		t.Errorf("Unexpected output file content: %s", data)
	}

	err = handler.HandleOutput(map[string]int{}, CommandConfig{OutputFormat: "yaml"})
	if !errors.HasCode(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Expected INVALID_FORMAT, got %v", err)
	}
}
