package memory

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"rhel-assessment-service/internal/domain"
)

// FileBank loads a question bank from a YAML file of the form
// `questions: [...]`. The file is re-read on every load; BankSource caches it.
type FileBank struct {
	path string
}

func NewFileBank(path string) *FileBank {
	return &FileBank{path: path}
}

func (b *FileBank) LoadBank(_ context.Context) ([]domain.Question, error) {
	return ReadBankFile(b.path)
}

type bankDocument struct {
	Questions []domain.Question `yaml:"questions"`
}

// ReadBankFile parses and validates a bank file.
func ReadBankFile(path string) ([]domain.Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc bankDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse bank %s: %w", path, err)
	}
	if err := domain.ValidateQuestionSet(doc.Questions); err != nil {
		return nil, fmt.Errorf("bank %s: %w", path, err)
	}
	return doc.Questions, nil
}
