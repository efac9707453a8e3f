package services

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"
)

// InstructionLoader reads the system instruction file on every call so edits
// take effect without a restart. A missing file reads as no instruction.
type InstructionLoader struct {
	path   string
	logger *slog.Logger
}

func NewInstructionLoader(path string) *InstructionLoader {
	return &InstructionLoader{
		path:   path,
		logger: slog.Default().With("component", "instruction"),
	}
}

func (l *InstructionLoader) Load() string {
	if l.path == "" {
		return ""
	}
	data, err := os.ReadFile(l.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			l.logger.Warn("failed to read instruction file", "path", l.path, "error", err)
		}
		return ""
	}
	return strings.TrimSpace(string(data))
}

// composePrompt prefixes prompt with the instruction, separated by a blank line.
func composePrompt(instruction, prompt string) string {
	if instruction == "" {
		return prompt
	}
	return instruction + "\n\n" + prompt
}
