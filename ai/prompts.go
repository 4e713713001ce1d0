package ai

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"impactdash/internal"
)

//go:embed prompts/*.txt
var builtinPrompts embed.FS

// PromptChatSystem is the analyst system prompt; it takes {CONTEXT}
const PromptChatSystem = "chat_system"

// PromptManager loads prompt templates from PromptsDir, falling back to
// the templates compiled into the binary.
type PromptManager struct {
	PromptsDir string
	logger     *internal.Logger
}

// NewPromptManager creates a prompt manager. An empty dir uses only the
// built-in templates.
func NewPromptManager(promptsDir string, logger *internal.Logger) *PromptManager {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	if promptsDir != "" {
		logger.Info("[PromptManager] Initialized for directory: %s", promptsDir)
	}
	return &PromptManager{PromptsDir: promptsDir, logger: logger}
}

// LoadPrompt loads a prompt template by name
func (pm *PromptManager) LoadPrompt(name string) (string, error) {
	if pm.PromptsDir != "" {
		path := filepath.Join(pm.PromptsDir, name+".txt")
		content, err := os.ReadFile(path)
		if err == nil {
			return string(content), nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to load prompt %s: %w", name, err)
		}
		pm.logger.Debug("[PromptManager] %s not in %s, using built-in", name, pm.PromptsDir)
	}

	content, err := builtinPrompts.ReadFile("prompts/" + name + ".txt")
	if err != nil {
		return "", fmt.Errorf("prompt template not found: %s", name)
	}
	return string(content), nil
}

// RenderPrompt replaces {PLACEHOLDER} with values
func (pm *PromptManager) RenderPrompt(name string, replacements map[string]string) (string, error) {
	template, err := pm.LoadPrompt(name)
	if err != nil {
		return "", err
	}

	result := template
	for placeholder, value := range replacements {
		placeholderKey := "{" + placeholder + "}"
		result = strings.ReplaceAll(result, placeholderKey, value)
	}

	return result, nil
}

// SystemPrompt renders the chat system prompt around a data context
func (pm *PromptManager) SystemPrompt(context string) (string, error) {
	return pm.RenderPrompt(PromptChatSystem, map[string]string{"CONTEXT": context})
}
