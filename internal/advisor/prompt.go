package advisor

import (
	_ "embed"
	"fmt"
	"os"

	"fridgetetris.app/internal/domain"
)

// Sampling presets per mode. Chaos runs hotter on purpose.
const (
	TemperatureNormal = 0.7
	TemperatureChaos  = 0.9

	// MaxTokens bounds the advice length for both transports.
	MaxTokens = 2048
)

//go:embed prompt.txt
var basePrompt string

const (
	normalInstruction = "Normal mode: maximum efficiency and cold-chain logic"
	chaosInstruction  = "Chaos mode: intentionally terrible but technically possible packing with evil commentary"
)

// Prompt assembles prompts for organize requests. The base prompt ships
// embedded; a deployment can swap it via a prompt file.
type Prompt struct {
	base string
}

// NewPrompt returns the built-in prompt, or one read from promptFile when
// non-empty.
func NewPrompt(promptFile string) (*Prompt, error) {
	if promptFile == "" {
		return &Prompt{base: basePrompt}, nil
	}
	data, err := os.ReadFile(promptFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file: %w", err)
	}
	return &Prompt{base: string(data)}, nil
}

// Build returns the full prompt for mode: the base prompt followed by the
// mode name and its instruction line.
func (p *Prompt) Build(mode domain.Mode) string {
	return fmt.Sprintf("%s\n\nMode: %s\n%s", p.base, mode, instruction(mode))
}

// Temperature maps a mode to its sampling temperature.
func Temperature(mode domain.Mode) float64 {
	if mode == domain.ModeChaos {
		return TemperatureChaos
	}
	return TemperatureNormal
}

func instruction(mode domain.Mode) string {
	if mode == domain.ModeChaos {
		return chaosInstruction
	}
	return normalInstruction
}
