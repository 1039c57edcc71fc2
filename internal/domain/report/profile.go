package report

import (
	"fmt"
	"sort"

	apperrors "github.com/yanqian/surf-report/pkg/errors"
)

// Provider names a generation backend.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGoogle Provider = "google"
)

// ModelProfile declares what a generation model accepts.
type ModelProfile struct {
	ID       string
	Provider Provider
	// InstructionRole is the role carrying the prompt ("system" or "developer"
	// for OpenAI). Empty means the model takes no separate instruction and the
	// prompt is sent as the user turn.
	InstructionRole         string
	SupportsTemperature     bool
	SupportsTopP            bool
	SupportsMaxOutputTokens bool
	ReasoningEffort         string
}

var profiles = map[string]ModelProfile{
	"gpt-4o": {
		ID:                      "gpt-4o",
		Provider:                ProviderOpenAI,
		InstructionRole:         "system",
		SupportsTemperature:     true,
		SupportsTopP:            true,
		SupportsMaxOutputTokens: true,
	},
	"o3-mini": {
		ID:              "o3-mini",
		Provider:        ProviderOpenAI,
		InstructionRole: "developer",
		ReasoningEffort: "medium",
	},
	"gemini-1.5-pro": {
		ID:                      "gemini-1.5-pro",
		Provider:                ProviderGoogle,
		InstructionRole:         "system",
		SupportsTemperature:     true,
		SupportsTopP:            true,
		SupportsMaxOutputTokens: true,
	},
	"gemini-2.0-flash-thinking-exp-01-21": {
		ID:                  "gemini-2.0-flash-thinking-exp-01-21",
		Provider:            ProviderGoogle,
		SupportsTemperature: true,
	},
}

// LookupProfile returns the capability profile for a model id.
func LookupProfile(model string) (ModelProfile, error) {
	p, ok := profiles[model]
	if !ok {
		return ModelProfile{}, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("unsupported model %q", model), nil)
	}
	return p, nil
}

// Models lists the supported model ids in lexical order.
func Models() []string {
	out := make([]string, 0, len(profiles))
	for id := range profiles {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
