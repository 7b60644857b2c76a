package flags_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gamerelease/internal/utils/flags"
)

func TestChoiceUsage(t *testing.T) {
	testCases := []struct {
		name           string
		choice         flags.Choice
		description    string
		expectedOutput string
	}{
		{
			name:           "registry_format",
			choice:         flags.Choice{Default: "json", Values: []string{"json", "yaml"}},
			description:    "Render the registry in the selected format.",
			expectedOutput: "`<JSON|yaml>` Render the registry in the selected format.",
		},
		{
			name:           "log_format",
			choice:         flags.Choice{Default: "structured", Values: []string{"console", "structured"}},
			description:    "Override the configured log format.",
			expectedOutput: "`<console|STRUCTURED>` Override the configured log format.",
		},
		{
			name:           "duplicates_and_case_collapsed",
			choice:         flags.Choice{Default: "Info", Values: []string{"debug", "INFO", "info", " warn "}},
			expectedOutput: "`<debug|INFO|warn>`",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			require.Equal(t, testCase.expectedOutput, testCase.choice.Usage(testCase.description))
		})
	}
}

func TestChoiceResolve(t *testing.T) {
	choice := flags.Choice{Default: "json", Values: []string{"json", "yaml"}}

	for input, expected := range map[string]string{"yaml": "yaml", " YAML ": "yaml", "Json": "json", "": "json"} {
		resolved, resolveError := choice.Resolve(input)
		require.NoError(t, resolveError, input)
		require.Equal(t, expected, resolved, input)
	}

	_, resolveError := choice.Resolve("toml")
	require.EqualError(t, resolveError, `"toml" is not one of json, yaml`)
}
