package flags

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

const (
	toggleTrueValueConstant        = "true"
	toggleFalseValueConstant       = "false"
	toggleValueTypeConstant        = "bool"
	toggleLongPrefixConstant       = "--"
	toggleAssignmentConstant       = "="
	toggleArgumentTerminator       = "--"
	toggleEnabledPlaceholder       = "<YES|no>"
	toggleDisabledPlaceholder      = "<yes|NO>"
	toggleUsageTemplateConstant    = "`%s` %s"
	toggleInvalidValueTemplate     = "invalid value %q for a yes/no flag"
	toggleUsagePlaceholderTemplate = "`%s`"
)

// ToggleRegistry records the yes/no flags of one command tree so that the
// "--flag value" spelling can be joined into "--flag=value" before cobra parses
// the arguments. Each Application owns its registry.
type ToggleRegistry struct {
	names map[string]struct{}
}

// NewToggleRegistry returns an empty registry.
func NewToggleRegistry() *ToggleRegistry {
	return &ToggleRegistry{names: map[string]struct{}{}}
}

// Add defines a yes/no flag on flagSet that also accepts a bare "--name".
func (registry *ToggleRegistry) Add(flagSet *pflag.FlagSet, target *bool, name string, defaultValue bool, usage string) {
	if registry == nil || flagSet == nil || len(name) == 0 {
		return
	}

	flagSet.Var(newToggleValue(target, defaultValue), name, describeToggle(usage, defaultValue))
	if definedFlag := flagSet.Lookup(name); definedFlag != nil {
		definedFlag.NoOptDefVal = toggleTrueValueConstant
	}
	registry.names[name] = struct{}{}
}

// Normalize joins a registered toggle with the following argument when that
// argument is a yes/no literal. Any other following argument, such as an
// application name, stays positional.
func (registry *ToggleRegistry) Normalize(arguments []string) []string {
	normalized := make([]string, 0, len(arguments))
	for argumentIndex := 0; argumentIndex < len(arguments); argumentIndex++ {
		argument := arguments[argumentIndex]
		if argument == toggleArgumentTerminator {
			return append(normalized, arguments[argumentIndex:]...)
		}

		hasFollowingValue := argumentIndex+1 < len(arguments)
		if hasFollowingValue && registry.isBareToggle(argument) {
			if _, parseError := parseToggle(arguments[argumentIndex+1]); parseError == nil {
				normalized = append(normalized, argument+toggleAssignmentConstant+arguments[argumentIndex+1])
				argumentIndex++
				continue
			}
		}
		normalized = append(normalized, argument)
	}
	return normalized
}

func (registry *ToggleRegistry) isBareToggle(argument string) bool {
	if registry == nil || !strings.HasPrefix(argument, toggleLongPrefixConstant) || strings.Contains(argument, toggleAssignmentConstant) {
		return false
	}
	_, registered := registry.names[strings.TrimPrefix(argument, toggleLongPrefixConstant)]
	return registered
}

func describeToggle(usage string, defaultValue bool) string {
	placeholder := toggleDisabledPlaceholder
	if defaultValue {
		placeholder = toggleEnabledPlaceholder
	}
	trimmedUsage := strings.TrimSpace(usage)
	if len(trimmedUsage) == 0 {
		return fmt.Sprintf(toggleUsagePlaceholderTemplate, placeholder)
	}
	return fmt.Sprintf(toggleUsageTemplateConstant, placeholder, trimmedUsage)
}

func parseToggle(rawValue string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(rawValue)) {
	case "", "true", "t", "yes", "y", "on", "1":
		return true, nil
	case "false", "f", "no", "n", "off", "0":
		return false, nil
	default:
		return false, fmt.Errorf(toggleInvalidValueTemplate, rawValue)
	}
}

type toggleValue struct {
	target *bool
}

func newToggleValue(target *bool, defaultValue bool) *toggleValue {
	if target == nil {
		target = new(bool)
	}
	*target = defaultValue
	return &toggleValue{target: target}
}

func (value *toggleValue) Set(rawValue string) error {
	parsed, parseError := parseToggle(rawValue)
	if parseError != nil {
		return parseError
	}
	*value.target = parsed
	return nil
}

func (value *toggleValue) String() string {
	if value == nil || value.target == nil || !*value.target {
		return toggleFalseValueConstant
	}
	return toggleTrueValueConstant
}

func (value *toggleValue) Type() string {
	return toggleValueTypeConstant
}
