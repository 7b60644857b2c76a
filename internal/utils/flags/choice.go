package flags

import (
	"fmt"
	"strings"
)

const (
	choiceSeparatorConstant       = "|"
	choiceListSeparatorConstant   = ", "
	choicePlaceholderTemplate     = "<%s>"
	choiceUsageTemplateConstant   = "`%s` %s"
	choiceUsageBareTemplate       = "`%s`"
	choiceUnsupportedTemplateText = "%q is not one of %s"
)

// Choice describes a flag that accepts one value out of a fixed, case-insensitive set.
type Choice struct {
	Default string
	Values  []string
}

// Usage renders the accepted values with the default upper-cased, followed by description.
func (choice Choice) Usage(description string) string {
	defaultValue := strings.ToLower(strings.TrimSpace(choice.Default))
	rendered := make([]string, 0, len(choice.Values))
	for _, value := range choice.normalizedValues() {
		if value == defaultValue {
			value = strings.ToUpper(value)
		}
		rendered = append(rendered, value)
	}

	placeholder := fmt.Sprintf(choicePlaceholderTemplate, strings.Join(rendered, choiceSeparatorConstant))
	trimmedDescription := strings.TrimSpace(description)
	if len(trimmedDescription) == 0 {
		return fmt.Sprintf(choiceUsageBareTemplate, placeholder)
	}
	return fmt.Sprintf(choiceUsageTemplateConstant, placeholder, trimmedDescription)
}

// Resolve returns the lower-case accepted value matching rawValue. A blank value selects the default.
func (choice Choice) Resolve(rawValue string) (string, error) {
	candidate := strings.ToLower(strings.TrimSpace(rawValue))
	if len(candidate) == 0 {
		candidate = strings.ToLower(strings.TrimSpace(choice.Default))
	}

	accepted := choice.normalizedValues()
	for _, value := range accepted {
		if value == candidate {
			return value, nil
		}
	}
	return "", fmt.Errorf(choiceUnsupportedTemplateText, rawValue, strings.Join(accepted, choiceListSeparatorConstant))
}

func (choice Choice) normalizedValues() []string {
	normalized := make([]string, 0, len(choice.Values))
	seen := make(map[string]struct{}, len(choice.Values))
	for _, value := range choice.Values {
		trimmed := strings.ToLower(strings.TrimSpace(value))
		if _, duplicate := seen[trimmed]; duplicate || len(trimmed) == 0 {
			continue
		}
		seen[trimmed] = struct{}{}
		normalized = append(normalized, trimmed)
	}
	return normalized
}
