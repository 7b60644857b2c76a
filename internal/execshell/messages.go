package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
)

const (
	gitTagSubcommandNameConstant      = "tag"
	gitTagListFlagConstant            = "-l"
	gitTagDeleteFlagConstant          = "-d"
	gitPushSubcommandNameConstant     = "push"
	gitStatusSubcommandNameConstant   = "status"
	gitRevParseSubcommandNameConstant = "rev-parse"
	gitPathSeparatorArgumentConstant  = "--"
	gitOptionPrefixConstant           = "-"
	gitMessageFlagConstant            = "-m"
)

const (
	gitTagLookupStartTemplateConstant            = "Checking whether tag %s exists in %s"
	gitTagLookupSuccessTemplateConstant          = "Checked tag %s in %s"
	gitTagLookupFailureTemplateConstant          = "Failed to check tag %s in %s (exit code %d%s)"
	gitTagLookupExecutionFailureTemplateConstant = "Unable to check tag %s in %s: %s"
	gitTagCreateStartTemplateConstant            = "Creating tag %s in %s"
	gitTagCreateSuccessTemplateConstant          = "Created tag %s in %s"
	gitTagCreateFailureTemplateConstant          = "Failed to create tag %s in %s (exit code %d%s)"
	gitTagCreateExecutionFailureTemplateConstant = "Unable to create tag %s in %s: %s"
	gitTagDeleteStartTemplateConstant            = "Deleting local tag %s in %s"
	gitTagDeleteSuccessTemplateConstant          = "Deleted local tag %s in %s"
	gitTagDeleteFailureTemplateConstant          = "Failed to delete local tag %s in %s (exit code %d%s)"
	gitTagDeleteExecutionFailureTemplateConstant = "Unable to delete local tag %s in %s: %s"
	gitPushStartTemplateConstant                 = "Pushing %s to %s from %s"
	gitPushSuccessTemplateConstant               = "Pushed %s to %s from %s"
	gitPushFailureTemplateConstant               = "Failed to push %s to %s from %s (exit code %d%s)"
	gitPushExecutionFailureTemplateConstant      = "Unable to push %s to %s from %s: %s"
	gitStatusStartTemplateConstant               = "Reviewing working tree status of %s"
	gitStatusSuccessTemplateConstant             = "Collected working tree status of %s"
	gitStatusFailureTemplateConstant             = "Failed to review working tree status of %s (exit code %d%s)"
	gitStatusExecutionFailureTemplateConstant    = "Unable to review working tree status of %s: %s"
	gitRevParseStartTemplateConstant             = "Locating repository root from %s"
	gitRevParseSuccessTemplateConstant           = "Located repository root from %s"
	gitRevParseFailureTemplateConstant           = "Failed to locate repository root from %s (exit code %d%s)"
	gitRevParseExecutionFailureTemplateConstant  = "Unable to locate repository root from %s: %s"
)

// CommandMessageFormatter renders human-readable sentences for git lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage describes a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.build(command, messageStageStart, ExecutionResult{}, nil)
}

// BuildCompletedMessage describes a finished command, distinguishing success from a non-zero exit.
func (formatter CommandMessageFormatter) BuildCompletedMessage(command ShellCommand, result ExecutionResult) string {
	if result.ExitCode == 0 {
		return formatter.build(command, messageStageSuccess, result, nil)
	}
	return formatter.build(command, messageStageFailure, result, nil)
}

// BuildExecutionFailureMessage describes a command that could not be executed.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.build(command, messageStageExecutionFailure, ExecutionResult{}, failure)
}

func (formatter CommandMessageFormatter) build(command ShellCommand, stage messageStage, result ExecutionResult, failure error) string {
	arguments := command.Details.Arguments
	workingDirectory := workingDirectoryLabel(command.Details.WorkingDirectory)
	failureText := failureLabel(failure)
	standardErrorSuffix := formatStandardErrorSuffix(result.StandardError)

	if command.Name != CommandGit || len(arguments) == 0 {
		return genericMessage(command, stage, result, failureText, standardErrorSuffix)
	}

	switch arguments[0] {
	case gitTagSubcommandNameConstant:
		tagName := lastPositionalArgument(arguments[1:])
		templates := [4]string{gitTagCreateStartTemplateConstant, gitTagCreateSuccessTemplateConstant, gitTagCreateFailureTemplateConstant, gitTagCreateExecutionFailureTemplateConstant}
		if containsArgument(arguments, gitTagListFlagConstant) {
			templates = [4]string{gitTagLookupStartTemplateConstant, gitTagLookupSuccessTemplateConstant, gitTagLookupFailureTemplateConstant, gitTagLookupExecutionFailureTemplateConstant}
		} else if containsArgument(arguments, gitTagDeleteFlagConstant) {
			templates = [4]string{gitTagDeleteStartTemplateConstant, gitTagDeleteSuccessTemplateConstant, gitTagDeleteFailureTemplateConstant, gitTagDeleteExecutionFailureTemplateConstant}
		}
		return renderStage(templates, stage, []any{tagName, workingDirectory}, result.ExitCode, standardErrorSuffix, failureText)
	case gitPushSubcommandNameConstant:
		remoteName := valueAt(arguments, 1)
		reference := valueAt(arguments, 2)
		templates := [4]string{gitPushStartTemplateConstant, gitPushSuccessTemplateConstant, gitPushFailureTemplateConstant, gitPushExecutionFailureTemplateConstant}
		return renderStage(templates, stage, []any{reference, remoteName, workingDirectory}, result.ExitCode, standardErrorSuffix, failureText)
	case gitStatusSubcommandNameConstant:
		target := workingDirectory
		if pathArgument := argumentAfterSeparator(arguments); len(pathArgument) > 0 {
			target = pathArgument
		}
		templates := [4]string{gitStatusStartTemplateConstant, gitStatusSuccessTemplateConstant, gitStatusFailureTemplateConstant, gitStatusExecutionFailureTemplateConstant}
		return renderStage(templates, stage, []any{target}, result.ExitCode, standardErrorSuffix, failureText)
	case gitRevParseSubcommandNameConstant:
		templates := [4]string{gitRevParseStartTemplateConstant, gitRevParseSuccessTemplateConstant, gitRevParseFailureTemplateConstant, gitRevParseExecutionFailureTemplateConstant}
		return renderStage(templates, stage, []any{workingDirectory}, result.ExitCode, standardErrorSuffix, failureText)
	default:
		return genericMessage(command, stage, result, failureText, standardErrorSuffix)
	}
}

func renderStage(templates [4]string, stage messageStage, subjects []any, exitCode int, standardErrorSuffix string, failureText string) string {
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(templates[0], subjects...)
	case messageStageSuccess:
		return fmt.Sprintf(templates[1], subjects...)
	case messageStageFailure:
		return fmt.Sprintf(templates[2], append(subjects, exitCode, standardErrorSuffix)...)
	default:
		return fmt.Sprintf(templates[3], append(subjects, failureText)...)
	}
}

func genericMessage(command ShellCommand, stage messageStage, result ExecutionResult, failureText string, standardErrorSuffix string) string {
	label := commandLabel(command)
	if trimmedDirectory := strings.TrimSpace(command.Details.WorkingDirectory); len(trimmedDirectory) > 0 {
		label += fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedDirectory)
	}

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, label)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, label)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, label, result.ExitCode, standardErrorSuffix)
	default:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, label, failureText)
	}
}

func workingDirectoryLabel(workingDirectory string) string {
	trimmed := strings.TrimSpace(workingDirectory)
	if len(trimmed) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmed
}

func failureLabel(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func formatStandardErrorSuffix(standardError string) string {
	trimmed := strings.TrimSpace(standardError)
	if len(trimmed) == 0 {
		return ""
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmed)
}

func containsArgument(arguments []string, expected string) bool {
	for _, argument := range arguments {
		if argument == expected {
			return true
		}
	}
	return false
}

func lastPositionalArgument(arguments []string) string {
	for index := len(arguments) - 1; index >= 0; index-- {
		if !strings.HasPrefix(arguments[index], gitOptionPrefixConstant) && (index == 0 || arguments[index-1] != gitMessageFlagConstant) {
			return arguments[index]
		}
	}
	return fallbackUnknownValueLabelConstant
}

func argumentAfterSeparator(arguments []string) string {
	for index, argument := range arguments {
		if argument == gitPathSeparatorArgumentConstant && index+1 < len(arguments) {
			return arguments[index+1]
		}
	}
	return ""
}

func valueAt(arguments []string, index int) string {
	if index < len(arguments) && len(strings.TrimSpace(arguments[index])) > 0 {
		return arguments[index]
	}
	return fallbackUnknownValueLabelConstant
}
