package releases

import (
	"fmt"
	"strings"

	"github.com/temirov/gamerelease/internal/failures"
)

const (
	publishErrorTemplateConstant             = "publish %s %s failed at %s (%s): %s"
	publishErrorCauseTemplateConstant        = "%s: %v"
	retainedSideEffectsPrefixConstant        = "; left in place: "
	retainedSideEffectsJoinerConstant        = ", "
	retainedReleaseDirectoryTemplateConstant = "release directory %s"
	retainedLocalTagTemplateConstant         = "local tag %s"
)

// PublishError reports a failed publish, the stage it failed in, and the side
// effects of earlier stages that remain for the operator to resolve.
type PublishError struct {
	Stage                    Stage
	Code                     ErrorCode
	Kind                     failures.Kind
	ApplicationName          string
	Version                  string
	TagName                  string
	ReleasePath              string
	Message                  string
	ReleaseDirectoryRetained bool
	LocalTagRetained         bool
	Cause                    error
}

// Error describes the failure and any retained side effects.
func (publishError *PublishError) Error() string {
	message := fmt.Sprintf(publishErrorTemplateConstant, publishError.ApplicationName, publishError.Version, publishError.Stage, publishError.Code, publishError.Message)
	if publishError.Cause != nil {
		message = fmt.Sprintf(publishErrorCauseTemplateConstant, message, publishError.Cause)
	}

	var retained []string
	if publishError.ReleaseDirectoryRetained {
		retained = append(retained, fmt.Sprintf(retainedReleaseDirectoryTemplateConstant, publishError.ReleasePath))
	}
	if publishError.LocalTagRetained {
		retained = append(retained, fmt.Sprintf(retainedLocalTagTemplateConstant, publishError.TagName))
	}
	if len(retained) > 0 {
		message += retainedSideEffectsPrefixConstant + strings.Join(retained, retainedSideEffectsJoinerConstant)
	}
	return message
}

// Unwrap exposes the underlying cause.
func (publishError *PublishError) Unwrap() error {
	return publishError.Cause
}

// FailureKind implements failures.Classified.
func (publishError *PublishError) FailureKind() failures.Kind {
	return publishError.Kind
}
