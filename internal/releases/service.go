package releases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/gamerelease/internal/failures"
	"github.com/temirov/gamerelease/internal/filesystem"
	"github.com/temirov/gamerelease/internal/index"
	"github.com/temirov/gamerelease/internal/storage"
	"github.com/temirov/gamerelease/internal/versions"
)

const (
	// DefaultRemoteName is the remote tags are pushed to when none is configured.
	DefaultRemoteName = "origin"

	tagNameTemplateConstant                 = "%s-v%s"
	completionMarkerTemplateConstant        = "application: %s\nversion: %s\ntag: %s\nremote: %s\npublished_at: %s\n"
	dependenciesMissingMessageConstant      = "release service requires a file system and source control"
	missingWorkingTreeTemplateConstant      = "working directory %s does not exist"
	versionExistsMessageConstant            = "release directory already exists"
	numericVersionExistsTemplateConstant    = "release %s already exists with the same numeric version"
	releasesUnreadableMessageConstant       = "existing releases could not be listed"
	copyFailedMessageConstant               = "working directory could not be copied"
	copyRollbackFailedMessageConstant       = "working directory could not be copied and the partial release directory could not be removed"
	tagExistsMessageConstant                = "tag already exists"
	tagCheckFailedMessageConstant           = "tag lookup failed"
	tagCreateFailedMessageConstant          = "tag could not be created"
	tagPushFailedMessageConstant            = "tag could not be pushed; retry the push once the remote is reachable"
	stageCompletedLogMessageConstant        = "release stage completed"
	publishFailedLogMessageConstant         = "release publish failed"
	dryRunLogMessageConstant                = "dry run: release not published"
	rollbackFailedLogMessageConstant        = "unable to remove partial release directory"
	tagCompensationFailedLogMessageConstant = "unable to delete tag after failed creation"
	markerWriteFailedLogMessageConstant     = "unable to write completion marker"
	indexFailedLogMessageConstant           = "index regeneration failed; release is published, rerun index generation"
	indexSkippedLogMessageConstant          = "index regeneration skipped"
	logFieldApplicationConstant             = "application"
	logFieldVersionConstant                 = "version"
	logFieldStageConstant                   = "stage"
	logFieldTagConstant                     = "tag"
	logFieldRemoteConstant                  = "remote"
	logFieldReleasePathConstant             = "release_path"
	logFieldCodeConstant                    = "code"
	logFieldKindConstant                    = "kind"
	logFieldReleaseRetainedConstant         = "release_directory_retained"
	logFieldLocalTagRetainedConstant        = "local_tag_retained"
	logFieldReasonConstant                  = "reason"
)

// ErrDependenciesMissing indicates the service was constructed without its required collaborators.
var ErrDependenciesMissing = errors.New(dependenciesMissingMessageConstant)

// FileSystem exposes the operations the publisher performs on release storage.
type FileSystem interface {
	Exists(path string) bool
	IsDirectory(path string) bool
	ListDirectories(path string) ([]string, error)
	CopyTree(source string, destination string) error
	RemoveTree(path string) error
	WriteFile(path string, data []byte) error
}

// SourceControl exposes the tag operations the publisher performs.
type SourceControl interface {
	TagExists(executionContext context.Context, tagName string) (bool, error)
	CreateTag(executionContext context.Context, tagName string, message string) error
	DeleteTag(executionContext context.Context, tagName string) error
	PushTag(executionContext context.Context, remoteName string, tagName string) error
}

// IndexGenerator regenerates the site index.
type IndexGenerator interface {
	Generate(executionContext context.Context) (index.Result, error)
}

// ServiceConfiguration holds the storage layout and publish defaults.
type ServiceConfiguration struct {
	Layout            storage.Layout
	DefaultRemoteName string
	DefaultTagMessage string
}

// ServiceDependencies enumerates collaborators required by the service. IndexGenerator is optional.
type ServiceDependencies struct {
	Logger         *zap.Logger
	FileSystem     FileSystem
	SourceControl  SourceControl
	IndexGenerator IndexGenerator
	Clock          func() time.Time
}

// Options describes a single publish request.
type Options struct {
	ApplicationName string
	Version         string
	RemoteName      string
	TagMessage      string
	DryRun          bool
	SkipIndex       bool
}

// Result summarizes a successful publish or dry run.
type Result struct {
	ApplicationName string
	Version         versions.Version
	TagName         string
	RemoteName      string
	ReleasePath     string
	DryRun          bool
	CompletedStages []Stage
	MarkerWritten   bool
	IndexResult     *index.Result
	IndexError      error
}

// Service runs the publish state machine.
type Service struct {
	configuration  ServiceConfiguration
	logger         *zap.Logger
	fileSystem     FileSystem
	sourceControl  SourceControl
	indexGenerator IndexGenerator
	clock          func() time.Time
}

// NewService constructs a release service.
func NewService(configuration ServiceConfiguration, dependencies ServiceDependencies) (*Service, error) {
	if dependencies.FileSystem == nil || dependencies.SourceControl == nil {
		return nil, ErrDependenciesMissing
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := dependencies.Clock
	if clock == nil {
		clock = time.Now
	}
	if len(strings.TrimSpace(configuration.DefaultRemoteName)) == 0 {
		configuration.DefaultRemoteName = DefaultRemoteName
	}
	return &Service{
		configuration:  configuration,
		logger:         logger,
		fileSystem:     dependencies.FileSystem,
		sourceControl:  dependencies.SourceControl,
		indexGenerator: dependencies.IndexGenerator,
		clock:          clock,
	}, nil
}

// TagName returns the tag recording a release of version for applicationName.
func TagName(applicationName string, versionText string) string {
	return fmt.Sprintf(tagNameTemplateConstant, applicationName, versionText)
}

// publishRun carries the state of one publish through the stages.
type publishRun struct {
	options     Options
	version     versions.Version
	tagName     string
	remoteName  string
	tagMessage  string
	workingPath string
	releasePath string
	result      Result
}

// Publish runs PRECHECK, COPY, TAG_CHECK, TAG_CREATE, TAG_PUSH and REGEN_INDEX
// in order. Any failure before REGEN_INDEX returns a *PublishError; an index
// failure is logged and reported in Result.IndexError only.
func (service *Service) Publish(executionContext context.Context, options Options) (Result, error) {
	run, validationError := service.prepare(options)
	if validationError != nil {
		return Result{}, service.logFailure(validationError)
	}

	if precheckError := service.precheck(run); precheckError != nil {
		return Result{}, service.logFailure(precheckError)
	}
	service.completeStage(run, StagePrecheck)

	if run.options.DryRun {
		return service.dryRun(executionContext, run)
	}

	if copyError := service.copy(run); copyError != nil {
		return Result{}, service.logFailure(copyError)
	}
	service.completeStage(run, StageCopy)

	if tagCheckError := service.checkTag(executionContext, run); tagCheckError != nil {
		return Result{}, service.logFailure(tagCheckError)
	}
	service.completeStage(run, StageTagCheck)

	if tagCreateError := service.createTag(executionContext, run); tagCreateError != nil {
		return Result{}, service.logFailure(tagCreateError)
	}
	service.completeStage(run, StageTagCreate)

	if pushError := service.pushTag(executionContext, run); pushError != nil {
		return Result{}, service.logFailure(pushError)
	}
	service.completeStage(run, StageTagPush)

	run.result.MarkerWritten = service.writeMarker(run)
	service.regenerateIndex(executionContext, run)
	service.completeStage(run, StageDone)

	return run.result, nil
}

func (service *Service) prepare(options Options) (*publishRun, *PublishError) {
	applicationName := strings.TrimSpace(options.ApplicationName)
	versionText := strings.TrimSpace(options.Version)
	failure := &PublishError{Stage: StagePrecheck, Kind: failures.KindValidation, ApplicationName: applicationName, Version: versionText}

	if applicationError := storage.ValidateApplicationName(applicationName); applicationError != nil {
		failure.Code = CodeInvalidApplication
		failure.Message = applicationError.Error()
		return nil, failure
	}

	version, parseError := versions.Parse(versionText)
	if parseError != nil {
		failure.Code = CodeInvalidVersion
		failure.Message = parseError.Error()
		return nil, failure
	}

	remoteName := strings.TrimSpace(options.RemoteName)
	if len(remoteName) == 0 {
		remoteName = service.configuration.DefaultRemoteName
	}
	tagMessage := strings.TrimSpace(options.TagMessage)
	if len(tagMessage) == 0 {
		tagMessage = strings.TrimSpace(service.configuration.DefaultTagMessage)
	}

	layout := service.configuration.Layout
	run := &publishRun{
		options:     options,
		version:     version,
		tagName:     TagName(applicationName, version.Text()),
		remoteName:  remoteName,
		tagMessage:  tagMessage,
		workingPath: layout.WorkingPath(applicationName),
		releasePath: layout.ReleasePath(applicationName, version.Text()),
	}
	run.options.ApplicationName = applicationName
	run.result = Result{
		ApplicationName: applicationName,
		Version:         version,
		TagName:         run.tagName,
		RemoteName:      remoteName,
		ReleasePath:     run.releasePath,
		DryRun:          options.DryRun,
	}
	return run, nil
}

func (service *Service) precheck(run *publishRun) *PublishError {
	if !service.fileSystem.IsDirectory(run.workingPath) {
		return service.failure(run, StagePrecheck, CodeMissingWorkingTree, failures.KindPrecondition, fmt.Sprintf(missingWorkingTreeTemplateConstant, run.workingPath), nil)
	}
	if service.fileSystem.Exists(run.releasePath) {
		return service.failure(run, StagePrecheck, CodeVersionAlreadyExists, failures.KindPrecondition, versionExistsMessageConstant, nil)
	}

	releasesPath := service.configuration.Layout.ReleasesPath(run.options.ApplicationName)
	if !service.fileSystem.IsDirectory(releasesPath) {
		return nil
	}
	existingNames, listError := service.fileSystem.ListDirectories(releasesPath)
	if listError != nil {
		return service.failure(run, StagePrecheck, CodePrecheckError, failures.KindObservation, releasesUnreadableMessageConstant, listError)
	}
	existingVersions, _ := versions.ParseAll(existingNames)
	if existing, collides := versions.FindEqual(existingVersions, run.version); collides {
		return service.failure(run, StagePrecheck, CodeVersionAlreadyExists, failures.KindPrecondition, fmt.Sprintf(numericVersionExistsTemplateConstant, existing.Text()), nil)
	}
	return nil
}

func (service *Service) copy(run *publishRun) *PublishError {
	copyError := service.fileSystem.CopyTree(run.workingPath, run.releasePath)
	if copyError == nil {
		return nil
	}

	if errors.Is(copyError, filesystem.ErrCopyDestinationExists) {
		return service.failure(run, StageCopy, CodeVersionAlreadyExists, failures.KindPrecondition, versionExistsMessageConstant, copyError)
	}

	if removeError := service.fileSystem.RemoveTree(run.releasePath); removeError != nil {
		service.logger.Error(rollbackFailedLogMessageConstant, zap.String(logFieldReleasePathConstant, run.releasePath), zap.Error(removeError))
		failure := service.failure(run, StageCopy, CodeCopyError, failures.KindPartialFailure, copyRollbackFailedMessageConstant, errors.Join(copyError, removeError))
		failure.ReleaseDirectoryRetained = true
		return failure
	}
	return service.failure(run, StageCopy, CodeCopyError, failures.KindPrecondition, copyFailedMessageConstant, copyError)
}

func (service *Service) checkTag(executionContext context.Context, run *publishRun) *PublishError {
	exists, lookupError := service.sourceControl.TagExists(executionContext, run.tagName)
	if lookupError != nil {
		failure := service.failure(run, StageTagCheck, CodeTagCheckError, failures.KindPartialFailure, tagCheckFailedMessageConstant, lookupError)
		failure.ReleaseDirectoryRetained = !run.options.DryRun
		return failure
	}
	if exists {
		failure := service.failure(run, StageTagCheck, CodeTagAlreadyExists, failures.KindPrecondition, tagExistsMessageConstant, nil)
		failure.ReleaseDirectoryRetained = !run.options.DryRun
		return failure
	}
	return nil
}

func (service *Service) createTag(executionContext context.Context, run *publishRun) *PublishError {
	createError := service.sourceControl.CreateTag(executionContext, run.tagName, run.tagMessage)
	if createError == nil {
		return nil
	}

	if deleteError := service.sourceControl.DeleteTag(executionContext, run.tagName); deleteError != nil {
		service.logger.Debug(tagCompensationFailedLogMessageConstant, zap.String(logFieldTagConstant, run.tagName), zap.Error(deleteError))
	}
	failure := service.failure(run, StageTagCreate, CodeTagCreateError, failures.KindPartialFailure, tagCreateFailedMessageConstant, createError)
	failure.ReleaseDirectoryRetained = true
	return failure
}

func (service *Service) pushTag(executionContext context.Context, run *publishRun) *PublishError {
	pushError := service.sourceControl.PushTag(executionContext, run.remoteName, run.tagName)
	if pushError == nil {
		return nil
	}
	failure := service.failure(run, StageTagPush, CodeTagPushError, failures.KindPartialFailure, tagPushFailedMessageConstant, pushError)
	failure.ReleaseDirectoryRetained = true
	failure.LocalTagRetained = true
	return failure
}

func (service *Service) writeMarker(run *publishRun) bool {
	markerPath := service.configuration.Layout.CompletionMarkerPath(run.options.ApplicationName, run.version.Text())
	content := fmt.Sprintf(completionMarkerTemplateConstant, run.options.ApplicationName, run.version.Text(), run.tagName, run.remoteName, service.clock().UTC().Format(time.RFC3339))
	if writeError := service.fileSystem.WriteFile(markerPath, []byte(content)); writeError != nil {
		service.logger.Warn(markerWriteFailedLogMessageConstant, zap.String(logFieldReleasePathConstant, markerPath), zap.Error(writeError))
		return false
	}
	return true
}

func (service *Service) regenerateIndex(executionContext context.Context, run *publishRun) {
	if run.options.SkipIndex || service.indexGenerator == nil {
		service.logger.Debug(indexSkippedLogMessageConstant, zap.String(logFieldApplicationConstant, run.options.ApplicationName))
		return
	}

	indexResult, indexError := service.indexGenerator.Generate(executionContext)
	if indexError != nil {
		service.logger.Warn(indexFailedLogMessageConstant, zap.String(logFieldApplicationConstant, run.options.ApplicationName), zap.Error(indexError))
		run.result.IndexError = indexError
		return
	}
	run.result.IndexResult = &indexResult
	service.completeStage(run, StageRegenIndex)
}

// dryRun performs the read-only tag lookup and reports the plan without mutating anything.
func (service *Service) dryRun(executionContext context.Context, run *publishRun) (Result, error) {
	if tagCheckError := service.checkTag(executionContext, run); tagCheckError != nil {
		return Result{}, service.logFailure(tagCheckError)
	}
	service.completeStage(run, StageTagCheck)

	service.logger.Info(
		dryRunLogMessageConstant,
		zap.String(logFieldApplicationConstant, run.options.ApplicationName),
		zap.String(logFieldVersionConstant, run.version.Text()),
		zap.String(logFieldReleasePathConstant, run.releasePath),
		zap.String(logFieldTagConstant, run.tagName),
		zap.String(logFieldRemoteConstant, run.remoteName),
	)
	return run.result, nil
}

func (service *Service) completeStage(run *publishRun, stage Stage) {
	run.result.CompletedStages = append(run.result.CompletedStages, stage)
	service.logger.Debug(
		stageCompletedLogMessageConstant,
		zap.String(logFieldStageConstant, string(stage)),
		zap.String(logFieldApplicationConstant, run.options.ApplicationName),
		zap.String(logFieldVersionConstant, run.version.Text()),
	)
}

func (service *Service) failure(run *publishRun, stage Stage, code ErrorCode, kind failures.Kind, message string, cause error) *PublishError {
	return &PublishError{
		Stage:           stage,
		Code:            code,
		Kind:            kind,
		ApplicationName: run.options.ApplicationName,
		Version:         run.version.Text(),
		TagName:         run.tagName,
		ReleasePath:     run.releasePath,
		Message:         message,
		Cause:           cause,
	}
}

func (service *Service) logFailure(publishError *PublishError) error {
	service.logger.Warn(
		publishFailedLogMessageConstant,
		zap.String(logFieldApplicationConstant, publishError.ApplicationName),
		zap.String(logFieldVersionConstant, publishError.Version),
		zap.String(logFieldStageConstant, string(publishError.Stage)),
		zap.String(logFieldCodeConstant, string(publishError.Code)),
		zap.String(logFieldKindConstant, string(publishError.Kind)),
		zap.Bool(logFieldReleaseRetainedConstant, publishError.ReleaseDirectoryRetained),
		zap.Bool(logFieldLocalTagRetainedConstant, publishError.LocalTagRetained),
		zap.NamedError(logFieldReasonConstant, publishError.Cause),
	)
	return publishError
}
