package releases

// Stage names a step of the publish state machine.
type Stage string

// Publish stages in execution order.
const (
	StagePrecheck   Stage = Stage("precheck")
	StageCopy       Stage = Stage("copy")
	StageTagCheck   Stage = Stage("tag_check")
	StageTagCreate  Stage = Stage("tag_create")
	StageTagPush    Stage = Stage("tag_push")
	StageRegenIndex Stage = Stage("regen_index")
	StageDone       Stage = Stage("done")
)

// ErrorCode identifies why a publish failed.
type ErrorCode string

// Publish failure codes.
const (
	CodeInvalidApplication   ErrorCode = ErrorCode("InvalidApplication")
	CodeInvalidVersion       ErrorCode = ErrorCode("InvalidVersion")
	CodeMissingWorkingTree   ErrorCode = ErrorCode("MissingWorkingTree")
	CodeVersionAlreadyExists ErrorCode = ErrorCode("VersionAlreadyExists")
	CodePrecheckError        ErrorCode = ErrorCode("PrecheckError")
	CodeCopyError            ErrorCode = ErrorCode("CopyError")
	CodeTagAlreadyExists     ErrorCode = ErrorCode("TagAlreadyExists")
	CodeTagCheckError        ErrorCode = ErrorCode("TagCheckError")
	CodeTagCreateError       ErrorCode = ErrorCode("TagCreateError")
	CodeTagPushError         ErrorCode = ErrorCode("TagPushError")
)
