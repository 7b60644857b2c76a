package dependencies

import (
	"strings"
	"time"

	"github.com/temirov/gamerelease/internal/index"
	"github.com/temirov/gamerelease/internal/releaselock"
	"github.com/temirov/gamerelease/internal/releases"
	"github.com/temirov/gamerelease/internal/storage"
)

const (
	storageConfigurationKeyConstant         = "storage"
	indexConfigurationKeyConstant           = "index"
	publishConfigurationKeyConstant         = "publish"
	configurationKeySeparatorConstant       = "."
	storageRootKeyConstant                  = "root"
	storageWorkingDirectoryKeyConstant      = "working_directory"
	storageReleasesDirectoryKeyConstant     = "releases_directory"
	storageRepositoryRootKeyConstant        = "repository_root"
	indexTemplateKeyConstant                = "template"
	indexOutputKeyConstant                  = "output"
	indexPlaceholderKeyConstant             = "placeholder"
	indexLinkPrefixKeyConstant              = "link_prefix"
	indexRequireCompletionMarkerKeyConstant = "require_completion_marker"
	indexWatchDebounceKeyConstant           = "watch_debounce"
	publishRemoteKeyConstant                = "remote"
	publishTagMessageKeyConstant            = "tag_message"
	publishRegenerateIndexKeyConstant       = "regenerate_index"
	publishLockFileKeyConstant              = "lock_file"
	publishLockTimeoutKeyConstant           = "lock_timeout"
	defaultStorageRootConstant              = "games"
	defaultRepositoryRootConstant           = "."
	defaultIndexTemplateConstant            = "index.template.html"
	defaultIndexOutputConstant              = "index.html"
)

// Configuration groups the settings shared by the release commands.
type Configuration struct {
	Storage StorageConfiguration `mapstructure:"storage"`
	Index   IndexConfiguration   `mapstructure:"index"`
	Publish PublishConfiguration `mapstructure:"publish"`
}

// StorageConfiguration locates the application tree and the git repository containing it.
type StorageConfiguration struct {
	Root              string `mapstructure:"root"`
	WorkingDirectory  string `mapstructure:"working_directory"`
	ReleasesDirectory string `mapstructure:"releases_directory"`
	RepositoryRoot    string `mapstructure:"repository_root"`
}

// IndexConfiguration describes index page generation.
type IndexConfiguration struct {
	Template                string        `mapstructure:"template"`
	Output                  string        `mapstructure:"output"`
	Placeholder             string        `mapstructure:"placeholder"`
	LinkPrefix              string        `mapstructure:"link_prefix"`
	RequireCompletionMarker bool          `mapstructure:"require_completion_marker"`
	WatchDebounce           time.Duration `mapstructure:"watch_debounce"`
}

// PublishConfiguration describes publish defaults.
type PublishConfiguration struct {
	Remote          string        `mapstructure:"remote"`
	TagMessage      string        `mapstructure:"tag_message"`
	RegenerateIndex bool          `mapstructure:"regenerate_index"`
	LockFile        string        `mapstructure:"lock_file"`
	LockTimeout     time.Duration `mapstructure:"lock_timeout"`
}

// DefaultConfiguration returns baseline configuration values.
func DefaultConfiguration() Configuration {
	return Configuration{
		Storage: StorageConfiguration{
			Root:              defaultStorageRootConstant,
			WorkingDirectory:  storage.DefaultWorkingDirectoryName,
			ReleasesDirectory: storage.DefaultReleasesDirectoryName,
			RepositoryRoot:    defaultRepositoryRootConstant,
		},
		Index: IndexConfiguration{
			Template:      defaultIndexTemplateConstant,
			Output:        defaultIndexOutputConstant,
			Placeholder:   index.DefaultPlaceholder,
			LinkPrefix:    index.DefaultLinkPrefix,
			WatchDebounce: index.DefaultWatchDebounce,
		},
		Publish: PublishConfiguration{
			Remote:          releases.DefaultRemoteName,
			RegenerateIndex: true,
			LockFile:        releaselock.DefaultLockFileName,
		},
	}
}

// DefaultConfigurationValues produces Viper defaults for every shared key.
func DefaultConfigurationValues() map[string]any {
	defaults := DefaultConfiguration()
	return map[string]any{
		storageKey(storageRootKeyConstant):                  defaults.Storage.Root,
		storageKey(storageWorkingDirectoryKeyConstant):      defaults.Storage.WorkingDirectory,
		storageKey(storageReleasesDirectoryKeyConstant):     defaults.Storage.ReleasesDirectory,
		storageKey(storageRepositoryRootKeyConstant):        defaults.Storage.RepositoryRoot,
		indexKey(indexTemplateKeyConstant):                  defaults.Index.Template,
		indexKey(indexOutputKeyConstant):                    defaults.Index.Output,
		indexKey(indexPlaceholderKeyConstant):               defaults.Index.Placeholder,
		indexKey(indexLinkPrefixKeyConstant):                defaults.Index.LinkPrefix,
		indexKey(indexRequireCompletionMarkerKeyConstant):   defaults.Index.RequireCompletionMarker,
		indexKey(indexWatchDebounceKeyConstant):             defaults.Index.WatchDebounce.String(),
		publishKey(publishRemoteKeyConstant):                defaults.Publish.Remote,
		publishKey(publishTagMessageKeyConstant):            defaults.Publish.TagMessage,
		publishKey(publishRegenerateIndexKeyConstant):       defaults.Publish.RegenerateIndex,
		publishKey(publishLockFileKeyConstant):              defaults.Publish.LockFile,
		publishKey(publishLockTimeoutKeyConstant):           defaults.Publish.LockTimeout.String(),
	}
}

// Sanitize trims values and restores defaults for blank required settings.
// Blank tag message and lock file remain blank: they disable annotation and locking.
func (configuration Configuration) Sanitize() Configuration {
	defaults := DefaultConfiguration()
	sanitized := configuration

	sanitized.Storage.Root = valueOrDefault(configuration.Storage.Root, defaults.Storage.Root)
	sanitized.Storage.WorkingDirectory = valueOrDefault(configuration.Storage.WorkingDirectory, defaults.Storage.WorkingDirectory)
	sanitized.Storage.ReleasesDirectory = valueOrDefault(configuration.Storage.ReleasesDirectory, defaults.Storage.ReleasesDirectory)
	sanitized.Storage.RepositoryRoot = valueOrDefault(configuration.Storage.RepositoryRoot, defaults.Storage.RepositoryRoot)
	sanitized.Index.Template = valueOrDefault(configuration.Index.Template, defaults.Index.Template)
	sanitized.Index.Output = valueOrDefault(configuration.Index.Output, defaults.Index.Output)
	sanitized.Index.Placeholder = valueOrDefault(configuration.Index.Placeholder, defaults.Index.Placeholder)
	sanitized.Index.LinkPrefix = valueOrDefault(configuration.Index.LinkPrefix, defaults.Index.LinkPrefix)
	sanitized.Publish.Remote = valueOrDefault(configuration.Publish.Remote, defaults.Publish.Remote)
	sanitized.Publish.TagMessage = strings.TrimSpace(configuration.Publish.TagMessage)
	sanitized.Publish.LockFile = strings.TrimSpace(configuration.Publish.LockFile)

	if sanitized.Index.WatchDebounce <= 0 {
		sanitized.Index.WatchDebounce = defaults.Index.WatchDebounce
	}
	if sanitized.Publish.LockTimeout < 0 {
		sanitized.Publish.LockTimeout = 0
	}

	return sanitized
}

func valueOrDefault(value string, defaultValue string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return defaultValue
	}
	return trimmed
}

func storageKey(name string) string {
	return storageConfigurationKeyConstant + configurationKeySeparatorConstant + name
}

func indexKey(name string) string {
	return indexConfigurationKeyConstant + configurationKeySeparatorConstant + name
}

func publishKey(name string) string {
	return publishConfigurationKeyConstant + configurationKeySeparatorConstant + name
}
