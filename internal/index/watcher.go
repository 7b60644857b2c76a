package index

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const (
	// DefaultWatchDebounce is how long the watcher waits for changes to settle.
	DefaultWatchDebounce = 500 * time.Millisecond

	maximumWatchedDepthConstant            = 3
	temporaryFilePrefixConstant            = "."
	temporaryFileSuffixConstant            = ".tmp"
	watcherGeneratorMissingMessageConstant = "watcher generator not configured"
	watchStartedLogMessageConstant         = "watching for changes"
	watchStoppedLogMessageConstant         = "watch stopped"
	watchAddFailedLogMessageConstant       = "unable to watch directory"
	watchErrorLogMessageConstant           = "file watcher error"
	regenerationFailedLogMessageConstant   = "index regeneration failed"
	regeneratedLogMessageConstant          = "index regenerated"
	logFieldPathConstant                   = "path"
	logFieldDebounceConstant               = "debounce"
	logFieldChangedConstant                = "changed"
)

// ErrWatcherGeneratorMissing indicates the watcher was constructed without a generator.
var ErrWatcherGeneratorMissing = errors.New(watcherGeneratorMissingMessageConstant)

// Regenerator performs a full index generation.
type Regenerator interface {
	Generate(executionContext context.Context) (Result, error)
}

// WatcherConfiguration lists what the watcher observes.
type WatcherConfiguration struct {
	StorageRoot  string
	TemplatePath string
	OutputPath   string
	Debounce     time.Duration
}

// Watcher regenerates the index after the storage tree or the template changes.
type Watcher struct {
	configuration WatcherConfiguration
	generator     Regenerator
	logger        *zap.Logger
}

// NewWatcher constructs a Watcher. A non-positive debounce selects DefaultWatchDebounce.
func NewWatcher(configuration WatcherConfiguration, generator Regenerator, logger *zap.Logger) (*Watcher, error) {
	if generator == nil {
		return nil, ErrWatcherGeneratorMissing
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if configuration.Debounce <= 0 {
		configuration.Debounce = DefaultWatchDebounce
	}
	configuration.StorageRoot = filepath.Clean(configuration.StorageRoot)
	configuration.TemplatePath = filepath.Clean(configuration.TemplatePath)
	configuration.OutputPath = filepath.Clean(configuration.OutputPath)
	return &Watcher{configuration: configuration, generator: generator, logger: logger}, nil
}

// Run generates once, then again after every settled burst of changes, until
// the context is cancelled. Generation failures are logged and do not stop the loop.
func (watcher *Watcher) Run(executionContext context.Context) error {
	fileWatcher, watcherError := fsnotify.NewWatcher()
	if watcherError != nil {
		return watcherError
	}
	defer fileWatcher.Close()

	watcher.watchTree(fileWatcher, watcher.configuration.StorageRoot)
	watcher.addWatch(fileWatcher, filepath.Dir(watcher.configuration.TemplatePath))
	watcher.logger.Info(watchStartedLogMessageConstant, zap.String(logFieldPathConstant, watcher.configuration.StorageRoot), zap.Duration(logFieldDebounceConstant, watcher.configuration.Debounce))

	watcher.regenerate(executionContext)

	var debounceTimer *time.Timer
	var debounceFired <-chan time.Time
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-executionContext.Done():
			watcher.logger.Info(watchStoppedLogMessageConstant)
			return nil

		case event, open := <-fileWatcher.Events:
			if !open {
				return nil
			}
			if !watcher.isRelevant(event.Name) {
				continue
			}
			if event.Has(fsnotify.Create) && watcher.withinWatchedDepth(event.Name) {
				watcher.watchTree(fileWatcher, event.Name)
			}
			if debounceTimer == nil {
				debounceTimer = time.NewTimer(watcher.configuration.Debounce)
			} else {
				debounceTimer.Reset(watcher.configuration.Debounce)
			}
			debounceFired = debounceTimer.C

		case <-debounceFired:
			debounceFired = nil
			watcher.regenerate(executionContext)

		case watchError, open := <-fileWatcher.Errors:
			if !open {
				return nil
			}
			watcher.logger.Warn(watchErrorLogMessageConstant, zap.Error(watchError))
		}
	}
}

func (watcher *Watcher) regenerate(executionContext context.Context) {
	result, generateError := watcher.generator.Generate(executionContext)
	if generateError != nil {
		watcher.logger.Error(regenerationFailedLogMessageConstant, zap.Error(generateError))
		return
	}
	watcher.logger.Debug(regeneratedLogMessageConstant, zap.String(logFieldPathConstant, result.OutputPath), zap.Bool(logFieldChangedConstant, result.Changed))
}

// watchTree adds root and its subdirectories down to the application release level.
func (watcher *Watcher) watchTree(fileWatcher *fsnotify.Watcher, root string) {
	_ = filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkError error) error {
		if walkError != nil || !entry.IsDir() {
			return nil
		}
		if !watcher.withinWatchedDepth(path) {
			return filepath.SkipDir
		}
		watcher.addWatch(fileWatcher, path)
		return nil
	})
}

func (watcher *Watcher) addWatch(fileWatcher *fsnotify.Watcher, path string) {
	if addError := fileWatcher.Add(path); addError != nil {
		watcher.logger.Warn(watchAddFailedLogMessageConstant, zap.String(logFieldPathConstant, path), zap.Error(addError))
	}
}

// isRelevant filters out the generator's own output and temporary files.
func (watcher *Watcher) isRelevant(path string) bool {
	cleanedPath := filepath.Clean(path)
	if cleanedPath == watcher.configuration.OutputPath {
		return false
	}
	baseName := filepath.Base(cleanedPath)
	if strings.HasPrefix(baseName, temporaryFilePrefixConstant) && strings.HasSuffix(baseName, temporaryFileSuffixConstant) {
		return false
	}
	if cleanedPath == watcher.configuration.TemplatePath {
		return true
	}
	return watcher.depthBelowRoot(cleanedPath) >= 0
}

func (watcher *Watcher) withinWatchedDepth(path string) bool {
	depth := watcher.depthBelowRoot(path)
	return depth >= 0 && depth <= maximumWatchedDepthConstant
}

// depthBelowRoot returns 0 for the storage root, 1 for an application and so
// on, or -1 when path lies outside the storage root.
func (watcher *Watcher) depthBelowRoot(path string) int {
	relativePath, relativeError := filepath.Rel(watcher.configuration.StorageRoot, filepath.Clean(path))
	if relativeError != nil || relativePath == ".." || strings.HasPrefix(relativePath, ".."+string(filepath.Separator)) {
		return -1
	}
	if relativePath == "." {
		return 0
	}
	return strings.Count(relativePath, string(filepath.Separator)) + 1
}
