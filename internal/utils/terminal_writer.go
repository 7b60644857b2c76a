package utils

import (
	"errors"
	"io"
	"sync"
	"syscall"

	"go.uber.org/zap/zapcore"
)

// terminalWriteSyncer is the zap sink for terminal output. Writes are serialized,
// buffered writers are flushed after every record, and Sync treats the failures
// terminals and pipes report for fsync as success.
type terminalWriteSyncer struct {
	mutex  sync.Mutex
	writer io.Writer
}

func newTerminalWriteSyncer(writer io.Writer) zapcore.WriteSyncer {
	return &terminalWriteSyncer{writer: writer}
}

func (syncer *terminalWriteSyncer) Write(data []byte) (int, error) {
	syncer.mutex.Lock()
	defer syncer.mutex.Unlock()

	bytesWritten, writeError := syncer.writer.Write(data)
	if writeError != nil {
		return bytesWritten, writeError
	}
	if flushable, canFlush := syncer.writer.(interface{ Flush() error }); canFlush {
		return bytesWritten, flushable.Flush()
	}
	return bytesWritten, nil
}

func (syncer *terminalWriteSyncer) Sync() error {
	syncer.mutex.Lock()
	defer syncer.mutex.Unlock()

	syncable, canSync := syncer.writer.(interface{ Sync() error })
	if !canSync {
		return nil
	}
	syncError := syncable.Sync()
	if IsUnsupportedSyncError(syncError) {
		return nil
	}
	return syncError
}

// IsUnsupportedSyncError reports whether syncError is the EINVAL, ENOTSUP or
// ENOTTY failure returned when syncing a terminal or a pipe.
func IsUnsupportedSyncError(syncError error) bool {
	return errors.Is(syncError, syscall.EINVAL) || errors.Is(syncError, syscall.ENOTSUP) || errors.Is(syncError, syscall.ENOTTY)
}
