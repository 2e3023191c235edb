package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	err := New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())

	var appErr *ApplicationError
	assert.True(t, As(err, &appErr))
	assert.Equal(t, Unknown, appErr.Kind())
}

func TestWrapping(t *testing.T) {
	origErr := New("original error")
	wrappedErr := Wrapf(origErr, "merge %d files", 2)
	assert.Equal(t, "merge 2 files: original error", wrappedErr.Error())
	assert.Equal(t, origErr, errors.Unwrap(wrappedErr))
	assert.Equal(t, Unknown, KindOf(wrappedErr))

	// Wrapping nil returns nil
	assert.Nil(t, Wrapf(nil, "formatted %s", "wrapper"))

	deepWrapped := Wrapf(wrappedErr, "deeper")
	assert.Equal(t, "deeper: merge 2 files: original error", deepWrapped.Error())
	assert.True(t, Is(deepWrapped, origErr))
}

func TestFileError(t *testing.T) {
	fileErr := NewFileError("cannot access", "/path/to/dir", FileAccessDenied, nil)
	assert.Equal(t, "cannot access: /path/to/dir", fileErr.Error())
	assert.Equal(t, "/path/to/dir", fileErr.Path())
	assert.Equal(t, FileAccessDenied, fileErr.Kind())

	origErr := fmt.Errorf("permission denied")
	fileErr = NewFileError("cannot access", "/path/to/dir", FileAccessDenied, origErr)
	assert.Equal(t, "cannot access: /path/to/dir: permission denied", fileErr.Error())
	assert.Equal(t, origErr, errors.Unwrap(fileErr))

	notFoundErr := NewFileError("directory does not exist", "/missing", FileNotFound, nil)
	assert.True(t, IsFileNotFound(notFoundErr))
	assert.False(t, IsFileNotFound(fileErr))
	assert.Equal(t, FileAccessDenied, KindOf(fileErr))

	notDir := NewFileError("path is not a directory", "/etc/hosts", NotADirectory, nil)
	assert.True(t, IsNotADirectory(notDir))
	assert.False(t, IsNotADirectory(notFoundErr))
}

func TestConfigError(t *testing.T) {
	configErr := NewConfigError("invalid value", "mode", InvalidConfig, nil)
	assert.Equal(t, "invalid value: mode", configErr.Error())
	assert.Equal(t, "mode", configErr.Param())
	assert.True(t, IsInvalidConfig(configErr))
	assert.False(t, IsInvalidConfig(New("some other error")))

	notSet := NewConfigError("merge configuration is required but not set", "/data/root", ConfigNotSet, nil)
	assert.True(t, IsConfigNotSet(notSet))
	assert.False(t, IsInvalidConfig(notSet))
	assert.Contains(t, notSet.Error(), "required but not set")

	writeErr := NewConfigError("failed to write merge configuration", "/ro/cfg.json", ConfigWriteFailed, fmt.Errorf("read-only file system"))
	assert.True(t, IsConfigWriteFailed(writeErr))
	assert.Equal(t, "failed to write merge configuration: /ro/cfg.json: read-only file system", writeErr.Error())
}

func TestMergeError(t *testing.T) {
	cause := fmt.Errorf("not a PDF")
	mergeErr := NewMergeError("failed to merge", "/root/p1", MergeFailed, cause)
	assert.Equal(t, "failed to merge: /root/p1: not a PDF", mergeErr.Error())
	assert.Equal(t, "/root/p1", mergeErr.Dir())
	assert.True(t, IsMergeError(mergeErr))
	assert.True(t, Is(mergeErr, cause))

	assert.Equal(t, "no files to merge", ErrNoInputFiles.Error())
	assert.Equal(t, NoInputFiles, ErrNoInputFiles.Kind())
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"plain", errors.New("x"), Unknown},
		{"file", NewFileError("x", "p", NotADirectory, nil), NotADirectory},
		{"wrapped config", fmt.Errorf("outer: %w", NewConfigError("x", "k", ConfigNotSet, nil)), ConfigNotSet},
		{"database", NewDatabaseError("x", nil), DatabaseOperationFailed},
		{"nil", nil, Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
	assert.Equal(t, "config_not_set", ConfigNotSet.String())
}

func TestErrorChains(t *testing.T) {
	baseErr := errors.New("base error")
	fileErr := NewFileError("file error", "/path/to/file", FileNotFound, baseErr)
	configErr := NewConfigError("config error", "pattern", InvalidConfig, fileErr)
	mergeErr := NewMergeError("merge error", "/root/sub", MergeFailed, configErr)

	assert.Equal(t, "merge error: /root/sub: config error: pattern: file error: /path/to/file: base error", mergeErr.Error())

	assert.True(t, Is(mergeErr, baseErr))
	assert.True(t, Is(mergeErr, fileErr))

	var fe *FileError
	assert.True(t, As(mergeErr, &fe))
	assert.Equal(t, "/path/to/file", fe.Path())

	assert.True(t, IsFileNotFound(mergeErr))
	assert.True(t, IsInvalidConfig(mergeErr))
	assert.True(t, IsMergeError(mergeErr))
}

func TestDatabaseError(t *testing.T) {
	dbErr := NewDatabaseError("insert failed", fmt.Errorf("disk full")).WithOperation("record").WithContext("table", "merges")
	assert.Equal(t, "insert failed: operation=record: disk full", dbErr.Error())
	assert.Equal(t, "merges", dbErr.Context()["table"])
	assert.True(t, IsDatabaseError(dbErr))
}
