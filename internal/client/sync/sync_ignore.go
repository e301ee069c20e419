package sync

import (
	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/stopperw/modsync/internal/client/config"
)

// Sync bookkeeping never leaves the machine, whatever the config says.
var defaultIgnoreLines = []string{
	config.FileName,
	config.SyncStateFileName,
	config.FilesStateFileName,
	"*.modsync-tmp",
	".git",
}

// IgnoreList answers "should this relative path be excluded" with
// gitignore precedence. Config rules are appended after the defaults,
// so later rules win ties the way .gitignore files do.
type IgnoreList struct {
	ignore *gitignore.GitIgnore
}

func NewIgnoreList(excludes []string) *IgnoreList {
	lines := make([]string, 0, len(defaultIgnoreLines)+len(excludes))
	lines = append(lines, defaultIgnoreLines...)
	lines = append(lines, excludes...)
	return &IgnoreList{ignore: gitignore.CompileIgnoreLines(lines...)}
}

func (l *IgnoreList) ShouldIgnore(relPath string) bool {
	return l.ignore.MatchesPath(relPath)
}
