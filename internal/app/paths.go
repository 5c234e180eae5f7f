package app

import "path/filepath"

// Paths holds all resolved filesystem paths under the .symdex/ project
// directory. All fields are pre-computed strings.
type Paths struct {
	Root  string // .symdex/
	State string // .symdex/registry.json
	DB    string // .symdex/registry.db (bolt backend)

	LogDir    string // .symdex/log/
	DaemonLog string // .symdex/log/daemon.log
}

// NewPaths constructs all resolved paths from a project root directory.
func NewPaths(projectRoot string) *Paths {
	root := filepath.Join(projectRoot, ".symdex")
	return &Paths{
		Root:  root,
		State: filepath.Join(root, "registry.json"),
		DB:    filepath.Join(root, "registry.db"),

		LogDir:    filepath.Join(root, "log"),
		DaemonLog: filepath.Join(root, "log", "daemon.log"),
	}
}
