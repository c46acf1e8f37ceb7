package opts

import (
	"github.com/ChrisPachulski/sync-and-setup/pkg/config"
	"github.com/ChrisPachulski/sync-and-setup/pkg/shell"
	"github.com/ChrisPachulski/sync-and-setup/pkg/userlog"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	Config     *config.Config
	Runner     shell.Runner
	UserLogger *userlog.Logger
}
