package cli

import (
	"io"
	"os"
	"time"
)

// RunOptions holds the settings shared by the CLI commands.
type RunOptions struct {
	Dir       string        // directory of definition files
	Demo      bool          // serve the bundled sample trees instead of Dir
	RedisAddr string        // read definitions from Redis instead of Dir
	ToolsPath string        // tools file declaring process nodes
	TreeID    string        // tree to build; see determineTree
	Interval  time.Duration // minimum time between ticks
	MaxTicks  uint64
	Debug     bool
	Color     bool
	Out       io.Writer
}

func (o RunOptions) out() io.Writer {
	if o.Out == nil {
		return os.Stdout
	}
	return o.Out
}
