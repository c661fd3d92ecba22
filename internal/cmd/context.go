package cmd

import (
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/MrJJimenez/jobfeed/internal/config"
	"github.com/MrJJimenez/jobfeed/internal/ui"
)

type Context struct {
	Out       io.Writer
	Err       io.Writer
	UI        *ui.UI
	Config    config.Config
	ConfigDir string
	Logger    zerolog.Logger
	Verbose   bool
	Version   string
	ColorMode ui.ColorMode
	// Now stamps generated documents. Nil means time.Now.
	Now func() time.Time
}
