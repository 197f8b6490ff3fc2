package executors

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/yurifrl/invex/pkg/service"
)

type Executor struct {
	logger    *log.Logger
	processor *service.Processor
	out       io.Writer
}

func New(logger *log.Logger, processor *service.Processor) *Executor {
	return &Executor{
		logger:    logger,
		processor: processor,
		out:       os.Stdout,
	}
}

// WithOutput redirects the plan preview.
func (e *Executor) WithOutput(w io.Writer) *Executor {
	e.out = w
	return e
}
