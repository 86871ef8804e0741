package main

import (
	"os"

	"github.com/cheggaaa/pb/v3"
	"github.com/mattn/go-isatty"

	"dupesweep/internal/executor"
)

// barProgress renders the pipeline's progress as a terminal bar.
type barProgress struct {
	bar *pb.ProgressBar
}

var _ executor.Progress = (*barProgress)(nil)

const barTemplate pb.ProgressBarTemplate = `{{string . "prefix"}}{{counters . }} {{bar . }} {{percent . }}`

func (p *barProgress) Start(totalGroups int) {
	p.bar = barTemplate.Start(totalGroups)
}

func (p *barProgress) Status(message string) {
	if p.bar != nil {
		p.bar.Set("prefix", message+" ")
	}
}

func (p *barProgress) GroupDone() {
	if p.bar != nil {
		p.bar.Increment()
	}
}

func (p *barProgress) Finish() {
	if p.bar != nil {
		p.bar.Finish()
	}
}

// newProgress returns a live progress bar on a terminal and nil otherwise,
// keeping piped output clean.
func newProgress() executor.Progress {
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return &barProgress{}
	}
	return nil
}
