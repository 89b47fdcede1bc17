package cliui

import (
	"fmt"
	"io"
	"time"
)

const frameInterval = 80 * time.Millisecond

var frames = [...]string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

var frameStyle = fg("82")

// spinner redraws one status line until stop is called.
type spinner struct {
	w    io.Writer
	msg  string
	quit chan struct{}
	done chan struct{}
}

func startSpinner(w io.Writer, msg string) *spinner {
	s := &spinner{w: w, msg: msg, quit: make(chan struct{}), done: make(chan struct{})}
	go s.loop()
	return s
}

func (s *spinner) loop() {
	defer close(s.done)

	tick := time.NewTicker(frameInterval)
	defer tick.Stop()

	for i := 0; ; i++ {
		fmt.Fprintf(s.w, "\r  %s %s", frameStyle.Render(frames[i%len(frames)]), s.msg)
		select {
		case <-s.quit:
			return
		case <-tick.C:
		}
	}
}

// stop waits for the loop to exit so the final line cannot interleave.
func (s *spinner) stop() {
	close(s.quit)
	<-s.done
}

// Step shows a spinner next to msg while fn runs and then rewrites the line
// with a mark for fn's result and how long it took.
func Step(w io.Writer, msg string, fn func() error) error {
	sp := startSpinner(w, msg)

	start := time.Now()
	err := fn()
	took := time.Since(start)

	sp.stop()
	fmt.Fprintf(w, "\r  %s %s %s\n", Mark(err), msg, StepStyle.Render("("+FormatDuration(took)+")"))

	return err
}
