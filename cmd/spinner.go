package cmd

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// spinner renders a rotating indicator with a label that updates in place
// while a plugin change runs.
type spinner struct {
	out   io.Writer
	mu    sync.Mutex
	label string
	done  chan struct{}
	wg    sync.WaitGroup
}

func newSpinner(out io.Writer, label string) *spinner {
	return &spinner{out: out, label: label, done: make(chan struct{})}
}

func (s *spinner) setLabel(l string) {
	s.mu.Lock()
	s.label = l
	s.mu.Unlock()
}

// start launches the render loop in a goroutine.
func (s *spinner) start() {
	frames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()
		for i := 0; ; i++ {
			select {
			case <-s.done:
				return
			case <-ticker.C:
				s.mu.Lock()
				label := s.label
				s.mu.Unlock()
				// \r returns to column 0; \033[K clears to end of line.
				fmt.Fprintf(s.out, "\r\033[K  %s %s", frames[i%len(frames)], label)
			}
		}
	}()
}

// stop halts the spinner and prints a final status line.
func (s *spinner) stop(err error) {
	close(s.done)
	s.wg.Wait()

	s.mu.Lock()
	label := s.label
	s.mu.Unlock()

	fmt.Fprint(s.out, "\r\033[K")
	if err == nil {
		ok := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
		fmt.Fprintf(s.out, "  %s %s\n", ok.Render("✓"), label)
	} else {
		bad := lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
		fmt.Fprintf(s.out, "  %s %s\n", bad.Render("✗"), label)
	}
}
