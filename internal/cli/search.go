package cli

import (
	"bufio"
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/draze/draze-cli/internal/derive"
)

// searchLoop reads one query per line from the command's input and runs show for the
// latest query once input pauses for delay. A query still pending at end of input is
// shown before returning. The reader and a late debounced query are released when the
// loop returns.
func searchLoop(cmd *cobra.Command, delay time.Duration, show func(q string) error) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	fired := make(chan string, 1)
	d := derive.NewDebouncer(delay, func(q string) {
		select {
		case fired <- q:
		case <-ctx.Done():
		}
	})
	defer d.Stop()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(cmd.InOrStdin())
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	var last, shown string
	typed := false
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case q := <-fired:
			if err := show(q); err != nil {
				return err
			}
			shown = q
		case line, ok := <-lines:
			if !ok {
				d.Stop()
				if typed && last != shown {
					return show(last)
				}
				return nil
			}
			last, typed = line, true
			d.Trigger(line)
		}
	}
}
