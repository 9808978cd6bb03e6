package ui

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gosuri/uilive"
	"github.com/simpleiot/modemctl/status"
)

// Watch redraws the status of a modem in place every interval until ctx is
// done. Errors reading the status are shown instead of the status.
func Watch(ctx context.Context, out io.Writer, take func(ctx context.Context) (status.Snapshot, error),
	interval time.Duration) error {
	w := uilive.New()
	w.Out = out

	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		var buf bytes.Buffer
		s, err := take(ctx)
		if err != nil {
			fmt.Fprintf(&buf, "%v  error: %v\n", time.Now().Format(time.TimeOnly), err)
		} else {
			fmt.Fprintf(&buf, "%v  %v\n", s.Time.Format(time.TimeOnly), s.Path)
			for _, l := range StatusLines(s) {
				fmt.Fprintf(&buf, "  %v\n", l)
			}
		}

		if _, err := w.Write(buf.Bytes()); err != nil {
			return err
		}
		if err := w.Flush(); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
	}
}
