package notify

import (
	"context"
	"fmt"
	"os/exec"
	"sync"
	"time"
)

// autoDismissAfter is how long non-urgent notifications stay on screen.
const autoDismissAfter = 5 * time.Second

// DesktopSender shows notifications through the host's notify-send
// binary. Probing is lazy and cached: a machine without the binary simply
// reports unavailable.
type DesktopSender struct {
	once  sync.Once
	path  string
	found bool
}

func NewDesktopSender() *DesktopSender {
	return &DesktopSender{}
}

func (d *DesktopSender) probe() {
	d.once.Do(func() {
		path, err := exec.LookPath("notify-send")
		if err != nil {
			return
		}
		d.path = path
		d.found = true
	})
}

func (d *DesktopSender) Available() bool {
	d.probe()
	return d.found
}

func (d *DesktopSender) Send(ctx context.Context, ev Event) error {
	d.probe()
	if !d.found {
		return nil
	}

	args := []string{
		"--app-name=Helio",
		fmt.Sprintf("--category=%s", ev.Category),
	}
	if ev.Urgent {
		// Critical urgency keeps the popup on screen until dismissed.
		args = append(args, "--urgency=critical")
	} else {
		args = append(args, fmt.Sprintf("--expire-time=%d", autoDismissAfter.Milliseconds()))
	}
	args = append(args, ev.Title, ev.Body)

	cmdCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	cmd := exec.CommandContext(cmdCtx, d.path, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("notify-send: %v: %s", err, out)
	}
	return nil
}
