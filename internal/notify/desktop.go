package notify

import (
	"context"

	"github.com/gen2brain/beeep"
)

const desktopTitle = "Water Tracker"

// Desktop shows a local desktop notification. The recipient is ignored.
type Desktop struct {
	notify func(title, message string, icon any) error
}

// NewDesktop creates a desktop notifier
func NewDesktop() *Desktop {
	return &Desktop{notify: beeep.Notify}
}

func (d *Desktop) Send(ctx context.Context, _ string, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.notify(desktopTitle, message, "")
}
