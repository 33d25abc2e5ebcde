// Package overlay places scene nodes over the colour camera image at the
// projected positions of tracked body joints.
//
// Components are built with their scene references and advanced once per
// frame with Update. Joint orientations are always mirrored so the
// overlay matches the mirrored camera image.
package overlay

import (
	"io"
	"log/slog"

	"github.com/soypat/bodyfit"
	"github.com/soypat/bodyfit/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// mirror is applied before every joint orientation.
var mirror = d3.Euler(0, 180, 0)

func mirrored(q r3.Rotation) r3.Rotation { return d3.Mul(mirror, q) }

// trackedUser returns the ID of the user at playerIndex when f has an
// initialized tracker that detects at least one user.
func trackedUser(f bodyfit.Frame, playerIndex int) (bodyfit.UserID, bool) {
	if !f.Tracking() || !f.Tracker.UserDetected() {
		return 0, false
	}
	return f.Tracker.UserIDByIndex(playerIndex), true
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
