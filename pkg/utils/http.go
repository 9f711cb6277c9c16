package utils

import "io"

// maxDrain bounds how much of an unread body is discarded before closing.
// Larger leftovers cost more than a new connection.
const maxDrain = 64 << 10

// DrainAndClose discards what is left of rc, up to maxDrain, so the
// transport can reuse the connection, then closes it. A nil rc is a no-op.
func DrainAndClose(rc io.ReadCloser) error {
	if rc == nil {
		return nil
	}
	_, _ = io.CopyN(io.Discard, rc, maxDrain)
	return rc.Close()
}
