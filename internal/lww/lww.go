// Package lww holds the last-write-wins rules shared by the client and the server.
//
// The freshness marker is Record.UpdatedAt. A remote copy that is at least as
// fresh as a local change supersedes it; ties go to the remote so a replayed
// change never overwrites the copy it produced.
package lww

import (
	"time"

	"github.com/iudanet/medicnote/internal/models"
)

// Supersedes reports whether a remote version stamped remoteUpdatedAt makes a
// local change stamped localUpdatedAt redundant.
func Supersedes(remoteUpdatedAt, localUpdatedAt time.Time) bool {
	return !remoteUpdatedAt.Before(localUpdatedAt)
}

// IsNewer reports whether a is strictly fresher than b.
func IsNewer(a, b *models.Record) bool {
	return a.UpdatedAt.After(b.UpdatedAt)
}

// Winner returns the version that survives a merge of local and remote.
// Either argument may be nil.
func Winner(local, remote *models.Record) *models.Record {
	switch {
	case local == nil:
		return remote
	case remote == nil:
		return local
	case Supersedes(remote.UpdatedAt, local.UpdatedAt):
		return remote
	default:
		return local
	}
}
