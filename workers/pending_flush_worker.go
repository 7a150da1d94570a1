package workers

import (
	"context"
	"log"
	"time"

	"mission-dispatch-system/services"
)

// PendingFlusher replays writes that were captured by the local fallback
// store while the remote store was unreachable.
type PendingFlusher struct {
	Local  *services.LocalStore
	Remote *services.RemoteStore
}

func NewPendingFlusher(local *services.LocalStore, remote *services.RemoteStore) *PendingFlusher {
	return &PendingFlusher{Local: local, Remote: remote}
}

// FlushOnce drains the pending queue. Each op is removed only after its
// replay lands remotely — a failed replay stays queued for the next tick.
// Returns how many ops were replayed.
func (f *PendingFlusher) FlushOnce() int {
	// Unreplayable ops are dropped up front rather than wedging the queue.
	if n := f.Local.PrunePending(); n > 0 {
		log.Printf("⚠️ Dropped %d unreplayable pending op(s)", n)
	}

	flushed := 0
	for _, op := range f.Local.PendingOps() {
		imported, err := f.Remote.ImportAssignment(op.Assignment)
		if err != nil {
			log.Printf("❌ Failed to replay pending assignment %q: %v", op.Assignment.Title, err)
			// Leave it queued — retry same op next tick.
			continue
		}

		f.Local.DropPending(op.Assignment.ID)
		flushed++
		log.Printf("✅ Replayed offline assignment %q as %s", imported.Title, imported.ID)
	}
	return flushed
}

// PollPending runs FlushOnce on a fixed interval until ctx is done.
func PollPending(ctx context.Context, flusher *PendingFlusher, pollInterval time.Duration) {
	log.Println("Starting pending-write polling...")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Pending-write polling stopped.")
			return
		case <-ticker.C:
			if n := flusher.FlushOnce(); n > 0 {
				log.Printf("📤 Flushed %d offline write(s) to remote store.", n)
			}
		}
	}
}
