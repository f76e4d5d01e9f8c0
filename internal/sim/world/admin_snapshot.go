package world

import (
	"context"
	"errors"

	"craftage.ai/internal/persistence/snapshot"
)

type adminSnapshotReq struct {
	// Export returns the snapshot to the caller instead of pushing it to the sink.
	Export bool
	Resp   chan reply[snapshot.SnapshotV1]
}

// RequestSnapshot asks the world loop goroutine to enqueue a snapshot on the sink.
func (w *World) RequestSnapshot(ctx context.Context) (tick uint64, err error) {
	resp := make(chan reply[snapshot.SnapshotV1], 1)
	snap, err := roundTrip(ctx, w, w.admin, adminSnapshotReq{Resp: resp}, resp)
	return snap.Header.Tick, err
}

// RequestExport returns a snapshot of the committed state.
func (w *World) RequestExport(ctx context.Context) (snapshot.SnapshotV1, error) {
	resp := make(chan reply[snapshot.SnapshotV1], 1)
	return roundTrip(ctx, w, w.admin, adminSnapshotReq{Export: true, Resp: resp}, resp)
}

func (w *World) handleAdminSnapshot(req adminSnapshotReq) {
	snap := w.ExportSnapshot()
	if req.Export {
		respond(req.Resp, snap, nil)
		return
	}
	var err error
	if w.snapshotSink == nil {
		err = errors.New("snapshot sink not configured")
	} else {
		select {
		case w.snapshotSink <- snap:
		default:
			err = errors.New("snapshot sink backpressure")
		}
	}
	respond(req.Resp, snap, err)
}
