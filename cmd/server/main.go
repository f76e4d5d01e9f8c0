package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"craftage.ai/configs"
	"craftage.ai/internal/config"
	"craftage.ai/internal/persistence/indexdb"
	persistlog "craftage.ai/internal/persistence/log"
	"craftage.ai/internal/persistence/snapshot"
	"craftage.ai/internal/protocol"
	"craftage.ai/internal/sim/catalogs"
	"craftage.ai/internal/sim/tuning"
	"craftage.ai/internal/sim/world"
	"craftage.ai/internal/transport/ws"
)

func main() {
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	env, err := config.LoadServerEnv()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	var (
		addr       = flag.String("addr", env.Addr, "http listen address")
		worldID    = flag.String("world", env.WorldID, "world id")
		configDir  = flag.String("configs", env.ConfigDir, "config directory (default: bundled tables)")
		dataDir    = flag.String("data", env.DataDir, "runtime data directory")
		tuningPath = flag.String("tuning", env.TuningPath, "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", env.DisableDB, "disable indexing (audit + catalogs + snapshot metadata)")
		adminHTTP  = flag.Bool("admin_http", env.AdminHTTP, "serve loopback-only admin endpoints")

		snapPath   = flag.String("snapshot", env.Snapshot, "path to snapshot to load (optional)")
		loadLatest = flag.Bool("load_latest_snapshot", env.LoadLatest, "load latest snapshot from data dir if present (when -snapshot is empty)")
	)
	flag.Parse()

	cats, tune, err := loadRules(strings.TrimSpace(*configDir), strings.TrimSpace(*tuningPath))
	if err != nil {
		logger.Fatalf("load rules: %v", err)
	}

	worldDir := filepath.Join(*dataDir, "worlds", *worldID)
	snapDir := filepath.Join(worldDir, "snapshots")
	_ = os.MkdirAll(snapDir, 0o755)

	// Optional: read-model index (does not affect the simulation).
	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(worldDir, "index", "world.sqlite"))
		if err != nil {
			logger.Fatalf("open index: %v", err)
		}
		defer idx.Close()
		if err := idx.UpsertCatalogs(cats, tune); err != nil {
			logger.Printf("index catalogs: %v", err)
		}
	}

	w, err := world.New(world.WorldConfig{
		ID:                 *worldID,
		Tuning:             tune,
		SnapshotEveryTicks: world.SnapshotTicks(tune),
	}, cats)
	if err != nil {
		logger.Fatalf("world: %v", err)
	}

	snapshotToLoad := strings.TrimSpace(*snapPath)
	if snapshotToLoad == "" && *loadLatest {
		snapshotToLoad = snapshot.Latest(snapDir)
	}
	if snapshotToLoad != "" {
		snap, err := snapshot.ReadSnapshot(snapshotToLoad)
		if err != nil {
			logger.Fatalf("read snapshot: %v", err)
		}
		if snap.Header.WorldID != "" && snap.Header.WorldID != *worldID {
			logger.Fatalf("snapshot world id mismatch: flag=%s snap=%s", *worldID, snap.Header.WorldID)
		}
		if snap.ItemsDigest != cats.Items.Digest || snap.RecipesDigest != cats.Recipes.Digest {
			logger.Printf("snapshot was written with different item/recipe tables; keys are revalidated on import")
		}
		if err := w.ImportSnapshot(snap); err != nil {
			logger.Fatalf("import snapshot: %v", err)
		}
		logger.Printf("resumed from snapshot=%s tick=%d players=%d", filepath.Base(snapshotToLoad), w.CurrentTick(), len(snap.Players))
	}

	ctx, cancel := signalContext()
	defer cancel()

	auditLog := persistlog.NewAuditLogger(worldDir)
	defer auditLog.Close()
	if idx != nil {
		w.SetAuditLogger(multiAuditLogger{a: auditLog, b: idx})
	} else {
		w.SetAuditLogger(auditLog)
	}

	// Snapshot writer.
	snapCh := make(chan snapshot.SnapshotV1, 2)
	w.SetSnapshotSink(snapCh)
	writeSnap := func(snap snapshot.SnapshotV1) {
		path := snapshot.PathFor(snapDir, snap.Header.Tick)
		if err := snapshot.WriteSnapshot(path, snap); err != nil {
			logger.Printf("snapshot write: %v", err)
			return
		}
		if idx != nil {
			idx.RecordSnapshot(path, snap)
		}
	}
	snapDone := make(chan struct{})
	go func() {
		defer close(snapDone)
		for {
			select {
			case <-ctx.Done():
				return
			case snap := <-snapCh:
				writeSnap(snap)
			}
		}
	}()

	worldDone := make(chan struct{})
	go func() {
		defer close(worldDone)
		if err := w.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("world stopped: %v", err)
		}
	}()

	validator, err := protocol.NewValidator()
	if err != nil {
		logger.Fatalf("protocol schemas: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	if *adminHTTP {
		registerAdmin(mux, w, idx)
	} else {
		logger.Printf("admin endpoints disabled")
	}
	mux.HandleFunc("/v1/ws", ws.NewServer(w, validator, log.New(os.Stdout, "[ws] ", log.LstdFlags|log.Lmicroseconds)).Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s (tick_rate_hz=%d save_every=%s)", *addr, tune.TickRateHz, tune.SaveInterval())
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}

	// Final snapshot once the loop has stopped.
	<-worldDone
	<-snapDone
	writeSnap(w.ExportSnapshot())
	logger.Printf("stopped at tick=%d", w.CurrentTick())
}

func loadRules(configDir, tuningPath string) (*catalogs.Catalogs, tuning.Tuning, error) {
	var (
		cats *catalogs.Catalogs
		err  error
	)
	if configDir == "" {
		cats, err = catalogs.LoadFS(configs.FS)
	} else {
		cats, err = catalogs.Load(configDir)
	}
	if err != nil {
		return nil, tuning.Tuning{}, err
	}

	var tune tuning.Tuning
	switch {
	case tuningPath != "":
		tune, err = tuning.Load(tuningPath)
	case configDir != "":
		tune, err = tuning.Load(filepath.Join(configDir, "tuning.yaml"))
	default:
		tune, err = tuning.LoadFS(configs.FS, "tuning.yaml")
	}
	if err != nil {
		return nil, tuning.Tuning{}, err
	}
	return cats, tune, nil
}

type multiAuditLogger struct {
	a world.AuditLogger
	b world.AuditLogger
}

func (m multiAuditLogger) WriteAudit(e world.AuditEntry) error {
	err := m.a.WriteAudit(e)
	if m.b != nil {
		_ = m.b.WriteAudit(e)
	}
	return err
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
