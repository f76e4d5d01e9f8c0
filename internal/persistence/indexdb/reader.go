package indexdb

import (
	"database/sql"
	"encoding/json"
	"errors"
)

// Reader queries an index file written by SQLiteIndex.
type Reader struct {
	db *sql.DB
}

func OpenReader(path string) (*Reader, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Reader{db: db}, nil
}

func (r *Reader) Close() error { return r.db.Close() }

// CatalogDigest returns the stored digest of a catalog table, or "" if absent.
func (r *Reader) CatalogDigest(name string) (string, error) {
	var digest string
	err := r.db.QueryRow(`SELECT digest FROM catalogs WHERE name=?`, name).Scan(&digest)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return digest, err
}

// CountAudits counts audit rows of one kind; an empty kind counts all.
func (r *Reader) CountAudits(kind string) (int, error) {
	var n int
	var err error
	if kind == "" {
		err = r.db.QueryRow(`SELECT COUNT(*) FROM audits`).Scan(&n)
	} else {
		err = r.db.QueryRow(`SELECT COUNT(*) FROM audits WHERE kind=?`, kind).Scan(&n)
	}
	return n, err
}

type SnapshotInfo struct {
	Tick    uint64
	Path    string
	WorldID string
	Players int
}

// LatestSnapshot returns the newest indexed snapshot; ok is false when none exist.
func (r *Reader) LatestSnapshot() (info SnapshotInfo, ok bool, err error) {
	var tick int64
	err = r.db.QueryRow(`SELECT tick, path, world_id, players FROM snapshots ORDER BY tick DESC LIMIT 1`).
		Scan(&tick, &info.Path, &info.WorldID, &info.Players)
	if errors.Is(err, sql.ErrNoRows) {
		return SnapshotInfo{}, false, nil
	}
	if err != nil {
		return SnapshotInfo{}, false, err
	}
	info.Tick = uint64(tick)
	return info, true, nil
}

type PlayerRow struct {
	Tick      uint64
	ID        string
	Name      string
	Age       int
	Health    float64
	Hunger    float64
	Stamina   float64
	Inventory map[string]int
}

// Player returns a player's state as of the newest snapshot that contains it.
func (r *Reader) Player(id string) (row PlayerRow, ok bool, err error) {
	var (
		tick int64
		inv  string
	)
	err = r.db.QueryRow(`SELECT tick, player_id, name, age, health, hunger, stamina, inventory_json
		FROM snapshot_players WHERE player_id=? ORDER BY tick DESC LIMIT 1`, id).
		Scan(&tick, &row.ID, &row.Name, &row.Age, &row.Health, &row.Hunger, &row.Stamina, &inv)
	if errors.Is(err, sql.ErrNoRows) {
		return PlayerRow{}, false, nil
	}
	if err != nil {
		return PlayerRow{}, false, err
	}
	row.Tick = uint64(tick)
	if err := json.Unmarshal([]byte(inv), &row.Inventory); err != nil {
		return PlayerRow{}, false, err
	}
	return row, true, nil
}
