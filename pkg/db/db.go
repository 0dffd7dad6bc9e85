package db

import (
	"database/sql"
	"os"
	"path/filepath"

	"golang.org/x/xerrors"

	_ "modernc.org/sqlite"

	"github.com/aquasecurity/maven-repo-builder/pkg/index"
)

const (
	dbFileName    = "artifact-list.db"
	SchemaVersion = 1
)

type DB struct {
	client *sql.DB
	dir    string
}

func Path(cacheDir string) string {
	dbPath := filepath.Join(cacheDir, dbFileName)
	return dbPath
}

func New(cacheDir string) (DB, error) {
	dbPath := Path(cacheDir)
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0700); err != nil {
		return DB{}, xerrors.Errorf("failed to mkdir: %w", err)
	}

	// open db
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return DB{}, xerrors.Errorf("can't open db: %w", err)
	}

	return DB{
		client: db,
		dir:    dbDir,
	}, nil
}

func (db *DB) Init() error {
	if _, err := db.client.Exec("PRAGMA foreign_keys=true"); err != nil {
		return xerrors.Errorf("failed to enable 'foreign_keys': %w", err)
	}
	if _, err := db.client.Exec("CREATE TABLE artifacts(id INTEGER PRIMARY KEY, group_id TEXT, artifact_id TEXT)"); err != nil {
		return xerrors.Errorf("unable to create 'artifacts' table: %w", err)
	}
	if _, err := db.client.Exec("CREATE TABLE locations(artifact_id INTEGER, priority INTEGER, version TEXT, url TEXT, foreign key (artifact_id) references artifacts(id))"); err != nil {
		return xerrors.Errorf("unable to create 'locations' table: %w", err)
	}

	if _, err := db.client.Exec("CREATE UNIQUE INDEX artifacts_idx ON artifacts(group_id, artifact_id)"); err != nil {
		return xerrors.Errorf("unable to create 'artifacts_idx' index: %w", err)
	}
	if _, err := db.client.Exec("CREATE UNIQUE INDEX locations_idx ON locations(artifact_id, priority, version)"); err != nil {
		return xerrors.Errorf("unable to create 'locations_idx' index: %w", err)
	}
	return nil
}

func (db *DB) Dir() string {
	return db.dir
}

func (db *DB) Close() error {
	return db.client.Close()
}

func (db *DB) VacuumDB() error {
	if _, err := db.client.Exec("VACUUM"); err != nil {
		return xerrors.Errorf("vacuum database error: %w", err)
	}
	return nil
}

//////////////////////////////////////
// functions to interaction with DB //
//////////////////////////////////////

func (db *DB) InsertIndex(idx *index.Index) error {
	tx, err := db.client.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, ga := range idx.Keys() {
		groupID, artifactID := index.SplitKey(ga)
		_, err = tx.Exec(`INSERT INTO artifacts(group_id, artifact_id) VALUES (?, ?)  ON CONFLICT(group_id, artifact_id) DO NOTHING`, groupID, artifactID)
		if err != nil {
			return xerrors.Errorf("unable to insert to 'artifacts' table: %w", err)
		}
		for priority, versions := range idx.Artifacts[ga] {
			for version, url := range versions {
				if _, err = tx.Exec(`INSERT INTO locations(artifact_id, priority, version, url) VALUES ((SELECT id FROM artifacts where group_id=? AND artifact_id=?), ?, ?, ?) ON CONFLICT(artifact_id, priority, version) DO UPDATE SET url=excluded.url`,
					groupID, artifactID, priority, version, url); err != nil {
					return xerrors.Errorf("unable to insert to 'locations' table: %w", err)
				}
			}
		}
	}
	return tx.Commit()
}

func (db *DB) SelectPriorities(groupID, artifactID string) (index.Priorities, error) {
	rows, err := db.client.Query(`SELECT l.priority, l.version, l.url FROM locations l JOIN artifacts a ON a.id = l.artifact_id
                                                                   WHERE a.group_id = ? AND a.artifact_id = ?`, groupID, artifactID)
	if err != nil {
		return nil, xerrors.Errorf("select locations error: %w", err)
	}
	defer rows.Close()

	var priorities index.Priorities
	for rows.Next() {
		var priority int
		var version, url string
		if err = rows.Scan(&priority, &version, &url); err != nil {
			return nil, xerrors.Errorf("scan row error: %w", err)
		}
		if priorities == nil {
			priorities = make(index.Priorities)
		}
		if priorities[priority] == nil {
			priorities[priority] = make(index.Versions)
		}
		priorities[priority][version] = url
	}
	return priorities, rows.Err()
}

func (db *DB) SelectIndex() (*index.Index, error) {
	rows, err := db.client.Query(`SELECT a.group_id, a.artifact_id, l.priority, l.version, l.url FROM locations l JOIN artifacts a ON a.id = l.artifact_id`)
	if err != nil {
		return nil, xerrors.Errorf("select locations error: %w", err)
	}
	defer rows.Close()

	idx := index.New()
	for rows.Next() {
		var groupID, artifactID, version, url string
		var priority int
		if err = rows.Scan(&groupID, &artifactID, &priority, &version, &url); err != nil {
			return nil, xerrors.Errorf("scan row error: %w", err)
		}
		ga := groupID + ":" + artifactID
		if idx.Artifacts[ga] == nil {
			idx.Artifacts[ga] = make(index.Priorities)
		}
		if idx.Artifacts[ga][priority] == nil {
			idx.Artifacts[ga][priority] = make(index.Versions)
		}
		idx.Artifacts[ga][priority][version] = url
	}
	return idx, rows.Err()
}
