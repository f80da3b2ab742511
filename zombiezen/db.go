package zombiezen

import (
	"context"
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	osscert "github.com/caasmo/oss-cert-rotate"
)

const schema = `CREATE TABLE IF NOT EXISTS rotations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	domain TEXT NOT NULL,
	bucket TEXT NOT NULL,
	previous_cert_id TEXT NOT NULL DEFAULT '',
	fresh INTEGER NOT NULL,
	new_cert_expires_at TEXT NOT NULL DEFAULT '',
	rotated_at TEXT NOT NULL
);`

// Db implements the osscert.Writer interface using zombiezen/sqlite.
type Db struct {
	pool *sqlitex.Pool
}

// NewWriter creates a new Db instance satisfying the Writer interface.
// It expects the sqlitex.Pool to be created and managed externally.
func NewWriter(pool *sqlitex.Pool) *Db {
	if pool == nil {
		panic("zombiezen.NewWriter: received nil pool")
	}
	return &Db{pool: pool}
}

// NewPool opens a small read-write pool on path, creating the file if needed.
func NewPool(path string) (*sqlitex.Pool, error) {
	pool, err := sqlitex.NewPool(path, sqlitex.PoolOptions{
		Flags:    sqlite.OpenReadWrite | sqlite.OpenCreate | sqlite.OpenWAL,
		PoolSize: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("db: failed to open pool %s: %w", path, err)
	}
	return pool, nil
}

// EnsureSchema creates the rotations table if it does not exist.
func (d *Db) EnsureSchema(ctx context.Context) error {
	conn, err := d.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("db: failed to get connection: %w", err)
	}
	defer d.pool.Put(conn)

	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		return fmt.Errorf("db: failed to create rotations table: %w", err)
	}
	return nil
}

// AddRotation adds a record to the 'rotations' table.
func (d *Db) AddRotation(ctx context.Context, r osscert.Rotation) error {
	conn, err := d.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("db: failed to get connection: %w", err)
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`INSERT INTO rotations (
			domain, bucket, previous_cert_id, fresh, new_cert_expires_at, rotated_at
		) VALUES (?, ?, ?, ?, ?, ?);`,
		&sqlitex.ExecOptions{
			Args: []interface{}{
				r.Domain,
				r.Bucket,
				r.PreviousCertID,
				r.Fresh,
				osscert.TimeFormat(r.NewCertExpiresAt),
				osscert.TimeFormat(r.RotatedAt),
			},
		})
	if err != nil {
		return fmt.Errorf("db: failed to insert rotation for domain %q: %w", r.Domain, err)
	}
	return nil
}

// Latest returns the most recent rotation for domain, or nil if there is none.
func (d *Db) Latest(ctx context.Context, domain string) (*osscert.Rotation, error) {
	conn, err := d.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("db: failed to get connection: %w", err)
	}
	defer d.pool.Put(conn)

	var found *osscert.Rotation
	err = sqlitex.Execute(conn,
		`SELECT domain, bucket, previous_cert_id, fresh, new_cert_expires_at, rotated_at
		FROM rotations WHERE domain = ? ORDER BY id DESC LIMIT 1;`,
		&sqlitex.ExecOptions{
			Args: []interface{}{domain},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				r := osscert.Rotation{
					Domain:         stmt.ColumnText(0),
					Bucket:         stmt.ColumnText(1),
					PreviousCertID: stmt.ColumnText(2),
					Fresh:          stmt.ColumnBool(3),
				}
				var err error
				if r.NewCertExpiresAt, err = osscert.ParseTime(stmt.ColumnText(4)); err != nil {
					return err
				}
				if r.RotatedAt, err = osscert.ParseTime(stmt.ColumnText(5)); err != nil {
					return err
				}
				found = &r
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("db: failed to read rotation for domain %q: %w", domain, err)
	}
	return found, nil
}
