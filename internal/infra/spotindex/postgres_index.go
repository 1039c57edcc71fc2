package spotindex

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/yanqian/surf-report/internal/domain/spots"
)

var (
	tableNamePattern  = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)
	vectorTypePattern = regexp.MustCompile(`^vector\((\d+)\)$`)
)

// PostgresIndex stores spot embeddings in a pgvector column and filters on the
// two categorical attributes before ranking by cosine similarity.
type PostgresIndex struct {
	pool      *pgxpool.Pool
	table     string
	dimension int
}

// NewPostgresIndex constructs the index. table must be a plain lower-case identifier.
func NewPostgresIndex(pool *pgxpool.Pool, table string, dimension int) (*PostgresIndex, error) {
	if table == "" {
		table = "surf_spots"
	}
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid spot index table name %q", table)
	}
	if dimension <= 0 {
		return nil, fmt.Errorf("spot index dimension must be positive, got %d", dimension)
	}
	return &PostgresIndex{pool: pool, table: table, dimension: dimension}, nil
}

// EnsureSchema creates the table when missing and verifies the stored vector
// dimension matches the configured one.
func (r *PostgresIndex) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements(r.table, r.dimension) {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure spot index schema: %w", err)
		}
	}

	var columnType string
	err := r.pool.QueryRow(ctx, `
		SELECT format_type(a.atttypid, a.atttypmod)
		FROM pg_attribute a
		WHERE a.attrelid = $1::regclass AND a.attname = 'embedding' AND NOT a.attisdropped
	`, r.table).Scan(&columnType)
	if err != nil {
		return fmt.Errorf("inspect embedding column: %w", err)
	}
	stored, err := parseVectorDimension(columnType)
	if err != nil {
		return err
	}
	if stored != r.dimension {
		return fmt.Errorf("spot index %s stores %d-dimension vectors, configured dimension is %d", r.table, stored, r.dimension)
	}
	return nil
}

// Query returns the nearest spots inside the filtered subset.
func (r *PostgresIndex) Query(ctx context.Context, q spots.IndexQuery) ([]spots.Match, error) {
	if len(q.Vector) != r.dimension {
		return nil, fmt.Errorf("query vector has %d dimensions, index expects %d", len(q.Vector), r.dimension)
	}
	rows, err := r.pool.Query(ctx, querySQL(r.table), pgvector.NewVector(q.Vector), q.Filter.Direction, q.Filter.Bottom, q.TopK)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []spots.Match
	for rows.Next() {
		var (
			m                             spots.Match
			name, desc, direction, bottom string
			extra                         map[string]string
		)
		if err := rows.Scan(&m.ID, &name, &desc, &direction, &bottom, &extra, &m.Score); err != nil {
			return nil, err
		}
		m.Score = clampScore(m.Score)
		if q.IncludeMetadata {
			m.Metadata = make(map[string]string, len(extra)+4)
			for k, v := range extra {
				m.Metadata[k] = v
			}
			m.Metadata[spots.MetaName] = name
			m.Metadata[spots.MetaDescription] = desc
			m.Metadata[spots.MetaDirection] = direction
			m.Metadata[spots.MetaBottom] = bottom
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Upsert inserts or replaces spot vectors in one batch.
func (r *PostgresIndex) Upsert(ctx context.Context, vectors []spots.SpotVector) error {
	if len(vectors) == 0 {
		return nil
	}
	sql := upsertSQL(r.table)

	batch := &pgx.Batch{}
	for _, v := range vectors {
		if len(v.Values) != r.dimension {
			return fmt.Errorf("vector %s has %d dimensions, index expects %d", v.ID, len(v.Values), r.dimension)
		}
		core, extra, err := splitMetadata(v.Metadata)
		if err != nil {
			return fmt.Errorf("vector %s: %w", v.ID, err)
		}
		batch.Queue(sql, v.ID, core[0], core[1], core[2], core[3], extra, pgvector.NewVector(v.Values))
	}
	return r.pool.SendBatch(ctx, batch).Close()
}

func schemaStatements(table string, dimension int) []string {
	ident := pgx.Identifier{table}.Sanitize()
	return []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				spot_description TEXT NOT NULL,
				direction_of_wave TEXT NOT NULL,
				type_of_bottom TEXT NOT NULL,
				metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
				embedding vector(%d) NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`, ident, dimension),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (direction_of_wave, type_of_bottom)`,
			pgx.Identifier{table + "_filter_idx"}.Sanitize(), ident),
	}
}

// querySQL ranks by cosine distance. The selected score lies in [-1, 1].
func querySQL(table string) string {
	return fmt.Sprintf(`
		SELECT id, name, spot_description, direction_of_wave, type_of_bottom, metadata,
			1 - (embedding <=> $1) AS score
		FROM %s
		WHERE direction_of_wave = $2 AND type_of_bottom = $3
		ORDER BY embedding <=> $1
		LIMIT $4
	`, pgx.Identifier{table}.Sanitize())
}

func upsertSQL(table string) string {
	return fmt.Sprintf(`
		INSERT INTO %s (id, name, spot_description, direction_of_wave, type_of_bottom, metadata, embedding, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			spot_description = EXCLUDED.spot_description,
			direction_of_wave = EXCLUDED.direction_of_wave,
			type_of_bottom = EXCLUDED.type_of_bottom,
			metadata = EXCLUDED.metadata,
			embedding = EXCLUDED.embedding,
			updated_at = now()
	`, pgx.Identifier{table}.Sanitize())
}

// splitMetadata separates the indexed columns from the free-form remainder.
func splitMetadata(meta map[string]string) ([4]string, map[string]string, error) {
	var core [4]string
	keys := [4]string{spots.MetaName, spots.MetaDescription, spots.MetaDirection, spots.MetaBottom}
	for i, key := range keys {
		v, ok := meta[key]
		if !ok {
			return core, nil, fmt.Errorf("missing metadata %q", key)
		}
		core[i] = v
	}
	extra := make(map[string]string)
	for k, v := range meta {
		switch k {
		case spots.MetaName, spots.MetaDescription, spots.MetaDirection, spots.MetaBottom:
			continue
		}
		extra[k] = v
	}
	return core, extra, nil
}

func parseVectorDimension(columnType string) (int, error) {
	m := vectorTypePattern.FindStringSubmatch(columnType)
	if m == nil {
		return 0, errors.New("embedding column is not a fixed-dimension vector: " + columnType)
	}
	return strconv.Atoi(m[1])
}

var _ spots.Index = (*PostgresIndex)(nil)
