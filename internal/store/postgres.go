package store

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/open-gallery/narrator-cli/internal/db"
	"github.com/open-gallery/narrator-cli/internal/model"
)

const defaultPageSize = 1000

const pieceColumns = "id, title, displaydate, artist, location, overview, description"

// PostgresCatalog implements Catalog using pgxpool.
type PostgresCatalog struct {
	pool     db.Pool
	pageSize int
	closeFn  func()
}

// psql builds queries with $n placeholders for dynamic piece filters.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// NewPostgres creates a PostgresCatalog with a connection pool. pageSize
// controls bulk-read pagination; zero means the default of 1000.
func NewPostgres(ctx context.Context, connString string, pageSize int) (*PostgresCatalog, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 4
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &PostgresCatalog{pool: pool, pageSize: pageSize, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS pieces (
	id          INTEGER PRIMARY KEY,
	title       TEXT NOT NULL DEFAULT '',
	displaydate TEXT NOT NULL DEFAULT '',
	artist      TEXT NOT NULL DEFAULT '',
	location    TEXT NOT NULL DEFAULT '',
	overview    TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS artists (
	id          INTEGER PRIMARY KEY,
	artist_name TEXT NOT NULL UNIQUE,
	nationality TEXT NOT NULL DEFAULT '',
	lifespan    TEXT NOT NULL DEFAULT '',
	biography   TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS audios (
	id          SERIAL PRIMARY KEY,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	entity_type TEXT NOT NULL,
	entity_id   INTEGER NOT NULL,
	link        TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_pieces_artist ON pieces(artist);
CREATE INDEX IF NOT EXISTS idx_audios_entity ON audios(entity_type, entity_id);

CREATE OR REPLACE FUNCTION search_pieces(search_term TEXT)
RETURNS SETOF pieces AS $$
	SELECT * FROM pieces
	WHERE title || ' ' || artist ILIKE '%' || search_term || '%'
	ORDER BY id
$$ LANGUAGE sql STABLE;
`

// Migrate creates the catalog schema, including the server-side
// search_pieces procedure.
func (s *PostgresCatalog) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

// Close releases the connection pool.
func (s *PostgresCatalog) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// CountPieces returns the total number of pieces in the catalog.
func (s *PostgresCatalog) CountPieces(ctx context.Context) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM pieces`).Scan(&count)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: count pieces")
	}
	return count, nil
}

// ListPieces retrieves the full pieces table in fixed-size pages, looping
// until an empty page comes back, and reports progress per page.
func (s *PostgresCatalog) ListPieces(ctx context.Context) ([]model.Piece, error) {
	total, err := s.CountPieces(ctx)
	if err != nil {
		return nil, err
	}

	var pieces []model.Piece
	for offset := 0; ; offset += s.pageSize {
		rows, err := s.pool.Query(ctx,
			`SELECT `+pieceColumns+` FROM pieces ORDER BY id LIMIT $1 OFFSET $2`,
			s.pageSize, offset)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: list pieces")
		}
		page, err := scanPieces(rows)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		pieces = append(pieces, page...)
		zap.L().Info("pieces retrieved",
			zap.Int("fetched", len(pieces)),
			zap.Int("total", total),
		)
	}

	if len(pieces) == 0 {
		return nil, eris.Wrap(ErrNotFound, "postgres: no pieces")
	}
	return pieces, nil
}

// GetPieceByID returns the piece with the given id, or nil if absent.
func (s *PostgresCatalog) GetPieceByID(ctx context.Context, id int) (*model.Piece, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+pieceColumns+` FROM pieces WHERE id = $1`, id)
	piece, err := scanPiece(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get piece by id")
	}
	return piece, nil
}

// GetPieceByTitle returns the first piece whose title contains the given text,
// case-insensitively. Absence is ErrNotFound.
func (s *PostgresCatalog) GetPieceByTitle(ctx context.Context, title string) (*model.Piece, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+pieceColumns+` FROM pieces WHERE title ILIKE '%' || $1 || '%' ORDER BY id LIMIT 1`, title)
	piece, err := scanPiece(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: no piece titled %q", title)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get piece by title")
	}
	return piece, nil
}

// SearchPieces runs the server-side search_pieces procedure over a combined
// "title artist" search term and returns the best match.
func (s *PostgresCatalog) SearchPieces(ctx context.Context, term string) (*model.Piece, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+pieceColumns+` FROM search_pieces($1) LIMIT 1`, term)
	piece, err := scanPiece(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: no piece matching %q", term)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: search pieces")
	}
	return piece, nil
}

// pieceQuery translates a PieceFilter into a squirrel select.
func pieceQuery(filter PieceFilter) sq.SelectBuilder {
	q := psql.Select("id", "title", "displaydate", "artist", "location", "overview", "description").
		From("pieces")
	if filter.ID != nil {
		q = q.Where(sq.Eq{"id": *filter.ID})
	}
	for col, val := range map[string]*string{
		"title":       filter.Title,
		"displaydate": filter.DisplayDate,
		"artist":      filter.Artist,
		"location":    filter.Location,
		"overview":    filter.Overview,
		"description": filter.Description,
	} {
		if val != nil {
			q = q.Where(sq.ILike{col: "%" + *val + "%"})
		}
	}
	return q.OrderBy("id")
}

// FindPiece returns the first piece matching the filter. Absence is ErrNotFound.
func (s *PostgresCatalog) FindPiece(ctx context.Context, filter PieceFilter) (*model.Piece, error) {
	sqlStr, args, err := pieceQuery(filter).Limit(1).ToSql()
	if err != nil {
		return nil, eris.Wrap(err, "postgres: build piece query")
	}
	row := s.pool.QueryRow(ctx, sqlStr, args...)
	piece, err := scanPiece(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrap(ErrNotFound, "postgres: no piece matching filter")
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: find piece")
	}
	return piece, nil
}

// FindPieces returns all pieces matching the filter. An empty result is
// ErrNotFound.
func (s *PostgresCatalog) FindPieces(ctx context.Context, filter PieceFilter) ([]model.Piece, error) {
	sqlStr, args, err := pieceQuery(filter).ToSql()
	if err != nil {
		return nil, eris.Wrap(err, "postgres: build piece query")
	}
	rows, err := s.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: find pieces")
	}
	pieces, err := scanPieces(rows)
	if err != nil {
		return nil, err
	}
	if len(pieces) == 0 {
		return nil, eris.Wrap(ErrNotFound, "postgres: no pieces matching filter")
	}
	return pieces, nil
}

// UpdatePiece writes the piece's mutable text fields back, keyed by id.
func (s *PostgresCatalog) UpdatePiece(ctx context.Context, piece model.Piece) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE pieces SET title = $1, displaydate = $2, artist = $3, location = $4, overview = $5, description = $6 WHERE id = $7`,
		piece.Title, piece.DisplayDate, piece.Artist, piece.Location, piece.Overview, piece.Description, piece.ID)
	if err != nil {
		return eris.Wrap(err, "postgres: update piece")
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNoRowsUpdated, "postgres: no piece with id %d", piece.ID)
	}
	return nil
}

// GetArtistByName returns the artist with the exact given name, or nil if absent.
func (s *PostgresCatalog) GetArtistByName(ctx context.Context, name string) (*model.Artist, error) {
	var artist model.Artist
	err := s.pool.QueryRow(ctx,
		`SELECT id, artist_name, nationality, lifespan, biography FROM artists WHERE artist_name = $1`, name).
		Scan(&artist.ID, &artist.Name, &artist.Nationality, &artist.Lifespan, &artist.Biography)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get artist by name")
	}
	return &artist, nil
}

// AddAudio inserts a new audio row. The store assigns id and created_at,
// which are written back into the given audio.
func (s *PostgresCatalog) AddAudio(ctx context.Context, audio *model.Audio) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO audios (entity_type, entity_id, link) VALUES ($1, $2, $3) RETURNING id, created_at`,
		audio.EntityType, audio.EntityID, audio.Link).
		Scan(&audio.ID, &audio.CreatedAt)
	if err != nil {
		return eris.Wrap(err, "postgres: add audio")
	}
	return nil
}

// UpdateAudio rewrites an existing audio row keyed by entity_id. This is a
// repair path; correct pipeline runs never update audio in place.
func (s *PostgresCatalog) UpdateAudio(ctx context.Context, audio model.Audio) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE audios SET entity_type = $1, link = $2 WHERE entity_id = $3`,
		audio.EntityType, audio.Link, audio.EntityID)
	if err != nil {
		return eris.Wrap(err, "postgres: update audio")
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNoRowsUpdated, "postgres: no audio with entity_id %d", audio.EntityID)
	}
	return nil
}

// GetAudioByID returns the audio row with the given id, or nil if absent.
func (s *PostgresCatalog) GetAudioByID(ctx context.Context, id int) (*model.Audio, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, created_at, entity_type, entity_id, link FROM audios WHERE id = $1`, id)
	audio, err := scanAudio(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get audio by id")
	}
	return audio, nil
}

// GetAudioByEntity returns the audio row for the given entity, or nil if absent.
func (s *PostgresCatalog) GetAudioByEntity(ctx context.Context, entityType model.EntityType, entityID int) (*model.Audio, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, created_at, entity_type, entity_id, link FROM audios WHERE entity_type = $1 AND entity_id = $2 LIMIT 1`,
		entityType, entityID)
	audio, err := scanAudio(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get audio by entity")
	}
	return audio, nil
}

// ListAudios returns every audio row. An empty table is ErrNotFound.
func (s *PostgresCatalog) ListAudios(ctx context.Context) ([]model.Audio, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, created_at, entity_type, entity_id, link FROM audios ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list audios")
	}
	defer rows.Close()

	var audios []model.Audio
	for rows.Next() {
		var a model.Audio
		if err := rows.Scan(&a.ID, &a.CreatedAt, &a.EntityType, &a.EntityID, &a.Link); err != nil {
			return nil, eris.Wrap(err, "postgres: scan audio")
		}
		audios = append(audios, a)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: list audios")
	}
	if len(audios) == 0 {
		return nil, eris.Wrap(ErrNotFound, "postgres: no audio records")
	}
	return audios, nil
}

// DeleteAudio removes the audio row with the given id and returns it, so the
// caller can tell deleted, not found and store error apart.
func (s *PostgresCatalog) DeleteAudio(ctx context.Context, id int) (*model.Audio, error) {
	audio, err := s.GetAudioByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if audio == nil {
		return nil, eris.Wrapf(ErrNotFound, "postgres: no audio with id %d", id)
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM audios WHERE id = $1`, id); err != nil {
		return nil, eris.Wrap(err, "postgres: delete audio")
	}
	return audio, nil
}

func scanPiece(row pgx.Row) (*model.Piece, error) {
	var p model.Piece
	err := row.Scan(&p.ID, &p.Title, &p.DisplayDate, &p.Artist, &p.Location, &p.Overview, &p.Description)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanPieces(rows pgx.Rows) ([]model.Piece, error) {
	defer rows.Close()

	var pieces []model.Piece
	for rows.Next() {
		var p model.Piece
		if err := rows.Scan(&p.ID, &p.Title, &p.DisplayDate, &p.Artist, &p.Location, &p.Overview, &p.Description); err != nil {
			return nil, eris.Wrap(err, "postgres: scan piece")
		}
		pieces = append(pieces, p)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: read pieces")
	}
	return pieces, nil
}

func scanAudio(row pgx.Row) (*model.Audio, error) {
	var a model.Audio
	err := row.Scan(&a.ID, &a.CreatedAt, &a.EntityType, &a.EntityID, &a.Link)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
