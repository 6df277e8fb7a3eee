package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/open-gallery/narrator-cli/internal/model"
)

// SQLiteCatalog implements Catalog using modernc.org/sqlite, for local
// development against a snapshot of the hosted catalog. The server-side
// search procedure is approximated with a LIKE scan.
type SQLiteCatalog struct {
	db       *sql.DB
	pageSize int
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string, pageSize int) (*SQLiteCatalog, error) {
	sdb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := sdb.Exec(pragma); err != nil {
			sdb.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &SQLiteCatalog{db: sdb, pageSize: pageSize}, nil
}

const sqliteMigration = `
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
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	entity_type TEXT NOT NULL,
	entity_id   INTEGER NOT NULL,
	link        TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_pieces_artist ON pieces(artist);
CREATE INDEX IF NOT EXISTS idx_audios_entity ON audios(entity_type, entity_id);
`

// Migrate creates the catalog schema.
func (s *SQLiteCatalog) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Close closes the database handle.
func (s *SQLiteCatalog) Close() error {
	return s.db.Close()
}

// CountPieces returns the total number of pieces in the catalog.
func (s *SQLiteCatalog) CountPieces(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM pieces`).Scan(&count)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: count pieces")
	}
	return count, nil
}

// ListPieces retrieves the full pieces table in fixed-size pages, looping
// until an empty page comes back.
func (s *SQLiteCatalog) ListPieces(ctx context.Context) ([]model.Piece, error) {
	total, err := s.CountPieces(ctx)
	if err != nil {
		return nil, err
	}

	var pieces []model.Piece
	for offset := 0; ; offset += s.pageSize {
		rows, err := s.db.QueryContext(ctx,
			`SELECT `+pieceColumns+` FROM pieces ORDER BY id LIMIT ? OFFSET ?`,
			s.pageSize, offset)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: list pieces")
		}
		page, err := scanPieceRows(rows)
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
		return nil, eris.Wrap(ErrNotFound, "sqlite: no pieces")
	}
	return pieces, nil
}

// GetPieceByID returns the piece with the given id, or nil if absent.
func (s *SQLiteCatalog) GetPieceByID(ctx context.Context, id int) (*model.Piece, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+pieceColumns+` FROM pieces WHERE id = ?`, id)
	piece, err := scanPieceRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get piece by id")
	}
	return piece, nil
}

// GetPieceByTitle returns the first piece whose title contains the given
// text, case-insensitively. Absence is ErrNotFound.
func (s *SQLiteCatalog) GetPieceByTitle(ctx context.Context, title string) (*model.Piece, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+pieceColumns+` FROM pieces WHERE title LIKE '%' || ? || '%' ORDER BY id LIMIT 1`, title)
	piece, err := scanPieceRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: no piece titled %q", title)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get piece by title")
	}
	return piece, nil
}

// SearchPieces approximates the hosted search_pieces procedure with a LIKE
// scan over the combined title and artist text.
func (s *SQLiteCatalog) SearchPieces(ctx context.Context, term string) (*model.Piece, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+pieceColumns+` FROM pieces WHERE title || ' ' || artist LIKE '%' || ? || '%' ORDER BY id LIMIT 1`, term)
	piece, err := scanPieceRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: no piece matching %q", term)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: search pieces")
	}
	return piece, nil
}

// sqlitePieceQuery translates a PieceFilter into a squirrel select with ?
// placeholders. SQLite LIKE is case-insensitive for ASCII already.
func sqlitePieceQuery(filter PieceFilter) sq.SelectBuilder {
	q := sq.Select("id", "title", "displaydate", "artist", "location", "overview", "description").
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
			q = q.Where(sq.Like{col: "%" + *val + "%"})
		}
	}
	return q.OrderBy("id")
}

// FindPiece returns the first piece matching the filter. Absence is ErrNotFound.
func (s *SQLiteCatalog) FindPiece(ctx context.Context, filter PieceFilter) (*model.Piece, error) {
	sqlStr, args, err := sqlitePieceQuery(filter).Limit(1).ToSql()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: build piece query")
	}
	row := s.db.QueryRowContext(ctx, sqlStr, args...)
	piece, err := scanPieceRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrap(ErrNotFound, "sqlite: no piece matching filter")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: find piece")
	}
	return piece, nil
}

// FindPieces returns all pieces matching the filter. An empty result is
// ErrNotFound.
func (s *SQLiteCatalog) FindPieces(ctx context.Context, filter PieceFilter) ([]model.Piece, error) {
	sqlStr, args, err := sqlitePieceQuery(filter).ToSql()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: build piece query")
	}
	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: find pieces")
	}
	pieces, err := scanPieceRows(rows)
	if err != nil {
		return nil, err
	}
	if len(pieces) == 0 {
		return nil, eris.Wrap(ErrNotFound, "sqlite: no pieces matching filter")
	}
	return pieces, nil
}

// UpdatePiece writes the piece's mutable text fields back, keyed by id.
func (s *SQLiteCatalog) UpdatePiece(ctx context.Context, piece model.Piece) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE pieces SET title = ?, displaydate = ?, artist = ?, location = ?, overview = ?, description = ? WHERE id = ?`,
		piece.Title, piece.DisplayDate, piece.Artist, piece.Location, piece.Overview, piece.Description, piece.ID)
	if err != nil {
		return eris.Wrap(err, "sqlite: update piece")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: update piece rows affected")
	}
	if affected == 0 {
		return eris.Wrapf(ErrNoRowsUpdated, "sqlite: no piece with id %d", piece.ID)
	}
	return nil
}

// GetArtistByName returns the artist with the exact given name, or nil if absent.
func (s *SQLiteCatalog) GetArtistByName(ctx context.Context, name string) (*model.Artist, error) {
	var artist model.Artist
	err := s.db.QueryRowContext(ctx,
		`SELECT id, artist_name, nationality, lifespan, biography FROM artists WHERE artist_name = ?`, name).
		Scan(&artist.ID, &artist.Name, &artist.Nationality, &artist.Lifespan, &artist.Biography)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get artist by name")
	}
	return &artist, nil
}

// AddAudio inserts a new audio row, assigning id and created_at.
func (s *SQLiteCatalog) AddAudio(ctx context.Context, audio *model.Audio) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO audios (created_at, entity_type, entity_id, link) VALUES (?, ?, ?, ?)`,
		now, audio.EntityType, audio.EntityID, audio.Link)
	if err != nil {
		return eris.Wrap(err, "sqlite: add audio")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return eris.Wrap(err, "sqlite: audio insert id")
	}
	audio.ID = int(id)
	audio.CreatedAt = now
	return nil
}

// UpdateAudio rewrites an existing audio row keyed by entity_id.
func (s *SQLiteCatalog) UpdateAudio(ctx context.Context, audio model.Audio) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE audios SET entity_type = ?, link = ? WHERE entity_id = ?`,
		audio.EntityType, audio.Link, audio.EntityID)
	if err != nil {
		return eris.Wrap(err, "sqlite: update audio")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: update audio rows affected")
	}
	if affected == 0 {
		return eris.Wrapf(ErrNoRowsUpdated, "sqlite: no audio with entity_id %d", audio.EntityID)
	}
	return nil
}

// GetAudioByID returns the audio row with the given id, or nil if absent.
func (s *SQLiteCatalog) GetAudioByID(ctx context.Context, id int) (*model.Audio, error) {
	var a model.Audio
	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, entity_type, entity_id, link FROM audios WHERE id = ?`, id).
		Scan(&a.ID, &a.CreatedAt, &a.EntityType, &a.EntityID, &a.Link)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get audio by id")
	}
	return &a, nil
}

// GetAudioByEntity returns the audio row for the given entity, or nil if absent.
func (s *SQLiteCatalog) GetAudioByEntity(ctx context.Context, entityType model.EntityType, entityID int) (*model.Audio, error) {
	var a model.Audio
	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, entity_type, entity_id, link FROM audios WHERE entity_type = ? AND entity_id = ? LIMIT 1`,
		entityType, entityID).
		Scan(&a.ID, &a.CreatedAt, &a.EntityType, &a.EntityID, &a.Link)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get audio by entity")
	}
	return &a, nil
}

// ListAudios returns every audio row. An empty table is ErrNotFound.
func (s *SQLiteCatalog) ListAudios(ctx context.Context) ([]model.Audio, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, entity_type, entity_id, link FROM audios ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list audios")
	}
	defer rows.Close()

	var audios []model.Audio
	for rows.Next() {
		var a model.Audio
		if err := rows.Scan(&a.ID, &a.CreatedAt, &a.EntityType, &a.EntityID, &a.Link); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan audio")
		}
		audios = append(audios, a)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: list audios")
	}
	if len(audios) == 0 {
		return nil, eris.Wrap(ErrNotFound, "sqlite: no audio records")
	}
	return audios, nil
}

// DeleteAudio removes the audio row with the given id and returns it.
func (s *SQLiteCatalog) DeleteAudio(ctx context.Context, id int) (*model.Audio, error) {
	audio, err := s.GetAudioByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if audio == nil {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: no audio with id %d", id)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM audios WHERE id = ?`, id); err != nil {
		return nil, eris.Wrap(err, "sqlite: delete audio")
	}
	return audio, nil
}

func scanPieceRow(row *sql.Row) (*model.Piece, error) {
	var p model.Piece
	err := row.Scan(&p.ID, &p.Title, &p.DisplayDate, &p.Artist, &p.Location, &p.Overview, &p.Description)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanPieceRows(rows *sql.Rows) ([]model.Piece, error) {
	defer rows.Close()

	var pieces []model.Piece
	for rows.Next() {
		var p model.Piece
		if err := rows.Scan(&p.ID, &p.Title, &p.DisplayDate, &p.Artist, &p.Location, &p.Overview, &p.Description); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan piece")
		}
		pieces = append(pieces, p)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: read pieces")
	}
	return pieces, nil
}
