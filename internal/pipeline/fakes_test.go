package pipeline

import (
	"context"
	"time"

	"github.com/open-gallery/narrator-cli/internal/model"
	"github.com/open-gallery/narrator-cli/internal/store"
	"github.com/open-gallery/narrator-cli/pkg/archive"
)

type audioKey struct {
	entityType model.EntityType
	entityID   int
}

// fakeCatalog is an in-memory store.Catalog for workflow tests.
type fakeCatalog struct {
	pieces      []model.Piece
	artists     map[string]model.Artist
	audios      map[audioKey]model.Audio
	nextAudioID int
	updates     []model.Piece
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		artists:     map[string]model.Artist{},
		audios:      map[audioKey]model.Audio{},
		nextAudioID: 1,
	}
}

func (f *fakeCatalog) CountPieces(ctx context.Context) (int, error) {
	return len(f.pieces), nil
}

func (f *fakeCatalog) ListPieces(ctx context.Context) ([]model.Piece, error) {
	if len(f.pieces) == 0 {
		return nil, store.ErrNotFound
	}
	return append([]model.Piece(nil), f.pieces...), nil
}

func (f *fakeCatalog) GetPieceByID(ctx context.Context, id int) (*model.Piece, error) {
	for _, p := range f.pieces {
		if p.ID == id {
			piece := p
			return &piece, nil
		}
	}
	return nil, nil
}

func (f *fakeCatalog) GetPieceByTitle(ctx context.Context, title string) (*model.Piece, error) {
	return nil, store.ErrNotFound
}

func (f *fakeCatalog) SearchPieces(ctx context.Context, term string) (*model.Piece, error) {
	return nil, store.ErrNotFound
}

func (f *fakeCatalog) FindPiece(ctx context.Context, filter store.PieceFilter) (*model.Piece, error) {
	return nil, store.ErrNotFound
}

func (f *fakeCatalog) FindPieces(ctx context.Context, filter store.PieceFilter) ([]model.Piece, error) {
	return nil, store.ErrNotFound
}

func (f *fakeCatalog) UpdatePiece(ctx context.Context, piece model.Piece) error {
	for i, p := range f.pieces {
		if p.ID == piece.ID {
			f.pieces[i] = piece
			f.updates = append(f.updates, piece)
			return nil
		}
	}
	return store.ErrNoRowsUpdated
}

func (f *fakeCatalog) GetArtistByName(ctx context.Context, name string) (*model.Artist, error) {
	if artist, ok := f.artists[name]; ok {
		return &artist, nil
	}
	return nil, nil
}

func (f *fakeCatalog) AddAudio(ctx context.Context, audio *model.Audio) error {
	audio.ID = f.nextAudioID
	audio.CreatedAt = time.Now().UTC()
	f.nextAudioID++
	f.audios[audioKey{audio.EntityType, audio.EntityID}] = *audio
	return nil
}

func (f *fakeCatalog) UpdateAudio(ctx context.Context, audio model.Audio) error {
	return nil
}

func (f *fakeCatalog) GetAudioByID(ctx context.Context, id int) (*model.Audio, error) {
	for _, a := range f.audios {
		if a.ID == id {
			audio := a
			return &audio, nil
		}
	}
	return nil, nil
}

func (f *fakeCatalog) GetAudioByEntity(ctx context.Context, entityType model.EntityType, entityID int) (*model.Audio, error) {
	if audio, ok := f.audios[audioKey{entityType, entityID}]; ok {
		a := audio
		return &a, nil
	}
	return nil, nil
}

func (f *fakeCatalog) ListAudios(ctx context.Context) ([]model.Audio, error) {
	if len(f.audios) == 0 {
		return nil, store.ErrNotFound
	}
	var audios []model.Audio
	for _, a := range f.audios {
		audios = append(audios, a)
	}
	return audios, nil
}

func (f *fakeCatalog) DeleteAudio(ctx context.Context, id int) (*model.Audio, error) {
	for key, a := range f.audios {
		if a.ID == id {
			audio := a
			delete(f.audios, key)
			return &audio, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeCatalog) Migrate(ctx context.Context) error { return nil }
func (f *fakeCatalog) Close() error                      { return nil }

// fakeTTS counts synthesis calls and can be told to fail.
type fakeTTS struct {
	calls int
	err   error
}

func (f *fakeTTS) Synthesize(ctx context.Context, text string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []byte("mp3:" + text), nil
}

// fakeArchive records uploads and can be told to fail.
type fakeArchive struct {
	uploads   []string // "<identifier>/<name>"
	uploadErr error
}

func (f *fakeArchive) CreateItem(ctx context.Context, collection, title, description string) (string, error) {
	return "fake-item", nil
}

func (f *fakeArchive) UploadFile(ctx context.Context, identifier string, file archive.File) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploads = append(f.uploads, identifier+"/"+file.Name)
	return "https://archive.example/download/" + identifier + "/" + file.Name, nil
}

func (f *fakeArchive) DeleteFile(ctx context.Context, identifier, name string) (bool, error) {
	return true, nil
}

func (f *fakeArchive) ListAudioFiles(ctx context.Context) ([]archive.AudioFile, error) {
	return nil, nil
}

// fakeAuditStore serves a fixed audit list.
type fakeAuditStore struct {
	audits []model.Audit
}

func (f *fakeAuditStore) CountAudits(ctx context.Context) (int, error) {
	return len(f.audits), nil
}

func (f *fakeAuditStore) ListAudits(ctx context.Context) ([]model.Audit, error) {
	if len(f.audits) == 0 {
		return nil, store.ErrNotFound
	}
	return f.audits, nil
}

func (f *fakeAuditStore) Close() error { return nil }
