package archive

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCreds = Credentials{
	Email:     "curator@example.org",
	Password:  "hunter2",
	AccessKey: "AK",
	Secret:    "SK",
}

func TestCreateItem(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/metadata/items", r.URL.Path)
		assert.Equal(t, "LOW curator@example.org:hunter2", r.Header.Get("authorization"))

		var req createItemRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "artist_mp3s", req.Collection)
		assert.Equal(t, "Artist MP3s", req.Title)
		assert.Equal(t, "curator@example.org", req.Contributor)

		_, _ = w.Write([]byte(`{"uniq": "39215337"}`))
	}))
	defer srv.Close()

	client := NewClient(testCreds, WithMetadataURL(srv.URL))
	id, err := client.CreateItem(context.Background(), "artist_mp3s", "Artist MP3s", "All artist biography narrations")
	require.NoError(t, err)
	assert.Equal(t, "39215337", id)
}

func TestCreateItemMissingIdentifier(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient(testCreds, WithMetadataURL(srv.URL))
	_, err := client.CreateItem(context.Background(), "c", "t", "d")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no identifier")
}

func TestCreateItemHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("nope"))
	}))
	defer srv.Close()

	client := NewClient(testCreds, WithMetadataURL(srv.URL))
	_, err := client.CreateItem(context.Background(), "c", "t", "d")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 403")
}

func TestUploadFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/1885564100/Two%20Girls.mp3", r.URL.EscapedPath())
		assert.Equal(t, "LOW AK:SK", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, []byte("mp3-bytes"), body)
	}))
	defer srv.Close()

	client := NewClient(testCreds,
		WithS3URL(srv.URL),
		WithDownloadURL("https://archive.example/download"),
	)

	url, err := client.UploadFile(context.Background(), "1885564100", File{Name: "Two Girls.mp3", Data: []byte("mp3-bytes")})
	require.NoError(t, err)
	assert.Equal(t, "https://archive.example/download/1885564100/Two%20Girls.mp3", url)
}

func TestUploadFileHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(testCreds, WithS3URL(srv.URL))
	_, err := client.UploadFile(context.Background(), "item", File{Name: "x.mp3", Data: []byte("d")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 503")
}

func TestDeleteFile(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		want    bool
		wantErr bool
	}{
		{"no content is success", http.StatusNoContent, true, false},
		{"ok is not success", http.StatusOK, false, true},
		{"not found", http.StatusNotFound, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodDelete, r.Method)
				assert.Equal(t, "/my-item/My%20File.mp3", r.URL.EscapedPath())
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			client := NewClient(testCreds, WithS3URL(srv.URL))
			ok, err := client.DeleteFile(context.Background(), "my-item", "My File.mp3")
			assert.Equal(t, tt.want, ok)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestListAudioFiles(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Query().Get("q"), `uploader:"curator@example.org"`)
		_, _ = w.Write([]byte(`{"response": {"docs": [{"identifier": "item-a"}, {"identifier": "item-b"}]}}`))
	})
	mux.HandleFunc("/metadata/item-a/files", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result": [{"name": "Still Life.mp3"}, {"name": "meta.xml"}]}`))
	})
	mux.HandleFunc("/metadata/item-b/files", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result": [{"name": "Kirchner.mp3"}]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(testCreds,
		WithMetadataURL(srv.URL),
		WithSearchURL(srv.URL+"/search"),
		WithDownloadURL("https://archive.example/download"),
	)

	files, err := client.ListAudioFiles(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, AudioFile{
		Name:       "Still Life.mp3",
		Identifier: "item-a",
		URL:        "https://archive.example/download/item-a/Still%20Life.mp3",
	}, files[0])
	assert.Equal(t, "Kirchner.mp3", files[1].Name)
	assert.Equal(t, "item-b", files[1].Identifier)
}
