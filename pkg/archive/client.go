// Package archive is a client for the Internet Archive: item metadata
// creation, S3-compatible file upload and delete, and enumeration of
// previously uploaded audio files.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

const (
	defaultMetadataURL = "https://archive.org"
	defaultS3URL       = "https://s3.us.archive.org"
	defaultDownloadURL = "https://archive.org/download"
	defaultSearchURL   = "https://archive.org/advancedsearch.php"

	audioExtension = ".mp3"
)

// File is a named byte stream to upload into an item.
type File struct {
	Name string
	Data []byte
}

// AudioFile describes one previously uploaded audio file.
type AudioFile struct {
	Name       string `json:"filename"`
	Identifier string `json:"identifier"`
	URL        string `json:"url"`
}

// Client talks to the archival storage service.
type Client interface {
	CreateItem(ctx context.Context, collection, title, description string) (string, error)
	UploadFile(ctx context.Context, identifier string, file File) (string, error)
	DeleteFile(ctx context.Context, identifier, name string) (bool, error)
	ListAudioFiles(ctx context.Context) ([]AudioFile, error)
}

// Credentials holds the two credential pairs the archive uses: the account
// login for metadata calls and the S3 key pair for uploads and deletes.
type Credentials struct {
	Email     string
	Password  string
	AccessKey string
	Secret    string
}

// Option configures the client.
type Option func(*httpClient)

// WithMetadataURL overrides the metadata endpoint base URL.
func WithMetadataURL(u string) Option {
	return func(c *httpClient) {
		c.metadataURL = u
	}
}

// WithS3URL overrides the S3-compatible endpoint base URL.
func WithS3URL(u string) Option {
	return func(c *httpClient) {
		c.s3URL = u
	}
}

// WithDownloadURL overrides the public download base URL.
func WithDownloadURL(u string) Option {
	return func(c *httpClient) {
		c.downloadURL = u
	}
}

// WithSearchURL overrides the item search endpoint URL.
func WithSearchURL(u string) Option {
	return func(c *httpClient) {
		c.searchURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	creds       Credentials
	metadataURL string
	s3URL       string
	downloadURL string
	searchURL   string
	http        *http.Client
}

// NewClient creates an archive client.
func NewClient(creds Credentials, opts ...Option) Client {
	c := &httpClient{
		creds:       creds,
		metadataURL: defaultMetadataURL,
		s3URL:       defaultS3URL,
		downloadURL: defaultDownloadURL,
		searchURL:   defaultSearchURL,
		http: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type createItemRequest struct {
	Collection  string `json:"collection"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Contributor string `json:"contributor"`
}

type createItemResponse struct {
	Uniq string `json:"uniq"`
}

// CreateItem registers metadata for a new logical item and returns its
// identifier.
func (c *httpClient) CreateItem(ctx context.Context, collection, title, description string) (string, error) {
	body, err := json.Marshal(createItemRequest{
		Collection:  collection,
		Title:       title,
		Description: description,
		Contributor: c.creds.Email,
	})
	if err != nil {
		return "", eris.Wrap(err, "archive: marshal item metadata")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.metadataURL+"/metadata/items", bytes.NewReader(body))
	if err != nil {
		return "", eris.Wrap(err, "archive: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("authorization", "LOW "+c.creds.Email+":"+c.creds.Password)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", eris.Wrap(err, "archive: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", eris.Wrap(err, "archive: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return "", eris.Errorf("archive: create item: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result createItemResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", eris.Wrap(err, "archive: unmarshal response")
	}
	if result.Uniq == "" {
		return "", eris.New("archive: create item: no identifier in response")
	}
	return result.Uniq, nil
}

// fileURL builds the deterministic download URL for a file in an item.
func (c *httpClient) fileURL(identifier, name string) string {
	return c.downloadURL + "/" + identifier + "/" + url.PathEscape(name)
}

// UploadFile attaches a named byte stream to an existing item and returns
// the public download URL.
func (c *httpClient) UploadFile(ctx context.Context, identifier string, file File) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut,
		c.s3URL+"/"+identifier+"/"+url.PathEscape(file.Name), bytes.NewReader(file.Data))
	if err != nil {
		return "", eris.Wrap(err, "archive: create upload request")
	}
	httpReq.Header.Set("Authorization", "LOW "+c.creds.AccessKey+":"+c.creds.Secret)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", eris.Wrap(err, "archive: send upload")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", eris.Errorf("archive: upload: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	return c.fileURL(identifier, file.Name), nil
}

// DeleteFile removes a named file from an item. Success is exactly HTTP 204.
func (c *httpClient) DeleteFile(ctx context.Context, identifier, name string) (bool, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		c.s3URL+"/"+identifier+"/"+url.PathEscape(name), nil)
	if err != nil {
		return false, eris.Wrap(err, "archive: create delete request")
	}
	httpReq.Header.Set("Authorization", "LOW "+c.creds.AccessKey+":"+c.creds.Secret)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return false, eris.Wrap(err, "archive: send delete")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		respBody, _ := io.ReadAll(resp.Body)
		return false, eris.Errorf("archive: delete: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}
	return true, nil
}

type searchResponse struct {
	Response struct {
		Docs []struct {
			Identifier string `json:"identifier"`
		} `json:"docs"`
	} `json:"response"`
}

type itemFilesResponse struct {
	Result []struct {
		Name string `json:"name"`
	} `json:"result"`
}

// ListAudioFiles enumerates items uploaded by the configured account and
// returns every file ending in the audio extension.
func (c *httpClient) ListAudioFiles(ctx context.Context) ([]AudioFile, error) {
	identifiers, err := c.searchOwnedItems(ctx)
	if err != nil {
		return nil, err
	}

	var files []AudioFile
	for _, identifier := range identifiers {
		names, err := c.itemFiles(ctx, identifier)
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			if !strings.HasSuffix(name, audioExtension) {
				continue
			}
			files = append(files, AudioFile{
				Name:       name,
				Identifier: identifier,
				URL:        c.fileURL(identifier, name),
			})
		}
	}
	return files, nil
}

func (c *httpClient) searchOwnedItems(ctx context.Context) ([]string, error) {
	query := url.Values{}
	query.Set("q", `uploader:"`+c.creds.Email+`"`)
	query.Set("fl[]", "identifier")
	query.Set("output", "json")
	query.Set("rows", "1000")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.searchURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "archive: create search request")
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "archive: send search")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "archive: read search response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("archive: search: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result searchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "archive: unmarshal search response")
	}

	identifiers := make([]string, 0, len(result.Response.Docs))
	for _, doc := range result.Response.Docs {
		identifiers = append(identifiers, doc.Identifier)
	}
	return identifiers, nil
}

func (c *httpClient) itemFiles(ctx context.Context, identifier string) ([]string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.metadataURL+"/metadata/"+identifier+"/files", nil)
	if err != nil {
		return nil, eris.Wrap(err, "archive: create files request")
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "archive: send files request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "archive: read files response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("archive: item files: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result itemFilesResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "archive: unmarshal files response")
	}

	names := make([]string, 0, len(result.Result))
	for _, f := range result.Result {
		names = append(names, f.Name)
	}
	return names, nil
}
