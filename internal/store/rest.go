package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/marcus/twonote/internal/notebook"
)

// DefaultRESTTimeout bounds each request when no timeout is configured.
const DefaultRESTTimeout = 15 * time.Second

// APIError is a non-2xx response from the REST backend.
type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	msg := "API error: " + e.Status
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// RESTStore implements Storage against a remote JSON API.
type RESTStore struct {
	baseURL string
	client  *http.Client
}

// NewRESTStore creates a client for the API rooted at baseURL
// (for example http://localhost:3001/api).
func NewRESTStore(baseURL string, timeout time.Duration) (*RESTStore, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid REST base URL %q", baseURL)
	}
	if timeout <= 0 {
		timeout = DefaultRESTTimeout
	}
	return &RESTStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// Close releases idle connections.
func (s *RESTStore) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

// do sends a JSON request and decodes a JSON response into out (if non-nil).
func (s *RESTStore) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return s.send(req, out)
}

func (s *RESTStore) send(req *http.Request, out any) error {
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(b)),
		}
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%s %s: %w: %w", req.Method, req.URL.Path, ErrNotFound, apiErr)
		}
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, apiErr)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}

func escape(id string) string {
	return url.PathEscape(id)
}

type orderedIDs struct {
	OrderedIDs []string `json:"orderedIds"`
}

// Notebooks returns all notebooks in display order.
func (s *RESTStore) Notebooks(ctx context.Context) ([]notebook.Notebook, error) {
	var nbs []notebook.Notebook
	if err := s.do(ctx, http.MethodGet, "/notebooks", nil, &nbs); err != nil {
		return nil, err
	}
	notebook.SortNotebooks(nbs)
	return nbs, nil
}

// CreateNotebook creates a notebook.
func (s *RESTStore) CreateNotebook(ctx context.Context, name string) (*notebook.Notebook, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("notebook name is required")
	}
	var nb notebook.Notebook
	if err := s.do(ctx, http.MethodPost, "/notebooks", map[string]string{"name": name}, &nb); err != nil {
		return nil, err
	}
	return &nb, nil
}

// UpdateNotebook patches a notebook.
func (s *RESTStore) UpdateNotebook(ctx context.Context, id string, upd NotebookUpdate) (*notebook.Notebook, error) {
	var nb notebook.Notebook
	if err := s.do(ctx, http.MethodPatch, "/notebooks/"+escape(id), upd, &nb); err != nil {
		return nil, err
	}
	return &nb, nil
}

// DeleteNotebook deletes a notebook; the server removes its notes.
func (s *RESTStore) DeleteNotebook(ctx context.Context, id string) error {
	return s.do(ctx, http.MethodDelete, "/notebooks/"+escape(id), nil, nil)
}

// ReorderNotebooks sends the new notebook order.
func (s *RESTStore) ReorderNotebooks(ctx context.Context, ids []string) error {
	return s.do(ctx, http.MethodPost, "/notebooks/reorder", orderedIDs{OrderedIDs: ids}, nil)
}

// Notes lists notes, optionally filtered by notebook.
func (s *RESTStore) Notes(ctx context.Context, notebookID string) ([]notebook.Note, error) {
	path := "/notes"
	if notebookID != "" {
		path += "?notebookId=" + url.QueryEscape(notebookID)
	}
	var notes []notebook.Note
	if err := s.do(ctx, http.MethodGet, path, nil, &notes); err != nil {
		return nil, err
	}
	for i := range notes {
		normalizeNote(&notes[i])
	}
	return notes, nil
}

// Note fetches one note.
func (s *RESTStore) Note(ctx context.Context, id string) (*notebook.Note, error) {
	var n notebook.Note
	if err := s.do(ctx, http.MethodGet, "/notes/"+escape(id), nil, &n); err != nil {
		return nil, err
	}
	normalizeNote(&n)
	return &n, nil
}

// CreateNote creates an empty note in a notebook.
func (s *RESTStore) CreateNote(ctx context.Context, notebookID, title string) (*notebook.Note, error) {
	var n notebook.Note
	body := map[string]string{"notebookId": notebookID, "title": title}
	if err := s.do(ctx, http.MethodPost, "/notes", body, &n); err != nil {
		return nil, err
	}
	normalizeNote(&n)
	return &n, nil
}

// UpdateNote patches a note.
func (s *RESTStore) UpdateNote(ctx context.Context, id string, upd NoteUpdate) (*notebook.Note, error) {
	var n notebook.Note
	if err := s.do(ctx, http.MethodPatch, "/notes/"+escape(id), upd, &n); err != nil {
		return nil, err
	}
	normalizeNote(&n)
	return &n, nil
}

// DeleteNote deletes a note.
func (s *RESTStore) DeleteNote(ctx context.Context, id string) error {
	return s.do(ctx, http.MethodDelete, "/notes/"+escape(id), nil, nil)
}

// ReorderNotes sends the new note order of a notebook.
func (s *RESTStore) ReorderNotes(ctx context.Context, notebookID string, ids []string) error {
	return s.do(ctx, http.MethodPost, "/notebooks/"+escape(notebookID)+"/notes/reorder", orderedIDs{OrderedIDs: ids}, nil)
}

// MoveNote moves a note to another notebook.
func (s *RESTStore) MoveNote(ctx context.Context, noteID, targetNotebookID string) (*notebook.Note, error) {
	var n notebook.Note
	body := map[string]string{"targetNotebookId": targetNotebookID}
	if err := s.do(ctx, http.MethodPost, "/notes/"+escape(noteID)+"/move", body, &n); err != nil {
		return nil, err
	}
	normalizeNote(&n)
	return &n, nil
}

// AddAttachment uploads a file as multipart form data. Files already
// attached to the note (by checksum) are not uploaded again.
func (s *RESTStore) AddAttachment(ctx context.Context, noteID string, in AttachmentInput) (*notebook.Attachment, error) {
	n, err := s.Note(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if existing := findAttachmentByChecksum(n.Attachments, in.Checksum); existing != nil {
		return existing, nil
	}

	_, data, err := DecodeDataURL(in.Data)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, in.Name))
	h.Set("Content-Type", in.Type)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("create form part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("write form part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/notes/"+escape(noteID)+"/attachments", &buf)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	var a notebook.Attachment
	if err := s.send(req, &a); err != nil {
		return nil, err
	}
	if a.Checksum == "" {
		a.Checksum = in.Checksum
	}
	if a.Size == 0 {
		a.Size = in.Size
	}
	return &a, nil
}

// DeleteAttachment removes an attachment from a note.
func (s *RESTStore) DeleteAttachment(ctx context.Context, noteID, attachmentID string) error {
	return s.do(ctx, http.MethodDelete, "/notes/"+escape(noteID)+"/attachments/"+escape(attachmentID), nil, nil)
}

// normalizeNote fills defaults the server may omit.
func normalizeNote(n *notebook.Note) {
	n.Columns = notebook.NormalizeColumns(n.Columns)
	if n.Attachments == nil {
		n.Attachments = []notebook.Attachment{}
	}
}
