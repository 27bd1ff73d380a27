package workpapers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/auditmarks/pkg/pagination"
	"github.com/JaimeStill/auditmarks/pkg/routes"
	"github.com/JaimeStill/auditmarks/pkg/storage"
)

type mockSystem struct {
	listFn     func(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[WorkPaper], error)
	findFn     func(ctx context.Context, id uuid.UUID) (*WorkPaper, error)
	createFn   func(ctx context.Context, cmd CreateCommand) (*WorkPaper, error)
	batchFn    func(ctx context.Context, cmds []CreateCommand) []BatchResult
	deleteFn   func(ctx context.Context, id uuid.UUID) error
	downloadFn func(ctx context.Context, id uuid.UUID) (*Delivery, error)
}

func (m *mockSystem) Handler(maxUploadSize int64) *Handler {
	return NewHandler(m, slog.New(slog.NewTextHandler(io.Discard, nil)), testPagination, maxUploadSize)
}

func (m *mockSystem) List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[WorkPaper], error) {
	return m.listFn(ctx, page, filters)
}

func (m *mockSystem) Find(ctx context.Context, id uuid.UUID) (*WorkPaper, error) {
	return m.findFn(ctx, id)
}

func (m *mockSystem) Create(ctx context.Context, cmd CreateCommand) (*WorkPaper, error) {
	return m.createFn(ctx, cmd)
}

func (m *mockSystem) CreateBatch(ctx context.Context, cmds []CreateCommand) []BatchResult {
	return m.batchFn(ctx, cmds)
}

func (m *mockSystem) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFn(ctx, id)
}

func (m *mockSystem) Download(ctx context.Context, id uuid.UUID) (*Delivery, error) {
	return m.downloadFn(ctx, id)
}

var (
	testPagination = pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}
	paperID        = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
)

func samplePaper() WorkPaper {
	return WorkPaper{
		ID:          paperID,
		AuditID:     7,
		Filename:    "A-1 Caja.docx",
		ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		SizeBytes:   2048,
		StorageKey:  "audits/7/workpapers/" + paperID.String() + "/A-1%20Caja.docx",
		UploadedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func setupMux(sys *mockSystem, maxUpload int64) *http.ServeMux {
	mux := http.NewServeMux()
	routes.Register(mux, sys.Handler(maxUpload).Routes())
	return mux
}

type upload struct {
	field       string
	filename    string
	contentType string
	data        []byte
}

func multipartBody(t *testing.T, auditID string, files ...upload) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if auditID != "" {
		require.NoError(t, mw.WriteField("audit_id", auditID))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.filename+`"`)
		if f.contentType != "" {
			h.Set("Content-Type", f.contentType)
		}
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func serve(mux *http.ServeMux, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHandlerList(t *testing.T) {
	var gotPage pagination.PageRequest
	var gotFilters Filters
	sys := &mockSystem{
		listFn: func(_ context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[WorkPaper], error) {
			gotPage, gotFilters = page, filters
			result := pagination.NewPageResult([]WorkPaper{samplePaper()}, 1, page.Page, page.PageSize)
			return &result, nil
		},
	}

	rec := serve(setupMux(sys, 1<<20), httptest.NewRequest("GET", "/workpapers?audit_id=7&filename=caja&page=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 2, gotPage.Page)
	require.NotNil(t, gotFilters.AuditID)
	assert.Equal(t, 7, *gotFilters.AuditID)
	require.NotNil(t, gotFilters.Filename)
	assert.Equal(t, "caja", *gotFilters.Filename)
	assert.Nil(t, gotFilters.ContentType)

	var body pagination.PageResult[WorkPaper]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "A-1 Caja.docx", body.Data[0].Filename)

	t.Run("system error", func(t *testing.T) {
		sys.listFn = func(context.Context, pagination.PageRequest, Filters) (*pagination.PageResult[WorkPaper], error) {
			return nil, errors.New("db down")
		}
		rec := serve(setupMux(sys, 1<<20), httptest.NewRequest("GET", "/workpapers", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestHandlerSearch(t *testing.T) {
	var gotPage pagination.PageRequest
	var gotFilters Filters
	sys := &mockSystem{
		listFn: func(_ context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[WorkPaper], error) {
			gotPage, gotFilters = page, filters
			result := pagination.NewPageResult[WorkPaper](nil, 0, page.Page, page.PageSize)
			return &result, nil
		},
	}
	mux := setupMux(sys, 1<<20)

	rec := serve(mux, httptest.NewRequest("POST", "/workpapers/search",
		strings.NewReader(`{"page":0,"page_size":500,"audit_id":7,"sort":"-Filename"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 1, gotPage.Page)
	assert.Equal(t, 100, gotPage.PageSize)
	require.NotNil(t, gotFilters.AuditID)
	assert.Equal(t, 7, *gotFilters.AuditID)
	require.Len(t, gotPage.Sort, 1)
	assert.True(t, gotPage.Sort[0].Descending)

	rec = serve(mux, httptest.NewRequest("POST", "/workpapers/search", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerFind(t *testing.T) {
	sys := &mockSystem{
		findFn: func(_ context.Context, id uuid.UUID) (*WorkPaper, error) {
			if id != paperID {
				return nil, ErrNotFound
			}
			w := samplePaper()
			return &w, nil
		},
	}
	mux := setupMux(sys, 1<<20)

	tests := []struct {
		name string
		path string
		want int
	}{
		{"found", "/workpapers/" + paperID.String(), http.StatusOK},
		{"missing", "/workpapers/" + uuid.NewString(), http.StatusNotFound},
		{"bad id", "/workpapers/not-a-uuid", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, serve(mux, httptest.NewRequest("GET", tt.path, nil)).Code)
		})
	}
}

func TestHandlerUpload(t *testing.T) {
	docx := []byte("PK\x03\x04 word document")

	t.Run("creates work paper", func(t *testing.T) {
		var got CreateCommand
		sys := &mockSystem{
			createFn: func(_ context.Context, cmd CreateCommand) (*WorkPaper, error) {
				got = cmd
				w := samplePaper()
				return &w, nil
			},
		}

		body, ct := multipartBody(t, "7", upload{
			field:       "file",
			filename:    "A-1 Caja.docx",
			contentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			data:        docx,
		})
		req := httptest.NewRequest("POST", "/workpapers", body)
		req.Header.Set("Content-Type", ct)

		rec := serve(setupMux(sys, 1<<20), req)
		require.Equal(t, http.StatusCreated, rec.Code)

		assert.Equal(t, 7, got.AuditID)
		assert.Equal(t, "A-1 Caja.docx", got.Filename)
		assert.Equal(t, docx, got.Data)
		assert.Equal(t, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", got.ContentType)
	})

	t.Run("content type sniffed when generic", func(t *testing.T) {
		var got CreateCommand
		sys := &mockSystem{
			createFn: func(_ context.Context, cmd CreateCommand) (*WorkPaper, error) {
				got = cmd
				w := samplePaper()
				return &w, nil
			},
		}

		body, ct := multipartBody(t, "7", upload{field: "file", filename: "notes.txt", data: []byte("hola auditor")})
		req := httptest.NewRequest("POST", "/workpapers", body)
		req.Header.Set("Content-Type", ct)

		require.Equal(t, http.StatusCreated, serve(setupMux(sys, 1<<20), req).Code)
		assert.Equal(t, "text/plain; charset=utf-8", got.ContentType)
	})

	failures := []struct {
		name    string
		auditID string
		files   []upload
		create  error
		want    int
	}{
		{"missing audit", "", []upload{{field: "file", filename: "a.docx", data: docx}}, nil, http.StatusBadRequest},
		{"invalid audit", "zero", []upload{{field: "file", filename: "a.docx", data: docx}}, nil, http.StatusBadRequest},
		{"non-positive audit", "0", []upload{{field: "file", filename: "a.docx", data: docx}}, nil, http.StatusBadRequest},
		{"missing file", "7", nil, nil, http.StatusBadRequest},
		{"duplicate", "7", []upload{{field: "file", filename: "a.docx", data: docx}}, ErrDuplicate, http.StatusConflict},
		{"storage key rejected", "7", []upload{{field: "file", filename: "a.docx", data: docx}}, storage.ErrInvalidKey, http.StatusBadRequest},
	}

	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			sys := &mockSystem{
				createFn: func(context.Context, CreateCommand) (*WorkPaper, error) {
					return nil, tt.create
				},
			}
			body, ct := multipartBody(t, tt.auditID, tt.files...)
			req := httptest.NewRequest("POST", "/workpapers", body)
			req.Header.Set("Content-Type", ct)

			assert.Equal(t, tt.want, serve(setupMux(sys, 1<<20), req).Code)
		})
	}

	t.Run("not multipart", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/workpapers", strings.NewReader("raw"))
		req.Header.Set("Content-Type", "text/plain")
		assert.Equal(t, http.StatusBadRequest, serve(setupMux(&mockSystem{}, 1<<20), req).Code)
	})

	t.Run("body over limit", func(t *testing.T) {
		body, ct := multipartBody(t, "7", upload{field: "file", filename: "big.docx", data: bytes.Repeat([]byte("x"), 4096)})
		req := httptest.NewRequest("POST", "/workpapers", body)
		req.Header.Set("Content-Type", ct)
		assert.Equal(t, http.StatusRequestEntityTooLarge, serve(setupMux(&mockSystem{}, 1024), req).Code)
	})
}

func TestHandlerUploadBatch(t *testing.T) {
	var got []CreateCommand
	sys := &mockSystem{
		batchFn: func(_ context.Context, cmds []CreateCommand) []BatchResult {
			got = cmds
			w := samplePaper()
			return []BatchResult{
				{WorkPaper: &w, Filename: cmds[0].Filename},
				{Filename: cmds[1].Filename, Error: "upload failed"},
			}
		},
	}

	body, ct := multipartBody(t, "7",
		upload{field: "files", filename: "A-1 Caja.docx", data: []byte("one")},
		upload{field: "files", filename: "B-2 Bancos.xlsx", data: []byte("two")},
	)
	req := httptest.NewRequest("POST", "/workpapers/batch", body)
	req.Header.Set("Content-Type", ct)

	rec := serve(setupMux(sys, 1<<20), req)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, got, 2)
	assert.Equal(t, 7, got[1].AuditID)
	assert.Equal(t, []byte("two"), got[1].Data)

	var results []BatchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	require.Len(t, results, 2)
	assert.NotNil(t, results[0].WorkPaper)
	assert.Equal(t, "upload failed", results[1].Error)

	t.Run("no files", func(t *testing.T) {
		body, ct := multipartBody(t, "7")
		req := httptest.NewRequest("POST", "/workpapers/batch", body)
		req.Header.Set("Content-Type", ct)
		assert.Equal(t, http.StatusBadRequest, serve(setupMux(sys, 1<<20), req).Code)
	})
}

func TestHandlerDownload(t *testing.T) {
	stamped := []byte("stamped document")
	sys := &mockSystem{
		downloadFn: func(_ context.Context, id uuid.UUID) (*Delivery, error) {
			if id != paperID {
				return nil, storage.ErrNotFound
			}
			return &Delivery{
				Filename:    "A-1 Caja.docx",
				ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
				Data:        stamped,
			}, nil
		},
	}
	mux := setupMux(sys, 1<<20)

	rec := serve(mux, httptest.NewRequest("GET", "/workpapers/"+paperID.String()+"/download", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, stamped, rec.Body.Bytes())
	assert.Equal(t, "16", rec.Header().Get("Content-Length"))
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")

	rec = serve(mux, httptest.NewRequest("GET", "/workpapers/"+uuid.NewString()+"/download", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(mux, httptest.NewRequest("GET", "/workpapers/nope/download", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerDelete(t *testing.T) {
	sys := &mockSystem{
		deleteFn: func(_ context.Context, id uuid.UUID) error {
			if id != paperID {
				return ErrNotFound
			}
			return nil
		},
	}
	mux := setupMux(sys, 1<<20)

	assert.Equal(t, http.StatusNoContent, serve(mux, httptest.NewRequest("DELETE", "/workpapers/"+paperID.String(), nil)).Code)
	assert.Equal(t, http.StatusNotFound, serve(mux, httptest.NewRequest("DELETE", "/workpapers/"+uuid.NewString(), nil)).Code)
	assert.Equal(t, http.StatusBadRequest, serve(mux, httptest.NewRequest("DELETE", "/workpapers/x", nil)).Code)
}
