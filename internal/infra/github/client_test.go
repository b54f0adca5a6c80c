package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/orderhelper/vipledger/internal/domain"
)

func TestNewValidation(t *testing.T) {
	if _, err := New("", "owner/repo", "main", "DB"); !errors.Is(err, domain.ErrBackupTokenMissing) {
		t.Errorf("missing token error = %v, want ErrBackupTokenMissing", err)
	}
	for _, repo := range []string{"", "no-slash", "/name", "owner/"} {
		if _, err := New("tok", repo, "main", "DB"); err == nil {
			t.Errorf("New accepted malformed repo %q", repo)
		}
	}

	c, err := New("tok", "owner/repo", "", "/DB/")
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	if c.branch != "main" {
		t.Errorf("default branch = %q, want main", c.branch)
	}
	if c.folder != "DB" {
		t.Errorf("folder = %q, want trimmed %q", c.folder, "DB")
	}
}

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New("tok", "owner/repo", "main", "DB")
	if err != nil {
		t.Fatal(err)
	}
	c.base = srv.URL
	return c
}

func TestUploadCreatesNewFile(t *testing.T) {
	var gotPut struct {
		Message string `json:"message"`
		Content string `json:"content"`
		Branch  string `json:"branch"`
		SHA     string `json:"sha"`
	}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/owner/repo/contents/DB/backup.json" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer tok" {
			t.Errorf("Authorization = %q", auth)
		}
		switch r.Method {
		case http.MethodGet:
			// No existing file yet.
			http.NotFound(w, r)
		case http.MethodPut:
			body, _ := io.ReadAll(r.Body)
			if err := json.Unmarshal(body, &gotPut); err != nil {
				t.Errorf("decode PUT body: %v", err)
			}
			w.Write([]byte(`{}`))
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	})

	c := testClient(t, handler)
	doc := domain.Backup{
		VipList:   "An, 500đ",
		Timestamp: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Version:   domain.BackupVersion,
	}
	if err := c.Upload(context.Background(), "backup.json", doc); err != nil {
		t.Fatalf("Upload error = %v", err)
	}

	if gotPut.Branch != "main" {
		t.Errorf("branch = %q, want main", gotPut.Branch)
	}
	if gotPut.SHA != "" {
		t.Errorf("sha sent for a new file: %q", gotPut.SHA)
	}
	raw, err := base64.StdEncoding.DecodeString(gotPut.Content)
	if err != nil {
		t.Fatalf("content is not base64: %v", err)
	}
	var uploaded domain.Backup
	if err := json.Unmarshal(raw, &uploaded); err != nil {
		t.Fatalf("uploaded content is not a backup document: %v", err)
	}
	if uploaded.VipList != doc.VipList {
		t.Errorf("uploaded vipList = %q, want %q", uploaded.VipList, doc.VipList)
	}
}

func TestUploadSendsShaForExistingFile(t *testing.T) {
	var gotPut struct {
		SHA string `json:"sha"`
	}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(map[string]string{"sha": "abc123", "content": ""})
		case http.MethodPut:
			body, _ := io.ReadAll(r.Body)
			json.Unmarshal(body, &gotPut)
			w.Write([]byte(`{}`))
		}
	})

	c := testClient(t, handler)
	if err := c.Upload(context.Background(), "backup.json", domain.Backup{}); err != nil {
		t.Fatalf("Upload error = %v", err)
	}
	if gotPut.SHA != "abc123" {
		t.Errorf("sha = %q, want abc123", gotPut.SHA)
	}
}

func TestDownload(t *testing.T) {
	doc := domain.Backup{VipList: "An, 500đ", Version: domain.BackupVersion}
	payload, _ := json.Marshal(doc)
	// The contents API wraps base64 at 60 columns.
	encoded := base64.StdEncoding.EncodeToString(payload)
	wrapped := encoded[:20] + "\n" + encoded[20:]

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"sha": "abc", "content": wrapped})
	})

	c := testClient(t, handler)
	got, err := c.Download(context.Background(), "backup.json")
	if err != nil {
		t.Fatalf("Download error = %v", err)
	}
	if got.VipList != doc.VipList {
		t.Errorf("vipList = %q, want %q", got.VipList, doc.VipList)
	}
}

func TestDownloadNotFound(t *testing.T) {
	c := testClient(t, http.NotFoundHandler())
	_, err := c.Download(context.Background(), "missing.json")
	if !errors.Is(err, domain.ErrBackupNotFound) {
		t.Errorf("error = %v, want ErrBackupNotFound", err)
	}
}

func TestRequestSurfacesAPIError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"Invalid request"}`))
	})

	c := testClient(t, handler)
	_, err := c.Download(context.Background(), "x.json")
	if err == nil {
		t.Fatal("error = nil, want api error")
	}
	if !strings.Contains(err.Error(), "Invalid request") {
		t.Errorf("error %q does not carry the API message", err)
	}
}
