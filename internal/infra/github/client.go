// Package github pushes backup documents to a GitHub repository through the
// contents API. It is an external collaborator of the core: the engine hands
// it a fully materialized backup document and never sees partial writes.
package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/orderhelper/vipledger/internal/domain"
)

const apiBase = "https://api.github.com"

// Client talks to one repository/branch/folder.
type Client struct {
	http   *http.Client
	base   string
	token  string
	owner  string
	repo   string
	branch string
	folder string
}

// New builds a client for "owner/name" repo coordinates.
func New(token, repo, branch, folder string) (*Client, error) {
	if token == "" {
		return nil, domain.ErrBackupTokenMissing
	}
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" {
		return nil, fmt.Errorf("backup repo must be owner/name, got %q", repo)
	}
	if branch == "" {
		branch = "main"
	}
	return &Client{
		http:   &http.Client{Timeout: 30 * time.Second},
		base:   apiBase,
		token:  token,
		owner:  owner,
		repo:   name,
		branch: branch,
		folder: strings.Trim(folder, "/"),
	}, nil
}

// ─── domain.BackupTransport ─────────────────────────────────────────────────

// Upload writes the backup document under the given file name, creating or
// updating the file as needed.
func (c *Client) Upload(ctx context.Context, name string, doc domain.Backup) error {
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}

	// Updating an existing file needs its current blob SHA.
	sha, _, err := c.fetchFile(ctx, name)
	if err != nil && !errors.Is(err, domain.ErrBackupNotFound) {
		return err
	}

	body := map[string]any{
		"message": fmt.Sprintf("backup %s", doc.Timestamp.Format("2006-01-02 15:04:05")),
		"content": base64.StdEncoding.EncodeToString(payload),
		"branch":  c.branch,
	}
	if sha != "" {
		body["sha"] = sha
	}

	_, err = c.request(ctx, http.MethodPut, c.contentsPath(name), body)
	return err
}

// Download fetches a backup document by file name.
func (c *Client) Download(ctx context.Context, name string) (domain.Backup, error) {
	_, content, err := c.fetchFile(ctx, name)
	if err != nil {
		return domain.Backup{}, err
	}
	var doc domain.Backup
	if err := json.Unmarshal(content, &doc); err != nil {
		return domain.Backup{}, fmt.Errorf("decode backup: %w", err)
	}
	return doc, nil
}

// ─── HTTP Plumbing ──────────────────────────────────────────────────────────

func (c *Client) contentsPath(name string) string {
	path := name
	if c.folder != "" {
		path = c.folder + "/" + name
	}
	return fmt.Sprintf("/repos/%s/%s/contents/%s", c.owner, c.repo, path)
}

// fetchFile returns the blob SHA and decoded content of a stored file.
func (c *Client) fetchFile(ctx context.Context, name string) (sha string, content []byte, err error) {
	data, err := c.request(ctx, http.MethodGet, c.contentsPath(name)+"?ref="+c.branch, nil)
	if err != nil {
		return "", nil, err
	}

	var file struct {
		SHA     string `json:"sha"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return "", nil, fmt.Errorf("decode contents response: %w", err)
	}
	// The API wraps base64 at 60 columns.
	raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(file.Content, "\n", ""))
	if err != nil {
		return "", nil, fmt.Errorf("decode file content: %w", err)
	}
	return file.SHA, raw, nil
}

func (c *Client) request(ctx context.Context, method, endpoint string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrBackupNotFound
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("github api: %s (%s)", apiErr.Message, resp.Status)
		}
		return nil, fmt.Errorf("github api: %s", resp.Status)
	}
	return data, nil
}
