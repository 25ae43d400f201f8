// Package graph talks to the Microsoft Graph API: resolving the signed-in
// identity and uploading finished audit documents into a SharePoint
// document library.
package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Identity describes the signed-in user.
type Identity struct {
	ID                string `json:"id"`
	DisplayName       string `json:"displayName"`
	UserPrincipalName string `json:"userPrincipalName"`
}

// IdentityProvider resolves the active identity and its access token.
// ActiveIdentity returns (nil, nil) when nobody is signed in.
type IdentityProvider interface {
	ActiveIdentity(ctx context.Context) (*Identity, error)
	AcquireToken(ctx context.Context, identity *Identity) (string, error)
}

// Uploader stores a finished document under the given file name.
type Uploader interface {
	Upload(ctx context.Context, token string, content []byte, fileName string) error
}

// AuthError marks authentication failures: no identity, or token acquisition
// refused. These block submission but never touch local data.
type AuthError struct {
	Msg string
}

func (e *AuthError) Error() string { return e.Msg }

// UploadError marks a failed remote write. The local record is untouched
// and the caller offers retry or local export.
type UploadError struct {
	Status int
	Msg    string
}

func (e *UploadError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("upload failed (HTTP %d): %s", e.Status, e.Msg)
	}
	return fmt.Sprintf("upload failed: %s", e.Msg)
}

// graphBaseURL is a var to allow test overrides via httptest.
var graphBaseURL = "https://graph.microsoft.com/v1.0"

// BaseURL returns the current Graph API base URL.
func BaseURL() string { return graphBaseURL }

// SetBaseURL overrides the Graph API base URL. Intended for tests only.
func SetBaseURL(u string) { graphBaseURL = u }

var sharedHTTPClient = &http.Client{Timeout: 60 * time.Second}

// Client is the Graph-backed implementation of Uploader plus identity
// lookup. SiteURL is the host-relative SharePoint site path, Library the
// document library display name, Folder the target folder within it.
type Client struct {
	SiteURL string
	Library string
	Folder  string
}

// graphError is the error envelope Graph wraps failures in.
type graphError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) get(ctx context.Context, token, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, graphBaseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating HTTP request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := sharedHTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	const maxBodyBytes = 4 * 1024 * 1024
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return &AuthError{Msg: fmt.Sprintf("Graph returned HTTP %d for %s", resp.StatusCode, endpoint)}
	}
	if resp.StatusCode != http.StatusOK {
		var ge graphError
		_ = json.Unmarshal(body, &ge)
		msg := ge.Error.Message
		if msg == "" {
			msg = fmt.Sprintf("Graph API error for %s", endpoint)
		}
		return &UploadError{Status: resp.StatusCode, Msg: msg}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", endpoint, err)
	}
	return nil
}

// Me returns the profile of the token's user.
func (c *Client) Me(ctx context.Context, token string) (*Identity, error) {
	var id Identity
	if err := c.get(ctx, token, "/me", &id); err != nil {
		return nil, err
	}
	return &id, nil
}

// Upload resolves the site and document library, then PUTs the content at
// the configured folder path.
func (c *Client) Upload(ctx context.Context, token string, content []byte, fileName string) error {
	var site struct {
		ID string `json:"id"`
	}
	if err := c.get(ctx, token, "/sites/"+c.SiteURL, &site); err != nil {
		return err
	}

	var drives struct {
		Value []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"value"`
	}
	if err := c.get(ctx, token, "/sites/"+site.ID+"/drives", &drives); err != nil {
		return err
	}

	driveID := ""
	for _, d := range drives.Value {
		if d.Name == c.Library {
			driveID = d.ID
			break
		}
	}
	if driveID == "" {
		return &UploadError{Msg: fmt.Sprintf("document library %q not found", c.Library)}
	}

	path := fileName
	if c.Folder != "" {
		path = c.Folder + "/" + fileName
	}
	endpoint := fmt.Sprintf("%s/drives/%s/root:/%s:/content", graphBaseURL, driveID, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(content))
	if err != nil {
		return fmt.Errorf("creating upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/pdf")

	resp, err := sharedHTTPClient.Do(req)
	if err != nil {
		return &UploadError{Msg: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		var ge graphError
		_ = json.Unmarshal(body, &ge)
		msg := ge.Error.Message
		if msg == "" {
			msg = "upload rejected"
		}
		return &UploadError{Status: resp.StatusCode, Msg: msg}
	}
	return nil
}
