package storage

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"ms-bookings/internal/logger"
)

const (
	// MaxScreenshotSize is the hard upload limit: 5 MiB.
	MaxScreenshotSize = 5 * 1024 * 1024

	// screenshotPrefix is the logical folder all payment proofs live under.
	screenshotPrefix = "payment-screenshots"
)

var allowedTypes = map[string]string{
	"image/jpeg": "jpeg",
	"image/jpg":  "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// InvalidInputError reports an upload constraint violation. It is raised
// before any network call is made.
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string {
	return e.Message
}

// UploadError wraps a storage-layer rejection.
type UploadError struct {
	Message string
	Err     error
}

func (e *UploadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// Client talks to a Supabase-compatible storage endpoint over plain HTTP.
type Client struct {
	ProjectURL     string
	ServiceRoleKey string
	Bucket         string
	HTTPClient     *http.Client
	Logger         *logger.Logger
}

func NewClient(projectURL, serviceRoleKey, bucket string, log *logger.Logger) *Client {
	return &Client{
		ProjectURL:     strings.TrimRight(projectURL, "/"),
		ServiceRoleKey: serviceRoleKey,
		Bucket:         bucket,
		HTTPClient:     &http.Client{Timeout: 30 * time.Second},
		Logger:         log,
	}
}

// Upload validates and stores a payment screenshot, returning its public
// URL. The storage key is derived from the booking id and the current time,
// and the request forbids overwrites: a key collision fails instead of
// silently replacing the object.
func (c *Client) Upload(data []byte, contentType, bookingID, filename string) (string, error) {
	ext, ok := allowedTypes[strings.ToLower(contentType)]
	if !ok {
		return "", &InvalidInputError{Message: "Invalid file type. Please upload JPG, PNG, or WebP image."}
	}
	if len(data) > MaxScreenshotSize {
		return "", &InvalidInputError{Message: "File size too large. Maximum size is 5MB."}
	}

	if fileExt := strings.TrimPrefix(path.Ext(filename), "."); fileExt != "" {
		ext = fileExt
	}

	key := fmt.Sprintf("%s/%s_%d.%s", screenshotPrefix, bookingID, time.Now().UnixMilli(), ext)
	uploadURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.ProjectURL, c.Bucket, key)

	req, err := http.NewRequest(http.MethodPost, uploadURL, bytes.NewReader(data))
	if err != nil {
		return "", &UploadError{Message: "Failed to upload screenshot", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.ServiceRoleKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Cache-Control", "3600")
	req.Header.Set("x-upsert", "false")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", &UploadError{Message: "Failed to upload screenshot", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		c.Logger.Error("STORAGE", fmt.Sprintf("upload rejected (status %d): %s", resp.StatusCode, string(body)))
		return "", &UploadError{Message: fmt.Sprintf("Failed to upload screenshot: status %d", resp.StatusCode)}
	}

	publicURL := fmt.Sprintf("%s/storage/v1/object/public/%s/%s",
		c.ProjectURL, c.Bucket, escapeKey(key))

	c.Logger.LogStorage("UPLOAD", key, fmt.Sprintf("stored %d bytes for booking %s", len(data), bookingID))
	return publicURL, nil
}

// Delete removes a previously uploaded screenshot by its public URL.
// A malformed URL is an InvalidInputError; every other failure is logged
// and swallowed because removal is cleanup, not a user-facing operation.
func (c *Client) Delete(screenshotURL string) error {
	parts := strings.SplitN(screenshotURL, "/"+screenshotPrefix+"/", 2)
	if len(parts) < 2 || parts[1] == "" {
		return &InvalidInputError{Message: "Invalid screenshot URL"}
	}
	key := fmt.Sprintf("%s/%s", screenshotPrefix, parts[1])

	deleteURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.ProjectURL, c.Bucket, key)
	req, err := http.NewRequest(http.MethodDelete, deleteURL, nil)
	if err != nil {
		c.Logger.Error("STORAGE", fmt.Sprintf("delete request build failed for %s: %v", key, err))
		return nil
	}
	req.Header.Set("Authorization", "Bearer "+c.ServiceRoleKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.Logger.Error("STORAGE", fmt.Sprintf("delete failed for %s: %v", key, err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		c.Logger.Error("STORAGE", fmt.Sprintf("delete rejected (status %d) for %s: %s", resp.StatusCode, key, string(body)))
		return nil
	}

	c.Logger.LogStorage("DELETE", key, "screenshot removed")
	return nil
}

func escapeKey(key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
