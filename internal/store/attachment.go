package store

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// MaxAttachmentSize is the largest file accepted as an attachment.
const MaxAttachmentSize = 10 << 20

// ErrAttachmentTooLarge is returned for files above MaxAttachmentSize.
var ErrAttachmentTooLarge = errors.New("attachment too large")

// NewAttachmentInput reads the file at path and prepares it for storage.
func NewAttachmentInput(path string) (AttachmentInput, error) {
	info, err := os.Stat(path)
	if err != nil {
		return AttachmentInput{}, fmt.Errorf("stat attachment: %w", err)
	}
	if info.IsDir() {
		return AttachmentInput{}, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > MaxAttachmentSize {
		return AttachmentInput{}, fmt.Errorf("%s (%d bytes): %w", filepath.Base(path), info.Size(), ErrAttachmentTooLarge)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return AttachmentInput{}, fmt.Errorf("read attachment: %w", err)
	}
	return AttachmentFromBytes(filepath.Base(path), data), nil
}

// AttachmentFromBytes builds an attachment input from raw file content.
func AttachmentFromBytes(name string, data []byte) AttachmentInput {
	mimeType := DetectType(name, data)
	return AttachmentInput{
		Name:     name,
		Type:     mimeType,
		Data:     EncodeDataURL(mimeType, data),
		Size:     int64(len(data)),
		Checksum: Checksum(data),
	}
}

// DetectType guesses a MIME type from the file extension, falling back to
// content sniffing. Parameters such as charset are dropped.
func DetectType(name string, data []byte) string {
	t := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if t == "" {
		t = http.DetectContentType(data)
	}
	if mediaType, _, err := mime.ParseMediaType(t); err == nil {
		return mediaType
	}
	return "application/octet-stream"
}

// Checksum returns the xxhash64 of data as 16 hex characters.
func Checksum(data []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}

// EncodeDataURL encodes data as a base64 data URL.
func EncodeDataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURL splits a base64 data URL into its MIME type and content.
func DecodeDataURL(url string) (mimeType string, data []byte, err error) {
	rest, ok := strings.CutPrefix(url, "data:")
	if !ok {
		return "", nil, errors.New("not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, errors.New("malformed data URL")
	}
	mimeType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return "", nil, errors.New("data URL is not base64 encoded")
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data URL: %w", err)
	}
	return mimeType, data, nil
}

// checksumOf returns the stored checksum of an attachment, computing it from
// the payload for attachments created without one.
func checksumOf(data, stored string) string {
	if stored != "" {
		return stored
	}
	_, raw, err := DecodeDataURL(data)
	if err != nil {
		return ""
	}
	return Checksum(raw)
}
