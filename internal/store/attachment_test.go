package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDataURLRoundTrip(t *testing.T) {
	data := []byte{0, 1, 2, 250, 'x'}
	url := EncodeDataURL("application/octet-stream", data)
	if url[:5] != "data:" {
		t.Fatalf("got %q", url)
	}

	mimeType, got, err := DecodeDataURL(url)
	if err != nil {
		t.Fatalf("DecodeDataURL: %v", err)
	}
	if mimeType != "application/octet-stream" || string(got) != string(data) {
		t.Errorf("got %q %v", mimeType, got)
	}
}

func TestDecodeDataURL_Invalid(t *testing.T) {
	for _, in := range []string{"", "http://x", "data:text/plain,hello", "data:text/plain;base64", "data:text/plain;base64,@@@"} {
		if _, _, err := DecodeDataURL(in); err == nil {
			t.Errorf("DecodeDataURL(%q) should fail", in)
		}
	}
}

func TestChecksum(t *testing.T) {
	a := Checksum([]byte("hello"))
	if len(a) != 16 {
		t.Errorf("checksum %q should be 16 hex chars", a)
	}
	if a != Checksum([]byte("hello")) {
		t.Error("checksum should be stable")
	}
	if a == Checksum([]byte("hello!")) {
		t.Error("different content should hash differently")
	}
	if got := checksumOf(EncodeDataURL("text/plain", []byte("hello")), ""); got != a {
		t.Errorf("checksumOf computed %q, want %q", got, a)
	}
}

func TestNewAttachmentInput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.PNG")
	content := []byte("\x89PNG\r\n\x1a\nbody")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}

	in, err := NewAttachmentInput(path)
	if err != nil {
		t.Fatalf("NewAttachmentInput: %v", err)
	}
	if in.Name != "photo.PNG" || in.Type != "image/png" || in.Size != int64(len(content)) {
		t.Errorf("got %+v", in)
	}
	if in.Checksum != Checksum(content) {
		t.Errorf("checksum mismatch")
	}
	if _, data, _ := DecodeDataURL(in.Data); string(data) != string(content) {
		t.Errorf("data URL does not round trip")
	}

	if _, err := NewAttachmentInput(dir); err == nil {
		t.Error("directories should be rejected")
	}
	if _, err := NewAttachmentInput(filepath.Join(dir, "missing")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestNewAttachmentInput_TooLarge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.bin")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Truncate(MaxAttachmentSize + 1); err != nil {
		t.Fatal(err)
	}
	f.Close()

	if _, err := NewAttachmentInput(path); !errors.Is(err, ErrAttachmentTooLarge) {
		t.Errorf("got %v, want ErrAttachmentTooLarge", err)
	}
}

func TestDetectType(t *testing.T) {
	if got := DetectType("x.unknownext", []byte("plain words")); got != "text/plain" {
		t.Errorf("got %q", got)
	}
	if got := DetectType("page.html", nil); got != "text/html" {
		t.Errorf("got %q", got)
	}
}
