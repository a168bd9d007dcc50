package filestorage

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// uploadFileHeader builds a real multipart.FileHeader the way gin receives
// one from a browser form.
func uploadFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		t.Fatalf("parse multipart form: %v", err)
	}

	return req.MultipartForm.File["image"][0]
}

func TestAllowedExtension(t *testing.T) {
	cases := []struct {
		filename string
		want     bool
	}{
		{"photo.png", true},
		{"photo.JPG", true},
		{"photo.jpeg", true},
		{"photo.gif", true},
		{"notes.txt", false},
		{"script.sh", false},
		{"noext", false},
	}

	for _, tc := range cases {
		if got := AllowedExtension(tc.filename); got != tc.want {
			t.Errorf("AllowedExtension(%q) = %v, want %v", tc.filename, got, tc.want)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"photo.png", "photo.png"},
		{"my photo.png", "my_photo.png"},
		{"../../etc/passwd", "passwd"},
		{`..\..\windows\evil.png`, "evil.png"},
		{"...png", "png"},
	}

	for _, tc := range cases {
		if got := SanitizeFilename(tc.in); got != tc.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSaveAndDeleteImage(t *testing.T) {
	dir := t.TempDir()
	storage, err := NewLocalStorage(dir)
	if err != nil {
		t.Fatalf("new local storage: %v", err)
	}

	fh := uploadFileHeader(t, "cat.png", []byte("fake image bytes"))

	stored, err := storage.SaveImage(fh)
	if err != nil {
		t.Fatalf("save image: %v", err)
	}
	if stored == "" {
		t.Fatal("expected a stored filename")
	}
	if !strings.HasSuffix(stored, "_cat.png") {
		t.Fatalf("expected timestamp-prefixed name, got %q", stored)
	}

	data, err := os.ReadFile(filepath.Join(dir, stored))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(data) != "fake image bytes" {
		t.Fatalf("stored content mismatch: %q", data)
	}

	if err := storage.DeleteImage(stored); err != nil {
		t.Fatalf("delete image: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, stored)); !os.IsNotExist(err) {
		t.Fatal("expected stored file to be removed")
	}

	// A second delete of the same filename is a no-op.
	if err := storage.DeleteImage(stored); err != nil {
		t.Fatalf("delete of missing image: %v", err)
	}
}

func TestSaveImageIgnoresDisallowedExtension(t *testing.T) {
	dir := t.TempDir()
	storage, err := NewLocalStorage(dir)
	if err != nil {
		t.Fatalf("new local storage: %v", err)
	}

	fh := uploadFileHeader(t, "malware.exe", []byte("nope"))

	stored, err := storage.SaveImage(fh)
	if err != nil {
		t.Fatalf("save image: %v", err)
	}
	if stored != "" {
		t.Fatalf("expected disallowed extension to be ignored, got %q", stored)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty upload directory, found %d entries", len(entries))
	}
}

func TestSaveImageNilHeader(t *testing.T) {
	dir := t.TempDir()
	storage, err := NewLocalStorage(dir)
	if err != nil {
		t.Fatalf("new local storage: %v", err)
	}

	stored, err := storage.SaveImage(nil)
	if err != nil {
		t.Fatalf("save nil header: %v", err)
	}
	if stored != "" {
		t.Fatalf("expected empty filename for nil header, got %q", stored)
	}
}
