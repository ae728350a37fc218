// internal/uploads/store.go
package uploads

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// MemberDocumentFields is the set of multipart field names recognized as
// member document uploads. Fields outside this set are ignored.
var MemberDocumentFields = []string{
	"idPicture",
	"applicationForm",
	"barangayClearance",
	"tin",
	"pmes",
}

// DiskStore persists uploaded files under a base directory. Stored
// filenames are generated, never taken from the client.
type DiskStore struct {
	dir string
}

// NewDiskStore creates the base directory if needed and returns a store.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

// Dir returns the base directory files are stored under.
func (s *DiskStore) Dir() string {
	return s.dir
}

// Save persists one multipart file and returns its stored filename. The
// original extension is kept so the file stays servable by content type.
func (s *DiskStore) Save(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload %q: %w", fh.Filename, err)
	}
	defer src.Close()

	name := uuid.New().String() + filepath.Ext(fh.Filename)
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create stored file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write stored file: %w", err)
	}

	return name, nil
}

// Collect saves every recognized document field present in the form and
// returns a map of field name to stored filename. Absent fields are
// omitted. A failed save aborts the whole collection; files written
// before the failure are left behind as orphans.
func (s *DiskStore) Collect(form *multipart.Form, fields []string) (map[string]string, error) {
	if form == nil {
		return nil, nil
	}

	stored := make(map[string]string)
	for _, field := range fields {
		files := form.File[field]
		if len(files) == 0 {
			continue
		}
		name, err := s.Save(files[0])
		if err != nil {
			return nil, fmt.Errorf("store %s: %w", field, err)
		}
		stored[field] = name
	}
	return stored, nil
}
