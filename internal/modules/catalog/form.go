package catalog

import (
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/delordemm1/agency-portfolio-api/internal/imagehost"
)

// uploadForm wraps a parsed multipart body and tracks the files it opened.
type uploadForm struct {
	form   *multipart.Form
	opened []io.Closer
}

func newUploadForm(f *multipart.Form) *uploadForm {
	if f.Value == nil {
		f.Value = map[string][]string{}
	}
	return &uploadForm{form: f}
}

func (u *uploadForm) value(key string) string {
	if v := u.form.Value[key]; len(v) > 0 {
		return strings.TrimSpace(v[0])
	}
	return ""
}

// categoryID parses the optional category_id field; empty yields nil.
// A value that cannot name a row is reported as an unknown category.
func (u *uploadForm) categoryID() (*int64, error) {
	raw := u.value("category_id")
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, ErrCategoryNotFound.WithDetail("category_id must be a positive integer")
	}
	return &id, nil
}

// file opens the first file sent under key, or returns nil when none was sent.
func (u *uploadForm) file(key string) (*imagehost.Upload, error) {
	files := u.form.File[key]
	if len(files) == 0 {
		return nil, nil
	}
	up, err := u.open(files[0])
	if err != nil {
		return nil, err
	}
	return &up, nil
}

func (u *uploadForm) files(key string) ([]imagehost.Upload, error) {
	var out []imagehost.Upload
	for _, fh := range u.form.File[key] {
		up, err := u.open(fh)
		if err != nil {
			return nil, err
		}
		out = append(out, up)
	}
	return out, nil
}

func (u *uploadForm) open(fh *multipart.FileHeader) (imagehost.Upload, error) {
	if fh.Size > imagehost.MaxUploadBytes {
		return imagehost.Upload{}, imagehost.ErrImageTooLarge.WithDetail(fh.Filename + " exceeds the 10 MB limit")
	}
	f, err := fh.Open()
	if err != nil {
		return imagehost.Upload{}, err
	}
	u.opened = append(u.opened, f)
	return imagehost.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Body:        f,
	}, nil
}

// Close releases the opened files and the form's temporary storage.
func (u *uploadForm) Close() {
	for _, c := range u.opened {
		_ = c.Close()
	}
	_ = u.form.RemoveAll()
}
