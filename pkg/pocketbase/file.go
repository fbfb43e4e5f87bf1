package pocketbase

import (
	"bytes"
	"io"
)

// File is a binary field value. Placing a File (or *File, []File, []*File)
// in a create or update body sends the request as multipart/form-data.
type File struct {
	// Name is the file name reported to the server.
	Name string
	// Data holds the content. Reader is used when Data is nil.
	Data   []byte
	Reader io.Reader
	// ContentType is detected from the content when empty.
	ContentType string
}

// NewFile creates a file from in-memory content.
func NewFile(name string, data []byte) *File {
	return &File{Name: name, Data: data}
}

// NewFileFromReader creates a file streamed from r.
func NewFileFromReader(name string, r io.Reader) *File {
	return &File{Name: name, Reader: r}
}

// Open returns a reader over the content.
func (f *File) Open() io.Reader {
	if f.Data != nil || f.Reader == nil {
		return bytes.NewReader(f.Data)
	}

	return f.Reader
}
