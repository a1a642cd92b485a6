package report

import (
	"fmt"
	"slices"
)

// ContentTypePDF is the media type of every rendered report.
const ContentTypePDF = "application/pdf"

// DocumentFilename is the download name of the report for date.
func DocumentFilename(date string) string {
	return fmt.Sprintf("report_%s.pdf", date)
}

// DocumentPath is the storage key of the report for date.
func DocumentPath(date string) string {
	return fmt.Sprintf("reports/%s_report.pdf", date)
}

// Document is a finished, immutable report.
type Document struct {
	Date     string
	Filename string
	Path     string
	data     []byte
}

// NewDocument takes a copy of data so later writes by the renderer cannot leak in.
func NewDocument(date string, data []byte) Document {
	return Document{
		Date:     date,
		Filename: DocumentFilename(date),
		Path:     DocumentPath(date),
		data:     slices.Clone(data),
	}
}

// Bytes returns a copy of the document content.
func (d Document) Bytes() []byte {
	return slices.Clone(d.data)
}

func (d Document) Size() int {
	return len(d.data)
}
