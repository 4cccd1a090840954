package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
)

// buildDocx assembles a minimal DOCX archive around the given
// document.xml payload.
func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

const paragraphsXML = `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second </w:t></w:r><w:r><w:t>paragraph.</w:t></w:r></w:p>
  </w:body>
</w:document>`

const tableXML = `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Intro.</w:t></w:r></w:p>
    <w:tbl>
      <w:tr>
        <w:tc><w:p><w:r><w:t>Name</w:t></w:r></w:p></w:tc>
        <w:tc><w:p><w:r><w:t>Value</w:t></w:r></w:p></w:tc>
      </w:tr>
    </w:tbl>
  </w:body>
</w:document>`

func TestSupportedExtensions(t *testing.T) {
	assert.Equal(t, []string{"docx"}, New().SupportedExtensions())
}

func TestLoadParagraphs(t *testing.T) {
	loader := New()

	text, err := loader.Load(context.Background(), &domain.RawDocument{
		Path:    "doc.docx",
		Content: buildDocx(t, paragraphsXML),
	})
	require.NoError(t, err)
	assert.Equal(t, "First paragraph.\nSecond paragraph.", text)
}

func TestLoadTableCells(t *testing.T) {
	loader := New()

	text, err := loader.Load(context.Background(), &domain.RawDocument{
		Path:    "table.docx",
		Content: buildDocx(t, tableXML),
	})
	require.NoError(t, err)
	assert.Contains(t, text, "Intro.")
	assert.Contains(t, text, "Name\tValue")
}

func TestLoadInvalidArchive(t *testing.T) {
	loader := New()

	_, err := loader.Load(context.Background(), &domain.RawDocument{
		Path:    "broken.docx",
		Content: []byte("not a zip file"),
	})
	assert.ErrorIs(t, err, domain.ErrCorruptDocument)
}

func TestLoadMissingDocumentPart(t *testing.T) {
	loader := New()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/other.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte("<x/>"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, err = loader.Load(context.Background(), &domain.RawDocument{
		Path:    "empty.docx",
		Content: buf.Bytes(),
	})
	assert.ErrorIs(t, err, domain.ErrCorruptDocument)
}

func TestLoadMalformedXML(t *testing.T) {
	loader := New()

	_, err := loader.Load(context.Background(), &domain.RawDocument{
		Path:    "bad.docx",
		Content: buildDocx(t, "<w:document><unclosed"),
	})
	assert.ErrorIs(t, err, domain.ErrCorruptDocument)
}

func TestLoadNilDocument(t *testing.T) {
	_, err := New().Load(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
