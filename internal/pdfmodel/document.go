// Package pdfmodel is the PDF Object Model (C1): open a PDF and expose
// the catalog, pages, page references, XMP metadata, raw page content
// streams and the underlying unipdf reader that every other component
// builds on. It does not save documents and does not iterate
// content-stream operators; internal/remediate writes revised files
// itself. Grounded on internal/adapters/pdf/structure_validator.go's
// use of model.NewPdfReader / pdfReader.GetCatalog() / core.GetDict.
package pdfmodel

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/unidoc/unipdf/v3/core"
	"github.com/unidoc/unipdf/v3/model"

	"github.com/docaccess/pdfguard/internal/domain"
)

var log = logrus.WithField("component", "pdfmodel")

// Document is the opened PDF. Single-owner for its lifetime: a scan
// holds it from Open to Close, per spec §5's per-document exclusivity
// rule.
type Document struct {
	path    string
	data    []byte
	reader  *model.PdfReader
	catalog *model.PdfCatalog
}

// Open parses the trailer/xref and returns a single-owner Document.
// Classifies structural corruption as domain.ErrMalformed and missing
// decryption as domain.ErrEncrypted, matching spec §4.1's contract.
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-supplied and already validated upstream
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIO, err)
	}
	return OpenBytes(path, data)
}

// OpenBytes opens an in-memory PDF, used by tests and by the
// remediation engine when re-validating a not-yet-persisted revision.
func OpenBytes(path string, data []byte) (*Document, error) {
	reader, err := model.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return nil, classifyOpenError(err)
	}

	isEncrypted, err := reader.IsEncrypted()
	if err == nil && isEncrypted {
		ok, decErr := reader.Decrypt([]byte(""))
		if decErr != nil || !ok {
			return nil, domain.ErrEncrypted
		}
	}

	catalog := reader.GetCatalog()
	if catalog == nil {
		return nil, fmt.Errorf("%w: missing catalog", domain.ErrMalformed)
	}

	return &Document{path: path, data: data, reader: reader, catalog: catalog}, nil
}

func classifyOpenError(err error) error {
	// The underlying parser does not expose a typed error taxonomy;
	// this is the one place that inspects the message, and only to
	// pick between the two user-facing outcomes spec §4.1 names.
	msg := err.Error()
	if bytes.Contains([]byte(msg), []byte("encrypt")) {
		return fmt.Errorf("%w: %v", domain.ErrEncrypted, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrMalformed, err)
}

// Path returns the path the document was opened from.
func (d *Document) Path() string { return d.path }

// Reader exposes the underlying unipdf reader for adapters that need
// lower-level access (structure tree, font inspection).
func (d *Document) Reader() *model.PdfReader { return d.reader }

// CatalogDict returns the catalog's underlying dictionary.
func (d *Document) CatalogDict() (*core.PdfObjectDictionary, error) {
	obj := d.catalog.ToPdfObject()
	dict, ok := core.GetDict(obj)
	if !ok {
		return nil, fmt.Errorf("%w: catalog is not a dictionary", domain.ErrMalformed)
	}
	return dict, nil
}

// NumPages returns the page count.
func (d *Document) NumPages() (int, error) {
	n, err := d.reader.GetNumPages()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrMalformed, err)
	}
	return n, nil
}

// Page returns the model.PdfPage for a 1-based page number.
func (d *Document) Page(pageNum int) (*model.PdfPage, error) {
	page, err := d.reader.GetPage(pageNum)
	if err != nil {
		return nil, fmt.Errorf("%w: page %d: %v", domain.ErrMalformed, pageNum, err)
	}
	return page, nil
}

// PageRefs returns the indirect object references of every page in
// document order, used by structtree.BuildPageNumbers.
func (d *Document) PageRefs() ([]core.PdfObject, error) {
	n, err := d.NumPages()
	if err != nil {
		return nil, err
	}
	refs := make([]core.PdfObject, 0, n)
	for i := 1; i <= n; i++ {
		ref, err := d.reader.GetPageRef(i)
		if err != nil {
			log.WithError(err).WithField("page", i).Debug("could not resolve page reference")
			continue
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// Metadata returns the raw XMP packet bytes attached to the catalog,
// or ("", false) when no /Metadata stream exists.
func (d *Document) Metadata() (string, bool) {
	dict, err := d.CatalogDict()
	if err != nil {
		return "", false
	}
	stream, ok := core.GetStream(dict.Get("Metadata"))
	if !ok {
		return "", false
	}
	decoded, err := core.DecodeStream(stream)
	if err != nil {
		return "", false
	}
	return string(decoded), true
}

// RawContentStream returns the undecoded page content bytes for the
// raw-bytes fallback spec §4.1 mandates (language-of-parts BDC /Lang
// scanning and contrast heuristics), since some PDFs carry marked
// content dictionaries the structured parser cannot always resolve.
func (d *Document) RawContentStream(pageNum int) ([]byte, error) {
	page, err := d.Page(pageNum)
	if err != nil {
		return nil, err
	}
	content, err := page.GetAllContentStreams()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformed, err)
	}
	return []byte(content), nil
}

// Close releases the document. A no-op today (unipdf's reader holds no
// unmanaged resources beyond the backing byte slice) but kept so
// callers have one place to release ownership per spec §5.
func (d *Document) Close() error {
	d.reader = nil
	d.catalog = nil
	return nil
}

// ReadAll is a small helper for adapters that need the full document
// bytes (version archiving, backup copies).
func ReadAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIO, err)
	}
	return data, nil
}
