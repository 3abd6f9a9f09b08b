package remediate

import (
	"fmt"
	"os"
	"regexp"

	"github.com/docaccess/pdfguard/internal/domain"
)

// ApplyManualFix applies a single targeted fix to the PDF at
// sourcePath and returns the result, writing to sourcePath+".temp" on
// success. Grounded on backend/auto_fix_engine.py's apply_manual_fix /
// apply_single_fix: one fixType-keyed dispatch, a generic tagging
// fallback for anything unrecognized, save-to-temp-then-caller-decides
// in place of the original's save-to-temp-then-move (the engine never
// renames over sourcePath, per the same "never mutate the original
// upload" rule ApplyAutomatedFixes follows).
func ApplyManualFix(sourcePath string, fixType domain.FixType, fixData map[string]any, page int) (*domain.FixOutcome, error) {
	data, readErr := os.ReadFile(sourcePath) //nolint:gosec
	if readErr != nil {
		return &domain.FixOutcome{Success: false, Error: readErr.Error()}, nil
	}
	g, loadErr := loadGraph(data)
	if loadErr != nil {
		return &domain.FixOutcome{Success: false, Error: loadErr.Error()}, nil
	}

	var result domain.FixResult
	switch fixType {
	case domain.FixTagContent, domain.FixStructure:
		result = manualTagContent(g)
	case domain.FixAddAltText:
		result = manualAddAltText(g, fixData)
	case domain.FixAddFormLabel:
		result = manualAddFormLabel(g, fixData)
	case domain.FixAddOutputIntent:
		result = manualAddOutputIntent(g)
	case domain.FixAddPDFAIdentifier, domain.FixMetadataConsistency:
		result = manualPDFAIdentifier(g, sourcePath)
	default:
		result = manualGenericFix(g, fixType)
	}

	if !result.Success {
		return &domain.FixOutcome{Success: false, FixesApplied: []domain.FixResult{result}, Error: result.Error}, nil
	}

	tempPath, saveErr := saveTemp(g, sourcePath)
	if saveErr != nil {
		return &domain.FixOutcome{Success: false, FixesApplied: []domain.FixResult{result}, Error: saveErr.Error()}, nil
	}
	return &domain.FixOutcome{Success: true, FixesApplied: []domain.FixResult{result}, FixedTempPath: tempPath}, nil
}

// manualTagContent marks a document as tagged without the fuller
// RoleMap-populated scaffold ApplyAutomatedFixes builds: language,
// MarkInfo, and (if absent) a bare StructTreeRoot with an empty K
// array, mirroring apply_manual_fix's ['tagContent', 'fixTableStructure']
// branch exactly.
func manualTagContent(g *graph) domain.FixResult {
	if !hasKey(g.catalogBody, "Lang") {
		g.setCatalogKey("Lang", "(en-US)")
	}
	if refNum := indirectRefNum(g.catalogBody, "MarkInfo"); refNum != 0 {
		if body, start, end, ok := g.findIndirectObjectDict(refNum); ok {
			newBody := upsertScalarKey(body, "Marked", "true")
			newBody = upsertScalarKey(newBody, "Suspects", "false")
			g.replaceIndirectObjectDict(refNum, start, end, newBody)
		}
	} else {
		num := g.alloc("<< /Marked true /Suspects false >>")
		g.setCatalogKey("MarkInfo", ref(num))
	}
	if !hasKey(g.catalogBody, "StructTreeRoot") {
		num := g.alloc("<< /Type /StructTreeRoot /K [] >>")
		g.setCatalogKey("StructTreeRoot", ref(num))
	}
	return domain.FixResult{Type: "tagContent", Description: "marked document as tagged for table accessibility", Success: true}
}

// manualAddAltText records alt text for imageIndex as a custom XMP
// property, mirroring apply_manual_fix's meta[f'image_{n}_alt']=text
// (the original stores it via a metadata writer rather than directly
// on the image XObject; this engine follows the same indirection).
func manualAddAltText(g *graph, fixData map[string]any) domain.FixResult {
	imageIndex := 1
	if v, ok := fixData["imageIndex"].(float64); ok {
		imageIndex = int(v)
	}
	altText, _ := fixData["altText"].(string)

	key := fmt.Sprintf("image_%d_alt", imageIndex)
	if refNum := indirectRefNum(g.catalogBody, "Metadata"); refNum != 0 {
		if raw, start, end, ok := g.findRawStreamObject(refNum); ok {
			packet := extractStreamContent(raw)
			if packet != "" {
				patched := injectCustomXMPProperty(packet, key, altText)
				g.replaceRawObject(refNum, start, end, fmt.Sprintf("<< /Type /Metadata /Subtype /XML /Length %d >>\nstream\n%s\nendstream", len(patched), patched))
				return domain.FixResult{Type: "addAltText", Description: fmt.Sprintf("added alt text to image %d", imageIndex), Success: true}
			}
		}
	}
	packet := injectCustomXMPProperty(buildXMPPacket("untitled"), key, altText)
	num := g.alloc(fmt.Sprintf("<< /Type /Metadata /Subtype /XML /Length %d >>\nstream\n%s\nendstream", len(packet), packet))
	g.setCatalogKey("Metadata", ref(num))
	return domain.FixResult{Type: "addAltText", Description: fmt.Sprintf("added alt text to image %d", imageIndex), Success: true}
}

var fieldTitleRe = regexp.MustCompile(`/T\s*\(([^)]*)\)`)

// manualAddFormLabel scans every indirect object for an AcroForm field
// whose /T matches fieldName and sets /TU to label, mirroring
// apply_manual_fix's walk over pdf.Root.AcroForm.Fields.
func manualAddFormLabel(g *graph, fixData map[string]any) domain.FixResult {
	fieldName, _ := fixData["fieldName"].(string)
	label, _ := fixData["label"].(string)

	for _, m := range objHeaderRe.FindAllStringSubmatchIndex(g.base, -1) {
		n := 0
		fmt.Sscanf(g.base[m[2]:m[3]], "%d", &n)
		body, start, end, ok := g.findIndirectObjectDict(n)
		if !ok {
			continue
		}
		t := fieldTitleRe.FindStringSubmatch(body)
		if t == nil || t[1] != fieldName {
			continue
		}
		newBody := upsertScalarKey(body, "TU", fmt.Sprintf("(%s)", pdfEscape(label)))
		g.replaceIndirectObjectDict(n, start, end, newBody)
		return domain.FixResult{Type: "addFormLabel", Description: fmt.Sprintf("added label %q to form field", label), Success: true}
	}
	return domain.FixResult{Type: "addFormLabel", Description: fmt.Sprintf("form field %q not found", fieldName), Success: false, Error: "field not found"}
}

// manualAddOutputIntent attaches a GTS_PDFA1 OutputIntent backed by
// the embedded sRGB profile, per spec §6's {N:3, Alternate:/DeviceRGB}
// stream dict.
func manualAddOutputIntent(g *graph) domain.FixResult {
	if hasKey(g.catalogBody, "OutputIntents") {
		return domain.FixResult{Type: "addOutputIntent", Description: "OutputIntents already present", Success: false, Implicit: true}
	}
	profile := sRGBICCProfile()
	profileNum := g.alloc(fmt.Sprintf("<< /N 3 /Alternate /DeviceRGB /Length %d >>\nstream\n%s\nendstream", len(profile), profile))
	intentBody := fmt.Sprintf(outputIntentDictTemplate, ref(profileNum))
	intentNum := g.alloc("<<" + intentBody + ">>")
	g.setCatalogKey("OutputIntents", fmt.Sprintf("[%s]", ref(intentNum)))
	return domain.FixResult{Type: "addOutputIntent", Description: "added a GTS_PDFA1 OutputIntent with an embedded sRGB profile", Success: true}
}

// manualPDFAIdentifier ensures pdfaid:part=1, pdfaid:conformance=B and
// adds an XMP dc:title derived from the filename stem when the packet
// has none, per spec §4.8 step 8. DocInfo is not read or written.
func manualPDFAIdentifier(g *graph, sourcePath string) domain.FixResult {
	title := titleFromFilename(sourcePath)
	refNum := indirectRefNum(g.catalogBody, "Metadata")
	if refNum == 0 {
		packet := ensurePDFAIdentifier(buildXMPPacket(title))
		num := g.alloc(fmt.Sprintf("<< /Type /Metadata /Subtype /XML /Length %d >>\nstream\n%s\nendstream", len(packet), packet))
		g.setCatalogKey("Metadata", ref(num))
		return domain.FixResult{Type: "addPDFAIdentifier", Description: "attached XMP metadata with a PDF/A identifier", Success: true}
	}
	raw, start, end, ok := g.findRawStreamObject(refNum)
	if !ok {
		return domain.FixResult{Type: "addPDFAIdentifier", Description: "metadata stream referenced but not found", Success: false}
	}
	packet := extractStreamContent(raw)
	patched := ensureXMPTitle(packet, title)
	patched = ensurePDFAIdentifier(patched)
	if patched == packet {
		return domain.FixResult{Type: "fixMetadataConsistency", Description: "PDF/A identifier already present", Success: false, Implicit: true}
	}
	g.replaceRawObject(refNum, start, end, fmt.Sprintf("<< /Type /Metadata /Subtype /XML /Length %d >>\nstream\n%s\nendstream", len(patched), patched))
	return domain.FixResult{Type: "fixMetadataConsistency", Description: "added PDF/A identifier and ensured an XMP title", Success: true}
}

// manualGenericFix is the apply_manual_fix "else" branch: basic
// tagging (language + MarkInfo) applied regardless of fixType, for any
// FixType this dispatch has no dedicated handler for.
func manualGenericFix(g *graph, fixType domain.FixType) domain.FixResult {
	if !hasKey(g.catalogBody, "Lang") {
		g.setCatalogKey("Lang", "(en-US)")
	}
	if !hasKey(g.catalogBody, "MarkInfo") {
		num := g.alloc("<< /Marked true >>")
		g.setCatalogKey("MarkInfo", ref(num))
	}
	return domain.FixResult{Type: string(fixType), Description: fmt.Sprintf("applied basic tagging for %s", fixType), Success: true}
}

func injectCustomXMPProperty(packet, key, value string) string {
	elem := fmt.Sprintf(`<custom:%s>%s</custom:%s>`, key, xmlEscape(value), key)
	return injectAfterDescriptionOpen(packet, elem)
}
