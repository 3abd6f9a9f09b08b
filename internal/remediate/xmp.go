package remediate

import (
	"fmt"
	"regexp"
	"strings"
)

// xmpTemplate is the minimal valid packet from spec §6, used whenever
// a document has no /Metadata stream to patch.
const xmpTemplate = `<?xpacket begin="" id="W5M0MpCehiHzreSzNTczkc9d"?>
<x:xmpmeta xmlns:x="adobe:ns:meta/">
 <rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">
  <rdf:Description rdf:about=""
    xmlns:dc="http://purl.org/dc/elements/1.1/"
    xmlns:pdf="http://ns.adobe.com/pdf/1.3/"
    xmlns:pdfuaid="http://www.aiim.org/pdfua/ns/id/">
    <dc:title><rdf:Alt><rdf:li xml:lang="x-default">%s</rdf:li></rdf:Alt></dc:title>
    <pdfuaid:part>1</pdfuaid:part>
    <pdfuaid:conformance>A</pdfuaid:conformance>
  </rdf:Description>
 </rdf:RDF>
</x:xmpmeta>
<?xpacket end="w"?>`

// buildXMPPacket renders the template with title substituted in,
// escaping the handful of XML metacharacters a filename stem might
// carry.
func buildXMPPacket(title string) string {
	return fmt.Sprintf(xmpTemplate, xmlEscape(title))
}

func xmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}

var (
	dcTitleRe     = regexp.MustCompile(`<dc:title>`)
	pdfuaPartRe   = regexp.MustCompile(`<pdfuaid:part>([^<]*)</pdfuaid:part>`)
	pdfuaConfRe   = regexp.MustCompile(`<pdfuaid:conformance>([^<]*)</pdfuaid:conformance>`)
	pdfaPartRe    = regexp.MustCompile(`<pdfaid:part>([^<]*)</pdfaid:part>`)
	pdfaConfRe    = regexp.MustCompile(`<pdfaid:conformance>([^<]*)</pdfaid:conformance>`)
	rdfDescOpenRe = regexp.MustCompile(`<rdf:Description[^>]*>`)
)

// ensurePDFUAIdentifier guarantees pdfuaid:part=1 and
// pdfuaid:conformance=A are present in packet, appending them into the
// first rdf:Description block when missing. Mirrors the pdfuaid part
// of step 2 of apply_automated_fixes; it does not add an
// xmlns:pdfuaid declaration to a packet that lacks one.
func ensurePDFUAIdentifier(packet string) string {
	if !pdfuaPartRe.MatchString(packet) {
		packet = injectAfterDescriptionOpen(packet, "<pdfuaid:part>1</pdfuaid:part>")
	}
	if !pdfuaConfRe.MatchString(packet) {
		packet = injectAfterDescriptionOpen(packet, "<pdfuaid:conformance>A</pdfuaid:conformance>")
	}
	return packet
}

// ensurePDFAIdentifier guarantees pdfaid:part=1 and
// pdfaid:conformance=B, per spec §4.8 step 8.
func ensurePDFAIdentifier(packet string) string {
	if !pdfaPartRe.MatchString(packet) {
		packet = injectAfterDescriptionOpen(packet, "<pdfaid:part>1</pdfaid:part>")
	}
	if !pdfaConfRe.MatchString(packet) {
		packet = injectAfterDescriptionOpen(packet, "<pdfaid:conformance>B</pdfaid:conformance>")
	}
	return packet
}

// ensureXMPTitle sets dc:title when absent, mirroring DocInfo.Title.
func ensureXMPTitle(packet, title string) string {
	if dcTitleRe.MatchString(packet) {
		return packet
	}
	elem := fmt.Sprintf(`<dc:title><rdf:Alt><rdf:li xml:lang="x-default">%s</rdf:li></rdf:Alt></dc:title>`, xmlEscape(title))
	return injectAfterDescriptionOpen(packet, elem)
}

func injectAfterDescriptionOpen(packet, fragment string) string {
	loc := rdfDescOpenRe.FindStringIndex(packet)
	if loc == nil {
		// No rdf:Description to anchor to; fall back to a fresh packet.
		return buildXMPPacket("untitled") + fragment
	}
	return packet[:loc[1]] + "\n    " + fragment + packet[loc[1]:]
}
