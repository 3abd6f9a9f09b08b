// Package remediate implements C8: the automated remediation engine
// that mutates the catalog, DocInfo, MarkInfo, ViewerPreferences,
// StructTreeRoot/RoleMap and XMP metadata in place and re-saves the
// document. Grounded on backend/auto_fix_engine.py's
// apply_automated_fixes/apply_manual_fix, and on the object-graph
// surgery technique from
// internal/adapters/pdf/repair_service.go's fixCatalogPages /
// recomputeStartxref: locate an indirect object by regex, splice its
// dictionary body, append new objects, rebuild a simple xref table and
// trailer. Like its model, this does not understand compressed xref
// streams or object streams; it targets the classic xref-table layout
// unipdf itself writes and that most scanned/uploaded PDFs still use.
package remediate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	objHeaderRe = regexp.MustCompile(`(?m)^(\d+)\s+0\s+obj`)
	catalogRe   = regexp.MustCompile(`(?s)(\d+)\s+0\s+obj\s*<<(.*?)>>\s*endobj`)
)

// graph is the mutable surgery context for one document: the object
// bytes preceding the old xref section, the catalog's object number
// and dictionary body (mutated in place), and a list of newly
// allocated indirect objects appended at save time.
type graph struct {
	base          string
	catalogObjNum int
	catalogBody   string
	infoObjNum    int // trailer's /Info reference, 0 if the document has none
	nextObjNum    int
	appended      []appendedObj
}

type appendedObj struct {
	num  int
	body string // the bare dict/array/stream text, no "N 0 obj"/"endobj" wrapper
}

// loadGraph trims any trailing xref/trailer section (as
// recomputeStartxref does) and locates the document's /Type /Catalog
// object (the trailer's /Root target; the first dictionary object when
// no /Root target is found) so callers can inspect and mutate its
// dictionary body.
func loadGraph(data []byte) (*graph, error) {
	full := string(data)
	infoNum := 0
	if m := infoRefRe.FindStringSubmatch(full); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			infoNum = n
		}
	}

	base := full
	if idx := strings.LastIndex(base, "\nxref"); idx != -1 {
		base = base[:idx]
	}

	loc := catalogRe.FindStringSubmatchIndex(base)
	if m := regexp.MustCompile(`/Root\s+(\d+)\s+0\s+R`).FindStringSubmatch(full); m != nil {
		rootObjRe := regexp.MustCompile(`(?s)(?:^|\D)(` + m[1] + `)\s+0\s+obj\s*<<(.*?)>>\s*endobj`)
		if l := rootObjRe.FindStringSubmatchIndex(base); l != nil {
			l[0] = l[2] // drop the non-digit guard character from the object range
			loc = l
		}
	}
	if loc == nil {
		return nil, fmt.Errorf("catalog object not found")
	}
	objNum, err := strconv.Atoi(base[loc[2]:loc[3]])
	if err != nil {
		return nil, fmt.Errorf("invalid catalog object number: %w", err)
	}
	body := base[loc[4]:loc[5]]

	// Cut the catalog object text out of base; it is reassembled from
	// catalogBody at save time so repeated mutation never re-matches
	// stale offsets.
	newBase := base[:loc[0]] + base[loc[1]:]

	g := &graph{
		base:          newBase,
		catalogObjNum: objNum,
		catalogBody:   body,
		infoObjNum:    infoNum,
		nextObjNum:    maxObjNum(base) + 1,
	}
	return g, nil
}

var infoRefRe = regexp.MustCompile(`/Info\s+(\d+)\s+0\s+R`)

// reserve allocates an object number without queuing a body yet, so
// two mutually-referencing objects (StructTreeRoot and its Document
// child) can be built in either order.
func (g *graph) reserve() int {
	n := g.nextObjNum
	g.nextObjNum++
	return n
}

// append queues body (full object content, e.g. "<< ... >>") under a
// number obtained from reserve or alloc.
func (g *graph) append(num int, body string) {
	g.appended = append(g.appended, appendedObj{num: num, body: body})
}

func maxObjNum(text string) int {
	max := 0
	for _, m := range objHeaderRe.FindAllStringSubmatch(text, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil && n > max {
			max = n
		}
	}
	return max
}

// hasKey reports whether the catalog (or any dict body passed in)
// already declares /key.
func hasKey(body, key string) bool {
	re := regexp.MustCompile(`/` + regexp.QuoteMeta(key) + `\b`)
	return re.MatchString(body)
}

// setCatalogKey appends "/key value" to the catalog body. Callers must
// check hasKey first; this never replaces an existing entry, matching
// spec §4.8's "skipped if the document already satisfies the
// post-condition" rule for first-touch fields.
func (g *graph) setCatalogKey(key, value string) {
	g.catalogBody += fmt.Sprintf("\n/%s %s", key, value)
}

// alloc reserves the next free indirect object number and queues body
// (the dict/array/stream text without the "N 0 obj"/"endobj" wrapper)
// for emission at save time. Returns the reserved number so callers
// can build back-references (e.g. a StructElem's /P entry).
func (g *graph) alloc(body string) int {
	num := g.reserve()
	g.append(num, body)
	return num
}

// ref formats an indirect reference, e.g. ref(12) -> "12 0 R".
func ref(num int) string { return fmt.Sprintf("%d 0 R", num) }

// findIndirectObjectDict locates "num 0 obj << ... >> endobj" anywhere
// in g.base and returns its dictionary body plus the byte range of the
// whole object, so callers can patch an existing dict (MarkInfo,
// ViewerPreferences, StructTreeRoot) that is already indirect rather
// than reachable only inline in the catalog.
func (g *graph) findIndirectObjectDict(num int) (body string, start, end int, ok bool) {
	re := regexp.MustCompile(fmt.Sprintf(`(?s)%d\s+0\s+obj\s*<<(.*?)>>\s*endobj`, num))
	loc := re.FindStringSubmatchIndex(g.base)
	if loc == nil {
		return "", 0, 0, false
	}
	return g.base[loc[2]:loc[3]], loc[0], loc[1], true
}

// findRawStreamObject locates "num 0 obj ... endobj" (dict plus an
// optional stream body) anywhere in g.base and returns its full
// interior text (between "obj" and "endobj") plus the byte range of
// the whole object, for objects findIndirectObjectDict's dict-only
// pattern won't match (e.g. a Metadata stream).
func (g *graph) findRawStreamObject(num int) (raw string, start, end int, ok bool) {
	re := regexp.MustCompile(fmt.Sprintf(`(?s)%d\s+0\s+obj\s*(.*?)\s*endobj`, num))
	loc := re.FindStringSubmatchIndex(g.base)
	if loc == nil {
		return "", 0, 0, false
	}
	return g.base[loc[2]:loc[3]], loc[0], loc[1], true
}

// replaceRawObject rewrites the full "num 0 obj ... endobj" text in
// the byte range previously returned by findRawStreamObject.
func (g *graph) replaceRawObject(num, start, end int, newInterior string) {
	replacement := fmt.Sprintf("%d 0 obj\n%s\nendobj", num, newInterior)
	g.base = g.base[:start] + replacement + g.base[end:]
}

// replaceIndirectObjectDict rewrites the dict body of an
// already-located indirect object (see findIndirectObjectDict) in
// place.
func (g *graph) replaceIndirectObjectDict(num int, start, end int, newBody string) {
	replacement := fmt.Sprintf("%d 0 obj\n<<%s>>\nendobj", num, newBody)
	g.base = g.base[:start] + replacement + g.base[end:]
}

// upsertScalarKey drops any existing "/key token" pair from body and
// appends the canonical one, used to force MarkInfo/ViewerPreferences
// booleans to the value spec §4.8 mandates regardless of what a
// document already carried (mirroring apply_manual_fix's
// pdf.Root.MarkInfo['/Marked'] = True unconditional overwrite).
func upsertScalarKey(body, key, value string) string {
	re := regexp.MustCompile(`/` + regexp.QuoteMeta(key) + `\s+\S+`)
	body = re.ReplaceAllString(body, "")
	return body + fmt.Sprintf(" /%s %s", key, value)
}

// indirectRefNum extracts the object number from a "/Key N 0 R" style
// reference value found in a dict body, or 0 if key is absent or not
// an indirect reference (e.g. an inline dict).
func indirectRefNum(body, key string) int {
	re := regexp.MustCompile(`/` + regexp.QuoteMeta(key) + `\s+(\d+)\s+0\s+R`)
	m := re.FindStringSubmatch(body)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// save reassembles the catalog object, appends every allocated object,
// and rebuilds a plain xref table + trailer, following the same
// offset-scan-and-emit approach as
// internal/adapters/pdf/repair_service.go's fixCatalogPages.
func (g *graph) save() []byte {
	var body strings.Builder
	body.WriteString(g.base)
	body.WriteString(fmt.Sprintf("\n%d 0 obj\n<<%s>>\nendobj\n", g.catalogObjNum, g.catalogBody))
	for _, obj := range g.appended {
		body.WriteString(fmt.Sprintf("\n%d 0 obj\n%s\nendobj\n", obj.num, obj.body))
	}

	text := body.String()
	offsets := make(map[int]int)
	maxObj := g.catalogObjNum
	for _, m := range objHeaderRe.FindAllStringSubmatchIndex(text, -1) {
		n, err := strconv.Atoi(text[m[2]:m[3]])
		if err != nil {
			continue
		}
		offsets[n] = m[0]
		if n > maxObj {
			maxObj = n
		}
	}

	var xref strings.Builder
	xref.WriteString("xref\n")
	xref.WriteString(fmt.Sprintf("0 %d\n", maxObj+1))
	xref.WriteString("0000000000 65535 f \n")
	for i := 1; i <= maxObj; i++ {
		if off, ok := offsets[i]; ok {
			xref.WriteString(fmt.Sprintf("%010d 00000 n \n", off))
		} else {
			xref.WriteString("0000000000 00000 f \n")
		}
	}

	infoEntry := ""
	if g.infoObjNum != 0 {
		infoEntry = fmt.Sprintf("/Info %d 0 R\n", g.infoObjNum)
	}
	startxref := len([]byte(text))
	trailer := fmt.Sprintf("trailer\n<<\n/Size %d\n/Root %d 0 R\n%s>>\n", maxObj+1, g.catalogObjNum, infoEntry)
	final := text + xref.String() + trailer + fmt.Sprintf("startxref\n%d\n%%%%EOF\n", startxref)
	return []byte(final)
}
