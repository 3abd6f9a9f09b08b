package remediate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/docaccess/pdfguard/internal/domain"
	"github.com/docaccess/pdfguard/internal/structtree"
)

// Engine applies the automated-fix sequence from spec §4.8 directly
// against a PDF's object bytes. Grounded on
// backend/auto_fix_engine.py's apply_automated_fixes: up to seven
// ordered, independently-recovering sub-fixes (language, title, XMP
// metadata, MarkInfo, ViewerPreferences, StructTreeRoot scaffold, and
// RoleMap completion when the plan asks for it), each skipped when the
// document already satisfies its post-condition, saved to a temp file.
// The sequence does not write the PDF/A identifier (pdfaid:part /
// pdfaid:conformance); only ApplyManualFix's addPDFAIdentifier /
// fixMetadataConsistency handler does.
type Engine struct{}

// New returns a remediation engine. Stateless; safe to share.
func New() *Engine { return &Engine{} }

// ApplyAutomatedFixes runs the sequence against the PDF at
// sourcePath, writing the result to sourcePath+".temp" and returning
// that path as FixedTempPath. sourcePath itself is never modified;
// the caller decides whether to promote or discard the temp file (the
// facade re-validates it and archives via the version store before
// anything touches the working copy spec §4.9 tracks).
func (e *Engine) ApplyAutomatedFixes(sourcePath string, plan *domain.FixPlan) (*domain.FixOutcome, error) {
	data, readErr := os.ReadFile(sourcePath) //nolint:gosec
	if readErr != nil {
		return &domain.FixOutcome{Success: false, Error: readErr.Error()}, nil
	}

	g, loadErr := loadGraph(data)
	if loadErr != nil {
		return &domain.FixOutcome{Success: false, Error: loadErr.Error()}, nil
	}

	var results []domain.FixResult
	run := func(name string, fn func(g *graph) domain.FixResult) {
		results = append(results, runStep(name, g, fn))
	}

	run("addLanguage", func(g *graph) domain.FixResult { return stepLanguage(g, plan) })
	run("addTitle", func(g *graph) domain.FixResult { return stepTitleAndXMP(g, sourcePath) })
	run("addMetadata", func(g *graph) domain.FixResult { return stepMetadataStream(g, sourcePath) })
	run("fixMarkInfo", stepMarkInfo)
	run("fixViewerPreferences", stepViewerPreferences)
	run("fixStructure", stepStructTreeScaffold)
	if hasAction(plan, domain.FixRoleMap) {
		run("fixRoleMap", stepRoleMapCompletion)
	}

	out, saveErr := saveTemp(g, sourcePath)
	if saveErr != nil {
		return &domain.FixOutcome{Success: false, FixesApplied: results, Error: saveErr.Error()}, nil
	}

	return &domain.FixOutcome{
		Success:       true,
		FixesApplied:  results,
		FixedTempPath: out,
	}, nil
}

// runStep wraps a single sub-fix so a panic (a malformed dict that
// regex surgery cannot parse the way it expected) degrades to a
// failed FixResult instead of aborting the remaining sub-fixes, per
// spec §4.8's "every sub-fix is independently try/catch".
func runStep(name string, g *graph, fn func(g *graph) domain.FixResult) (result domain.FixResult) {
	defer func() {
		if r := recover(); r != nil {
			result = domain.FixResult{Type: name, Success: false, Error: fmt.Sprintf("%v", r)}
		}
	}()
	return fn(g)
}

func hasAction(plan *domain.FixPlan, ft domain.FixType) bool {
	if plan == nil {
		return false
	}
	for _, bucket := range [][]domain.FixAction{plan.Automated, plan.SemiAutomated, plan.Manual} {
		for _, a := range bucket {
			if a.FixType == ft {
				return true
			}
		}
	}
	return false
}

func actionFixData(plan *domain.FixPlan, ft domain.FixType) map[string]any {
	if plan == nil {
		return nil
	}
	for _, a := range plan.Automated {
		if a.FixType == ft {
			return a.FixData
		}
	}
	return nil
}

// step 1: language.
func stepLanguage(g *graph, plan *domain.FixPlan) domain.FixResult {
	if hasKey(g.catalogBody, "Lang") {
		return domain.FixResult{Type: "addLanguage", Description: "document already declares a language", Success: false, Implicit: true}
	}
	language := "en-US"
	if fd := actionFixData(plan, domain.FixAddLanguage); fd != nil {
		if v, ok := fd["language"].(string); ok && v != "" {
			language = v
		}
	}
	g.setCatalogKey("Lang", fmt.Sprintf("(%s)", language))
	return domain.FixResult{Type: "addLanguage", Description: fmt.Sprintf("set document language to %s", language), Success: true}
}

// step 2: DocInfo.Title + XMP dc:title/pdfuaid identifier. The XMP
// packet mutation itself happens in stepMetadataStream once the
// stream object is known to exist or has just been created; here we
// only derive the title text and persist it in DocInfo, creating a
// DocInfo dictionary when the trailer has none or its /Info reference
// points at no object.
func stepTitleAndXMP(g *graph, sourcePath string) domain.FixResult {
	title := titleFromFilename(sourcePath)
	changed := false

	found := false
	if g.infoObjNum != 0 {
		if body, start, end, ok := g.findIndirectObjectDict(g.infoObjNum); ok {
			found = true
			if !hasKey(body, "Title") {
				g.replaceIndirectObjectDict(g.infoObjNum, start, end, body+fmt.Sprintf(" /Title (%s)", pdfEscape(title)))
				changed = true
			}
		}
	}
	if !found {
		num := g.alloc(fmt.Sprintf("<< /Title (%s) >>", pdfEscape(title)))
		g.infoObjNum = num
		changed = true
	}

	if !changed {
		return domain.FixResult{Type: "addTitle", Description: "DocInfo already has a title", Success: false, Implicit: true}
	}
	return domain.FixResult{Type: "addTitle", Description: fmt.Sprintf("set DocInfo title to %q", title), Success: true}
}

// step 3: metadata stream, created fresh or patched in place.
func stepMetadataStream(g *graph, sourcePath string) domain.FixResult {
	title := titleFromFilename(sourcePath)

	if refNum := indirectRefNum(g.catalogBody, "Metadata"); refNum != 0 {
		if raw, start, end, ok := g.findRawStreamObject(refNum); ok {
			patched := patchXMPPacket(raw, title)
			if patched == raw {
				return domain.FixResult{Type: "addMetadata", Description: "XMP metadata already present", Success: false, Implicit: true}
			}
			g.replaceRawObject(refNum, start, end, fmt.Sprintf("<< /Type /Metadata /Subtype /XML /Length %d >>\nstream\n%s\nendstream", len(patched), patched))
			return domain.FixResult{Type: "addMetadata", Description: "updated existing XMP metadata packet", Success: true}
		}
		return domain.FixResult{Type: "addMetadata", Description: "metadata stream referenced but not found; left untouched", Success: false}
	}

	packet := buildXMPPacket(title)
	num := g.alloc(fmt.Sprintf("<< /Type /Metadata /Subtype /XML /Length %d >>\nstream\n%s\nendstream", len(packet), packet))
	g.setCatalogKey("Metadata", ref(num))
	return domain.FixResult{Type: "addMetadata", Description: "attached a minimal XMP metadata stream", Success: true}
}

// step 4: MarkInfo.
func stepMarkInfo(g *graph) domain.FixResult {
	const desired = "<< /Marked true /Suspects false >>"
	if refNum := indirectRefNum(g.catalogBody, "MarkInfo"); refNum != 0 {
		if body, start, end, ok := g.findIndirectObjectDict(refNum); ok {
			newBody := upsertScalarKey(body, "Marked", "true")
			newBody = upsertScalarKey(newBody, "Suspects", "false")
			if strings.TrimSpace(newBody) == strings.TrimSpace(body) {
				return domain.FixResult{Type: "fixMarkInfo", Description: "MarkInfo already correct", Success: false, Implicit: true}
			}
			g.replaceIndirectObjectDict(refNum, start, end, newBody)
			return domain.FixResult{Type: "fixMarkInfo", Description: "set Marked=true, Suspects=false", Success: true}
		}
	}
	num := g.alloc(desired)
	g.setCatalogKey("MarkInfo", ref(num))
	return domain.FixResult{Type: "fixMarkInfo", Description: "created MarkInfo dictionary", Success: true}
}

// step 5: ViewerPreferences.DisplayDocTitle.
func stepViewerPreferences(g *graph) domain.FixResult {
	if refNum := indirectRefNum(g.catalogBody, "ViewerPreferences"); refNum != 0 {
		if body, start, end, ok := g.findIndirectObjectDict(refNum); ok {
			newBody := upsertScalarKey(body, "DisplayDocTitle", "true")
			if strings.TrimSpace(newBody) == strings.TrimSpace(body) {
				return domain.FixResult{Type: "fixViewerPreferences", Description: "DisplayDocTitle already true", Success: false, Implicit: true}
			}
			g.replaceIndirectObjectDict(refNum, start, end, newBody)
			return domain.FixResult{Type: "fixViewerPreferences", Description: "set DisplayDocTitle=true", Success: true}
		}
	}
	num := g.alloc("<< /DisplayDocTitle true >>")
	g.setCatalogKey("ViewerPreferences", ref(num))
	return domain.FixResult{Type: "fixViewerPreferences", Description: "created ViewerPreferences dictionary", Success: true}
}

// step 6: StructTreeRoot scaffold with a populated RoleMap and one
// Document child, only when entirely absent.
func stepStructTreeScaffold(g *graph) domain.FixResult {
	if hasKey(g.catalogBody, "StructTreeRoot") {
		return domain.FixResult{Type: "fixStructure", Description: "StructTreeRoot already present", Success: false, Implicit: true}
	}

	rootNum := g.reserve()
	childNum := g.reserve()

	childBody := fmt.Sprintf("<< /Type /StructElem /S /Document /P %s /K [] /Lang (en-US) >>", ref(rootNum))
	rootBody := fmt.Sprintf("<< /Type /StructTreeRoot /K [%s] /ParentTree << /Nums [] >> /RoleMap << %s >> >>",
		ref(childNum), builtinRoleMapEntries())

	g.append(rootNum, rootBody)
	g.append(childNum, childBody)
	g.setCatalogKey("StructTreeRoot", ref(rootNum))
	return domain.FixResult{Type: "fixStructure", Description: "created a StructTreeRoot scaffold with one Document element", Success: true}
}

// step 7: RoleMap completion for an already-present StructTreeRoot,
// only run when the planner emitted a fixRoleMap action. Adds every
// built-in mapping missing from the existing RoleMap, breaking any
// cycle it finds by rewriting that key to its built-in standard type.
func stepRoleMapCompletion(g *graph) domain.FixResult {
	refNum := indirectRefNum(g.catalogBody, "StructTreeRoot")
	if refNum == 0 {
		return domain.FixResult{Type: "fixRoleMap", Description: "no StructTreeRoot to complete", Success: false}
	}
	body, start, end, ok := g.findIndirectObjectDict(refNum)
	if !ok {
		return domain.FixResult{Type: "fixRoleMap", Description: "StructTreeRoot object not found", Success: false}
	}

	roleMapBody, rmStart, rmEnd, hasRoleMap := extractNestedDict(body, "RoleMap")
	mapping := parseRoleMapPairs(roleMapBody)
	breakRoleMapCycles(mapping)

	added := 0
	keys := make([]string, 0, len(structtree.BuiltinRoleMap))
	for k := range structtree.BuiltinRoleMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, custom := range keys {
		if _, exists := mapping[custom]; !exists {
			mapping[custom] = structtree.BuiltinRoleMap[custom]
			added++
		}
	}

	if added == 0 && !roleMapChanged(mapping, roleMapBody) {
		return domain.FixResult{Type: "fixRoleMap", Description: "RoleMap already complete", Success: false, Implicit: true}
	}

	newRoleMapBody := formatRoleMapPairs(mapping)
	var newBody string
	if hasRoleMap {
		newBody = body[:rmStart] + newRoleMapBody + body[rmEnd:]
	} else {
		newBody = body + fmt.Sprintf(" /RoleMap << %s >>", newRoleMapBody)
	}
	g.replaceIndirectObjectDict(refNum, start, end, newBody)
	return domain.FixResult{Type: "fixRoleMap", Description: fmt.Sprintf("added %d missing RoleMap entries", added), Success: true}
}

func builtinRoleMapEntries() string {
	keys := make([]string, 0, len(structtree.BuiltinRoleMap))
	for k := range structtree.BuiltinRoleMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "/%s /%s ", k, structtree.BuiltinRoleMap[k])
	}
	return strings.TrimSpace(b.String())
}

func formatRoleMapPairs(mapping map[string]string) string {
	keys := make([]string, 0, len(mapping))
	for k := range mapping {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "/%s /%s ", k, mapping[k])
	}
	return strings.TrimSpace(b.String())
}

var roleMapPairRe = regexp.MustCompile(`/([A-Za-z0-9_]+)\s*/([A-Za-z0-9_]+)`)

func parseRoleMapPairs(body string) map[string]string {
	out := make(map[string]string)
	for _, m := range roleMapPairRe.FindAllStringSubmatch(body, -1) {
		out[m[1]] = m[2]
	}
	return out
}

func roleMapChanged(mapping map[string]string, original string) bool {
	return formatRoleMapPairs(mapping) != formatRoleMapPairs(parseRoleMapPairs(original))
}

// breakRoleMapCycles traces each key up to depth 10; a key whose
// chain never reaches a standard type is rewritten to the built-in
// table's standard value, per spec §4.8 step 7.
func breakRoleMapCycles(mapping map[string]string) {
	for key := range mapping {
		seen := map[string]bool{}
		cur := key
		reachedStandard := structtree.IsStandardType(cur)
		for depth := 0; depth < 10 && !reachedStandard; depth++ {
			next, ok := mapping[cur]
			if !ok || seen[next] {
				break
			}
			seen[next] = true
			cur = next
			reachedStandard = structtree.IsStandardType(cur)
		}
		if !reachedStandard {
			if std, ok := structtree.BuiltinRoleMap[key]; ok {
				mapping[key] = std
			}
		}
	}
}

// extractNestedDict finds "/name << ... >>" inside body and returns
// its inner text plus the byte range of that inner text (so callers
// can splice a replacement), or ok=false if name is absent.
func extractNestedDict(body, name string) (inner string, start, end int, ok bool) {
	re := regexp.MustCompile(`(?s)/` + regexp.QuoteMeta(name) + `\s*<<(.*?)>>`)
	loc := re.FindStringSubmatchIndex(body)
	if loc == nil {
		return "", 0, 0, false
	}
	return body[loc[2]:loc[3]], loc[2], loc[3], true
}

func titleFromFilename(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	replacer := strings.NewReplacer("_", " ", "-", " ")
	return strings.TrimSpace(replacer.Replace(base))
}

func pdfEscape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`)
	return r.Replace(s)
}

func patchXMPPacket(raw, title string) string {
	packet := extractStreamContent(raw)
	if packet == "" {
		return raw
	}
	patched := ensureXMPTitle(packet, title)
	patched = ensurePDFUAIdentifier(patched)
	if patched == packet {
		return raw
	}
	return patched
}

var streamContentRe = regexp.MustCompile(`(?s)stream\r?\n(.*?)\r?\nendstream`)

func extractStreamContent(raw string) string {
	m := streamContentRe.FindStringSubmatch(raw)
	if m == nil {
		return ""
	}
	return m[1]
}

// saveTemp writes the mutated graph to sourcePath+".temp" and returns
// that path, leaving sourcePath untouched.
func saveTemp(g *graph, sourcePath string) (string, error) {
	tempPath := sourcePath + ".temp"
	if err := os.WriteFile(tempPath, g.save(), 0o600); err != nil { //nolint:gosec
		return "", fmt.Errorf("%w: %v", domain.ErrIO, err)
	}
	return tempPath, nil
}
