// Package criteria implements C11 (Criteria Summary Builder): grouping
// issues by WCAG success criterion / PDF/UA clause into an ordered,
// status-tagged summary. Grounded on
// backend/utils/wcag_mapping.py (WCAG_CRITERIA_DETAILS,
// CATEGORY_CRITERIA_MAP) and backend/utils/criteria_summary.py.
package criteria

import "github.com/docaccess/pdfguard/internal/domain"

// CriterionDetail is one WCAG_CRITERIA_DETAILS entry.
type CriterionDetail struct {
	Name    string
	Level   domain.Level
	Summary string
}

// WCAGCriteriaDetails is transliterated field-for-field from
// WCAG_CRITERIA_DETAILS, supplemented with 2.4.3 (Focus Order) which
// the original table omits but spec §4.4/§4.10 both name explicitly as
// a checked, summarized criterion.
var WCAGCriteriaDetails = map[string]CriterionDetail{
	"1.1.1": {"Non-text Content", domain.LevelA, "Provide text alternatives for non-text content."},
	"1.3.1": {"Info and Relationships", domain.LevelA, "Preserve semantics so assistive technology can convey relationships."},
	"1.3.2": {"Meaningful Sequence", domain.LevelA, "Ensure reading order preserves intended meaning."},
	"1.3.3": {"Sensory Characteristics", domain.LevelA, "Instructions must not rely solely on color, shape, size, visual location, or sound cues."},
	"1.4.3": {"Contrast (Minimum)", domain.LevelAA, "Text/background contrast must be at least 4.5:1 for body text."},
	"1.4.6": {"Contrast (Enhanced)", domain.LevelAAA, "Enhanced 7:1 contrast aids users with low vision."},
	"2.4.1": {"Bypass Blocks", domain.LevelA, "Provide the ability to skip repeated content via clear headings or bookmarks."},
	"2.4.2": {"Page Titled", domain.LevelA, "Provide descriptive titles so users can identify content."},
	"2.4.3": {"Focus Order", domain.LevelA, "Ensure a logical, predictable focus order for interactive elements."},
	"2.4.4": {"Link Purpose (In Context)", domain.LevelAA, "Ensure link text, tooltips, or alt descriptions clearly explain the target destination."},
	"2.4.6": {"Headings and Labels", domain.LevelAA, "Use clear headings/labels for navigation."},
	"3.1.1": {"Language of Page", domain.LevelA, "Declare the primary language for pronunciation support."},
	"3.1.2": {"Language of Parts", domain.LevelAA, "Identify the language of passages that differ from the page language."},
	"3.3.2": {"Labels or Instructions", domain.LevelA, "Provide instructions so users know required input."},
	"4.1.2": {"Name, Role, Value", domain.LevelA, "Expose UI semantics programmatically."},
}

// CategoryCriteriaMap is transliterated from CATEGORY_CRITERIA_MAP: the
// category-to-criterion fan-out used before dedup when an issue's own
// category (rather than a direct wcagIssues entry) implies one or more
// criteria.
var CategoryCriteriaMap = map[domain.Category][]string{
	domain.CategoryMissingMetadata:    {"2.4.2"},
	domain.CategoryMissingLanguage:    {"3.1.1"},
	domain.CategoryMissingAltText:     {"1.1.1"},
	domain.CategoryUntaggedContent:    {"1.3.1", "1.3.2"},
	domain.CategoryStructureIssues:    {"1.3.1", "2.4.6"},
	domain.CategoryReadingOrderIssues: {"1.3.2"},
	domain.CategoryTableIssues:        {"1.3.1"},
	domain.CategoryFormIssues:         {"3.3.2", "4.1.2"},
	domain.CategoryPoorContrast:       {"1.4.3", "1.4.6"},
	domain.CategoryLinkIssues:         {"2.4.4"},
}

// WCAGOrder is the fixed ordering from spec §4.10; unknown criteria
// encountered at runtime are appended alphabetically after this list.
var WCAGOrder = []string{
	"1.1.1", "1.3.1", "1.3.2", "1.4.3", "1.4.6",
	"2.4.1", "2.4.2", "2.4.3", "2.4.4", "2.4.6",
	"3.1.1", "3.3.2", "4.1.2",
}
