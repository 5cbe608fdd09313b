package service

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

var (
	slugInvalidChars = regexp.MustCompile(`[^a-z0-9-]+`)
	slugHyphenRuns   = regexp.MustCompile(`-{2,}`)
)

// Slugify converts a title into a URL slug: accents folded, lower case, runs of
// anything other than letters and digits collapsed to a single hyphen.
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)

	result = strings.ToLower(result)
	result = strings.NewReplacer("ß", "ss", "ø", "o", "æ", "ae", "&", " and ", "'", "", "’", "").Replace(result)
	result = strings.Join(strings.Fields(result), "-")
	result = slugInvalidChars.ReplaceAllString(result, "-")
	result = slugHyphenRuns.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// IsValidSlug reports whether s is already in Slugify's normal form. All-digit
// strings are refused because numeric keys address rows by id.
func IsValidSlug(s string) bool {
	if s == "" || len(s) > 191 || isNumericSlug(s) {
		return false
	}
	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-') {
			return false
		}
	}
	if s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}
	return !strings.Contains(s, "--")
}

func invalidSlug(slug string) error {
	return invalid("slug %q must use lower-case letters, digits and single hyphens, and cannot be only digits", slug)
}

func isNumericSlug(s string) bool {
	return s != "" && strings.Trim(s, "0123456789") == ""
}

// resolveSlug picks the slug for a create (requested or derived from title) and
// checks it is free among rows other than excludeID.
func resolveSlug(tx *gorm.DB, model interface{}, requested *string, title string, excludeID uint) (string, error) {
	var slug string
	if requested != nil && strings.TrimSpace(*requested) != "" {
		slug = strings.TrimSpace(*requested)
		if !IsValidSlug(slug) {
			return "", invalidSlug(slug)
		}
	} else {
		slug = Slugify(title)
		if slug == "" {
			return "", invalid("slug could not be derived from title")
		}
		if isNumericSlug(slug) {
			return "", invalid("slug derived from title %q is all digits; supply a slug", title)
		}
	}

	if err := ensureSlugFree(tx, model, slug, excludeID); err != nil {
		return "", err
	}
	return slug, nil
}

func ensureSlugFree(tx *gorm.DB, model interface{}, slug string, excludeID uint) error {
	var count int64
	query := tx.Model(model).Where("slug = ?", slug)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrSlugTaken
	}
	return nil
}
