package egis

import "strings"

// maxAbbreviationLen bounds the all-caps tokens that survive description
// normalization unchanged (HVAC, FHA, and the like).
const maxAbbreviationLen = 6

// ProperCase capitalizes the first letter of each word and lowercases the
// rest. Used for street names, which arrive fully upper-cased.
func ProperCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

// CleanDescription normalizes a coded descriptive attribute. EGIS encodes many
// fields as "CODE - Description"; the code prefix is dropped (everything up to
// the last " - " separator) and the remainder is proper-cased, except that
// short all-caps tokens are treated as abbreviations and left alone.
func CleanDescription(s string) string {
	if idx := strings.LastIndex(s, " - "); idx >= 0 {
		s = s[idx+len(" - "):]
	}

	words := strings.Fields(s)
	for i, w := range words {
		if isAbbreviation(w) {
			continue
		}
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

func capitalize(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
}

func isAbbreviation(w string) bool {
	if len(w) < 2 || len(w) > maxAbbreviationLen {
		return false
	}
	hasLetter := false
	for _, r := range w {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		}
	}
	return hasLetter
}

// BuildAddress assembles a display address from the real-estate layer fields.
// Street number and suffix join with a hyphen, street tokens join with spaces,
// and city/ZIP are appended comma-separated. Empty fields drop out. The
// upstream uses "=" as shorthand for Boston in the city column.
func BuildAddress(number, suffix, street, unit, city, zip string) string {
	number = strings.TrimSpace(number)
	suffix = strings.TrimSpace(suffix)
	street = strings.TrimSpace(street)
	unit = strings.TrimSpace(unit)
	city = strings.TrimSpace(city)
	zip = strings.TrimSpace(zip)

	if suffix != "" && number != "" {
		number = number + "-" + suffix
	} else if suffix != "" {
		number = suffix
	}

	var streetParts []string
	if number != "" {
		streetParts = append(streetParts, number)
	}
	if street != "" {
		streetParts = append(streetParts, ProperCase(street))
	}
	if unit != "" {
		streetParts = append(streetParts, "Unit "+unit)
	}

	if city == "=" {
		city = "Boston"
	}

	var parts []string
	if len(streetParts) > 0 {
		parts = append(parts, strings.Join(streetParts, " "))
	}
	if city != "" {
		parts = append(parts, city)
	}
	if zip != "" {
		parts = append(parts, zip)
	}
	return strings.Join(parts, ", ")
}

// MasterParcelID extracts the master parcel from a condo complex identifier:
// the leading run of letters and digits. Complex IDs look like
// "0401234000_C01", where the run before the first separator is the master
// parcel.
func MasterParcelID(complexID string) string {
	for i, r := range complexID {
		isAlnum := (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		if !isAlnum {
			return complexID[:i]
		}
	}
	return complexID
}
