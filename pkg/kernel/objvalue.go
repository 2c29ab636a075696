package kernel

import (
	"strings"
	"unicode"
)

type Email string

type Phone string

type FirstName string

type LastName string

// Identification is the applicant's document number. It is the natural key of
// an applicant and the namespace of every object stored on their behalf.
type Identification string

func (i Identification) String() string { return string(i) }

// Normalize trims surrounding whitespace
func (i Identification) Normalize() Identification {
	return Identification(strings.TrimSpace(string(i)))
}

// IsValid accepts 4 to 20 letters, digits or dashes. Colombian documents are
// numeric but passports and PPT numbers carry letters.
func (i Identification) IsValid() bool {
	s := string(i.Normalize())
	if len(s) < 4 || len(s) > 20 {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' {
			return false
		}
	}
	return true
}

// IsPathSafe reports whether the identification can be used as an object
// store key segment
func (i Identification) IsPathSafe() bool {
	s := string(i)
	return s != "" && !strings.ContainsAny(s, "/\\") && s != "." && s != ".."
}

// DocumentType is the free-text description of the identification document
// as listed by the identification types catalog
type DocumentType string

// YesNo renders a boolean answer the way printed forms expect it
func YesNo(v *bool) string {
	if v != nil && *v {
		return "Sí"
	}
	return "No"
}
