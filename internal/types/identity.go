package types

import (
	"fmt"
	"strings"
)

// IdentityKey is the (mask, slit, object) triple carried in a spectrum
// file name. It joins raw spectra to redshift records.
type IdentityKey struct {
	Mask   string
	Slit   string
	Object string
}

// Normalized returns the key with the slit zero-padded to three digits,
// the form used by the redshift files.
func (k IdentityKey) Normalized() IdentityKey {
	return IdentityKey{Mask: k.Mask, Slit: PadSlit(k.Slit), Object: k.Object}
}

// Filename reconstructs the compressed spectrum file name for the key.
func (k IdentityKey) Filename() string {
	return fmt.Sprintf("spec1d.%s.%s.%s.fits.gz", k.Mask, PadSlit(k.Slit), k.Object)
}

func (k IdentityKey) String() string {
	return k.Mask + "." + k.Slit + "." + k.Object
}

func (k IdentityKey) IsZero() bool {
	return k.Mask == "" && k.Slit == "" && k.Object == ""
}

// PadSlit left-pads a slit name with zeros to three characters.
func PadSlit(slit string) string {
	slit = strings.TrimSpace(slit)
	if len(slit) >= 3 {
		return slit
	}
	return strings.Repeat("0", 3-len(slit)) + slit
}

// Target is one selected raw spectrum file.
type Target struct {
	Path      string
	Key       IdentityKey
	Field     string
	FieldType FieldType
}

type Selection struct {
	Mode   SelectionMode
	Values []string
}
