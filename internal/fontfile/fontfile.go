// Package fontfile validates uploaded font files and derives the metadata
// the admin UI needs to preview them.
package fontfile

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/image/font/sfnt"
)

// MaxSize caps an uploaded font file.
const MaxSize = 10 << 20

// Extension is the only accepted file extension, without the dot.
const Extension = "ttf"

var (
	ErrUnsupportedType = errors.New("Only .ttf files are allowed!")
	ErrInvalidFont     = errors.New("Invalid font file. Please upload a valid .ttf file.")
	ErrTooLarge        = errors.New("Font file is too large.")
)

// Info is what a parsed font contributes to the catalog.
type Info struct {
	FullName  string
	Family    string
	Subfamily string
	Glyphs    int
}

// ValidateName checks the file extension. It is the first gate on every
// upload path and runs before the file is read.
func ValidateName(name string) error {
	i := strings.LastIndex(name, ".")
	if i < 0 || strings.ToLower(name[i+1:]) != Extension {
		return ErrUnsupportedType
	}
	return nil
}

// Parse reads the name table of a TrueType font.
func Parse(data []byte) (Info, error) {
	if len(data) > MaxSize {
		return Info{}, ErrTooLarge
	}
	f, err := sfnt.Parse(data)
	if err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrInvalidFont, err)
	}

	var buf sfnt.Buffer
	info := Info{
		FullName:  lookupName(f, &buf, sfnt.NameIDFull),
		Family:    lookupName(f, &buf, sfnt.NameIDFamily),
		Subfamily: lookupName(f, &buf, sfnt.NameIDSubfamily),
		Glyphs:    f.NumGlyphs(),
	}
	if info.Glyphs == 0 {
		return Info{}, ErrInvalidFont
	}
	return info, nil
}

func lookupName(f *sfnt.Font, buf *sfnt.Buffer, id sfnt.NameID) string {
	s, err := f.Name(buf, id)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// DisplayName picks the name shown in the catalog: the full name, then
// family plus subfamily, then the file name without its extension.
func (i Info) DisplayName(fileName string) string {
	if i.FullName != "" {
		return i.FullName
	}
	if i.Family != "" {
		return strings.TrimSpace(i.Family + " " + i.Subfamily)
	}
	base := filepath.Base(fileName)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
