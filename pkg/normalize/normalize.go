// Package normalize repairs Arabic text that was decoded with the wrong
// single-byte code page, while leaving a set of protected literals untouched.
package normalize

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yurifrl/invex/pkg/grid"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

// ErrUnknownEncoding is returned when an encoding name cannot be resolved.
var ErrUnknownEncoding = errors.New("unknown encoding")

// DefaultProtected are corrupted strings that appear verbatim in known invoices
// and are matched literally by the keyword tables. Re-encoding them would turn
// them into Arabic the keyword tables do not carry in that exact form.
var DefaultProtected = []string{
	"INVOICE NÂ°:",
	"ÇáÊÓãíÉ",      // التسمية
	"ÇáßãíÉ",       // الكمية
	"ÓÚÑ ÇáæÍÏÉ",   // سعر الوحدة
	"ÇáæÕÝ",        // الوصف
	"ßæÏ ÇáÚãíá",   // كود العميل
	"ÑÞã ÇáÝÇÊæÑÉ", // رقم الفاتورة
}

var encodings = map[string]*charmap.Charmap{
	"windows-1252": charmap.Windows1252,
	"cp1252":       charmap.Windows1252,
	"iso-8859-1":   charmap.ISO8859_1,
	"latin1":       charmap.ISO8859_1,
	"windows-1256": charmap.Windows1256,
	"cp1256":       charmap.Windows1256,
	"iso-8859-6":   charmap.ISO8859_6,
}

// Options configures a Normalizer.
type Options struct {
	// SourceEncoding is the single-byte encoding the text was wrongly decoded with.
	SourceEncoding string
	// TargetEncoding is the Arabic encoding the bytes actually use.
	TargetEncoding string
	// Protected literals are appended to DefaultProtected.
	Protected []string
}

// DefaultOptions returns the windows-1252 -> windows-1256 repair.
func DefaultOptions() Options {
	return Options{
		SourceEncoding: "windows-1252",
		TargetEncoding: "windows-1256",
	}
}

// Normalizer is safe for concurrent use; it holds no mutable state.
type Normalizer struct {
	source    encoding.Encoding
	target    encoding.Encoding
	protected []string
}

// New resolves the configured encodings.
func New(opts Options) (*Normalizer, error) {
	source, err := lookup(opts.SourceEncoding)
	if err != nil {
		return nil, err
	}
	target, err := lookup(opts.TargetEncoding)
	if err != nil {
		return nil, err
	}

	protected := make([]string, 0, len(DefaultProtected)+len(opts.Protected))
	for _, p := range append(append([]string{}, DefaultProtected...), opts.Protected...) {
		if p = norm.NFC.String(strings.TrimSpace(p)); p != "" {
			protected = append(protected, p)
		}
	}

	return &Normalizer{source: source, target: target, protected: protected}, nil
}

func lookup(name string) (encoding.Encoding, error) {
	cm, ok := encodings[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	return cm, nil
}

// IsProtected reports whether s contains one of the protected literals.
func (n *Normalizer) IsProtected(s string) bool {
	for _, p := range n.protected {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// Normalize returns s re-read under the target encoding, or s itself when it
// is protected or cannot be expressed in the source encoding.
func (n *Normalizer) Normalize(s string) string {
	if s == "" || n.IsProtected(s) {
		return s
	}

	raw, err := n.source.NewEncoder().String(s)
	if err != nil {
		return s
	}
	fixed, err := n.target.NewDecoder().String(raw)
	if err != nil || !validRepair(fixed) {
		return s
	}
	return fixed
}

// validRepair rejects decodes that produced replacement characters.
func validRepair(s string) bool {
	return !strings.ContainsRune(s, '�')
}

// Grid returns a copy of g with every cell normalized.
func (n *Normalizer) Grid(g *grid.Grid) *grid.Grid {
	return g.Map(n.Normalize)
}
