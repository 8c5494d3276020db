package buffer

import (
	"unicode/utf8"

	"github.com/fory-project/fory-go-core/internal/ferr"
)

// WriteString writes a var_uint32 length prefix followed by the UTF-8
// bytes, the framing spec.md §4.5 fixes for String and that TypeMeta
// field names share.
func (w *Writer) WriteString(s string) {
	w.VarUint32(uint32(len(s)))
	w.Bytes([]byte(s))
}

// ReadString is the exact inverse of WriteString. There is no
// general-purpose UTF-8 validator among the example pack's third-party
// dependencies narrowly scoped to this check, so it uses the standard
// library's unicode/utf8, the same package the Fory reference
// implementation's host languages treat as the baseline.
func (r *Reader) ReadString() (string, error) {
	n, err := r.VarUint32()
	if err != nil {
		return "", err
	}
	p, err := r.Bytes(int(n))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(p) {
		return "", ferr.InvalidUTF8()
	}
	return string(p), nil
}
