package pathexpr

import (
	"golang.org/x/text/transform"
)

// backslashUnescaper implements transform.Transformer, resolving the
// small set of backslash escapes spec.md §6 allows inside predicate
// string literals (\\, \', \", \n, \t). Any other escaped character is
// copied without its backslash, matching the permissive behavior of the original lexer
// (src/transform.c takes the same "copy unless recognized" approach
// for its own escape handling).
type backslashUnescaper struct{ transform.NopResetter }

func (backslashUnescaper) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		b := src[nSrc]
		if b != '\\' {
			if nDst >= len(dst) {
				return nDst, nSrc, transform.ErrShortDst
			}
			dst[nDst] = b
			nDst++
			nSrc++
			continue
		}
		if nSrc+1 >= len(src) {
			if !atEOF {
				return nDst, nSrc, transform.ErrShortSrc
			}
			if nDst >= len(dst) {
				return nDst, nSrc, transform.ErrShortDst
			}
			dst[nDst] = b
			nDst++
			nSrc++
			continue
		}
		if nDst >= len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		switch src[nSrc+1] {
		case 'n':
			dst[nDst] = '\n'
		case 't':
			dst[nDst] = '\t'
		case '\\', '\'', '"':
			dst[nDst] = src[nSrc+1]
		default:
			dst[nDst] = src[nSrc+1]
		}
		nDst++
		nSrc += 2
	}
	return nDst, nSrc, nil
}

// unescapeString strips the surrounding quotes from a lexed string
// literal token and resolves backslash escapes in its body.
func unescapeString(tok string) (string, error) {
	body := tok[1 : len(tok)-1]
	out, _, err := transform.Bytes(backslashUnescaper{}, []byte(body))
	if err != nil {
		return "", err
	}
	return string(out), nil
}
