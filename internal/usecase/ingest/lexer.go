package ingest

import (
	"bufio"
	"bytes"
	"errors"
	"io"
)

// readBufferSize ограничивает длину строки, отдаваемой одним токеном.
// Более длинные строки приходят фрагментами с флагом more.
const readBufferSize = 64 << 10

type tokenKind int

const (
	tokenText tokenKind = iota
	tokenBlank
	tokenBoundary
)

func (k tokenKind) String() string {
	switch k {
	case tokenBlank:
		return "blank"
	case tokenBoundary:
		return "boundary"
	default:
		return "text"
	}
}

// token — одна строка тела (или фрагмент строки) без признака конца строки.
// text действителен только до следующего вызова next.
type token struct {
	kind tokenKind
	text []byte
	more bool
}

// lexer режет поток на строки и классифицирует их. Продолжение длинной строки
// всегда tokenText: граница и пустая строка распознаются только в начале строки.
type lexer struct {
	r      *bufio.Reader
	marker []byte
	cont   bool
}

func newLexer(r io.Reader, marker string) *lexer {
	return &lexer{
		r:      bufio.NewReaderSize(r, readBufferSize),
		marker: []byte(marker),
	}
}

// next возвращает очередной токен или io.EOF, когда поток исчерпан.
func (l *lexer) next() (token, error) {
	raw, err := l.r.ReadSlice('\n')
	more := false
	switch {
	case err == nil:
	case errors.Is(err, bufio.ErrBufferFull):
		more = true
	case errors.Is(err, io.EOF):
		if len(raw) == 0 {
			return token{}, io.EOF
		}
	default:
		return token{}, err
	}

	text := raw
	if !more {
		text = trimEOL(raw)
	}

	kind := tokenText
	if !l.cont {
		kind = classify(text, more, l.marker)
	}
	l.cont = more

	// Хвост слишком длинной строки-границы не нужен никому.
	if kind == tokenBoundary && more {
		if err := l.discardLine(); err != nil {
			return token{}, err
		}
		return token{kind: kind}, nil
	}

	return token{kind: kind, text: text, more: more}, nil
}

func (l *lexer) discardLine() error {
	for l.cont {
		_, err := l.r.ReadSlice('\n')
		switch {
		case err == nil, errors.Is(err, io.EOF):
			l.cont = false
		case errors.Is(err, bufio.ErrBufferFull):
		default:
			return err
		}
	}
	return nil
}

func classify(line []byte, more bool, marker []byte) tokenKind {
	if len(marker) > 0 && bytes.HasPrefix(line, marker) {
		return tokenBoundary
	}
	if !more && len(bytes.TrimSpace(line)) == 0 {
		return tokenBlank
	}
	return tokenText
}

func trimEOL(b []byte) []byte {
	b = bytes.TrimSuffix(b, []byte("\n"))
	return bytes.TrimSuffix(b, []byte("\r"))
}
