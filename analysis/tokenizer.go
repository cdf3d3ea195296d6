package analysis

import (
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/go-ego/gse"
	"golang.org/x/text/unicode/norm"
)

// Tokenizer names accepted by NewTokenizer
const (
	TokenizerGse    = "gse"
	TokenizerSimple = "simple"
)

// Tokenizer splits text into words
type Tokenizer interface {
	Tokenize(text string) []string
}

// NewTokenizer returns the tokenizer registered under name
func NewTokenizer(name string) (Tokenizer, error) {
	switch strings.ToLower(name) {
	case "", TokenizerGse:
		return &GseTokenizer{}, nil
	case TokenizerSimple:
		return SimpleTokenizer{}, nil
	default:
		return nil, fmt.Errorf("unknown tokenizer %q", name)
	}
}

// SimpleTokenizer normalises with NFKC and splits on anything that is not
// a letter or digit. A run of CJK characters stays one token.
type SimpleTokenizer struct{}

func (SimpleTokenizer) Tokenize(text string) []string {
	text = norm.NFKC.String(text)
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// GseTokenizer segments Chinese text with the gse dictionary. The
// dictionary is loaded on first use.
type GseTokenizer struct {
	once sync.Once
	seg  gse.Segmenter
	err  error
}

func (g *GseTokenizer) load() error {
	g.once.Do(func() {
		g.seg, g.err = gse.New()
	})
	return g.err
}

// Tokenize falls back to SimpleTokenizer when the dictionary cannot load
func (g *GseTokenizer) Tokenize(text string) []string {
	if err := g.load(); err != nil {
		return SimpleTokenizer{}.Tokenize(text)
	}
	return g.seg.Cut(text, true)
}

// Err reports a dictionary load failure, if any
func (g *GseTokenizer) Err() error {
	return g.load()
}
