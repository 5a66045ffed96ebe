package mscn

import (
	"github.com/pkg/errors"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

const (
	TOKEN_WORD = iota
)

// Token is a whitespace separated word of a scene file.
type Token struct {
	Text   string
	Line   int
	Column int
}

func (t Token) IsOpen() bool  { return t.Text == "{" }
func (t Token) IsClose() bool { return t.Text == "}" }
func (t Token) IsBrace() bool { return t.IsOpen() || t.IsClose() }

var lexer *lexmachine.Lexer

func init() {
	lexer = lexmachine.NewLexer()
	lexer.Add([]byte("( |\t|\r|\n)+"), skip)
	lexer.Add([]byte("[^ \t\r\n]+"), getToken(TOKEN_WORD))
	if err := lexer.Compile(); err != nil {
		panic(errors.Wrapf(err, "Failed to compile scene lexer"))
	}
}

func getToken(tokenType int) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(tokenType, string(m.Bytes), m), nil
	}
}

func skip(scan *lexmachine.Scanner, match *machines.Match) (interface{}, error) {
	return nil, nil
}

func Tokenize(text []byte) ([]Token, error) {
	scanner, err := lexer.Scanner(text)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to create lexer scanner")
	}

	result := make([]Token, 0, 64)
	for Itok, err, eos := scanner.Next(); !eos; Itok, err, eos = scanner.Next() {
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to parse token")
		}
		tok := Itok.(*lexmachine.Token)
		result = append(result, Token{
			Text:   tok.Value.(string),
			Line:   tok.StartLine,
			Column: tok.StartColumn,
		})
	}
	return result, nil
}
