package msd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
)

const eof rune = -1

// Parse parses a single expression. Anything but whitespace after the
// expression is an error.
func Parse(src string) (Node, error) {
	return ParseReader("", strings.NewReader(src))
}

// ParseReader is like Parse, reading the source from r. The name is used
// in error locations.
func ParseReader(name string, r io.Reader) (Node, error) {
	rs, ok := r.(io.RuneScanner)
	if !ok {
		rs = bufio.NewReader(r)
	}
	p := &parser{
		src:      rs,
		filename: name,
		line:     1,
		col:      1,
	}
	node, err := p.parseExpr()
	if err == nil {
		p.skipSpace()
		if c := p.peek(); c != eof {
			err = p.fail(ErrInvalidInput, fmt.Sprintf("unexpected %q after expression", c))
		}
	}
	if p.ioErr != nil {
		return nil, fmt.Errorf("reading %s: %w", p.describe(), p.ioErr)
	}
	if err != nil {
		return nil, err
	}
	return node, nil
}

// parser is a recursive-descent parser with one rune of lookahead. Each
// production is chosen by the next rune (or the word after '_'), so it never
// backtracks.
type parser struct {
	src      io.RuneScanner
	filename string
	line     int
	col      int
	ioErr    error
}

func (p *parser) describe() string {
	if p.filename == "" {
		return "input"
	}
	return p.filename
}

func (p *parser) peek() rune {
	if p.ioErr != nil {
		return eof
	}
	r, _, err := p.src.ReadRune()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			p.ioErr = err
		}
		return eof
	}
	if err := p.src.UnreadRune(); err != nil {
		p.ioErr = err
		return eof
	}
	return r
}

func (p *parser) next() rune {
	if p.ioErr != nil {
		return eof
	}
	r, _, err := p.src.ReadRune()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			p.ioErr = err
		}
		return eof
	}
	if r == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
	return r
}

func (p *parser) loc() *SourceLocation {
	return &SourceLocation{
		Filename: p.filename,
		Line:     p.line,
		Column:   p.col,
		Length:   1,
	}
}

func (p *parser) fail(kind error, detail string) error {
	return &ParseError{Kind: kind, Location: p.loc(), Detail: detail}
}

func (p *parser) unexpected(want string) error {
	c := p.peek()
	if c == eof {
		return &ParseError{
			Kind:       ErrBadInput,
			Location:   p.loc(),
			Detail:     "expected " + want + ", got end of input",
			Incomplete: true,
		}
	}
	return p.fail(ErrBadInput, fmt.Sprintf("expected %s, got %q", want, c))
}

func isSpace(c rune) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

func isLetter(c rune) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isDigit(c rune) bool {
	return '0' <= c && c <= '9'
}

func (p *parser) skipSpace() {
	for isSpace(p.peek()) {
		p.next()
	}
}

// consume skips whitespace and then requires the literal s.
func (p *parser) consume(s string) error {
	p.skipSpace()
	for _, want := range s {
		if p.peek() != want {
			return p.unexpected(fmt.Sprintf("%q", s))
		}
		p.next()
	}
	return nil
}

// letters reads a run of ASCII letters, possibly empty.
func (p *parser) letters() string {
	var buf strings.Builder
	for isLetter(p.peek()) {
		buf.WriteRune(p.next())
	}
	return buf.String()
}

// expr := comparg ("==" expr)?
func (p *parser) parseExpr() (Node, error) {
	p.skipSpace()
	loc := p.loc()
	lhs, err := p.parseComparg()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.peek() != '=' {
		return lhs, nil
	}
	if err := p.consume("=="); err != nil {
		return nil, err
	}
	rhs, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return NewEq(lhs, rhs, loc), nil
}

// comparg := addend ("+" comparg)?
func (p *parser) parseComparg() (Node, error) {
	p.skipSpace()
	loc := p.loc()
	lhs, err := p.parseAddend()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.peek() != '+' {
		return lhs, nil
	}
	p.next()
	rhs, err := p.parseComparg()
	if err != nil {
		return nil, err
	}
	return NewAdd(lhs, rhs, loc), nil
}

// addend := multicand ("*" addend)?
func (p *parser) parseAddend() (Node, error) {
	p.skipSpace()
	loc := p.loc()
	lhs, err := p.parseMulticand()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.peek() != '*' {
		return lhs, nil
	}
	p.next()
	rhs, err := p.parseAddend()
	if err != nil {
		return nil, err
	}
	return NewMult(lhs, rhs, loc), nil
}

// multicand := inner ("(" expr ")")*
func (p *parser) parseMulticand() (Node, error) {
	p.skipSpace()
	loc := p.loc()
	expr, err := p.parseInner()
	if err != nil {
		return nil, err
	}
	for {
		p.skipSpace()
		if p.peek() != '(' {
			return expr, nil
		}
		p.next()
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.consume(")"); err != nil {
			return nil, err
		}
		expr = &Call{Callee: expr, Arg: arg, Loc: loc}
	}
}

// inner := number | "(" expr ")" | identifier | "_" keyword
func (p *parser) parseInner() (Node, error) {
	p.skipSpace()
	c := p.peek()
	switch {
	case c == '-' || isDigit(c):
		return p.parseNum()
	case c == '(':
		p.next()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.consume(")"); err != nil {
			return nil, err
		}
		return expr, nil
	case isLetter(c):
		return p.parseVar()
	case c == '_':
		return p.parseKeyword()
	default:
		return nil, p.unexpected("an expression")
	}
}

// parseNum reads an optionally negated run of digits, rejecting literals
// that do not fit in an int before the accumulator can wrap.
func (p *parser) parseNum() (Node, error) {
	loc := p.loc()
	negative := false
	if p.peek() == '-' {
		p.next()
		negative = true
		if !isDigit(p.peek()) {
			return nil, p.fail(ErrInvalidInput, "'-' must be followed by a digit")
		}
	}
	n := 0
	for isDigit(p.peek()) {
		d := int(p.peek() - '0')
		if n > (math.MaxInt-d)/10 {
			return nil, &ParseError{Kind: ErrIntegerOverflow, Location: loc}
		}
		n = n*10 + d
		p.next()
	}
	loc.Length = p.col - loc.Column
	if negative {
		n = -n
	}
	return &Num{Val: n, Loc: loc}, nil
}

func (p *parser) parseVar() (Node, error) {
	name, loc, err := p.parseName()
	if err != nil {
		return nil, err
	}
	return &Var{Name: name, Loc: loc}, nil
}

// parseName reads a non-empty identifier after optional whitespace.
func (p *parser) parseName() (string, *SourceLocation, error) {
	p.skipSpace()
	loc := p.loc()
	name := p.letters()
	if name == "" {
		return "", nil, p.unexpected("an identifier")
	}
	loc.Length = len(name)
	return name, loc, nil
}

// parseKeyword handles everything introduced by '_'.
func (p *parser) parseKeyword() (Node, error) {
	loc := p.loc()
	p.next()
	word := p.letters()
	loc.Length = len(word) + 1
	switch word {
	case "true":
		return &Bool{Val: true, Loc: loc}, nil
	case "false":
		return &Bool{Val: false, Loc: loc}, nil
	case "let":
		return p.parseLet(loc)
	case "if":
		return p.parseIf(loc)
	case "fun":
		return p.parseFun(loc)
	default:
		return nil, &ParseError{
			Kind:     ErrBadInput,
			Location: loc,
			Detail:   fmt.Sprintf("unknown keyword %q", "_"+word),
		}
	}
}

// expectKeyword requires "_" followed by exactly word.
func (p *parser) expectKeyword(word string) error {
	p.skipSpace()
	loc := p.loc()
	if p.peek() != '_' {
		return p.unexpected(fmt.Sprintf("%q", "_"+word))
	}
	p.next()
	if got := p.letters(); got != word {
		loc.Length = len(got) + 1
		return &ParseError{
			Kind:     ErrBadInput,
			Location: loc,
			Detail:   fmt.Sprintf("expected %q, got %q", "_"+word, "_"+got),
		}
	}
	return nil
}

// _let name = expr _in expr
func (p *parser) parseLet(loc *SourceLocation) (Node, error) {
	name, nameLoc, err := p.parseName()
	if err != nil {
		return nil, err
	}
	if err := p.consume("="); err != nil {
		return nil, err
	}
	bound, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("in"); err != nil {
		return nil, err
	}
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &Let{Name: name, Bound: bound, Body: body, Loc: loc, NameLoc: nameLoc}, nil
}

// _if expr _then expr _else expr
func (p *parser) parseIf(loc *SourceLocation) (Node, error) {
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("then"); err != nil {
		return nil, err
	}
	then, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("else"); err != nil {
		return nil, err
	}
	els, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &If{Cond: cond, Then: then, Else: els, Loc: loc}, nil
}

// _fun (name) expr
func (p *parser) parseFun(loc *SourceLocation) (Node, error) {
	if err := p.consume("("); err != nil {
		return nil, err
	}
	param, paramLoc, err := p.parseName()
	if err != nil {
		return nil, err
	}
	if err := p.consume(")"); err != nil {
		return nil, err
	}
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &Fun{Param: param, Body: body, Loc: loc, ParamLoc: paramLoc}, nil
}
