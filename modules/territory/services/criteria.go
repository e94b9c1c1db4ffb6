package services

import (
	"fmt"
	"strings"
)

// The criteria order grammar:
//
//	expr   := term (op term)*
//	term   := number | '(' expr ')'
//	op     := 'AND' | 'OR'        (case-insensitive)
//	number := digit+              (references a rule_number)
//
// AND and OR have equal precedence and associate left-to-right; only
// parentheses change grouping. The empty string is valid and means "no rules".

type tokenKind int

const (
	tokenNumber tokenKind = iota
	tokenAnd
	tokenOr
	tokenOpenParen
	tokenCloseParen
)

type criteriaToken struct {
	kind   tokenKind
	number int
	offset int
}

// criteriaExpr is the parsed form of a criteria order.
type criteriaExpr interface {
	isCriteriaExpr()
}

// ruleRef is a leaf referencing one account rule by number.
type ruleRef struct {
	number int
}

// boolExpr combines two sub-expressions with AND or OR.
type boolExpr struct {
	op    tokenKind // tokenAnd or tokenOr
	left  criteriaExpr
	right criteriaExpr
}

func (ruleRef) isCriteriaExpr()  {}
func (boolExpr) isCriteriaExpr() {}

func lexCriteria(input string) ([]criteriaToken, error) {
	var tokens []criteriaToken
	i := 0
	for i < len(input) {
		c := input[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '(':
			tokens = append(tokens, criteriaToken{kind: tokenOpenParen, offset: i})
			i++
		case c == ')':
			tokens = append(tokens, criteriaToken{kind: tokenCloseParen, offset: i})
			i++
		case c >= '0' && c <= '9':
			start := i
			number := 0
			for i < len(input) && input[i] >= '0' && input[i] <= '9' {
				number = number*10 + int(input[i]-'0')
				i++
			}
			tokens = append(tokens, criteriaToken{kind: tokenNumber, number: number, offset: start})
		default:
			start := i
			for i < len(input) && input[i] != ' ' && input[i] != '\t' && input[i] != '(' && input[i] != ')' {
				i++
			}
			switch strings.ToUpper(input[start:i]) {
			case "AND":
				tokens = append(tokens, criteriaToken{kind: tokenAnd, offset: start})
			case "OR":
				tokens = append(tokens, criteriaToken{kind: tokenOr, offset: start})
			default:
				return nil, fmt.Errorf("unknown word %q at offset %d", input[start:i], start)
			}
		}
	}
	return tokens, nil
}

type criteriaParser struct {
	tokens []criteriaToken
	pos    int
}

func (p *criteriaParser) peek() (criteriaToken, bool) {
	if p.pos >= len(p.tokens) {
		return criteriaToken{}, false
	}
	return p.tokens[p.pos], true
}

func (p *criteriaParser) next() (criteriaToken, bool) {
	tok, ok := p.peek()
	if ok {
		p.pos++
	}
	return tok, ok
}

func (p *criteriaParser) parseExpr() (criteriaExpr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	for {
		tok, ok := p.peek()
		if !ok || (tok.kind != tokenAnd && tok.kind != tokenOr) {
			return left, nil
		}
		p.pos++

		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = boolExpr{op: tok.kind, left: left, right: right}
	}
}

func (p *criteriaParser) parseTerm() (criteriaExpr, error) {
	tok, ok := p.next()
	if !ok {
		return nil, fmt.Errorf("unexpected end of expression")
	}

	switch tok.kind {
	case tokenNumber:
		return ruleRef{number: tok.number}, nil
	case tokenOpenParen:
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		closing, ok := p.next()
		if !ok || closing.kind != tokenCloseParen {
			return nil, fmt.Errorf("unbalanced parenthesis opened at offset %d", tok.offset)
		}
		return inner, nil
	default:
		return nil, fmt.Errorf("unexpected token at offset %d", tok.offset)
	}
}

// ParseCriteria parses a criteria order string. An empty (or all-whitespace)
// input parses to a nil expression: the territory has no rules.
func ParseCriteria(input string) (criteriaExpr, error) {
	tokens, err := lexCriteria(input)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, nil
	}

	p := &criteriaParser{tokens: tokens}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if trailing, ok := p.peek(); ok {
		return nil, fmt.Errorf("unexpected token at offset %d", trailing.offset)
	}
	return expr, nil
}

// ValidateCriteria reports whether a criteria order string is well-formed.
func ValidateCriteria(input string) bool {
	_, err := ParseCriteria(input)
	return err == nil
}
