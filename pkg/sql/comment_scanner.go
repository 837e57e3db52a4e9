package sql

import "strings"

// CommentBlock is one top-level /* ... */ block found in definition text.
// Start is the index of the opening "/*", End the index one past the closing
// "*/". Text is the block content without the delimiters.
type CommentBlock struct {
	Start int
	End   int
	Text  string
}

// ScanCommentBlocks walks definition text with a two-state scanner
// (inside/outside a block comment) and returns every top-level block.
// An unterminated "/*" stops block discovery at end of text; the partial
// block is not returned and no error is raised.
func ScanCommentBlocks(text string) []CommentBlock {
	var blocks []CommentBlock
	inComment := false
	start := 0

	for i := 0; i < len(text); i++ {
		if !inComment {
			if text[i] == '/' && i+1 < len(text) && text[i+1] == '*' {
				inComment = true
				start = i
				i++ // skip '*'
			}
			continue
		}
		if text[i] == '*' && i+1 < len(text) && text[i+1] == '/' {
			blocks = append(blocks, CommentBlock{
				Start: start,
				End:   i + 2,
				Text:  text[start+2 : i],
			})
			inComment = false
			i++ // skip '/'
		}
	}

	return blocks
}

// creationKeywords are the tokens that open a creation clause. CREATE is the
// primary keyword; ALTER is the in-place modification alternative.
var creationKeywords = []string{"CREATE", "ALTER"}

// FindCreationStart returns the position of the first CREATE or ALTER
// keyword that sits outside any block comment and is not a substring of a
// larger identifier. The boolean is false when neither keyword appears
// outside comments, which callers must treat as an unrecoverable-body error.
func FindCreationStart(text string) (int, bool) {
	inComment := false

	for i := 0; i < len(text); i++ {
		if !inComment {
			if text[i] == '/' && i+1 < len(text) && text[i+1] == '*' {
				inComment = true
				i++
				continue
			}
			for _, kw := range creationKeywords {
				if matchKeywordAt(text, i, kw) {
					return i, true
				}
			}
			continue
		}
		if text[i] == '*' && i+1 < len(text) && text[i+1] == '/' {
			inComment = false
			i++
		}
	}

	return 0, false
}

// matchKeywordAt reports whether keyword appears at pos case-insensitively
// with a non-identifier character (or text boundary) on both sides.
func matchKeywordAt(text string, pos int, keyword string) bool {
	end := pos + len(keyword)
	if end > len(text) {
		return false
	}
	if !strings.EqualFold(text[pos:end], keyword) {
		return false
	}
	if pos > 0 && isIdentifierChar(text[pos-1]) {
		return false
	}
	if end < len(text) && isIdentifierChar(text[end]) {
		return false
	}
	return true
}

func isIdentifierChar(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}
