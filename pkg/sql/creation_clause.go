package sql

import (
	"strings"

	"github.com/schemascribe/scribe-engine/pkg/apperrors"
)

// RewriteIdempotentCreation rewrites the creation clause at the head of text
// into its create-or-replace form and returns the body from the creation
// keyword onward. Any prefix before the creation clause (typically leading
// comments) is discarded by this function; the synthesizer replaces it with
// the regenerated header.
//
// The token immediately after the creation keyword decides the outcome: an
// OR token means the clause already carries create-or-replace semantics and
// the body is returned unchanged from the keyword position. Otherwise the
// clause is normalized to "CREATE <modifier> <rest>", where modifier is the
// store dialect's keyword pair ("OR ALTER" for SQL Server, "OR REPLACE" for
// Postgres). An ALTER clause is normalized the same way: the create-or-replace
// form subsumes in-place modification.
//
// Returns apperrors.ErrCreationClauseNotFound when no creation keyword exists
// outside comments.
func RewriteIdempotentCreation(text, modifier string) (string, error) {
	start, ok := FindCreationStart(text)
	if !ok {
		return "", apperrors.ErrCreationClauseNotFound
	}

	clause := text[start:]

	keywordEnd := 0
	for keywordEnd < len(clause) && isIdentifierChar(clause[keywordEnd]) {
		keywordEnd++
	}

	rest := clause[keywordEnd:]
	next := firstToken(rest)
	if strings.EqualFold(next, "OR") {
		return clause, nil
	}

	return "CREATE " + modifier + " " + strings.TrimLeft(rest, " \t\r\n"), nil
}

// firstToken returns the first whitespace-delimited identifier token of s,
// or "" when s holds none.
func firstToken(s string) string {
	i := 0
	for i < len(s) && isSpaceChar(s[i]) {
		i++
	}
	start := i
	for i < len(s) && isIdentifierChar(s[i]) {
		i++
	}
	return s[start:i]
}

func isSpaceChar(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}
