package source

import (
	"strings"
	"unicode"
)

// bom is the byte order mark some editors put at the start of C# files.
const bom = "\uFEFF"

// token is a lexical unit of C# source that matters for declaration scanning.
// Literals and comments never become tokens.
type token struct {
	text string
	line int
}

func (t token) isIdent() bool {
	if t.text == "" {
		return false
	}
	r := rune(t.text[0])
	return r == '_' || r == '@' || unicode.IsLetter(r)
}

// tokenize splits src into identifiers and single character punctuation,
// skipping whitespace, comments, string and character literals and
// preprocessor directives.
func tokenize(src string) []token {
	var (
		tokens []token
		line   = 1
		rs     = []rune(strings.TrimPrefix(src, bom))
		bol    = true
	)

	for i := 0; i < len(rs); i++ {
		r := rs[i]
		switch {
		case r == '\n':
			line++
			bol = true
			continue
		case unicode.IsSpace(r):
			continue
		case bol && r == '#':
			for i < len(rs) && rs[i] != '\n' {
				i++
			}
			i--
			continue
		}
		bol = false

		switch {
		case r == '/' && i+1 < len(rs) && rs[i+1] == '/':
			for i < len(rs) && rs[i] != '\n' {
				i++
			}
			i--
		case r == '/' && i+1 < len(rs) && rs[i+1] == '*':
			i += 2
			for i < len(rs) && (rs[i] != '*' || i+1 >= len(rs) || rs[i+1] != '/') {
				if rs[i] == '\n' {
					line++
				}
				i++
			}
			i++
		case r == '"' || (r == '@' || r == '$') && i+1 < len(rs) && (rs[i+1] == '"' || rs[i+1] == '@' || rs[i+1] == '$'):
			i, line = skipString(rs, i, line)
		case r == '\'':
			i++
			for i < len(rs) && rs[i] != '\'' && rs[i] != '\n' {
				if rs[i] == '\\' {
					i++
				}
				i++
			}
		case r == '_' || r == '@' || unicode.IsLetter(r):
			start := i
			for i+1 < len(rs) && (rs[i+1] == '_' || unicode.IsLetter(rs[i+1]) || unicode.IsDigit(rs[i+1])) {
				i++
			}
			tokens = append(tokens, token{text: string(rs[start : i+1]), line: line})
		case unicode.IsDigit(r):
			for i+1 < len(rs) && (unicode.IsLetter(rs[i+1]) || unicode.IsDigit(rs[i+1]) || rs[i+1] == '.') {
				i++
			}
		default:
			tokens = append(tokens, token{text: string(r), line: line})
		}
	}

	return tokens
}

// skipString advances past a regular, verbatim or interpolated string literal
// starting at i and returns the index of its closing quote.
func skipString(rs []rune, i, line int) (int, int) {
	verbatim := false
	for i < len(rs) && rs[i] != '"' {
		if rs[i] == '@' {
			verbatim = true
		}
		i++
	}
	i++
	for i < len(rs) {
		switch {
		case rs[i] == '\n':
			line++
		case !verbatim && rs[i] == '\\':
			i++
		case rs[i] == '"':
			if verbatim && i+1 < len(rs) && rs[i+1] == '"' {
				i++
				break
			}
			return i, line
		}
		i++
	}
	return i, line
}

var modifiers = map[string]bool{
	"public": true, "private": true, "protected": true, "internal": true,
	"abstract": true, "static": true, "sealed": true, "partial": true,
	"unsafe": true, "new": true, "readonly": true, "ref": true, "file": true,
}

var kinds = map[string]Kind{
	"class":     KindClass,
	"struct":    KindStruct,
	"interface": KindInterface,
	"enum":      KindEnum,
	"record":    KindRecord,
}

type scope struct {
	depth     int
	namespace string
	typeName  string
}

// DeclaredNamespaces returns the fully-qualified names of the namespaces
// declared in src, in declaration order.
func DeclaredNamespaces(src string) []string {
	_, namespaces := parse("", src)
	return namespaces
}

// parse extracts the type and namespace declarations of one C# file. Nested
// types are named Outer+Inner in FullName, the way the runtime reports them.
func parse(path, src string) ([]TypeDescriptor, []string) {
	var (
		tokens     = tokenize(src)
		result     []TypeDescriptor
		namespaces []string
		scopes     []scope
		depth      int
		fileNS     string
		attrs      []string
		mods       = map[string]bool{}
		pendingNS  string
		pendingTyp string
		hasPending bool
	)

	currentNS := func() string {
		for i := len(scopes) - 1; i >= 0; i-- {
			if scopes[i].namespace != "" {
				return scopes[i].namespace
			}
		}
		return fileNS
	}
	enclosingType := func() string {
		if len(scopes) > 0 && scopes[len(scopes)-1].typeName != "" {
			return scopes[len(scopes)-1].typeName
		}
		return ""
	}
	reset := func() {
		attrs = nil
		mods = map[string]bool{}
	}

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		switch tok.text {
		case "{":
			depth++
			if hasPending {
				scopes = append(scopes, scope{depth: depth, namespace: pendingNS, typeName: pendingTyp})
				pendingNS, pendingTyp, hasPending = "", "", false
			}
			reset()
			continue
		case "}":
			if len(scopes) > 0 && scopes[len(scopes)-1].depth == depth {
				scopes = scopes[:len(scopes)-1]
			}
			depth--
			reset()
			continue
		case ";":
			if hasPending && pendingNS != "" && pendingTyp == "" {
				// file scoped namespace
				fileNS = pendingNS
			}
			pendingNS, pendingTyp, hasPending = "", "", false
			reset()
			continue
		case "[":
			if !attributePosition(tokens, i) {
				continue
			}
			var names []string
			i, names = readAttributes(tokens, i)
			attrs = append(attrs, names...)
			continue
		case "namespace":
			name, next := readQualified(tokens, i+1)
			if name == "" {
				continue
			}
			if ns := currentNS(); ns != "" {
				name = ns + "." + name
			}
			namespaces = append(namespaces, name)
			pendingNS, pendingTyp, hasPending = name, "", true
			i = next - 1
			reset()
			continue
		}

		if modifiers[tok.text] {
			mods[tok.text] = true
			continue
		}

		kind, ok := kinds[tok.text]
		if !ok || !declarationPosition(tokens, i) {
			continue
		}
		j := i + 1
		if kind == KindRecord && j < len(tokens) && (tokens[j].text == "class" || tokens[j].text == "struct") {
			j++
		}
		if j >= len(tokens) || !tokens[j].isIdent() {
			continue
		}

		name := strings.TrimPrefix(tokens[j].text, "@")
		generic := j+1 < len(tokens) && tokens[j+1].text == "<"
		ns := currentNS()

		qualified := name
		if outer := enclosingType(); outer != "" {
			qualified = outer + "+" + name
		}
		fullName := qualified
		if ns != "" {
			fullName = ns + "." + qualified
		}

		result = append(result, TypeDescriptor{
			Name:       name,
			FullName:   fullName,
			Namespace:  ns,
			Kind:       kind,
			Attributes: attrs,
			Abstract:   mods["abstract"],
			Static:     mods["static"],
			Partial:    mods["partial"],
			Generic:    generic,
			Path:       path,
			Line:       tokens[j].line,
			Source:     src,
		})

		pendingNS, pendingTyp, hasPending = "", qualified, true
		reset()
		i = j
	}

	return result, namespaces
}

// attributePosition reports whether the '[' at i opens an attribute section
// rather than an indexer or array type.
func attributePosition(tokens []token, i int) bool {
	if i == 0 {
		return true
	}
	switch tokens[i-1].text {
	case ";", "{", "}", "]":
		return true
	}
	return modifiers[tokens[i-1].text]
}

// declarationPosition reports whether the kind keyword at i starts a type
// declaration. Declarations follow a statement boundary, an attribute section
// or a modifier, which rules out constraints like "where T : class" and
// contextual uses of "record".
func declarationPosition(tokens []token, i int) bool {
	return attributePosition(tokens, i)
}

// readAttributes reads the attribute section opened at i and returns the
// index of its closing bracket together with the attribute names.
func readAttributes(tokens []token, i int) (int, []string) {
	var (
		names  []string
		nested int
		expect = true
	)
	for i++; i < len(tokens); i++ {
		switch t := tokens[i].text; {
		case t == "]" && nested == 0:
			return i, names
		case t == "(" || t == "[" || t == "<":
			nested++
		case t == ")" || t == "]" || t == ">":
			nested--
		case t == "," && nested == 0:
			expect = true
		case expect && nested == 0 && tokens[i].isIdent():
			// attribute target such as [field: SerializeField]
			if i+1 < len(tokens) && tokens[i+1].text == ":" {
				i++
				continue
			}
			name, next := readQualified(tokens, i)
			names = append(names, name)
			i = next - 1
			expect = false
		}
	}
	return i, names
}

// readQualified reads a dotted identifier starting at i.
func readQualified(tokens []token, i int) (string, int) {
	var parts []string
	for i < len(tokens) && tokens[i].isIdent() {
		parts = append(parts, strings.TrimPrefix(tokens[i].text, "@"))
		if i+1 < len(tokens) && tokens[i+1].text == "." {
			i += 2
			continue
		}
		i++
		break
	}
	return strings.Join(parts, "."), i
}
