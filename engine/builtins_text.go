package engine

import "strings"

// registerText wires component C8 of spec.md §4.3. Every function here is
// eager: string manipulation never needs to control its own evaluation
// order the way LAMBDA/LET/the array combinators do.
func registerText(r *Registry) {
	r.Register(&Builtin{FnName: "CONCAT", Min: 0, Max: -1, Eager: callConcat})
	r.Register(&Builtin{FnName: "LEFT", Min: 1, Max: 2, Eager: callLeft})
	r.Register(&Builtin{FnName: "RIGHT", Min: 1, Max: 2, Eager: callRight})
	r.Register(&Builtin{FnName: "MID", Min: 3, Max: 3, Eager: callMid})
	r.Register(&Builtin{FnName: "LEN", Min: 1, Max: 1, Eager: callLen})
	r.Register(&Builtin{FnName: "LOWER", Min: 1, Max: 1, Eager: callLower})
	r.Register(&Builtin{FnName: "UPPER", Min: 1, Max: 1, Eager: callUpper})
	r.Register(&Builtin{FnName: "TRIM", Min: 1, Max: 1, Eager: callTrim})
	r.Register(&Builtin{FnName: "FIND", Min: 2, Max: 3, Eager: callFind})
	r.Register(&Builtin{FnName: "SEARCH", Min: 2, Max: 3, Eager: callSearch})
	r.Register(&Builtin{FnName: "SUBSTITUTE", Min: 3, Max: 4, Eager: callSubstitute})
	r.Register(&Builtin{FnName: "REPLACE", Min: 4, Max: 4, Eager: callReplace})
	r.Register(&Builtin{FnName: "VALUE", Min: 1, Max: 1, Eager: callValue})
	r.Register(&Builtin{FnName: "TEXTJOIN", Min: 2, Max: -1, Eager: callTextJoin})
	r.Register(&Builtin{FnName: "PROPER", Min: 1, Max: 1, Eager: callProper})
	r.Register(&Builtin{FnName: "EXACT", Min: 2, Max: 2, Eager: callExact})
	r.Register(&Builtin{FnName: "TEXT", Min: 2, Max: 2, Eager: callText})

	r.Alias("CONCATENATE", "CONCAT")
}

func callConcat(ctx Context, args []Value) Value {
	var b strings.Builder
	for _, v := range flatten(args) {
		b.WriteString(ToText(v))
	}
	return Text{Value: b.String()}
}

func callLeft(ctx Context, args []Value) Value {
	return sideSlice(args, true)
}

func callRight(ctx Context, args []Value) Value {
	return sideSlice(args, false)
}

func sideSlice(args []Value, left bool) Value {
	runes := []rune(ToText(args[0]))
	n := 1
	if len(args) == 2 {
		nf, ok := ToNumber(args[1])
		if !ok {
			return NewError(ErrValue)
		}
		n = int(nf)
	}
	if n < 0 {
		return NewError(ErrValue)
	}
	if n > len(runes) {
		n = len(runes)
	}
	if left {
		return Text{Value: string(runes[:n])}
	}
	return Text{Value: string(runes[len(runes)-n:])}
}

func callMid(ctx Context, args []Value) Value {
	runes := []rune(ToText(args[0]))
	startF, sok := ToNumber(args[1])
	nF, nok := ToNumber(args[2])
	if !sok || !nok || startF < 1 || nF < 0 {
		return NewError(ErrValue)
	}
	start, n := int(startF), int(nF)
	if start > len(runes) {
		return Text{Value: ""}
	}
	end := start - 1 + n
	if end > len(runes) {
		end = len(runes)
	}
	return Text{Value: string(runes[start-1 : end])}
}

func callLen(ctx Context, args []Value) Value {
	return Number{Value: float64(len([]rune(ToText(args[0]))))}
}

func callLower(ctx Context, args []Value) Value {
	return Text{Value: strings.ToLower(ToText(args[0]))}
}

func callUpper(ctx Context, args []Value) Value {
	return Text{Value: strings.ToUpper(ToText(args[0]))}
}

func callTrim(ctx Context, args []Value) Value {
	return Text{Value: collapseSpaces(ToText(args[0]))}
}

func collapseSpaces(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

func callFind(ctx Context, args []Value) Value {
	needle, haystack := ToText(args[0]), ToText(args[1])
	start := 1
	if len(args) == 3 {
		f, ok := ToNumber(args[2])
		if !ok {
			return NewError(ErrValue)
		}
		start = int(f)
	}
	runes := []rune(haystack)
	if start < 1 || (len(needle) > 0 && start > len(runes)) {
		return NewError(ErrValue)
	}
	idx := indexRunes(runes, []rune(needle), start-1)
	if idx < 0 {
		return NewError(ErrValue)
	}
	return Number{Value: float64(idx + 1)}
}

func indexRunes(haystack, needle []rune, from int) int {
	if from > len(haystack) {
		return -1
	}
	if len(needle) == 0 {
		return from
	}
	for i := from; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

func callSearch(ctx Context, args []Value) Value {
	needle, haystack := ToText(args[0]), ToText(args[1])
	start := 1
	if len(args) == 3 {
		f, ok := ToNumber(args[2])
		if !ok {
			return NewError(ErrValue)
		}
		start = int(f)
	}
	haystackRunes := []rune(haystack)
	if start < 1 || (len(needle) > 0 && start > len(haystackRunes)) {
		return NewError(ErrValue)
	}
	pattern := compileSearchPattern(needle)
	for i := start - 1; i <= len(haystackRunes); i++ {
		if matchSearchPattern(pattern, haystackRunes[i:]) {
			return Number{Value: float64(i + 1)}
		}
	}
	return NewError(ErrValue)
}

type searchToken struct {
	literal rune
	any     bool // '?'
	star    bool // '*'
}

// compileSearchPattern parses SEARCH's wildcard syntax: '?' matches one
// code point, '*' matches any run, '~' escapes the following character.
func compileSearchPattern(needle string) []searchToken {
	runes := []rune(needle)
	var out []searchToken
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '~':
			if i+1 < len(runes) {
				i++
				out = append(out, searchToken{literal: toLowerRune(runes[i])})
			}
		case '?':
			out = append(out, searchToken{any: true})
		case '*':
			out = append(out, searchToken{star: true})
		default:
			out = append(out, searchToken{literal: toLowerRune(runes[i])})
		}
	}
	return out
}

func toLowerRune(r rune) rune {
	return []rune(strings.ToLower(string(r)))[0]
}

// matchSearchPattern reports whether pattern matches a prefix of text
// (case-insensitively), anchored at text's start.
func matchSearchPattern(pattern []searchToken, text []rune) bool {
	if len(pattern) == 0 {
		return true
	}
	tok := pattern[0]
	if tok.star {
		for n := 0; n <= len(text); n++ {
			if matchSearchPattern(pattern[1:], text[n:]) {
				return true
			}
		}
		return false
	}
	if len(text) == 0 {
		return false
	}
	if tok.any || toLowerRune(text[0]) == tok.literal {
		return matchSearchPattern(pattern[1:], text[1:])
	}
	return false
}

func callSubstitute(ctx Context, args []Value) Value {
	text, old, repl := ToText(args[0]), ToText(args[1]), ToText(args[2])
	if old == "" {
		return Text{Value: text}
	}
	if len(args) == 3 {
		return Text{Value: strings.ReplaceAll(text, old, repl)}
	}
	instF, ok := ToNumber(args[3])
	if !ok || instF < 1 {
		return NewError(ErrValue)
	}
	inst := int(instF)
	count := 0
	idx := 0
	for {
		pos := strings.Index(text[idx:], old)
		if pos < 0 {
			return Text{Value: text}
		}
		pos += idx
		count++
		if count == inst {
			return Text{Value: text[:pos] + repl + text[pos+len(old):]}
		}
		idx = pos + len(old)
	}
}

func callReplace(ctx Context, args []Value) Value {
	text := []rune(ToText(args[0]))
	startF, sok := ToNumber(args[1])
	nF, nok := ToNumber(args[2])
	newText := ToText(args[3])
	if !sok || !nok || startF < 1 || nF < 0 {
		return NewError(ErrValue)
	}
	start, n := int(startF), int(nF)
	if start > len(text)+1 {
		start = len(text) + 1
	}
	end := start - 1 + n
	if end > len(text) {
		end = len(text)
	}
	return Text{Value: string(text[:start-1]) + newText + string(text[end:])}
}

func callValue(ctx Context, args []Value) Value {
	if n, ok := args[0].(Number); ok {
		return n
	}
	f, ok := ToNumber(Text{Value: strings.TrimSpace(ToText(args[0]))})
	if !ok {
		return NewError(ErrValue)
	}
	return Number{Value: f}
}

func callTextJoin(ctx Context, args []Value) Value {
	delim := ToText(args[0])
	ignoreEmpty := IsTruthy(args[1])
	var parts []string
	for _, v := range flatten(args[2:]) {
		s := ToText(v)
		if ignoreEmpty && s == "" {
			continue
		}
		parts = append(parts, s)
	}
	return Text{Value: strings.Join(parts, delim)}
}

func callProper(ctx Context, args []Value) Value {
	runes := []rune(ToText(args[0]))
	out := make([]rune, len(runes))
	capNext := true
	for i, r := range runes {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		if !isLetter {
			out[i] = r
			capNext = true
			continue
		}
		if capNext {
			out[i] = []rune(strings.ToUpper(string(r)))[0]
		} else {
			out[i] = []rune(strings.ToLower(string(r)))[0]
		}
		capNext = false
	}
	return Text{Value: string(out)}
}

func callExact(ctx Context, args []Value) Value {
	return Boolean{Value: ToText(args[0]) == ToText(args[1])}
}

func callText(ctx Context, args []Value) Value {
	f, ok := ToNumber(args[0])
	if !ok {
		return NewError(ErrValue)
	}
	s, ok := formatNumber(f, ToText(args[1]))
	if !ok {
		return NewError(ErrValue)
	}
	return Text{Value: s}
}
