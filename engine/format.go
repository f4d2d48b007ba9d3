package engine

import (
	"fmt"
	"regexp"
	"strings"
)

// formatNumber implements TEXT's compact Excel-format subset (spec.md
// §4.3). It is split out from builtins_text.go because the three branches
// — percent, scientific, and grouped/fixed — are independent enough to
// read better on their own.
func formatNumber(n float64, format string) (string, bool) {
	if strings.Contains(format, "%") {
		stripped := strings.Replace(format, "%", "", 1)
		body, ok := formatNumber(n*100, stripped)
		if !ok {
			return "", false
		}
		return body + "%", true
	}

	if m := scientificPattern.FindStringSubmatch(format); m != nil {
		return formatScientific(n, m[1], m[2]), true
	}

	return formatFixed(n, format), true
}

var scientificPattern = regexp.MustCompile(`(?i)^(.*)E[+-](0+)$`)

func formatScientific(n float64, mantissaFormat, exponentZeros string) string {
	fracDigits := strings.Count(mantissaFormat, "0")
	if dot := strings.IndexByte(mantissaFormat, '.'); dot >= 0 {
		fracDigits = len(mantissaFormat) - dot - 1
	} else {
		fracDigits = 0
	}

	mantissa, exponent := n, 0
	if mantissa != 0 {
		abs := mantissa
		if abs < 0 {
			abs = -abs
		}
		for abs >= 10 {
			abs /= 10
			exponent++
		}
		for abs < 1 {
			abs *= 10
			exponent--
		}
		sign := 1.0
		if mantissa < 0 {
			sign = -1
		}
		mantissa = sign * abs
	}

	mantissaStr := fmt.Sprintf("%.*f", fracDigits, mantissa)
	expSign := "+"
	if exponent < 0 {
		expSign = "-"
		exponent = -exponent
	}
	expStr := fmt.Sprintf("%0*d", len(exponentZeros), exponent)
	return fmt.Sprintf("%sE%s%s", mantissaStr, expSign, expStr)
}

// formatFixed handles the non-percent, non-scientific subset: optional
// thousands grouping, zero/hash digit placeholders on either side of a
// single decimal point.
func formatFixed(n float64, format string) string {
	grouped := strings.Contains(format, ",")
	intFormat, fracFormat := format, ""
	if dot := strings.IndexByte(format, '.'); dot >= 0 {
		intFormat, fracFormat = format[:dot], format[dot+1:]
	}

	fracDigits := len(fracFormat)
	neg := n < 0
	abs := n
	if neg {
		abs = -abs
	}
	rounded := fmt.Sprintf("%.*f", fracDigits, abs)

	intPart, fracPart := rounded, ""
	if dot := strings.IndexByte(rounded, '.'); dot >= 0 {
		intPart, fracPart = rounded[:dot], rounded[dot+1:]
	}

	minWidth := strings.Count(intFormat, "0")
	for len(intPart) < minWidth {
		intPart = "0" + intPart
	}
	if strings.Contains(intFormat, "#") && minWidth == 0 {
		intPart = strings.TrimLeft(intPart, "0")
		if intPart == "" {
			intPart = "0"
		}
	}

	if grouped {
		intPart = groupThousands(intPart)
	}

	fracPart = trimTrailingHash(fracFormat, fracPart)

	out := intPart
	if fracPart != "" {
		out += "." + fracPart
	}
	if neg {
		out = "-" + out
	}
	return out
}

func groupThousands(s string) string {
	if len(s) <= 3 {
		return s
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	return strings.Join(parts, ",")
}

// trimTrailingHash strips fractional digits corresponding to trailing "#"
// placeholders in format when those digits are zero, working from the
// right, per spec.md §4.3.
func trimTrailingHash(format, digits string) string {
	i := len(format) - 1
	j := len(digits) - 1
	for i >= 0 && format[i] == '#' && j >= 0 && digits[j] == '0' {
		i--
		j--
	}
	if j < 0 {
		return ""
	}
	return digits[:j+1]
}
