package engine

import (
	"math"
	"strings"
)

func strEqualFold(a, b string) bool { return strings.EqualFold(a, b) }

func powFloat(base, exp float64) float64 { return math.Pow(base, exp) }
