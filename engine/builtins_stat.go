package engine

import "sort"

// registerStatistical wires component C7 of spec.md §4.3: counting,
// criteria-matching sums/averages, and order statistics. All of these are
// eager — their arguments are plain Values by the time these functions run,
// and Ranges are flattened in row-major order wherever a scalar list is
// needed (spec.md §4.3 preamble).
func registerStatistical(r *Registry) {
	r.Register(&Builtin{FnName: "COUNT", Min: 0, Max: -1, Eager: callCount})
	r.Register(&Builtin{FnName: "COUNTA", Min: 0, Max: -1, Eager: callCountA})
	r.Register(&Builtin{FnName: "COUNTBLANK", Min: 1, Max: 1, Eager: callCountBlank})
	r.Register(&Builtin{FnName: "COUNTIF", Min: 2, Max: 2, Eager: callCountIf})
	r.Register(&Builtin{FnName: "SUMIF", Min: 2, Max: 3, Eager: callSumIf})
	r.Register(&Builtin{FnName: "AVERAGEIF", Min: 2, Max: 3, Eager: callAverageIf})
	r.Register(&Builtin{FnName: "SUMIFS", Min: 3, Max: -1, Eager: callSumIfs})
	r.Register(&Builtin{FnName: "COUNTIFS", Min: 2, Max: -1, Eager: callCountIfs})
	r.Register(&Builtin{FnName: "AVERAGEIFS", Min: 3, Max: -1, Eager: callAverageIfs})
	r.Register(&Builtin{FnName: "MEDIAN", Min: 0, Max: -1, Eager: callMedian})
	r.Register(&Builtin{FnName: "MODE.SNGL", Min: 0, Max: -1, Eager: callMode})
	r.Register(&Builtin{FnName: "LARGE", Min: 2, Max: 2, Eager: callLarge})
	r.Register(&Builtin{FnName: "SMALL", Min: 2, Max: 2, Eager: callSmall})
	r.Register(&Builtin{FnName: "RANK.EQ", Min: 2, Max: 3, Eager: callRank})

	r.Alias("MODE", "MODE.SNGL")
	r.Alias("RANK", "RANK.EQ")
}

// flatten expands each argument in place: a Range contributes its cells in
// row-major order, anything else contributes itself.
func flatten(args []Value) []Value {
	out := make([]Value, 0, len(args))
	for _, v := range args {
		if rg, ok := v.(Range); ok {
			out = append(out, rg.Flat()...)
			continue
		}
		out = append(out, v)
	}
	return out
}

// collectNumbers applies COUNT's rule: only genuine Number cells count, no
// coercion from Text or Boolean.
func collectNumbers(args []Value) []float64 {
	var nums []float64
	for _, v := range flatten(args) {
		if n, ok := v.(Number); ok {
			nums = append(nums, n.Value)
		}
	}
	return nums
}

func callCount(ctx Context, args []Value) Value {
	return Number{Value: float64(len(collectNumbers(args)))}
}

func callCountA(ctx Context, args []Value) Value {
	n := 0
	for _, v := range flatten(args) {
		if !IsEmpty(v) {
			n++
		}
	}
	return Number{Value: float64(n)}
}

func callCountBlank(ctx Context, args []Value) Value {
	v := args[0]
	if rg, ok := v.(Range); ok {
		n := 0
		for _, cell := range rg.Flat() {
			if IsEmpty(cell) {
				n++
			}
		}
		return Number{Value: float64(n)}
	}
	if IsEmpty(v) {
		return Number{Value: 1}
	}
	return Number{Value: 0}
}

func asFlat(v Value) []Value {
	if rg, ok := v.(Range); ok {
		return rg.Flat()
	}
	return []Value{v}
}

func callCountIf(ctx Context, args []Value) Value {
	crit := parseCriterion(args[1])
	n := 0
	for _, cell := range asFlat(args[0]) {
		if crit.matches(cell) {
			n++
		}
	}
	return Number{Value: float64(n)}
}

func callSumIf(ctx Context, args []Value) Value {
	rng := asFlat(args[0])
	crit := parseCriterion(args[1])
	sumRange := rng
	if len(args) == 3 {
		sumRange = asFlat(args[2])
	}
	n := len(rng)
	if len(sumRange) < n {
		n = len(sumRange)
	}
	total := 0.0
	for i := 0; i < n; i++ {
		if !crit.matches(rng[i]) {
			continue
		}
		f, _ := ToNumber(sumRange[i])
		total += f
	}
	return Number{Value: total}
}

func callAverageIf(ctx Context, args []Value) Value {
	rng := asFlat(args[0])
	crit := parseCriterion(args[1])
	avgRange := rng
	if len(args) == 3 {
		avgRange = asFlat(args[2])
	}
	n := len(rng)
	if len(avgRange) < n {
		n = len(avgRange)
	}
	total, count := 0.0, 0
	for i := 0; i < n; i++ {
		if !crit.matches(rng[i]) {
			continue
		}
		f, _ := ToNumber(avgRange[i])
		total += f
		count++
	}
	if count == 0 {
		return NewError(ErrDiv0)
	}
	return Number{Value: total / float64(count)}
}

type criteriaPair struct {
	rng  []Value
	crit criterion
}

// ifsRows evaluates every pair for row i, returning false the moment any
// pair's range doesn't extend to i (an out-of-bounds index in any
// criterion range disqualifies that row, per spec.md §4.3) or fails to
// match.
func ifsRows(pairs []criteriaPair, targetLen int) []bool {
	out := make([]bool, targetLen)
	for i := 0; i < targetLen; i++ {
		ok := true
		for _, p := range pairs {
			if i >= len(p.rng) || !p.crit.matches(p.rng[i]) {
				ok = false
				break
			}
		}
		out[i] = ok
	}
	return out
}

func parsePairs(args []Value) ([]criteriaPair, int, Value) {
	pairs := make([]criteriaPair, 0, len(args)/2)
	maxLen := 0
	for i := 0; i+1 < len(args); i += 2 {
		rng := asFlat(args[i])
		if len(rng) > maxLen {
			maxLen = len(rng)
		}
		pairs = append(pairs, criteriaPair{rng: rng, crit: parseCriterion(args[i+1])})
	}
	if len(args)%2 != 0 {
		return nil, 0, NewError(ErrValue)
	}
	return pairs, maxLen, nil
}

func callCountIfs(ctx Context, args []Value) Value {
	pairs, maxLen, errv := parsePairs(args)
	if errv != nil {
		return errv
	}
	matches := ifsRows(pairs, maxLen)
	n := 0
	for _, m := range matches {
		if m {
			n++
		}
	}
	return Number{Value: float64(n)}
}

func callSumIfs(ctx Context, args []Value) Value {
	target := asFlat(args[0])
	pairs, maxLen, errv := parsePairs(args[1:])
	if errv != nil {
		return errv
	}
	if len(target) > maxLen {
		maxLen = len(target)
	}
	matches := ifsRows(pairs, maxLen)
	total := 0.0
	for i, m := range matches {
		if !m || i >= len(target) {
			continue
		}
		f, _ := ToNumber(target[i])
		total += f
	}
	return Number{Value: total}
}

func callAverageIfs(ctx Context, args []Value) Value {
	target := asFlat(args[0])
	pairs, maxLen, errv := parsePairs(args[1:])
	if errv != nil {
		return errv
	}
	if len(target) > maxLen {
		maxLen = len(target)
	}
	matches := ifsRows(pairs, maxLen)
	total, count := 0.0, 0
	for i, m := range matches {
		if !m || i >= len(target) {
			continue
		}
		f, _ := ToNumber(target[i])
		total += f
		count++
	}
	if count == 0 {
		return NewError(ErrDiv0)
	}
	return Number{Value: total / float64(count)}
}

func callMedian(ctx Context, args []Value) Value {
	nums := collectNumbers(args)
	if len(nums) == 0 {
		return NewError(ErrNum)
	}
	sort.Float64s(nums)
	mid := len(nums) / 2
	if len(nums)%2 == 1 {
		return Number{Value: nums[mid]}
	}
	return Number{Value: (nums[mid-1] + nums[mid]) / 2}
}

// callMode implements spec.md §9's documented deterministic tie-break: of
// the numbers with frequency > 1 (strictly greater, never ≥), the
// smallest value wins. This differs from the source's hash-iteration-order
// pick but satisfies the same contract (#N/A iff nothing repeats).
func callMode(ctx Context, args []Value) Value {
	nums := collectNumbers(args)
	if len(nums) == 0 {
		return NewError(ErrNA)
	}
	freq := make(map[float64]int)
	for _, n := range nums {
		freq[n]++
	}
	best, found := 0.0, false
	for n, c := range freq {
		if c <= 1 {
			continue
		}
		if !found || n < best {
			best, found = n, true
		}
	}
	if !found {
		return NewError(ErrNA)
	}
	return Number{Value: best}
}

func callLarge(ctx Context, args []Value) Value {
	return nthOrderStat(args, true)
}

func callSmall(ctx Context, args []Value) Value {
	return nthOrderStat(args, false)
}

func nthOrderStat(args []Value, largest bool) Value {
	nums := collectNumbers([]Value{args[0]})
	kf, ok := ToNumber(args[1])
	if !ok || kf != float64(int(kf)) {
		return NewError(ErrNum)
	}
	k := int(kf)
	if k < 1 || k > len(nums) {
		return NewError(ErrNum)
	}
	sort.Float64s(nums)
	if largest {
		return Number{Value: nums[len(nums)-k]}
	}
	return Number{Value: nums[k-1]}
}

func callRank(ctx Context, args []Value) Value {
	numF, ok := ToNumber(args[0])
	if !ok {
		return NewError(ErrValue)
	}
	nums := collectNumbers([]Value{args[1]})
	present := false
	for _, n := range nums {
		if n == numF {
			present = true
			break
		}
	}
	if !present {
		return NewError(ErrNA)
	}
	ascending := false
	if len(args) == 3 {
		of, ok := ToNumber(args[2])
		ascending = ok && of != 0
	}
	rank := 1
	for _, n := range nums {
		if ascending {
			if n < numF {
				rank++
			}
		} else {
			if n > numF {
				rank++
			}
		}
	}
	return Number{Value: float64(rank)}
}
