package ingest

import (
	"regexp"
	"strconv"
)

// Grammar classifies one raw log line. Extract returns the parsed record
// and true when the line matches the grammar in full; any line that does
// not is rejected whole (there is no partial-record recovery).
type Grammar interface {
	Extract(line string) (Record, bool)
}

// iterPattern matches the harness's "Iter:" progress lines. Leading
// whitespace and an arbitrary prefix before the Iter token are skipped;
// the match is anchored at the start but need not consume the whole line.
// Submatches, in order: Step, Episode, Decision, Eps, lr, Ret, Last Crash,
// t, SF, Seen, Reward.
var iterPattern = regexp.MustCompile(
	`^\s*.*?-\s+Iter:\s+(\d+)\s*/\s*(\d+)\s+` +
		`([A-Z][0-9]-[A-Z][0-9])\s+-\s+` +
		`(?:Rand|Pred)\s+Eps:\s+([+-]?\d+(?:\.\d+)?)` +
		`\s+lr:\s+([+-]?\d+(?:\.\d+)?)` +
		`\s+Ret\s*=\s*([+-]?\d+(?:\.\d+)?)` +
		`\s+Last\s+Crash\s*=\s*(\d+)` +
		`\s+t=([+-]?\d+(?:\.\d+)?)` +
		`\s+SF\s*=\s*([+-]?\d+(?:\.\d+)?)` +
		`\s+Seen=\s*([01])` +
		`\s+Reward:\s*([+-]?\d+(?:\.\d+)?)`)

// IterGrammar is the fixed production grammar of the training harness.
// It is the default Grammar; alternative producer formats are separate
// implementations, not fallbacks chained behind this one.
type IterGrammar struct {
	re *regexp.Regexp
}

// NewIterGrammar returns the grammar for "Iter:" progress lines.
func NewIterGrammar() IterGrammar {
	return IterGrammar{re: iterPattern}
}

// Extract parses one line. It is pure and total: malformed input yields
// (zero Record, false), never an error or panic.
func (g IterGrammar) Extract(line string) (Record, bool) {
	m := g.re.FindStringSubmatch(line)
	if m == nil {
		return Record{}, false
	}

	step, err1 := strconv.ParseInt(m[1], 10, 64)
	eps, err2 := strconv.ParseFloat(m[4], 64)
	lr, err3 := strconv.ParseFloat(m[5], 64)
	ret, err4 := strconv.ParseFloat(m[6], 64)
	lastCrash, err5 := strconv.ParseInt(m[7], 10, 64)
	stepTime, err6 := strconv.ParseFloat(m[8], 64)
	sf, err7 := strconv.ParseFloat(m[9], 64)
	reward, err8 := strconv.ParseFloat(m[11], 64)
	for _, err := range []error{err1, err2, err3, err4, err5, err6, err7, err8} {
		// the pattern guarantees numeric syntax, but overflow still rejects
		// the whole line rather than producing a partial record
		if err != nil {
			return Record{}, false
		}
	}

	return Record{
		Step:         step,
		Episode:      m[2],
		Decision:     m[3],
		Eps:          eps,
		LearningRate: lr,
		Return:       ret,
		LastCrash:    lastCrash,
		StepTime:     stepTime,
		SF:           sf,
		Found:        m[10] == "1",
		Reward:       reward,
	}, true
}
