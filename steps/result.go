package steps

import "fmt"

var resultNames map[Result]string
var namedResults map[string]Result

func init() {
	resultNames = map[Result]string{
		Unset:       "UNSET",
		OK:          "OK",
		CanContinue: "CAN_CONTINUE",
		Error:       "ERROR",
	}

	namedResults = make(map[string]Result, len(resultNames))
	for k, v := range resultNames {
		namedResults[v] = k
	}
}

// ResultFromString parses a step result from a string
func ResultFromString(name string) (Result, error) {
	if v, ok := namedResults[name]; ok {
		return v, nil
	}
	return Unset, fmt.Errorf("invalid step result %q", name)
}

// Result is the outcome severity of a step execution.
// The values are ordered, aggregation takes the worst observed outcome.
type Result uint8

const (
	// Unset indicates the step hasn't executed yet
	Unset Result = iota
	// OK indicates the step completed successfully
	OK
	// CanContinue indicates a partial failure occurred but the run was allowed to continue
	CanContinue
	// Error indicates the step failed
	Error
)

func (r Result) String() string {
	return resultNames[r]
}

// MarshalText renders this result to text
func (r Result) MarshalText() (text []byte, err error) {
	return []byte(resultNames[r]), nil
}

// UnmarshalText parses this result from text
func (r *Result) UnmarshalText(text []byte) error {
	res, err := ResultFromString(string(text))
	if err != nil {
		return err
	}
	*r = res
	return nil
}

// Aggregate reduces a sequence of results to the worst observed outcome.
// An empty sequence aggregates to Unset.
//
// Callers mapping an aggregate to a process exit status must treat Error
// as non-zero, CanContinue is a successful exit with warnings recorded.
func Aggregate(results []Result) Result {
	max := Unset
	for _, r := range results {
		if r > max {
			max = r
		}
	}
	return max
}

// Contains reports whether the given result occurs in the sequence
func Contains(results []Result, result Result) bool {
	for _, r := range results {
		if r == result {
			return true
		}
	}
	return false
}

// AnyFailed reports whether any of the results is in the failing set.
// Without an explicit set it considers Error and CanContinue as failing.
func AnyFailed(results []Result, failing ...Result) bool {
	if len(failing) == 0 {
		failing = []Result{Error, CanContinue}
	}
	for _, r := range results {
		for _, f := range failing {
			if r == f {
				return true
			}
		}
	}
	return false
}

// NumSteps counts all steps in the given slice, including the composites themselves
func NumSteps(steps []Step) int {
	var n int
	for _, s := range steps {
		n += s.Len()
	}
	return n
}
