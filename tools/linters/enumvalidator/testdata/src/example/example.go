package example

type PullRequestState string

const (
	PullRequestStateOpen   PullRequestState = "open"
	PullRequestStateMerged PullRequestState = "merged"
)

type AnalysisState string

const (
	AnalysisStateAnalyzed AnalysisState = "analyzed"
)

// Label has no constants, so it is free text.
type Label string

type PullRequest struct {
	State PullRequestState
	Label Label
	Title string
}

type DecisionStatus struct {
	State AnalysisState
}

func bad() {
	pr := &PullRequest{}
	pr.State = "declined" // want "enum field State assigned string literal"

	s := DecisionStatus{State: "pending"} // want "enum field State assigned string literal"
	_ = s
}

func good() {
	pr := &PullRequest{State: PullRequestStateMerged}
	pr.State = PullRequestStateOpen // OK: using constant
	pr.Label = "backend"            // OK: not an enum
	pr.Title = "AUTH-101"

	s := &DecisionStatus{}
	s.State = AnalysisStateAnalyzed
}

func alsoGood() {
	// OK: variable, not literal
	state := PullRequestStateMerged
	pr := PullRequest{State: state}
	_ = map[string]PullRequestState{"x": PullRequestStateOpen}
	_ = pr
}
