package model

// ArticleSummary is one recent published blog post, condensed for prompts.
type ArticleSummary struct {
	Title    string
	Author   string
	Category string
}

// ActivitySummary is one recent published activity, condensed for prompts.
type ActivitySummary struct {
	Title string
	Type  string
	Date  string // already formatted dd/mm/yyyy
}

// ContextSnapshot is the transient per-request bundle of factual data points
// injected into free-form generation prompts. Never persisted.
type ContextSnapshot struct {
	ActiveMembers int
	Articles      []ArticleSummary
	Activities    []ActivitySummary
}

// Empty reports whether the snapshot carries no facts at all.
func (c ContextSnapshot) Empty() bool {
	return c.ActiveMembers == 0 && len(c.Articles) == 0 && len(c.Activities) == 0
}
