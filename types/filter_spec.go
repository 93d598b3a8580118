package types

// FilterSpec narrows the fetched pull requests of a schedule.
// Every field is optional; an empty field lets everything through.
type FilterSpec struct {
	Labels         []string `json:"labels,omitempty"`
	TitleKeywords  []string `json:"titleKeywords,omitempty"`
	ExcludeAuthors []string `json:"excludeAuthors,omitempty"`
	Repositories   []string `json:"repositories,omitempty"`
	MinAgeDays     *int     `json:"minAgeDays,omitempty"`
	MaxAgeDays     *int     `json:"maxAgeDays,omitempty"`
}

// IsEmpty reports whether no filter criterion is configured.
func (f FilterSpec) IsEmpty() bool {
	return len(f.Labels) == 0 && len(f.TitleKeywords) == 0 && len(f.ExcludeAuthors) == 0 &&
		len(f.Repositories) == 0 && f.MinAgeDays == nil && f.MaxAgeDays == nil
}
