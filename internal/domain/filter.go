package domain

// DateRange restricts reviews to a window of whole days before now.
type DateRange string

const (
	DateRangeAll   DateRange = "all"
	DateRangeToday DateRange = "today"
	DateRangeWeek  DateRange = "week"
	DateRangeMonth DateRange = "month"
	DateRangeYear  DateRange = "year"
)

// CutoffDays returns the window size in whole days and whether the range
// constrains at all. "today" means created within the current day.
func (d DateRange) CutoffDays() (int, bool) {
	switch d {
	case DateRangeToday:
		return 1, true
	case DateRangeWeek:
		return 7, true
	case DateRangeMonth:
		return 30, true
	case DateRangeYear:
		return 365, true
	default:
		return 0, false
	}
}

// SortKey orders a review list. Sorting is independent of ailment scoping;
// the two are separate parameters and never influence each other.
type SortKey string

const (
	SortNewest       SortKey = "newest"
	SortOldest       SortKey = "oldest"
	SortHighestRated SortKey = "highest_rated"
	SortLowestRated  SortKey = "lowest_rated"
)

// Valid reports whether the sort key is one of the supported values.
func (s SortKey) Valid() bool {
	switch s {
	case SortNewest, SortOldest, SortHighestRated, SortLowestRated:
		return true
	}
	return false
}

// FilterSpec describes the client's filter selections for a review list.
// Empty slices and zero values mean "no constraint" on that dimension; all
// non-empty dimensions combine with logical AND.
type FilterSpec struct {
	// Ratings keeps reviews whose star count is in the set.
	Ratings []int

	// Potencies keeps reviews whose potency or dosage label is in the set.
	Potencies []string

	// Forms keeps reviews whose dosage label is in the set. The directory
	// stores form and dosage schedule in the single dosage column, so both
	// filter dimensions match against it.
	Forms []string

	// DateRange keeps reviews created within the window.
	DateRange DateRange

	// ReviewerNameQuery keeps reviews whose reviewer display name contains
	// the query, case-insensitively. Reviews without a profile name match
	// against "anonymous".
	ReviewerNameQuery string

	// AilmentReference scopes the list to one ailment. It may be a canonical
	// id, a slug, or a free-text name; an unresolvable reference degrades to
	// no constraint.
	AilmentReference string

	// FreeTextQuery is a free-text search. When it resolves to an ailment it
	// acts as an ailment scope instead of a text match, so ailment-scoped
	// reviews are not dropped just because their notes omit the ailment name.
	FreeTextQuery string
}

// IsZero reports whether the filter constrains nothing.
func (f *FilterSpec) IsZero() bool {
	_, dated := f.DateRange.CutoffDays()
	return len(f.Ratings) == 0 &&
		len(f.Potencies) == 0 &&
		len(f.Forms) == 0 &&
		!dated &&
		f.ReviewerNameQuery == "" &&
		f.AilmentReference == "" &&
		f.FreeTextQuery == ""
}
