package classify

// Category is the closed set of activity labels. Every classification
// returns exactly one of these.
type Category string

const (
	Development   Category = "Development"
	Productivity  Category = "Productivity"
	Research      Category = "Research"
	Communication Category = "Communication"
	Browsing      Category = "Browsing"
	Social        Category = "Social"
	Entertainment Category = "Entertainment"
	Other         Category = "Other"
)

// All lists every category in fixed priority order. Keyword-density ties are
// broken by this order.
func All() []Category {
	return []Category{
		Development,
		Productivity,
		Research,
		Communication,
		Browsing,
		Social,
		Entertainment,
		Other,
	}
}

// String implements fmt.Stringer.
func (c Category) String() string { return string(c) }

// Valid reports whether c is a member of the closed set.
func (c Category) Valid() bool {
	for _, known := range All() {
		if c == known {
			return true
		}
	}
	return false
}

// Icon returns the symbol hint shown next to entries of this category.
func (c Category) Icon() string {
	switch c {
	case Development:
		return "hammer"
	case Productivity:
		return "checklist"
	case Research:
		return "book"
	case Communication:
		return "bubble.left"
	case Browsing:
		return "globe"
	case Social:
		return "person.2"
	case Entertainment:
		return "play.tv"
	default:
		return "app"
	}
}

// Weight returns the fixed productivity weight for this category, used by
// the duration-weighted productivity score. Development is highest,
// entertainment lowest.
func (c Category) Weight() float64 {
	switch c {
	case Development:
		return 0.95
	case Productivity:
		return 0.85
	case Research:
		return 0.75
	case Communication:
		return 0.60
	case Other:
		return 0.50
	case Browsing:
		return 0.40
	case Social:
		return 0.25
	case Entertainment:
		return 0.10
	default:
		return 0.50
	}
}

// ParseCategory maps a stored label back to its Category, defaulting to
// Other for anything unknown.
func ParseCategory(s string) Category {
	c := Category(s)
	if c.Valid() {
		return c
	}
	return Other
}
