package domain

import "time"

// Category is the closed set of knowledge-base categories.
type Category string

const (
	CategoryAIML         Category = "AI & Machine Learning"
	CategoryMarketing    Category = "Marketing & Growth"
	CategoryAdTech       Category = "Ad Tech & Media"
	CategoryProduct      Category = "Product & Strategy"
	CategoryEngineering  Category = "Engineering & Development"
	CategoryData         Category = "Data & Analytics"
	CategoryCareer       Category = "Career & Professional Development"
	CategoryProductivity Category = "Productivity & Systems"
	CategoryDesign       Category = "Design & UX"
	CategoryBusiness     Category = "Business & Finance"
	CategoryMisc         Category = "Miscellaneous"
)

// Categories lists all valid category values.
func Categories() []Category {
	return []Category{
		CategoryAIML, CategoryMarketing, CategoryAdTech, CategoryProduct,
		CategoryEngineering, CategoryData, CategoryCareer, CategoryProductivity,
		CategoryDesign, CategoryBusiness, CategoryMisc,
	}
}

// Valid reports whether the value belongs to the closed category set.
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// Priority ranks how actionable an entry is.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Valid reports whether the value belongs to the closed priority set.
func (p Priority) Valid() bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

// Status tracks where an entry sits in the review workflow. Entries are
// always created as StatusNew; the other values exist only for entries
// already in the store.
type Status string

const (
	StatusNew      Status = "New"
	StatusReviewed Status = "Reviewed"
	StatusApplied  Status = "Applied"
	StatusArchived Status = "Archived"
)

// KnowledgeEntry mirrors the knowledge-base database properties.
type KnowledgeEntry struct {
	Title       string
	Category    Category
	ContentType ContentType
	Source      string // normalized before persistence
	Author      string
	DateAdded   time.Time
	Status      Status
	Priority    Priority
	Tags        []string
	Summary     string
}

// KeyLearning is one structured learning block in the page body.
type KeyLearning struct {
	Title           string
	What            string
	WhyItMatters    string
	HowToApply      []string
	ResourcesNeeded string
	EstimatedTime   string
}

// KnowledgeDocument combines the database entry with the four ordered
// body sections written to the store.
type KnowledgeDocument struct {
	Entry          KnowledgeEntry
	SummarySection string
	KeyPoints      []string
	KeyLearnings   []KeyLearning
	DetailedNotes  string
}

// EntrySummary is the condensed view of a stored entry used by digests.
type EntrySummary struct {
	Title    string
	URL      string
	Category string
	Tags     []string
}
