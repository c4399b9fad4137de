package schema

import (
	"fmt"
	"strings"
)

// SearchMode selects the modality weighting used for hybrid retrieval.
type SearchMode string

const (
	ModeBalanced SearchMode = "balanced"
	ModeSemantic SearchMode = "semantic"
	ModeKeyword  SearchMode = "keyword"
	ModeExact    SearchMode = "exact"
)

// Normalize maps arbitrary input to a known mode, falling back to balanced.
func (m SearchMode) Normalize() SearchMode {
	switch SearchMode(strings.ToLower(string(m))) {
	case ModeSemantic:
		return ModeSemantic
	case ModeKeyword:
		return ModeKeyword
	case ModeExact:
		return ModeExact
	default:
		return ModeBalanced
	}
}

// SparseVector is a term-weight vector in dense vocabulary index space.
// Indices are sorted ascending and parallel to Values; an absent index
// means weight zero.
type SparseVector struct {
	Indices []uint32  `json:"indices"`
	Values  []float32 `json:"values"`
}

// IsEmpty reports whether the vector carries no terms.
func (v SparseVector) IsEmpty() bool { return len(v.Indices) == 0 }

// POI is one retrieved point of interest.
type POI struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	City         string   `json:"city,omitempty"`
	State        string   `json:"state,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	Rating       float64  `json:"rating,omitempty"`
	ReviewsCount int      `json:"reviews_count,omitempty"`
	// PriceLevel is 1 (free/cheap) through 4 (luxury); 0 when unknown.
	PriceLevel   int     `json:"price_level,omitempty"`
	Category     string  `json:"category,omitempty"`
	Summary      string  `json:"summary,omitempty"`
	Address      string  `json:"address,omitempty"`
	Score        float64 `json:"score"`
	ImageURL     string  `json:"image_url,omitempty"`
	OpeningHours string  `json:"opening_hours,omitempty"`
}

// DocumentText renders the POI the way corpus documents were indexed,
// so sparse and rerank scoring see the same surface form.
func (p POI) DocumentText() string {
	parts := make([]string, 0, 4)
	if p.Name != "" {
		parts = append(parts, p.Name+".")
	}
	if p.City != "" || p.State != "" {
		parts = append(parts, strings.TrimSuffix(strings.TrimSpace(p.City+", "+p.State), ",")+".")
	}
	if p.Category != "" {
		parts = append(parts, p.Category+".")
	}
	if p.Summary != "" {
		parts = append(parts, p.Summary)
	}
	return strings.Join(parts, " ")
}

// PriceTag renders the price level as $ symbols for display.
func (p POI) PriceTag() string {
	if p.PriceLevel <= 0 {
		return ""
	}
	return strings.Repeat("$", p.PriceLevel)
}

// RetrievalQuery describes one retrieval attempt. A refined query is a
// new value with different Text; the rest stays fixed within a turn.
type RetrievalQuery struct {
	Text        string     `json:"text"`
	Destination string     `json:"destination,omitempty"`
	Mode        SearchMode `json:"mode,omitempty"`
	TopK        int        `json:"top_k,omitempty"`
	UseRerank   bool       `json:"use_rerank,omitempty"`
}

func (q RetrievalQuery) String() string {
	return fmt.Sprintf("query=%q destination=%q mode=%s topK=%d rerank=%t",
		q.Text, q.Destination, q.Mode.Normalize(), q.TopK, q.UseRerank)
}

// UserFeatures carries the trip parameters collected from the user.
type UserFeatures struct {
	Destination     string   `json:"destination,omitempty"`
	Interests       []string `json:"interests,omitempty"`
	TravelDays      int      `json:"travel_days,omitempty"`
	PoisPerDay      int      `json:"pois_per_day,omitempty"`
	MealBudget      float64  `json:"meal_budget,omitempty"`
	PricePreference string   `json:"price_preference,omitempty"`
	Transportation  string   `json:"transportation,omitempty"`
	MustVisit       []string `json:"must_visit,omitempty"`
	DietaryOptions  []string `json:"dietary_options,omitempty"`
	StartDate       string   `json:"start_date,omitempty"`
	EndDate         string   `json:"end_date,omitempty"`
	Travelers       int      `json:"travelers,omitempty"`
	HasChildren     bool     `json:"has_children,omitempty"`
	HasElderly      bool     `json:"has_elderly,omitempty"`
}

// Describe renders the features as prompt-ready requirement lines.
func (f UserFeatures) Describe() string {
	var b strings.Builder
	if f.Destination != "" {
		fmt.Fprintf(&b, "Destination: %s\n", f.Destination)
	}
	if len(f.Interests) > 0 {
		fmt.Fprintf(&b, "Interests: %s\n", strings.Join(f.Interests, ", "))
	}
	if f.TravelDays > 0 {
		fmt.Fprintf(&b, "Travel days: %d\n", f.TravelDays)
	}
	if f.PoisPerDay > 0 {
		fmt.Fprintf(&b, "Attractions per day: %d\n", f.PoisPerDay)
	}
	if f.MealBudget > 0 {
		fmt.Fprintf(&b, "Meal budget: %.0f per person\n", f.MealBudget)
	}
	if f.PricePreference != "" {
		fmt.Fprintf(&b, "Price preference: %s\n", f.PricePreference)
	}
	if f.Transportation != "" {
		fmt.Fprintf(&b, "Transportation: %s\n", f.Transportation)
	}
	if len(f.MustVisit) > 0 {
		fmt.Fprintf(&b, "Must visit: %s\n", strings.Join(f.MustVisit, ", "))
	}
	if len(f.DietaryOptions) > 0 {
		fmt.Fprintf(&b, "Dietary needs: %s\n", strings.Join(f.DietaryOptions, ", "))
	}
	if f.Travelers > 0 {
		fmt.Fprintf(&b, "Travelers: %d\n", f.Travelers)
	}
	if f.HasChildren {
		b.WriteString("Traveling with children\n")
	}
	if f.HasElderly {
		b.WriteString("Traveling with elderly\n")
	}
	return b.String()
}
