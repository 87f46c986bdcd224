package persona

// the categorical fields are drawn from closed vocabularies. anything
// the generator returns that cannot be matched against these falls back
// to FallbackCategory.

const FallbackCategory = "Unknown"

// the documented default for absent or unparseable numeric scores
const DefaultScore = 50

var AgeRanges = []string{"18-25", "25-35", "35-45", "45+"}

var OccupationCategories = []string{
	"Technology", "Creative", "Healthcare", "Business",
	"Education", "Trades", "Science", "Service",
}

var Statuses = []string{"Student", "Professional", "Freelancer", "Retired"}

var LocationTypes = []string{"Urban", "Suburban", "Rural"}

var Tiers = []string{"Early Adopter", "Mainstream", "Late Adopter"}

var Archetypes = []string{
	"The Creator", "The Explorer", "The Caregiver", "The Rebel",
	"The Sage", "The Innocent", "The Hero", "The Magician",
	"The Lover", "The Jester", "The Everyman", "The Ruler",
}

var MotivationKeys = []string{
	"Convenience", "Wellness", "Speed",
	"Preferences", "Comfort", "Belonging",
}

var DimensionKeys = []string{
	"Introvert-Extrovert", "Intuition-Sensing",
	"Feeling-Thinking", "Perceiving-Judging",
}
