package domain

import "time"

// MaxTextRunes bounds the optional free text of a post.
const MaxTextRunes = 100

// Mood is one entry of the closed mood vocabulary.
type Mood struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Color       string `json:"color"`
	Background  string `json:"bg"`
	Description string `json:"description"`
}

// Reaction is one entry of the closed reaction vocabulary.
type Reaction struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Emoji string `json:"emoji"`
}

// Moods lists the selectable moods in display order.
var Moods = []Mood{
	{ID: "full_tension_da", Label: "Full tension da", Color: "#DC2626", Background: "#FEE2E2", Description: "stressed/anxious"},
	{ID: "chill_panren", Label: "Chill panren", Color: "#16A34A", Background: "#DCFCE7", Description: "relaxing/happy"},
	{ID: "family_drama_running", Label: "Family drama running", Color: "#EA580C", Background: "#FFF7ED", Description: "family issues"},
	{ID: "crush_a_pathen", Label: "Crush-a pathen", Color: "#EC4899", Background: "#FFE4F0", Description: "romantic excitement"},
	{ID: "canteen_la_queue", Label: "Canteen-la queue", Color: "#EAB308", Background: "#FFFBEB", Description: "waiting/bored"},
	{ID: "bus_miss_aachu", Label: "Bus miss aachu", Color: "#991B1B", Background: "#FEECEB", Description: "frustrated/late"},
	{ID: "professor_vera_level", Label: "Professor vera level", Color: "#7C3AED", Background: "#F3E8FF", Description: "academic stress"},
	{ID: "semma_mood", Label: "Semma mood", Color: "#15803D", Background: "#ECFDF5", Description: "excellent mood"},
	{ID: "mokka_feeling", Label: "Mokka feeling", Color: "#6B7280", Background: "#F3F4F6", Description: "disappointed/upset"},
	{ID: "sleepy_da", Label: "Sleepy da", Color: "#2563EB", Background: "#EAF2FF", Description: "tired"},
}

// Reactions lists the reaction kinds in display order.
var Reactions = []Reaction{
	{ID: "semma", Label: "Semma!", Emoji: "🔥"},
	{ID: "same_pinch", Label: "Same pinch!", Emoji: "🤝"},
	{ID: "mokka_da", Label: "Mokka da", Emoji: "😒"},
	{ID: "tension_vendam_da", Label: "Tension vendam da", Emoji: "🤗"},
	{ID: "gethu", Label: "Gethu!", Emoji: "😎"},
	{ID: "enna_pa_idhu", Label: "Enna pa idhu?", Emoji: "🤔"},
}

// DailyChallenges are rotated one per calendar day.
var DailyChallenges = []string{
	"Describe your morning in Tamil slang",
	"What's your canteen mood today?",
	"How are you handling today's lectures?",
	"Share your bus/auto experience",
	"What's your weekend plan da?",
	"Describe your hostel life in one mood",
	"How's your project submission going?",
	"What's your go-to stress buster?",
	"Share your favorite campus spot",
	"How do you feel about exams coming up?",
	"What's your current crush status?",
	"Describe your family drama in one word",
	"How's the weather affecting your mood?",
	"What's your favorite college memory?",
	"How do you feel about group studies?",
	"Describe your last-minute assignment panic",
	"What's your canteen order today?",
	"How do you feel about online classes?",
	"Share your funniest campus moment",
	"What's your go-to relaxation method?",
	"What's your favorite snack during study sessions?",
}

var (
	moodIndex     = indexOf(len(Moods), func(i int) string { return Moods[i].ID })
	reactionIndex = indexOf(len(Reactions), func(i int) string { return Reactions[i].ID })
)

func indexOf(n int, id func(int) string) map[string]int {
	m := make(map[string]int, n)
	for i := 0; i < n; i++ {
		m[id(i)] = i
	}
	return m
}

// IsMood reports whether id names a known mood.
func IsMood(id string) bool {
	_, ok := moodIndex[id]
	return ok
}

// IsReaction reports whether id names a known reaction kind.
func IsReaction(id string) bool {
	_, ok := reactionIndex[id]
	return ok
}

// Challenge is the prompt of the day together with its stable index.
type Challenge struct {
	Index  int    `json:"index"`
	Prompt string `json:"prompt"`
}

// ChallengeFor picks the challenge for the calendar day of t. The day of
// year is taken in t's location.
func ChallengeFor(t time.Time) Challenge {
	i := t.YearDay() % len(DailyChallenges)
	return Challenge{Index: i, Prompt: DailyChallenges[i]}
}

// IsChallengeIndex reports whether i refers to an existing challenge prompt.
func IsChallengeIndex(i int) bool {
	return i >= 0 && i < len(DailyChallenges)
}
