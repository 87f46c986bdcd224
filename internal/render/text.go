package render

import (
	"fmt"
	"strings"

	"personagen/internal/persona"

	"github.com/jedib0t/go-pretty/v6/table"
)

const (
	barCells    = 10
	sliderCells = 21
)

// motivationBar draws a 0-100 score as a 10-cell bar
func motivationBar(value int) string {
	filled := (value + 5) / 10
	if filled > barCells {
		filled = barCells
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", barCells-filled)
}

// dimensionSlider draws a 0-100 score as a thumb on a fixed-width track
func dimensionSlider(value int) string {
	position := (value*(sliderCells-1) + 50) / 100
	return strings.Repeat("░", position) + "█" + strings.Repeat("░", sliderCells-1-position)
}

func sliderPoles(name string) (string, string) {
	left, right, found := strings.Cut(name, "-")
	if !found {
		return name, ""
	}
	return left, right
}

func newSection(title string) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetTitle(title)
	return t
}

// renderText produces the human-readable plain rendering. the field
// order matches the json output.
func renderText(p persona.Persona) ([]byte, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n%s\n\n", strings.ToUpper(p.Name), strings.Repeat("=", 72))

	basics := newSection("Basic Information")
	basics.AppendRows([]table.Row{
		{"Age Range", p.AgeRange},
		{"Occupation", p.OccupationCategory},
		{"Status", p.Status},
		{"Location Type", p.LocationType},
		{"Tier", p.Tier},
		{"Archetype", p.Archetype},
	})
	b.WriteString(basics.Render())
	b.WriteString("\n\n")

	if len(p.Traits) > 0 {
		b.WriteString("PERSONALITY TRAITS:\n  ")
		for _, trait := range p.Traits {
			fmt.Fprintf(&b, "[%s]  ", trait)
		}
		b.WriteString("\n\n")
	}

	motivations := newSection("Motivations")
	for _, score := range p.Motivations {
		motivations.AppendRow(table.Row{score.Name, motivationBar(score.Value), fmt.Sprintf("%d/100", score.Value)})
	}
	b.WriteString(motivations.Render())
	b.WriteString("\n\n")

	b.WriteString("PERSONALITY DIMENSIONS:\n")
	for _, score := range p.Dimensions {
		left, right := sliderPoles(score.Name)
		fmt.Fprintf(
			&b, "  %-12s %s %s\n",
			strings.ToUpper(left), dimensionSlider(score.Value), strings.ToUpper(right),
		)
	}
	b.WriteString("\n")

	writeList(&b, "BEHAVIOR & HABITS", p.Habits)
	writeList(&b, "FRUSTRATIONS", p.Frustrations)
	writeList(&b, "GOALS & NEEDS", p.GoalsNeeds)

	if p.Quote != "" {
		fmt.Fprintf(&b, "REPRESENTATIVE QUOTE:\n  %q\n\n", p.Quote)
	}

	if len(p.Interests) > 0 {
		b.WriteString("COMMUNITY INTERESTS:\n  ")
		tags := make([]string, len(p.Interests))
		for i, interest := range p.Interests {
			tags[i] = "r/" + interest
		}
		b.WriteString(strings.Join(tags, ", "))
		b.WriteString("\n\n")
	}

	writeList(&b, "SOCIAL LINKS", p.SocialLinks)

	if len(p.Warnings) > 0 {
		fmt.Fprintf(&b, "%s\nRELIABILITY NOTES\n%s\n", strings.Repeat("-", 72), strings.Repeat("-", 72))
		for _, w := range p.Warnings {
			fmt.Fprintf(&b, "  - %s\n", w)
		}
	}

	return []byte(b.String()), nil
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "  - %s\n", item)
	}
	b.WriteString("\n")
}
