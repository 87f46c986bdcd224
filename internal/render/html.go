package render

import (
	"bytes"
	"html/template"

	"personagen/internal/persona"
)

// the visual encodings are direct linear mappings from the 0-100 score
// range: a motivation bar's width percent and a dimension slider's
// thumb position percent both equal the score itself.
var htmlFuncs = template.FuncMap{
	"poleLeft": func(name string) string {
		left, _ := sliderPoles(name)
		return left
	},
	"poleRight": func(name string) string {
		_, right := sliderPoles(name)
		return right
	},
}

var htmlTemplate = template.Must(template.New("persona").Funcs(htmlFuncs).Parse(`<!DOCTYPE html>
<html>
<head>
<title>{{.Name}}</title>
<style>
body { font-family: Arial, sans-serif; max-width: 1000px; margin: 0 auto; padding: 20px; background: #f5f5f5; }
.persona { background: white; border-radius: 10px; padding: 30px; box-shadow: 0 2px 10px rgba(0,0,0,0.1); }
.persona h1 { text-align: center; border-bottom: 2px solid #333; padding-bottom: 16px; }
.section { margin-bottom: 28px; }
.section h2 { font-size: 1.2em; color: #444; border-bottom: 1px solid #ddd; padding-bottom: 4px; }
.trait { display: inline-block; background: #e8f4f8; border: 1px solid #bee5eb; border-radius: 5px; padding: 4px 10px; margin: 4px; font-weight: bold; color: #0c5460; }
.bar-row { display: flex; align-items: center; margin: 8px 0; }
.bar-label { width: 130px; font-weight: bold; }
.bar-track { flex: 1; height: 18px; background: #e0e0e0; border-radius: 9px; overflow: hidden; margin: 0 10px; }
.bar-fill { height: 100%; background: linear-gradient(90deg, #ff6b6b, #ffa500, #32cd32); }
.slider-row { display: flex; align-items: center; margin: 14px 0; }
.slider-pole { width: 110px; font-size: 0.85em; font-weight: bold; }
.slider-track { flex: 1; height: 8px; background: #e0e0e0; border-radius: 4px; position: relative; margin: 0 10px; }
.slider-thumb { position: absolute; top: -6px; margin-left: -10px; width: 20px; height: 20px; background: #007bff; border-radius: 50%; border: 2px solid white; }
.quote { background: #f8f9fa; border-left: 4px solid #007bff; padding: 16px; font-style: italic; }
.tag { display: inline-block; background: #e9ecef; padding: 4px 10px; border-radius: 14px; margin: 3px; font-size: 0.9em; color: #495057; }
.warnings { color: #856404; background: #fff3cd; border: 1px solid #ffeeba; border-radius: 5px; padding: 12px; font-size: 0.9em; }
ul { padding-left: 20px; }
</style>
</head>
<body>
<div class="persona">
<h1>{{.Name}}</h1>

<div class="section">
<h2>Basic Information</h2>
<p><strong>Age Range:</strong> {{.AgeRange}}</p>
<p><strong>Occupation:</strong> {{.OccupationCategory}}</p>
<p><strong>Status:</strong> {{.Status}}</p>
<p><strong>Location Type:</strong> {{.LocationType}}</p>
<p><strong>Tier:</strong> {{.Tier}}</p>
<p><strong>Archetype:</strong> {{.Archetype}}</p>
</div>

{{if .Traits}}<div class="section">
<h2>Personality Traits</h2>
{{range .Traits}}<span class="trait">{{.}}</span>{{end}}
</div>{{end}}

<div class="section">
<h2>Motivations</h2>
{{range .Motivations}}<div class="bar-row">
<div class="bar-label">{{.Name}}</div>
<div class="bar-track"><div class="bar-fill" style="width: {{.Value}}%"></div></div>
<div>{{.Value}}/100</div>
</div>
{{end}}</div>

<div class="section">
<h2>Personality Dimensions</h2>
{{range .Dimensions}}<div class="slider-row">
<div class="slider-pole">{{poleLeft .Name}}</div>
<div class="slider-track"><div class="slider-thumb" style="left: {{.Value}}%"></div></div>
<div class="slider-pole">{{poleRight .Name}}</div>
</div>
{{end}}</div>

{{if .Habits}}<div class="section">
<h2>Behavior &amp; Habits</h2>
<ul>{{range .Habits}}<li>{{.}}</li>{{end}}</ul>
</div>{{end}}

{{if .Frustrations}}<div class="section">
<h2>Frustrations</h2>
<ul>{{range .Frustrations}}<li>{{.}}</li>{{end}}</ul>
</div>{{end}}

{{if .GoalsNeeds}}<div class="section">
<h2>Goals &amp; Needs</h2>
<ul>{{range .GoalsNeeds}}<li>{{.}}</li>{{end}}</ul>
</div>{{end}}

{{if .Quote}}<div class="section">
<h2>Representative Quote</h2>
<div class="quote">&ldquo;{{.Quote}}&rdquo;</div>
</div>{{end}}

{{if .Interests}}<div class="section">
<h2>Community Interests</h2>
{{range .Interests}}<span class="tag">r/{{.}}</span>{{end}}
</div>{{end}}

{{if .SocialLinks}}<div class="section">
<h2>Social Links</h2>
<ul>{{range .SocialLinks}}<li><a href="{{.}}">{{.}}</a></li>{{end}}</ul>
</div>{{end}}

{{if .Warnings}}<div class="section">
<h2>Reliability Notes</h2>
<div class="warnings"><ul>{{range .Warnings}}<li>{{.}}</li>{{end}}</ul></div>
</div>{{end}}

</div>
</body>
</html>
`))

func renderHtml(p persona.Persona) ([]byte, error) {
	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
