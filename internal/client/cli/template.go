package cli

import (
	"fmt"
	"text/template"
	"time"
)

const noteTemplate = `
=== Note ===

ID:       {{.ID}}
{{- if .Patient }}
Patient:  {{.Patient}}
{{- end}}
{{- if .Author }}
Author:   {{.Author}}
{{- end}}
Created:  {{time .CreatedAt}}
Updated:  {{time .UpdatedAt}}
Synced:   {{if .Synced}}yes{{else}}no{{end}}

---
{{.Text}}
---
`

const trainingTemplate = `
=== Training Completion ===

ID:        {{.ID}}
Module:    {{.Module}}
Score:     {{printf "%.1f" .Score}}%
Completed: {{time .CompletedAt}}
Synced:    {{if .Synced}}yes{{else}}no{{end}}
`

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"time": func(t time.Time) string { return t.Local().Format(time.DateTime) },
}).Parse(fmt.Sprintf(`{{define "note"}}%s{{end}}{{define "training"}}%s{{end}}`, noteTemplate, trainingTemplate)))

type noteView struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	ID        string
	Patient   string
	Author    string
	Text      string
	Synced    bool
}

type trainingView struct {
	CompletedAt time.Time
	ID          string
	Module      string
	Score       float64
	Synced      bool
}
