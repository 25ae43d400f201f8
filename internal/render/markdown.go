package render

import (
	"bytes"
	"text/template"

	"github.com/telcoops/siteaudit/internal/record"
)

type markdownRenderer struct{}

// statusLabel maps an answer status to its printed form.
func statusLabel(s record.Status) string {
	switch s {
	case record.StatusYes:
		return "YES"
	case record.StatusNo:
		return "NO"
	case record.StatusNA:
		return "N/A"
	default:
		return " "
	}
}

var mdTemplate = template.Must(template.New("audit").Funcs(template.FuncMap{
	"status": statusLabel,
}).Parse(`# Project Audit Report

**Project Code:** {{ .ProjectInfo.ProjectCode }}
**Site Name:** {{ .ProjectInfo.SiteName }}
**Site Address:** {{ .ProjectInfo.SiteAddress }}
**Project Manager:** {{ .ProjectInfo.ProjectManager }}
**Auditor:** {{ .ProjectInfo.Auditor }}
**Audit Date:** {{ .ProjectInfo.AuditDate }}

Items answered: {{ .Overall.Completed }}/{{ .Overall.Total }} ({{ .Overall.Percentage }}%)
{{ range .Sections }}
---

## {{ .Title }}
{{ range .Items }}
- [{{ status .Status }}] {{ .Label }}{{ if .Notes }}
  - Notes: {{ .Notes }}{{ end }}{{ end }}
{{ end }}{{ if .NonCompliant }}
---

## Non-Compliance Summary
{{ range .NonCompliant }}
- **{{ .SectionTitle }}** · {{ .ItemLabel }}
  - {{ if .Notes }}{{ .Notes }}{{ else }}(no notes recorded){{ end }}{{ end }}
{{ end }}
---

## Project Manager Sign-off

**Name:** {{ .Signoff.ProjectManagerName }}
**Date:** {{ .Signoff.ProjectManagerDate }}
**Signature:** {{ if .Signoff.Signed }}on file{{ else }}absent{{ end }}
{{ if .Signoff.Comments }}
**Comments:** {{ .Signoff.Comments }}
{{ end }}
*Generated {{ .GeneratedAt }}*
`))

func (r *markdownRenderer) Render(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := mdTemplate.Execute(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
