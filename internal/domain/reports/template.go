package reports

import "html/template"

// reportTmpl es la vista imprimible (el "PDF" sale de imprimir esta página).
var reportTmpl = template.Must(template.New("pet_report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Pet report — {{.Pet.Name}}</title>
<style>
  body { font-family: sans-serif; margin: 2rem; color: #222; }
  h1 { border-bottom: 2px solid #2a7; padding-bottom: .3rem; }
  h2 { margin-top: 1.6rem; }
  table { border-collapse: collapse; width: 100%; }
  th, td { border: 1px solid #ccc; padding: .4rem .6rem; text-align: left; }
  th { background: #f4f4f4; }
  .meta { color: #666; font-size: .9rem; }
  @media print { body { margin: 0; } }
</style>
</head>
<body>
<h1>{{.Pet.Name}}</h1>
<p class="meta">
  {{.Pet.Species}}{{if .Pet.Breed}} · {{.Pet.Breed}}{{end}} · {{.Pet.Sex}}
  {{if .Pet.BirthDate}} · born {{.Pet.BirthDate.Format "2006-01-02"}}{{end}}
  {{if .Pet.WeightKg}} · {{.Pet.WeightKg}} kg{{end}}
</p>
<p>Owner: <strong>{{.OwnerName}}</strong>{{if .OwnerEmail}} ({{.OwnerEmail}}){{end}}</p>

<h2>Appointments</h2>
{{if .Appointments}}
<table>
  <tr><th>Date</th><th>Status</th><th>Notes</th></tr>
  {{range .Appointments}}
  <tr>
    <td>{{.ScheduledAt.Format "2006-01-02 15:04"}}</td>
    <td>{{.Status}}</td>
    <td>{{.Notes}}</td>
  </tr>
  {{end}}
</table>
{{else}}<p class="meta">No appointments on record.</p>{{end}}

<h2>Medical history</h2>
{{if .Records}}
<table>
  <tr><th>Date</th><th>Diagnosis</th><th>Treatment</th><th>Medication</th><th>Follow-up</th></tr>
  {{range .Records}}
  <tr>
    <td>{{.CreatedAt.Format "2006-01-02"}}</td>
    <td>{{.Diagnosis}}</td>
    <td>{{.Treatment}}</td>
    <td>{{.Medication}}</td>
    <td>{{.FollowUp}}</td>
  </tr>
  {{end}}
</table>
{{else}}<p class="meta">No medical records on file.</p>{{end}}
</body>
</html>
`))
