package borica

import (
	"fmt"
	"html/template"
	"io"
	"sort"

	"github.com/kevin07696/borica-gateway/internal/domain"
)

// FormID is the id attribute of the rendered payment form
const FormID = "boricaForm"

const formTemplate = `<form action="{{.Action}}" method="POST" id="{{.ID}}">
{{- range .Inputs}}
<input name="{{.Name}}" value="{{.Value}}" style="width: 100%;"><br>
{{- end}}
<button type="submit">Send to Borica</button></form>
`

var formTmpl = template.Must(template.New("borica-form").Parse(formTemplate))

type formInput struct {
	Name  string
	Value string
}

type formData struct {
	Action string
	ID     string
	Inputs []formInput
}

// RenderForm writes an auto-submittable HTML form posting fields to action.
// Inputs appear in sorted key order; names and values are HTML-escaped.
func RenderForm(w io.Writer, action string, fields domain.FieldMapping) error {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	data := formData{Action: action, ID: FormID, Inputs: make([]formInput, 0, len(names))}
	for _, name := range names {
		data.Inputs = append(data.Inputs, formInput{Name: name, Value: fields[name]})
	}

	if err := formTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render form: %w", err)
	}
	return nil
}
