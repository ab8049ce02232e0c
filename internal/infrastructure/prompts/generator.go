package prompts

import (
	"bytes"
	"text/template"
)

type TurnData struct {
	Instruction  string
	Page         string
	HasSearchBar bool
	Clickables   []string
}

var turnTmpl = template.Must(template.New("turn").Parse(TurnTemplate))

func GenerateTurnPrompt(data TurnData) (string, error) {
	return generate(turnTmpl, data)
}

// GenerateFromTemplate рендерит пользовательский шаблон хода вместо встроенного.
func GenerateFromTemplate(baseTemplate string, data TurnData) (string, error) {
	tmpl, err := template.New("turn").Parse(baseTemplate)
	if err != nil {
		return "", err
	}
	return generate(tmpl, data)
}

func generate(tmpl *template.Template, data TurnData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
