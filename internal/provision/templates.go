package provision

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(
	template.New("provision").
		Funcs(template.FuncMap{"join": strings.Join}).
		Option("missingkey=error").
		ParseFS(templateFS, "templates/*.tmpl"),
)

type sshdData struct {
	Port                int
	DisableRootLogin    bool
	DisablePasswordAuth bool
	MaxAuthTries        int
	AllowUsers          []string
}

type jailData struct {
	Port     int
	MaxRetry int
	BanTime  int
}

type daemonData struct {
	LogMaxSize string
	LogMaxFile int
}

type sudoersData struct {
	User string
}

func render(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name+".tmpl", data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
