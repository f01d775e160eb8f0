package templates

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	htmpl "html/template"
	"io"
	"reflect"
	"strings"
	texttpl "text/template"
	"time"
)

//go:embed *.tmpl
var FS embed.FS

// EmailData defines standard fields for email templates.
type EmailData struct {
	// Basic info
	Name           string `json:"Name"`
	Email          string `json:"Email"`
	RecipientEmail string `json:"RecipientEmail"`
	Type           string `json:"Type"`

	// Company info
	CompanyName    string `json:"CompanyName"`
	CompanyAddress string `json:"CompanyAddress"`
	AppName        string `json:"AppName"`

	// URLs
	LogoURL        string `json:"LogoURL"`
	SupportURL     string `json:"SupportURL"`
	PrivacyURL     string `json:"PrivacyURL"`
	UnsubscribeURL string `json:"UnsubscribeURL"`
	LoginURL       string `json:"LoginURL"`

	// Additional data
	Time    string            `json:"Time"`
	TimeAt  time.Time         `json:"TimeAt"`
	Changes map[string]string `json:"Changes"`
}

// ToMap converts EmailData to a map[string]any for EmailJob.Data
func ToMap(d EmailData) map[string]any {
	b, _ := json.Marshal(d)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m
}

// defaultFn supports pipe usage: {{ .Value | default "Fallback" }}
func defaultFn(fallback any, value any) any {
	switch x := value.(type) {
	case string:
		if strings.TrimSpace(x) == "" {
			return fallback
		}
		return x
	case nil:
		return fallback
	default:
		rv := reflect.ValueOf(value)
		if !rv.IsValid() {
			return fallback
		}
		zero := reflect.Zero(rv.Type()).Interface()
		if reflect.DeepEqual(value, zero) {
			return fallback
		}
		return value
	}
}

// shared by the html and text funcs

func baseFuncs() map[string]any {
	return map[string]any{
		"now":        func() time.Time { return time.Now().UTC() },
		"formatTime": func(t time.Time, layout string) string { return t.Format(layout) },
		"upper":      strings.ToUpper,
		"title":      titleCase,
		"default":    defaultFn,
	}
}

var (
	htmlFuncMap = htmpl.FuncMap(baseFuncs())
	textFuncMap = texttpl.FuncMap(baseFuncs())
)

// ---- Template names ----

const (
	Welcome        = "welcome"
	ProfileUpdated = "profile_updated"
)

// Parsed once; each template is addressed by its file name.
var (
	textSet = texttpl.Must(texttpl.New("email").Funcs(textFuncMap).ParseFS(FS, "*.subject.tmpl", "*.text.tmpl"))
	htmlSet = htmpl.Must(htmpl.New("email").Funcs(htmlFuncMap).ParseFS(FS, "*.html.tmpl"))
)

// Known reports whether all three parts of a template exist.
func Known(name string) bool {
	return textSet.Lookup(name+".subject.tmpl") != nil &&
		textSet.Lookup(name+".text.tmpl") != nil &&
		htmlSet.Lookup(name+".html.tmpl") != nil
}

type executor interface {
	ExecuteTemplate(w io.Writer, name string, data any) error
}

func execute(set executor, filename string, data any) (string, error) {
	var buf bytes.Buffer
	if err := set.ExecuteTemplate(&buf, filename, data); err != nil {
		return "", fmt.Errorf("exec %q: %w", filename, err)
	}
	return buf.String(), nil
}

// Render renders subject, text and html for the given base name from
// <name>.subject.tmpl, <name>.text.tmpl and <name>.html.tmpl.
func Render(name string, data any) (subject string, text string, html string, err error) {
	if !Known(name) {
		return "", "", "", fmt.Errorf("unknown email template %q", name)
	}
	if subject, err = execute(textSet, name+".subject.tmpl", data); err != nil {
		return "", "", "", err
	}
	if text, err = execute(textSet, name+".text.tmpl", data); err != nil {
		return "", "", "", err
	}
	if html, err = execute(htmlSet, name+".html.tmpl", data); err != nil {
		return "", "", "", err
	}
	return strings.TrimSpace(subject), text, html, nil
}

// titleCase turns a camelCase field name into "Camel case" for change lists.
func titleCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case i == 0:
			b.WriteString(strings.ToUpper(string(r)))
		case r >= 'A' && r <= 'Z':
			b.WriteByte(' ')
			b.WriteString(strings.ToLower(string(r)))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
