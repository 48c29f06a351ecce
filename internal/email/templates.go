package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title   string
	Heading string
}

type transferNoticeData struct {
	baseEmailData
	ClientName   string
	NewOwnerName string
}

type digestMetricRow struct {
	Label     string
	Current   string
	Previous  string
	ChangePct string
}

type dailyDigestData struct {
	baseEmailData
	Date           string
	Metrics        []digestMetricRow
	AbandonedLeads int
	TopSellers     []digestSellerRow
}

type digestSellerRow struct {
	Name    string
	Sales   int
	Revenue string
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}
