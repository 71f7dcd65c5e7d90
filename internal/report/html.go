package report

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/user/formcheck/internal/runner"
)

// HTMLExporter renders the Markdown summary into a standalone HTML page
type HTMLExporter struct {
	markdown     goldmark.Markdown
	htmlTemplate *template.Template
}

// HTMLDocument is the data for the page template
type HTMLDocument struct {
	Title   string
	Status  string
	Content template.HTML
	CSS     template.CSS
}

// NewHTMLExporter creates an exporter with GitHub-flavoured Markdown tables
func NewHTMLExporter() (*HTMLExporter, error) {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Table,
		),
		goldmark.WithRendererOptions(
			html.WithXHTML(),
		),
	)

	tmpl, err := loadHTMLTemplate()
	if err != nil {
		return nil, fmt.Errorf("failed to load HTML template: %w", err)
	}

	return &HTMLExporter{
		markdown:     md,
		htmlTemplate: tmpl,
	}, nil
}

// Render returns the report as an HTML document
func (e *HTMLExporter) Render(rep *runner.SuiteReport) ([]byte, error) {
	var body bytes.Buffer
	if err := e.markdown.Convert([]byte(Markdown(rep)), &body); err != nil {
		return nil, fmt.Errorf("failed to convert markdown: %w", err)
	}

	status := "passed"
	if !rep.Green() {
		status = "failed"
	}
	doc := HTMLDocument{
		Title:   fmt.Sprintf("formcheck %s", rep.RunID),
		Status:  status,
		Content: template.HTML(body.String()),
		CSS:     template.CSS(defaultCSS),
	}

	var out bytes.Buffer
	if err := e.htmlTemplate.Execute(&out, doc); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return out.Bytes(), nil
}

// Export writes the HTML report to outputPath
func (e *HTMLExporter) Export(rep *runner.SuiteReport, outputPath string) error {
	data, err := e.Render(rep)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write HTML: %w", err)
	}
	return nil
}

func loadHTMLTemplate() (*template.Template, error) {
	const tmpl = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <meta name="generator" content="formcheck">
    <title>{{.Title}}</title>
    <style>
        {{.CSS}}
    </style>
</head>
<body class="{{.Status}}">
    <div class="container">
        <main>
            {{.Content}}
        </main>
        <footer>
            <p>Generated on {{now}} by formcheck</p>
        </footer>
    </div>
</body>
</html>`

	return template.New("html").Funcs(template.FuncMap{
		"now": func() string {
			return time.Now().Format("2006-01-02 15:04:05")
		},
	}).Parse(tmpl)
}

const defaultCSS = `
        * {
            box-sizing: border-box;
        }

        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Helvetica, Arial, sans-serif;
            line-height: 1.5;
            color: #24292f;
            margin: 0;
            padding: 0;
            border-top: 6px solid #1a7f37;
        }

        body.failed {
            border-top-color: #cf222e;
        }

        .container {
            max-width: 1200px;
            margin: 0 auto;
            padding: 30px;
        }

        h1 {
            font-size: 1.8em;
            border-bottom: 1px solid #d0d7de;
            padding-bottom: 0.3em;
        }

        h2 {
            font-size: 1.3em;
            margin-top: 32px;
        }

        code {
            background-color: rgba(175, 184, 193, 0.2);
            border-radius: 6px;
            font-size: 85%;
            padding: 0.2em 0.4em;
            white-space: pre;
        }

        table {
            border-collapse: collapse;
            width: 100%;
            margin-bottom: 16px;
            font-size: 14px;
        }

        table th, table td {
            padding: 6px 13px;
            border: 1px solid #d0d7de;
            text-align: left;
            vertical-align: top;
        }

        table tr:nth-child(2n) {
            background-color: #f6f8fa;
        }

        blockquote {
            padding: 0 1em;
            color: #9a6700;
            border-left: 0.25em solid #d4a72c;
            margin: 0 0 16px;
        }

        footer {
            border-top: 1px solid #d0d7de;
            padding-top: 20px;
            text-align: center;
            font-size: 13px;
            color: #57606a;
        }
`
