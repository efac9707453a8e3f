// Package views renders the server-side pages and serves the chat client
// assets. Templates and assets are embedded in the binary.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"daptic-backend/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const (
	PageLogin  = "login"
	PageSignup = "signup"
	PageIndex  = "index"
)

type Flash struct {
	Category string
	Message  string
}

// TurnView is a conversation turn ready for the page.
type TurnView struct {
	Role      models.Role
	HTML      template.HTML
	CreatedAt time.Time
}

type PageData struct {
	Title     string
	Username  string
	Flash     *Flash
	History   []TurnView
	MaxPrompt int
}

type Renderer struct {
	pages  map[string]*template.Template
	md     goldmark.Markdown
	logger *slog.Logger
}

func NewRenderer() (*Renderer, error) {
	pages := make(map[string]*template.Template)
	for _, name := range []string{PageLogin, PageSignup, PageIndex} {
		tmpl, err := template.ParseFS(templateFS, "templates/base.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &Renderer{
		pages: pages,
		// Raw HTML in model output is dropped; goldmark only emits it with
		// html.WithUnsafe.
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		logger: slog.Default().With("component", "views"),
	}, nil
}

// Render writes page in full or, on a template error, a plain 500.
func (v *Renderer) Render(w http.ResponseWriter, page string, data PageData) {
	tmpl, ok := v.pages[page]
	if !ok {
		v.logger.Error("unknown page", "page", page)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		v.logger.Error("failed to render page", "page", page, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

// Markdown converts a bot reply to HTML, falling back to escaped text.
func (v *Renderer) Markdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := v.md.Convert([]byte(text), &buf); err != nil {
		v.logger.Warn("failed to convert markdown", "error", err)
		return escapedParagraph(text)
	}
	return template.HTML(buf.String())
}

// Turns prepares stored history for display. Bot turns are rendered as
// markdown; user turns are shown verbatim.
func (v *Renderer) Turns(turns []models.ConversationTurn) []TurnView {
	out := make([]TurnView, 0, len(turns))
	for _, t := range turns {
		view := TurnView{Role: t.Role, CreatedAt: t.CreatedAt}
		if t.Role == models.RoleBot {
			view.HTML = v.Markdown(t.Message)
		} else {
			view.HTML = escapedParagraph(t.Message)
		}
		out = append(out, view)
	}
	return out
}

func escapedParagraph(text string) template.HTML {
	return template.HTML("<p>" + template.HTMLEscapeString(text) + "</p>")
}

// Static serves the embedded client assets; mount it under /static/.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
