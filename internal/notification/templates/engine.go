package templates

import (
	"bytes"
	"fmt"
	htmltmpl "html/template"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"reflect"
	"sync"
	texttmpl "text/template"
)

// Config selects where templates come from. With an empty Dir the embedded set is used.
// Reload reparses files from Dir on every render, for editing emails without a restart.
type Config struct {
	Dir    string
	Reload bool
}

// Rendered is one email ready to enqueue.
type Rendered struct {
	Subject   string
	EmailHTML string
	EmailText string
}

// IHandle is the untyped view of a Handle.
type IHandle interface {
	ID() string
	DataType() reflect.Type
}

// Handle binds a template id to the data type it renders.
type Handle[T any] struct {
	id string
}

// Expect declares a handle for the template file <id>.tmpl.
func Expect[T any](id string) Handle[T] { return Handle[T]{id: id} }

func (h Handle[T]) ID() string { return h.id }

func (h Handle[T]) DataType() reflect.Type {
	return reflect.TypeFor[T]()
}

// Engine parses templates lazily and caches them unless reloading.
type Engine struct {
	src    fs.FS
	prefix string
	reload bool
	log    *slog.Logger

	mu    sync.RWMutex
	cache map[string]*compiled
}

// compiled holds one source parsed twice: text/template for subject and plain text,
// html/template for the escaped HTML body.
type compiled struct {
	text *texttmpl.Template
	html *htmltmpl.Template
}

func NewEngine(cfg Config, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.New(slog.NewTextHandler(os.Stdout, nil))
	}
	e := &Engine{src: EmbeddedFS, prefix: "files/", log: log, cache: map[string]*compiled{}}
	if cfg.Dir != "" {
		e.src, e.prefix, e.reload = os.DirFS(cfg.Dir), "", cfg.Reload
	}
	return e
}

// Render renders the template behind h; the compiler checks data against the handle.
func Render[T any](e *Engine, h Handle[T], data T) (Rendered, error) {
	return e.RenderAny(h.ID(), data)
}

// RenderAny renders a template by id. A subject block and at least one body block are required.
func (e *Engine) RenderAny(id string, data any) (Rendered, error) {
	c, err := e.lookup(id)
	if err != nil {
		return Rendered{}, err
	}
	if c.text.Lookup("subject") == nil {
		return Rendered{}, fmt.Errorf("template %s: missing subject block", id)
	}

	var out Rendered
	if out.Subject, err = execute(c.text, "subject", data); err != nil {
		return Rendered{}, fmt.Errorf("render %s subject: %w", id, err)
	}
	if c.text.Lookup("email_text") != nil {
		if out.EmailText, err = execute(c.text, "email_text", data); err != nil {
			return Rendered{}, fmt.Errorf("render %s text: %w", id, err)
		}
	}
	if c.html.Lookup("email_html") != nil {
		if out.EmailHTML, err = execute(c.html, "email_html", data); err != nil {
			return Rendered{}, fmt.Errorf("render %s html: %w", id, err)
		}
	}
	if out.EmailHTML == "" && out.EmailText == "" {
		return Rendered{}, fmt.Errorf("template %s: no email body", id)
	}
	return out, nil
}

func (e *Engine) lookup(id string) (*compiled, error) {
	if !e.reload {
		e.mu.RLock()
		c, ok := e.cache[id]
		e.mu.RUnlock()
		if ok {
			return c, nil
		}
	}

	src, err := fs.ReadFile(e.src, e.prefix+id+".tmpl")
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", id, err)
	}
	text, err := texttmpl.New(id).Option("missingkey=error").Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", id, err)
	}
	html, err := htmltmpl.New(id).Option("missingkey=error").Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", id, err)
	}
	c := &compiled{text: text, html: html}

	if e.reload {
		e.log.Debug("template reloaded", "id", id)
		return c, nil
	}
	e.mu.Lock()
	e.cache[id] = c
	e.mu.Unlock()
	return c, nil
}

type executor interface {
	ExecuteTemplate(w io.Writer, name string, data any) error
}

func execute(t executor, name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
