package server

import (
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/mithrel/stackshelf/internal/datafile"
	"github.com/mithrel/stackshelf/internal/essaylist"
	"github.com/mithrel/stackshelf/internal/page"
	"github.com/mithrel/stackshelf/internal/render"
)

// filesPrefix is where the output root is mounted.
const filesPrefix = "/files/"

// ErrUnknownAuthor is returned when an author has no data file.
var ErrUnknownAuthor = errors.New("unknown author")

// Options configures a Server.
type Options struct {
	// Root holds the markdown and HTML trees essay links point into.
	Root         string
	DataDir      string
	HTMLDir      string
	TemplatePath string
	FormatToggle bool
	Log          *log.Logger
}

// Server serves author pages whose sort and toggle buttons are handled
// server side. Each author gets one Controller for the life of the process.
type Server struct {
	opts  Options
	log   *log.Logger
	mu    sync.Mutex
	ctrls map[string]*essaylist.Controller
}

func New(opts Options) *Server {
	if opts.Root == "" {
		opts.Root = "."
	}
	lg := opts.Log
	if lg == nil {
		lg = log.New(os.Stderr, "", log.LstdFlags)
	}
	return &Server{opts: opts, log: lg, ctrls: make(map[string]*essaylist.Controller)}
}

// Router returns an http.Handler with registered routes.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /authors/{author}", s.handlePage)
	mux.HandleFunc("GET /authors/{author}/list", s.handleList)
	mux.HandleFunc("POST /authors/{author}/sort/date", s.click(func(c *essaylist.Controller) error {
		c.ClickSortDate()
		return nil
	}))
	mux.HandleFunc("POST /authors/{author}/sort/likes", s.click(func(c *essaylist.Controller) error {
		c.ClickSortLikes()
		return nil
	}))
	mux.HandleFunc("POST /authors/{author}/toggle", s.click(func(c *essaylist.Controller) error {
		_, err := c.ClickToggleFormat()
		return err
	}))
	mux.Handle("GET "+filesPrefix, noCache(http.StripPrefix(filesPrefix, http.FileServer(noListing{http.Dir(s.opts.Root)}))))
	return mux
}

// controller returns the author's controller, loading it from the data
// file on first use.
func (s *Server) controller(author string) (*essaylist.Controller, error) {
	if !validAuthor(author) {
		return nil, ErrUnknownAuthor
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.ctrls[author]; ok {
		return c, nil
	}
	path := datafile.Path(s.opts.DataDir, author)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrUnknownAuthor
		}
		return nil, err
	}
	essays, err := datafile.Load(path)
	if err != nil {
		return nil, err
	}
	c := essaylist.New(essays, essaylist.Controls{FormatToggle: s.opts.FormatToggle}, essaylist.WithLinkPrefix(filesPrefix))
	s.ctrls[author] = c
	s.log.Printf("server: loaded author=%s essays=%d", author, c.Len())
	return c, nil
}

// Forget drops the author's controller; the next request reloads it.
func (s *Server) Forget(author string) {
	s.mu.Lock()
	delete(s.ctrls, author)
	s.mu.Unlock()
}

func validAuthor(a string) bool {
	return a != "" && !strings.HasPrefix(a, ".") && !strings.ContainsAny(a, `/\`)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, author string, err error) {
	if errors.Is(err, ErrUnknownAuthor) {
		http.NotFound(w, r)
		return
	}
	s.log.Printf("server: author=%s err=%v", author, err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	author := r.PathValue("author")
	c, err := s.controller(author)
	if err != nil {
		s.fail(w, r, author, err)
		return
	}
	d, err := page.NewData(page.Options{
		Author:       author,
		Essays:       c.Essays(),
		OutDir:       s.opts.Root,
		Root:         s.opts.Root,
		FormatToggle: c.Controls().FormatToggle,
		Actions:      "/authors/" + author,
	})
	if err != nil {
		s.fail(w, r, author, err)
		return
	}
	list, err := c.HTML()
	if err != nil {
		s.fail(w, r, author, err)
		return
	}
	d.List = list
	d.Label = c.Label()
	d.LinkPrefix = filesPrefix
	d.Stylesheet = filesPrefix + render.StylesheetPath
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Execute(w, d); err != nil {
		s.log.Printf("server: render author=%s err=%v", author, err)
	}
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	author := r.PathValue("author")
	c, err := s.controller(author)
	if err != nil {
		s.fail(w, r, author, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(w); err != nil {
		s.log.Printf("server: render author=%s err=%v", author, err)
	}
}

// click applies one click and redirects back to the page.
func (s *Server) click(apply func(*essaylist.Controller) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		author := r.PathValue("author")
		c, err := s.controller(author)
		if err != nil {
			s.fail(w, r, author, err)
			return
		}
		if err := apply(c); err != nil {
			if errors.Is(err, essaylist.ErrNoFormatToggle) {
				http.Error(w, err.Error(), http.StatusConflict)
				return
			}
			s.fail(w, r, author, err)
			return
		}
		http.Redirect(w, r, "/authors/"+author, http.StatusSeeOther)
	}
}

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>Essays</title></head>
<body>
<h1>Authors</h1>
<ul>
{{- range .}}
  <li><a href="/authors/{{.Slug}}">{{.Name}}</a></li>
{{- end}}
</ul>
</body>
</html>
`))

type indexItem struct{ Slug, Name string }

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	authors, err := datafile.Authors(s.opts.DataDir)
	if err != nil {
		s.fail(w, r, "", fmt.Errorf("list authors: %w", err))
		return
	}
	items := make([]indexItem, 0, len(authors))
	for _, a := range authors {
		items = append(items, indexItem{Slug: a, Name: page.DisplayName(a)})
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTmpl.Execute(w, items); err != nil {
		s.log.Printf("server: index err=%v", err)
	}
}

func noCache(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		h.ServeHTTP(w, r)
	})
}

// noListing hides directory listings.
type noListing struct{ fs http.FileSystem }

func (n noListing) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if st.IsDir() {
		f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}
