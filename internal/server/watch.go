package server

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mithrel/stackshelf/internal/datafile"
	"github.com/mithrel/stackshelf/internal/page"
)

const debounce = 300 * time.Millisecond

// Watch follows the data directory until ctx is done. When an author's
// data file changes, the author's controller is dropped and the static
// page regenerated. Scrapes write through a temp file and rename, so
// events are debounced per author.
func (s *Server) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := os.MkdirAll(s.opts.DataDir, 0o755); err != nil {
		return err
	}
	if err := w.Add(s.opts.DataDir); err != nil {
		return err
	}
	s.log.Printf("server: watching %s", s.opts.DataDir)

	var (
		mu     sync.Mutex
		timers = make(map[string]*time.Timer)
	)
	defer func() {
		mu.Lock()
		for _, t := range timers {
			t.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			author := datafile.AuthorFromPath(ev.Name)
			if author == "" {
				continue
			}
			mu.Lock()
			if t, ok := timers[author]; ok {
				t.Stop()
			}
			timers[author] = time.AfterFunc(debounce, func() { s.refresh(author) })
			mu.Unlock()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.log.Printf("server: watch err=%v", err)
		}
	}
}

// refresh drops the cached controller and rewrites the static page.
func (s *Server) refresh(author string) {
	s.Forget(author)
	path := datafile.Path(s.opts.DataDir, author)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		s.log.Printf("server: data removed author=%s", author)
		return
	}
	essays, err := datafile.Load(path)
	if err != nil {
		s.log.Printf("server: reload author=%s err=%v", author, err)
		return
	}
	if s.opts.HTMLDir == "" {
		return
	}
	out, err := page.Generate(page.Options{
		Author:       author,
		Essays:       essays,
		OutDir:       s.opts.HTMLDir,
		Root:         s.opts.Root,
		TemplatePath: s.opts.TemplatePath,
		FormatToggle: s.opts.FormatToggle,
	})
	if err != nil {
		s.log.Printf("server: regenerate author=%s err=%v", author, err)
		return
	}
	s.log.Printf("server: regenerated author=%s page=%s", author, out)
}
