package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/radovskyb/watcher"

	"github.com/awalther/quill"
)

var CLI struct {
	Conf    string `short:"c" help:"Path to the site configuration file." type:"path"`
	Verbose bool   `short:"v" help:"Enable verbose logging."`

	Build BuildCmd `cmd:"" help:"Build the site from a source root into an output root."`
	Serve ServeCmd `cmd:"" help:"Serve a built site directory over HTTP."`
}

type BuildCmd struct {
	Source string `arg:"" help:"Content source root." type:"existingdir"`
	Out    string `arg:"" help:"Output root." type:"path"`
	Drafts bool   `help:"Include units with the draft flag."`
	Watch  bool   `short:"w" help:"Keep running and rebuild on changes to the source root."`
}

type ServeCmd struct {
	Dir  string `arg:"" help:"Site directory to serve." type:"existingdir"`
	Addr string `help:"Listen address." default:"localhost:9999"`
}

func main() {
	ctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	if err := ctx.Run(); err != nil {
		slog.Error("failed", "error", err)
		os.Exit(1)
	}
}

func (b *BuildCmd) Run() error {
	conf, err := loadConf(b.Source, b.Out)
	if err != nil {
		return err
	}

	if err := buildSite(conf, b.Drafts); err != nil {
		return err
	}

	if b.Watch {
		return rebuildOnChange(conf, b.Drafts)
	}
	return nil
}

func loadConf(source, out string) (*quill.SiteConf, error) {
	if CLI.Conf == "" {
		return quill.DefaultConf(source, out), nil
	}
	conf, err := quill.ReadConf(CLI.Conf)
	if err != nil {
		return nil, err
	}
	// The command-line roots win over the config file.
	if source != "" {
		conf.SourceDir = source
	}
	if out != "" {
		conf.OutDir = out
	}
	return conf, nil
}

func buildSite(conf *quill.SiteConf, drafts bool) error {
	site, err := quill.ReadSite(conf, drafts)
	if err != nil {
		return err
	}

	slog.Info("writing site", "out", conf.OutDir)
	if err := site.RenderAll(); err != nil {
		return err
	}
	return site.CopyStaticFiles()
}

func rebuildOnChange(conf *quill.SiteConf, drafts bool) error {
	slog.Info("watching for changes", "dir", conf.SourceDir)

	w := watcher.New()
	w.SetMaxEvents(1)

	go func() {
		for {
			select {
			case <-w.Event:
				if err := buildSite(conf, drafts); err != nil {
					slog.Error("rebuild failed", "error", err)
				}
			case err := <-w.Error:
				slog.Error("watcher", "error", err)
			case <-w.Closed:
				return
			}
		}
	}()

	if err := w.AddRecursive(conf.SourceDir); err != nil {
		return err
	}
	return w.Start(time.Millisecond * 200)
}

func (s *ServeCmd) Run() error {
	http.Handle("/", http.FileServer(http.Dir(s.Dir)))
	slog.Info("serving", "dir", s.Dir, "addr", s.Addr)
	return http.ListenAndServe(s.Addr, nil)
}
