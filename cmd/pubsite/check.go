package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/eringen/pubsite"
)

func runCheck(w io.Writer, args []string) (int, error) {
	fset := flag.NewFlagSet("check", flag.ExitOnError)
	configPath := fset.String("config", "site.toml", "path of the TOML config file")
	if err := fset.Parse(args); err != nil {
		return 0, err
	}
	cfg, err := loadConfig(*configPath, flagSet(fset, "config"))
	if err != nil {
		return 0, err
	}
	if dir := fset.Arg(0); dir != "" {
		cfg.ContentDir = dir
	}
	if cfg.ContentDir == "" {
		cfg.ContentDir = "content"
	}
	return checkContent(context.Background(), w, os.DirFS(cfg.ContentDir), cfg)
}

// checkContent validates the content of fsys, prints every rejected document
// with all its issues and returns how many were rejected.
func checkContent(ctx context.Context, w io.Writer, fsys fs.FS, cfg pubsite.SiteConfig) (int, error) {
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)

	res, err := pubsite.LoadContent(ctx, fsys, cfg, quiet)
	if err != nil {
		return 0, err
	}
	for _, c := range res.Report.Collections {
		fmt.Fprintf(w, "%s: %d valid, %d rejected\n", c.Name, c.Valid, len(c.Rejected))
		for _, rej := range c.Rejected {
			fmt.Fprintf(w, "  %s\n", rej.Path)
			if len(rej.Issues) == 0 {
				fmt.Fprintf(w, "    %s\n", rej.Error)
				continue
			}
			for _, issue := range rej.Issues {
				fmt.Fprintf(w, "    %s\n", issue)
			}
		}
	}
	return res.Report.RejectedCount(), nil
}
