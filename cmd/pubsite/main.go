package main

import (
	"fmt"
	"os"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	args := os.Args[2:]
	switch os.Args[1] {
	case "serve":
		if err := runServe(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "check":
		rejected, err := runCheck(os.Stdout, args)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if rejected > 0 {
			os.Exit(1)
		}
	case "new":
		if len(args) < 1 {
			fmt.Fprintln(os.Stderr, "Usage: pubsite new <dir>")
			os.Exit(1)
		}
		if err := runNew(args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("pubsite %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`pubsite - A Markdown blog server built with Go, Echo, and templ

Usage:
  pubsite <command> [arguments]

Commands:
  serve [-config site.toml]            Load content and serve the site
  check [-config site.toml] [dir]      Validate every post and author document
  new <dir>                            Create a new site with sample content
  version                              Print the pubsite version
  help                                 Show this help message

Environment:
  ADMIN_PASSWORD, ADMIN_SESSION_SECRET   required by serve
  SITE_URL, ADDR, DATABASE_PATH          override the config file

Examples:
  pubsite new myblog
  cd myblog && ADMIN_PASSWORD=... ADMIN_SESSION_SECRET=... pubsite serve
  pubsite check content`)
}
