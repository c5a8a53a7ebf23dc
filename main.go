package main

import (
	"fmt"
	"os"

	"github.com/hallowedlibrary/shelf/internal/cli"
	"github.com/hallowedlibrary/shelf/internal/config"
	"github.com/hallowedlibrary/shelf/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

type command interface {
	ParseFlags(args []string) error
	Run() error
}

var commands = map[string]func() command{
	"search":     func() command { return cli.NewSearchCommand() },
	"book":       func() command { return cli.NewBookCommand() },
	"featured":   func() command { return cli.NewFeaturedCommand() },
	"login":      func() command { return cli.NewLoginCommand() },
	"signup":     func() command { return cli.NewSignupCommand() },
	"logout":     func() command { return cli.NewLogoutCommand() },
	"profile":    func() command { return cli.NewProfileCommand() },
	"library":    func() command { return cli.NewLibraryCommand() },
	"favorite":   func() command { return cli.NewFavoriteCommand() },
	"unfavorite": func() command { return cli.NewUnfavoriteCommand() },
}

func main() {
	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		cfg := config.NewConfig()
		entrypoint.Run(cfg, Version)
		return
	}

	name := os.Args[1]
	switch name {
	case "-h", "--help", "help":
		printUsage()
		return
	case "version":
		fmt.Printf("shelf %s (%s)\n", Version, Commit)
		return
	}

	newCommand, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
		printUsage()
		os.Exit(1)
	}

	cmd := newCommand()
	if err := cmd.ParseFlags(os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve        Start the web frontend (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  search       Search the catalog\n")
	fmt.Fprintf(os.Stderr, "  book         Show one book\n")
	fmt.Fprintf(os.Stderr, "  featured     Load the featured books and print the carousel\n")
	fmt.Fprintf(os.Stderr, "  login        Log in and remember the session\n")
	fmt.Fprintf(os.Stderr, "  signup       Create an account\n")
	fmt.Fprintf(os.Stderr, "  logout       Forget the saved session\n")
	fmt.Fprintf(os.Stderr, "  profile      Show your profile\n")
	fmt.Fprintf(os.Stderr, "  library      List your saved books\n")
	fmt.Fprintf(os.Stderr, "  favorite     Add a book to your library\n")
	fmt.Fprintf(os.Stderr, "  unfavorite   Remove a book from your library\n")
	fmt.Fprintf(os.Stderr, "  version      Print the version\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
