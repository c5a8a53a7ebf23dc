package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/hallowedlibrary/shelf/internal/entities"
	"github.com/hallowedlibrary/shelf/internal/favorites"
	"github.com/hallowedlibrary/shelf/internal/views"
)

// LibraryCommand lists the saved books.
type LibraryCommand struct {
	base
}

func NewLibraryCommand() *LibraryCommand {
	return &LibraryCommand{}
}

func (cmd *LibraryCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("library", flag.ExitOnError)
	cmd.registerFlags(fs)
	return fs.Parse(args)
}

func (cmd *LibraryCommand) Run() error {
	ctx, cancel := cmd.runContext()
	defer cancel()

	db, _, sess, err := cmd.openSession(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	lib := views.Library(ctx, favorites.NewService(cmd.client()), sess)
	if lib.Error != "" {
		return errors.New(lib.Error)
	}
	if lib.Message != "" {
		cmd.printf("%s\n", lib.Message)
		return nil
	}
	for _, e := range lib.Entries {
		cmd.printf("%-14s %s - %s\n", e.VolumeID, e.Title, e.AuthorsText())
	}
	return nil
}

// FavoriteCommand adds a book to the library, or removes it with Remove.
type FavoriteCommand struct {
	base
	ID     string
	Remove bool
}

func NewFavoriteCommand() *FavoriteCommand {
	return &FavoriteCommand{}
}

func NewUnfavoriteCommand() *FavoriteCommand {
	return &FavoriteCommand{Remove: true}
}

func (cmd *FavoriteCommand) name() string {
	if cmd.Remove {
		return "unfavorite"
	}
	return "favorite"
}

func (cmd *FavoriteCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet(cmd.name(), flag.ExitOnError)
	cmd.registerFlags(fs)
	fs.StringVar(&cmd.ID, "id", "", "Catalog book id (required)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s %s -id <id> [options]\n\n", os.Args[0], cmd.name())
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.ID == "" {
		return fmt.Errorf("required flag -id not provided")
	}
	return nil
}

func (cmd *FavoriteCommand) Run() error {
	ctx, cancel := cmd.runContext()
	defer cancel()

	db, _, sess, err := cmd.openSession(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if !sess.Authenticated() {
		return errors.New(favorites.LoginPrompt)
	}

	client := cmd.client()
	svc := favorites.NewService(client)

	if cmd.Remove {
		if err := svc.Remove(ctx, sess, cmd.ID); err != nil {
			return fmt.Errorf("failed to remove %s: %w", cmd.ID, err)
		}
		cmd.printf("Removed %s from your library\n", cmd.ID)
		return nil
	}

	book, err := client.GetBook(ctx, cmd.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", views.MsgDetailError, err)
	}
	entry := entities.NewFavoriteEntry(*book)

	if err := svc.Add(ctx, sess, entry); err != nil {
		return fmt.Errorf("failed to add %s: %w", cmd.ID, err)
	}
	cmd.printf("Added %q to your library\n", entry.Title)
	return nil
}
