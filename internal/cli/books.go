package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/hallowedlibrary/shelf/internal/carousel"
	"github.com/hallowedlibrary/shelf/internal/catalog"
	"github.com/hallowedlibrary/shelf/internal/config"
	"github.com/hallowedlibrary/shelf/internal/favorites"
	"github.com/hallowedlibrary/shelf/internal/views"
)

// SearchCommand searches the catalog.
type SearchCommand struct {
	base
	Query      string
	StartIndex int
	MaxResults int
}

func NewSearchCommand() *SearchCommand {
	return &SearchCommand{}
}

func (cmd *SearchCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	cmd.registerFlags(fs)
	fs.StringVar(&cmd.Query, "q", "", "Search query (required)")
	fs.IntVar(&cmd.StartIndex, "start", 0, "Index of the first result")
	fs.IntVar(&cmd.MaxResults, "max", 0, "Maximum number of results (server default when 0)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s search -q <query> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Search the catalog. Favorites are marked with a star when logged in.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(cmd.Query) == "" {
		return fmt.Errorf("required flag -q not provided")
	}
	return nil
}

func (cmd *SearchCommand) Run() error {
	ctx, cancel := cmd.runContext()
	defer cancel()

	db, _, sess, err := cmd.openSession(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	client := cmd.client()
	page := views.Search(ctx, client, favorites.NewService(client), sess, cmd.Query, catalog.SearchOptions{
		StartIndex: cmd.StartIndex,
		MaxResults: cmd.MaxResults,
	})
	if page.Error != "" {
		return errors.New(page.Error)
	}
	if page.Message != "" {
		cmd.printf("%s\n", page.Message)
		return nil
	}

	for _, card := range page.Results {
		cmd.printf("%s %-14s %s - %s\n", star(card.Favorite), card.Book.ID, card.Book.Title, card.Authors)
	}
	return nil
}

// BookCommand shows one book.
type BookCommand struct {
	base
	ID string
}

func NewBookCommand() *BookCommand {
	return &BookCommand{}
}

func (cmd *BookCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("book", flag.ExitOnError)
	cmd.registerFlags(fs)
	fs.StringVar(&cmd.ID, "id", "", "Catalog book id (required)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s book -id <id> [options]\n\n", os.Args[0])
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

func (cmd *BookCommand) Run() error {
	ctx, cancel := cmd.runContext()
	defer cancel()

	db, _, sess, err := cmd.openSession(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	client := cmd.client()
	detail := views.Detail(ctx, client, favorites.NewService(client), sess, cmd.ID)
	if detail.Error != "" {
		return errors.New(detail.Error)
	}

	b := detail.Book
	cmd.printf("%s %s\n", star(detail.Favorite), b.Title)
	cmd.printf("  Authors:   %s\n", detail.Authors)
	if b.PublishedDate != "" {
		cmd.printf("  Published: %s\n", b.PublishedDate)
	}
	if b.PageCount > 0 {
		cmd.printf("  Pages:     %d\n", b.PageCount)
	}
	if len(b.Categories) > 0 {
		cmd.printf("  Category:  %s\n", strings.Join(b.Categories, ", "))
	}
	cmd.printf("\n%s\n", detail.Description)
	return nil
}

// FeaturedCommand loads the featured books and prints the carousel layout
// around a center position.
type FeaturedCommand struct {
	base
	ISBNs  string
	Center int
}

func NewFeaturedCommand() *FeaturedCommand {
	return &FeaturedCommand{}
}

func (cmd *FeaturedCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("featured", flag.ExitOnError)
	cmd.registerFlags(fs)
	fs.StringVar(&cmd.ISBNs, "isbns", envOr("FEATURED_ISBNS", strings.Join(config.DefaultFeaturedISBNs, ",")), "Comma separated ISBNs to feature")
	fs.IntVar(&cmd.Center, "center", 0, "Center position of the carousel")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s featured [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Fetch the featured books concurrently and show which are visible.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *FeaturedCommand) Run() error {
	ctx, cancel := cmd.runContext()
	defer cancel()

	var isbns []string
	for _, isbn := range strings.Split(cmd.ISBNs, ",") {
		if isbn = strings.TrimSpace(isbn); isbn != "" {
			isbns = append(isbns, isbn)
		}
	}

	books := carousel.LoadFeatured(ctx, cmd.client(), isbns)
	cmd.printf("Loaded %d of %d featured books\n", len(books), len(isbns))
	if len(books) == 0 {
		return nil
	}

	for _, card := range carousel.Layout(books, cmd.Center) {
		marker := " "
		if card.Offset == 0 {
			marker = ">"
		}
		cmd.printf("%s %+d %s - %s (scale %.2f)\n", marker, card.Offset, card.Book.Title, card.Book.AuthorsText(), card.Style.Scale)
	}
	return nil
}
