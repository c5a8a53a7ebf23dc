package config

import "time"

const (
	// DefaultDatabasePath holds web sessions, CLI credentials and the task queue.
	DefaultDatabasePath = "./shelf.db"

	// DefaultAPIBaseURL is where the catalog backend listens in development.
	DefaultAPIBaseURL = "http://localhost:8080/api"

	// DefaultCarouselInterval is how long each featured book stays centered.
	DefaultCarouselInterval = 7 * time.Second
)

// DefaultFeaturedISBNs are shown on the home carousel.
var DefaultFeaturedISBNs = []string{
	"9788483835692",
	"9788401352799",
	"9788416542215",
	"9788483837108",
	"9788490691779",
	"9781689796828",
	"9788466363402",
	"9788401389412",
	"9786070764745",
	"9788466658898",
}
