package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/filmdex"
	"github.com/poiesic/filmdex/core"
	"github.com/poiesic/filmdex/storage"
)

// movies is the built-in seed set, one key<TAB>description<TAB>file_handle
// line per film. The file handles are synthetic; a bot serving this catalog
// can list and match entries but not deliver the files.
var movies = []string{
	"The Matrix (1999)\tA hacker discovers reality is a simulation and joins a rebellion against its machine architects.\tdev-0001",
	"Blade Runner (1982)\tA weary detective hunts four replicants hiding in a rain-soaked Los Angeles.\tdev-0002",
	"Alien (1979)\tThe crew of a commercial towing ship answers a distress call and brings something aboard.\tdev-0003",
	"Aliens (1986)\tRipley returns to LV-426 with colonial marines and finds the colony silent.\tdev-0004",
	"Heat (1995)\tA disciplined thief and a relentless detective circle each other across Los Angeles.\tdev-0005",
	"Casablanca (1942)\tA nightclub owner in Vichy-controlled Morocco shelters the woman who once left him.\tdev-0006",
	"The Godfather (1972)\tThe reluctant youngest son of a crime family is drawn into his father's empire.\tdev-0007",
	"Goodfellas (1990)\tHenry Hill narrates three decades of life inside the mob.\tdev-0008",
	"Pulp Fiction (1994)\tInterlocking stories of hitmen, a boxer, and a pair of diner bandits.\tdev-0009",
	"Se7en (1995)\tTwo detectives trail a murderer who stages his victims as the seven deadly sins.\tdev-0010",
	"Fight Club (1999)\tAn insomniac office worker and a soap salesman build something that outgrows them both.\tdev-0011",
	"The Thing (1982)\tAn Antarctic research station is infiltrated by an organism that imitates its hosts.\tdev-0012",
	"Jaws (1975)\tA beach town police chief hunts a great white shark with a biologist and an old sailor.\tdev-0013",
	"Die Hard (1988)\tAn off-duty cop is the only loose end when thieves seize a Los Angeles tower.\tdev-0014",
	"Terminator 2: Judgment Day (1991)\tA reprogrammed machine is sent back to protect the boy it was once built to kill.\tdev-0015",
	"Interstellar (2014)\tA pilot leaves a dying Earth through a wormhole to find humanity a new home.\tdev-0016",
	"Inception (2010)\tA thief who steals secrets from dreams is hired to plant an idea instead.\tdev-0017",
	"Dune (2021)\tA ducal heir is stranded on a desert planet whose spice the empire cannot live without.\tdev-0018",
	"Arrival (2016)\tA linguist races to decode the language of visitors whose grammar reshapes time.\tdev-0019",
	"Her (2013)\tA lonely letter writer falls in love with an operating system.\tdev-0020",
	"Ex Machina (2014)\tA programmer is invited to administer a Turing test at his employer's remote estate.\tdev-0021",
	"Mad Max: Fury Road (2015)\tA drifter and a war rig driver flee a desert warlord across the wasteland.\tdev-0022",
	"The Shining (1980)\tA winter caretaker's family is snowed into a hotel that remembers everything.\tdev-0023",
	"Psycho (1960)\tA woman on the run stops at a quiet motel run by a devoted son.\tdev-0024",
	"Vertigo (1958)\tA detective with a fear of heights is hired to follow a friend's wife.\tdev-0025",
	"Rear Window (1954)\tA photographer laid up with a broken leg watches his neighbors a little too closely.\tdev-0026",
	"North by Northwest (1959)\tAn advertising man is mistaken for a spy who does not exist.\tdev-0027",
	"2001: A Space Odyssey (1968)\tA monolith draws a crew toward Jupiter while their computer reconsiders the mission.\tdev-0028",
	"Apocalypse Now (1979)\tA captain is sent upriver into Cambodia to terminate a renegade colonel's command.\tdev-0029",
	"Taxi Driver (1976)\tA sleepless veteran drives a cab through a city he wants to wash clean.\tdev-0030",
	"Raging Bull (1980)\tThe rise and self-destruction of middleweight champion Jake LaMotta.\tdev-0031",
	"The Departed (2006)\tAn undercover cop and a police mole hunt each other inside Boston's Irish mob.\tdev-0032",
	"No Country for Old Men (2007)\tA hunter takes a satchel of drug money and a killer with a cattle gun follows.\tdev-0033",
	"Fargo (1996)\tA car salesman's staged kidnapping unravels under a pregnant police chief's questions.\tdev-0034",
	"The Big Lebowski (1998)\tA case of mistaken identity costs a bowler his rug.\tdev-0035",
	"There Will Be Blood (2007)\tAn oilman builds an empire in turn-of-the-century California and empties himself doing it.\tdev-0036",
	"Whiplash (2014)\tA young drummer and a feared conservatory instructor push each other past the line.\tdev-0037",
	"Parasite (2019)\tA poor family folds itself into the household of a rich one, one job at a time.\tdev-0038",
	"Oldboy (2003)\tA man imprisoned in a room for fifteen years is released and given five days for answers.\tdev-0039",
	"Spirited Away (2001)\tA girl must work in a bathhouse for spirits to free her transformed parents.\tdev-0040",
}

var seedFileName = flag.String("src", "", "file of seed data")

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// linesFromFile returns an iterator over lines in a file.
func linesFromFile(filename string) (iter.Seq[string], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(string) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if !yield(scanner.Text()) {
				return
			}
		}
	}, nil
}

// linesFromSlice returns an iterator over a slice of strings.
func linesFromSlice(lines []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, line := range lines {
			if !yield(line) {
				return
			}
		}
	}
}

// parseEntry converts one key<TAB>description<TAB>file_handle line into a
// catalog entry. The key column is normalized the same way channel captions
// are, so a seeded film and a later-ingested copy collide on one ID.
func parseEntry(line string) (*core.CatalogEntry, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != 3 {
		return nil, fmt.Errorf("expected 3 tab-separated fields, got %d", len(fields))
	}

	entry := &core.CatalogEntry{
		CanonicalKey: core.Normalize(fields[0]),
		Description:  strings.TrimSpace(fields[1]),
		FileHandle:   strings.TrimSpace(fields[2]),
	}

	if err := core.ValidateEntry(entry); err != nil {
		return nil, err
	}

	return entry, nil
}

// seedBatched reads from a source iterator and commits entries in batches.
// It returns the number of entries actually inserted; rerunning the seeder
// over the same data inserts nothing.
func seedBatched(ctx context.Context, repo storage.CatalogRepository, source iter.Seq[string], batchSize int) (int, error) {
	var added, lineNo int

	batch := make([]*core.CatalogEntry, 0, batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		inserted, err := repo.AddEntries(ctx, batch...)
		if err != nil {
			return err
		}
		added += len(inserted)
		batch = batch[:0]
		return nil
	}

	for line := range source {
		lineNo++
		if strings.TrimSpace(line) == "" {
			continue
		}

		entry, err := parseEntry(line)
		if err != nil {
			return added, fmt.Errorf("line %d: %w", lineNo, err)
		}

		batch = append(batch, entry)
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return added, err
			}
		}
	}

	// Process any remaining lines
	if err := flush(); err != nil {
		return added, err
	}

	return added, nil
}

func main() {
	db, err := filmdex.NewDatabase("./movies.db")
	if err != nil {
		panic(err)
	}
	defer db.Close()

	ctx := context.Background()

	// Determine source of seed data
	var source iter.Seq[string]
	if seedFileName != nil && *seedFileName != "" {
		source, err = linesFromFile(*seedFileName)
		if err != nil {
			panic(err)
		}
	} else {
		source = linesFromSlice(movies)
	}

	// Commit in batches of 5. Vectors are built lazily: the first search
	// indexes whatever was added here, so seeding needs no embedding service.
	added, err := seedBatched(ctx, db.CatalogRepository(), source, 5)
	if err != nil {
		panic(err)
	}

	slog.Info("seeding complete", "added", added)
}
