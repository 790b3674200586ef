package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/transitkit/timetable"
	"github.com/transitkit/timetable/agencies/amtrak"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "timetable",
		Usage: "fill hand-authored timetable specs from GTFS schedule data",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "gtfs",
				Usage: "path to the GTFS static zip",
				Value: "google_transit.zip",
			},
			&cli.StringFlag{
				Name:  "agency",
				Usage: "agency capability set to use: amtrak, generic",
				Value: "amtrak",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log debug detail",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "fill",
				Usage:     "fill a timetable spec and print the result as CSV",
				ArgsUsage: "spec.csv [aux.yaml]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "date",
						Usage: "reference date (YYYYMMDD), overrides the aux file",
					},
				},
				Action: fillAction,
			},
			{
				Name:      "stations",
				Usage:     "print the ordered station list of a train on a date",
				ArgsUsage: "train-number date",
				Action:    stationsAction,
			},
			{
				Name:      "trains",
				Usage:     "list the train numbers active on a date, flagging duplicates",
				ArgsUsage: "date",
				Action:    trainsAction,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}

func newLogger(ctx *cli.Context) *slog.Logger {
	level := slog.LevelInfo
	if ctx.Bool("verbose") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadFeed reads and parses the GTFS zip and builds the agency capability
// set, with the agency's known-bad calendars already filtered out.
func loadFeed(ctx *cli.Context) (*timetable.Feed, timetable.AgencyCapabilities, error) {
	path := ctx.String("gtfs")
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	feed, err := timetable.ParseFeed(b)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse GTFS static data: %w", err)
	}
	var ag timetable.AgencyCapabilities
	switch name := ctx.String("agency"); name {
	case "amtrak":
		ag = amtrak.New(feed)
	case "generic":
		ag = timetable.NewGenericAgency(feed)
	default:
		return nil, nil, fmt.Errorf("unknown agency %q", name)
	}
	if bad := ag.BadServiceIds(); len(bad) > 0 {
		feed = feed.FilterOutServiceIds(bad)
	}
	return feed, ag, nil
}

func fillAction(ctx *cli.Context) error {
	if ctx.Args().Len() == 0 {
		return fmt.Errorf("a path to the timetable spec was not provided")
	}
	logger := newLogger(ctx)

	gridFile, err := os.Open(ctx.Args().Get(0))
	if err != nil {
		return err
	}
	defer gridFile.Close()
	var auxFile *os.File
	if ctx.Args().Len() > 1 {
		auxFile, err = os.Open(ctx.Args().Get(1))
		if err != nil {
			return err
		}
		defer auxFile.Close()
	}
	var spec *timetable.GridSpec
	if auxFile != nil {
		spec, err = timetable.LoadSpec(gridFile, auxFile)
	} else {
		spec, err = timetable.LoadSpec(gridFile, nil)
	}
	if err != nil {
		return err
	}
	if date := ctx.String("date"); date != "" {
		spec.Options.ReferenceDate = date
	}
	if spec.Options.ReferenceDate == "" {
		return fmt.Errorf("no reference date: pass --date or set reference_date in the aux file")
	}

	feed, ag, err := loadFeed(ctx)
	if err != nil {
		return err
	}
	todayFeed := feed.FilterByDate(spec.Options.ReferenceDate)

	spec.StripOmits()
	spec.ExtractColumnOptions()
	if err := spec.ExpandKeyRow(todayFeed, ag); err != nil {
		return err
	}
	pages, err := spec.Paginate()
	if err != nil {
		return err
	}

	heading := color.New(color.FgCyan, color.Bold)
	for _, page := range pages {
		result, err := timetable.Fill(page, todayFeed, ag, logger)
		if err != nil {
			return err
		}
		if page.Options.Heading != "" {
			heading.Println(page.Options.Heading)
		}
		if err := result.WriteCSV(os.Stdout); err != nil {
			return err
		}
		for _, w := range result.Warnings {
			color.Yellow("warning: %s", w.Error())
		}
	}
	return nil
}

func stationsAction(ctx *cli.Context) error {
	if ctx.Args().Len() < 2 {
		return fmt.Errorf("usage: stations train-number date")
	}
	trainNumber := ctx.Args().Get(0)
	date := ctx.Args().Get(1)

	feed, ag, err := loadFeed(ctx)
	if err != nil {
		return err
	}
	todayFeed := feed.FilterByDate(date)
	stations, err := timetable.StationsFromTrainNumber(todayFeed, trainNumber, ag)
	if err != nil {
		return err
	}
	fmt.Println(strings.Join(stations, "\n"))
	return nil
}

func trainsAction(ctx *cli.Context) error {
	if ctx.Args().Len() < 1 {
		return fmt.Errorf("usage: trains date")
	}
	date := ctx.Args().Get(0)

	feed, _, err := loadFeed(ctx)
	if err != nil {
		return err
	}
	todayFeed := feed.FilterByDate(date)

	dupes := map[string]bool{}
	for _, trainNumber := range timetable.FindDuplicateTrainNumbers(todayFeed) {
		dupes[trainNumber] = true
	}
	seen := map[string]bool{}
	dc := color.New(color.FgYellow)
	for _, trip := range todayFeed.Trips {
		if seen[trip.ShortName] {
			continue
		}
		seen[trip.ShortName] = true
		if dupes[trip.ShortName] {
			dc.Printf("%s (duplicate: qualify with a day of the week)\n", trip.ShortName)
		} else {
			fmt.Println(trip.ShortName)
		}
	}
	return nil
}
