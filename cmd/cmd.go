// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// migrateCommand runs a Spotify → YouTube Music playlist migration
func migrateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Migrate a Spotify playlist to a new YouTube Music playlist",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "source",
				Aliases: []string{"s"},
				Usage:   "Spotify playlist ID, URL or URI (prompted when omitted)",
			},
			&cli.StringFlag{
				Name:    "name",
				Aliases: []string{"n"},
				Usage:   "Destination playlist name (prompted when omitted)",
			},
			&cli.StringFlag{
				Name:    "description",
				Aliases: []string{"d"},
				Usage:   "Destination playlist description (prompted when omitted)",
			},
			&cli.StringFlag{
				Name:  "mode",
				Usage: "How matches are added: batched or single",
			},
			&cli.IntFlag{
				Name:  "batch-size",
				Usage: "Identifiers per add call in batched mode",
			},
			&cli.StringFlag{
				Name:    "report",
				Aliases: []string{"o"},
				Usage:   "Write the migration report to this file",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Report format: json, csv, markdown or txt (inferred from --report when omitted)",
			},
			&cli.BoolFlag{
				Name:  "fail-on-unmatched",
				Usage: "Exit with an error when any track could not be matched",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the report as JSON instead of a summary",
			},
		},
		Action: r.Migrate,
	}
}

// ytmusicCommand handles YouTube Music diagnostics
func ytmusicCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "ytmusic",
		Aliases: []string{"ytm", "yt"},
		Usage:   "YouTube Music operations",
		Commands: []*cli.Command{
			{
				Name:  "search",
				Usage: "Search the YouTube Music proxy, or score candidates for a track with --title",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "query",
					},
				},
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:  "kind",
						Usage: "Result kind for raw searches: songs or videos",
						Value: "songs",
					},
					&cli.StringFlag{
						Name:  "title",
						Usage: "Source track title; runs every matching stage and shows each score",
					},
					&cli.StringSliceFlag{
						Name:  "artist",
						Usage: "Source track artist, main artist first (repeatable)",
					},
					&cli.StringFlag{
						Name:  "duration",
						Usage: "Source track duration as M:SS or H:MM:SS",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.YTMusicSearch,
			},
			{
				Name:   "health",
				Usage:  "Check the YouTube Music proxy (calls /health)",
				Flags:  []cli.Flag{configFlag()},
				Action: r.YTMusicHealth,
			},
		},
	}
}

// historyCommand inspects recorded migration runs
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Inspect past migration runs",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recorded runs, most recent first",
				Flags: []cli.Flag{
					configFlag(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of runs to show (0 for all)",
						Value: 20,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.HistoryList,
			},
			{
				Name:  "show",
				Usage: "Show the report of a recorded run",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format: summary, json, csv, markdown or txt",
						Value: "summary",
					},
				},
				Action: r.HistoryShow,
			},
			{
				Name:  "delete",
				Usage: "Delete a recorded run",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.HistoryDelete,
			},
		},
	}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write an example configuration file",
				Flags: []cli.Flag{
					configFlag(),
				},
				Action: r.SetupConfig,
			},
		},
	}
}
