// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func userFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "user",
		Aliases: []string{"u"},
		Usage:   "User ID or email",
		Sources: cli.EnvVars("COURSETUBE_USER"),
	}
}

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "json",
		Usage: "Output JSON",
	}
}

// setupCommand handles setup operations for the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Create the config file if missing, then initialize the database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   defaultConfigPath,
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// usersCommand manages learners.
func usersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "Manage users",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create a user",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Usage: "Email address", Required: true},
					&cli.StringFlag{Name: "name", Usage: "Display name", Required: true},
				},
				Action: r.UsersCreate,
			},
			{
				Name:   "list",
				Usage:  "List users",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.UsersList,
			},
		},
	}
}

// coursesCommand manages courses and their exports.
func coursesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "courses",
		Usage: "Manage courses",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create an empty course",
				Flags: []cli.Flag{
					userFlag(),
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Course title", Required: true},
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Course description"},
				},
				Action: r.CoursesCreate,
			},
			{
				Name:   "list",
				Usage:  "List a user's courses",
				Flags:  []cli.Flag{userFlag(), jsonFlag()},
				Action: r.CoursesList,
			},
			{
				Name:      "show",
				Usage:     "Show a course with its items and progress",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     []cli.Flag{userFlag(), jsonFlag()},
				Action:    r.CoursesShow,
			},
			{
				Name:      "delete",
				Usage:     "Delete a course and its items",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     []cli.Flag{userFlag()},
				Action:    r.CoursesDelete,
			},
			{
				Name:      "export",
				Usage:     "Export a course as JSON, CSV, Markdown or text",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					userFlag(),
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: json, csv, markdown, txt",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output path (file, base name for csv, directory for markdown); stdout when empty",
					},
					&cli.BoolFlag{
						Name:  "cover",
						Usage: "Download the first thumbnail as cover image (markdown only)",
					},
				},
				Action: r.CoursesExport,
			},
			{
				Name:  "export-all",
				Usage: "Export every course of a user concurrently",
				Flags: []cli.Flag{
					userFlag(),
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: json, csv, markdown, txt",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory (default: course_export_{timestamp})",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent workers (max 10)",
						Value: 5,
					},
					&cli.BoolFlag{
						Name:  "covers",
						Usage: "Download cover images (markdown only)",
					},
				},
				Action: r.CoursesExportAll,
			},
		},
	}
}

// itemsCommand manages individual course items.
func itemsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "items",
		Usage: "Manage course items",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Append a manual item to a course",
				Flags: []cli.Flag{
					userFlag(),
					&cli.StringFlag{Name: "course", Aliases: []string{"c"}, Usage: "Course ID", Required: true},
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Item title", Required: true},
					&cli.StringFlag{Name: "type", Usage: "video, reading, assignment, quiz or other", Value: "other"},
					&cli.StringFlag{Name: "url", Usage: "Content URL"},
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Item description"},
					&cli.IntFlag{Name: "duration", Usage: "Duration in minutes; negative for unknown", Value: -1},
				},
				Action: r.ItemsAdd,
			},
			{
				Name:  "list",
				Usage: "List a course's items in order",
				Flags: []cli.Flag{
					userFlag(),
					&cli.StringFlag{Name: "course", Aliases: []string{"c"}, Usage: "Course ID", Required: true},
					jsonFlag(),
				},
				Action: r.ItemsList,
			},
			{
				Name:      "open",
				Usage:     "Open an item's content URL in the browser",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     []cli.Flag{userFlag()},
				Action:    r.ItemsOpen,
			},
		},
	}
}

// notesCommand manages learner notes on course items.
func notesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "notes",
		Usage: "Take notes on course items",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Add a note to a course item",
				Flags: []cli.Flag{
					userFlag(),
					&cli.StringFlag{Name: "item", Aliases: []string{"i"}, Usage: "Course item ID", Required: true},
					&cli.StringFlag{Name: "content", Aliases: []string{"m"}, Usage: "Note text", Required: true},
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Optional title"},
					&cli.IntFlag{Name: "at", Usage: "Video position in seconds; 0 leaves the note unpinned"},
				},
				Action: r.NotesAdd,
			},
			{
				Name:  "list",
				Usage: "List notes on an item or across a course",
				Flags: []cli.Flag{
					userFlag(),
					&cli.StringFlag{Name: "item", Aliases: []string{"i"}, Usage: "Course item ID"},
					&cli.StringFlag{Name: "course", Aliases: []string{"c"}, Usage: "Course ID"},
					jsonFlag(),
				},
				Action: r.NotesList,
			},
			{
				Name:      "edit",
				Usage:     "Replace a note's title, text and position",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					userFlag(),
					&cli.StringFlag{Name: "content", Aliases: []string{"m"}, Usage: "Note text", Required: true},
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Optional title"},
					&cli.IntFlag{Name: "at", Usage: "Video position in seconds; 0 leaves the note unpinned"},
				},
				Action: r.NotesEdit,
			},
			{
				Name:      "delete",
				Usage:     "Delete a note",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     []cli.Flag{userFlag()},
				Action:    r.NotesDelete,
			},
		},
	}
}

// importCommand runs and inspects playlist imports.
func importCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import YouTube playlists into courses",
		Commands: []*cli.Command{
			{
				Name:  "playlist",
				Usage: "Append a playlist's videos to a course",
				Flags: []cli.Flag{
					userFlag(),
					&cli.StringFlag{Name: "course", Aliases: []string{"c"}, Usage: "Course ID", Required: true},
					&cli.StringFlag{Name: "url", Usage: "Playlist URL", Required: true},
					&cli.BoolFlag{Name: "tui", Usage: "Follow progress in the interactive UI"},
					jsonFlag(),
				},
				Action: r.ImportPlaylist,
			},
			{
				Name:  "history",
				Usage: "List past imports",
				Flags: []cli.Flag{
					userFlag(),
					&cli.StringFlag{Name: "course", Aliases: []string{"c"}, Usage: "Only imports into this course"},
					&cli.StringFlag{Name: "status", Usage: "Only imports with this status"},
					jsonFlag(),
				},
				Action: r.ImportHistory,
			},
		},
	}
}

// progressCommand records and reports learner progress.
func progressCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "progress",
		Usage: "Track progress through courses",
		Commands: []*cli.Command{
			{
				Name:  "set",
				Usage: "Record progress on an item",
				Flags: []cli.Flag{
					userFlag(),
					&cli.StringFlag{Name: "item", Aliases: []string{"i"}, Usage: "Course item ID", Required: true},
					&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Usage: "not_started, in_progress or completed", Required: true},
					&cli.IntFlag{Name: "percent", Usage: "Progress percentage"},
					&cli.IntFlag{Name: "time", Usage: "Minutes spent; negative keeps the stored value", Value: -1},
				},
				Action: r.ProgressSet,
			},
			{
				Name:  "show",
				Usage: "Show progress through a course",
				Flags: []cli.Flag{
					userFlag(),
					&cli.StringFlag{Name: "course", Aliases: []string{"c"}, Usage: "Course ID", Required: true},
					jsonFlag(),
				},
				Action: r.ProgressShow,
			},
		},
	}
}

// youtubeCommand exposes the playlist fetcher and its helpers without touching the database.
func youtubeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "youtube",
		Aliases: []string{"yt"},
		Usage:   "Inspect YouTube playlists",
		Commands: []*cli.Command{
			{
				Name:      "resolve",
				Usage:     "Extract the playlist and video IDs from a URL",
				Arguments: []cli.Argument{&cli.StringArg{Name: "url"}},
				Action:    r.YouTubeResolve,
			},
			{
				Name:      "duration",
				Usage:     "Convert an ISO-8601 duration to whole minutes",
				Arguments: []cli.Argument{&cli.StringArg{Name: "duration"}},
				Action:    r.YouTubeDuration,
			},
			{
				Name:      "fetch",
				Usage:     "Fetch a playlist and print its videos",
				Arguments: []cli.Argument{&cli.StringArg{Name: "url"}},
				Flags: []cli.Flag{
					jsonFlag(),
					&cli.IntFlag{Name: "concurrency", Usage: "Concurrent detail batches (default from config)"},
				},
				Action: r.YouTubeFetch,
			},
		},
	}
}

// apiCommand handles raw Data API calls.
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Raw YouTube Data API calls",
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "GET a Data API path (e.g. /videos?part=snippet&id=...) with the configured key",
				Arguments: []cli.Argument{&cli.StringArg{Name: "path"}},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output compact JSON",
					},
				},
				Action: r.APIGet,
			},
		},
	}
}

// authCommand handles OAuth for private playlists.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authorization for private playlists",
		Commands: []*cli.Command{
			{
				Name:  "youtube",
				Usage: "Authorize read-only YouTube access with OAuth2 and store the token in the config file",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "no-browser", Usage: "Print the consent URL instead of opening it"},
				},
				Action: r.AuthYouTube,
			},
			{
				Name:   "status",
				Usage:  "Show which YouTube credentials are configured",
				Action: r.AuthStatus,
			},
		},
	}
}

// serveCommand runs the JSON API.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the course JSON API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "Listen host (default from config)"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Listen port (default from config)"},
		},
		Action: r.Serve,
	}
}

// tuiCommand launches the interactive import UI.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Import playlists interactively",
		Flags: []cli.Flag{
			userFlag(),
			&cli.StringFlag{Name: "course", Aliases: []string{"c"}, Usage: "Preselect a course"},
			&cli.StringFlag{Name: "url", Usage: "Preset playlist URL; with --course the import starts immediately"},
		},
		Action: r.TUI,
	}
}
