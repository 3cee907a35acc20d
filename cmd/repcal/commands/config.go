package commands

import (
	"log/slog"
	"os"

	"repcal/internal/notify"
	"repcal/internal/registry"
	"repcal/lib/browser"
	"repcal/lib/configutil"
	"repcal/lib/restyutil"
)

type GitConfig struct {
	Disabled bool   `json:"disabled"`
	Dir      string `json:"dir"`
	Remote   string `json:"remote"`
	Branch   string `json:"branch"`
}

type Config struct {
	DataDir      string                            `json:"data_dir"`
	CalendarPath string                            `json:"calendar_path"`
	FilmsPath    string                            `json:"films_path"`
	JournalDB    string                            `json:"journal_db"`
	HTTPDumpDir  string                            `json:"http_dump_dir"`
	Browser      browser.Options                   `json:"browser"`
	Theaters     map[string]registry.TheaterConfig `json:"theaters"`
	Git          GitConfig                         `json:"git"`
	Notify       notify.SmtpConfig                 `json:"notify"`
}

func (c Config) withDefaults() Config {
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.CalendarPath == "" {
		c.CalendarPath = "index.html"
	}
	if c.FilmsPath == "" {
		c.FilmsPath = "films.html"
	}
	if c.JournalDB == "" {
		c.JournalDB = ".dev/runlog.db"
	}
	if c.Git.Dir == "" {
		c.Git.Dir = "."
	}
	if c.Git.Remote == "" {
		c.Git.Remote = "origin"
	}
	if c.Git.Branch == "" {
		c.Git.Branch = "main"
	}
	return c
}

func loadConfig(path string) (Config, error) {
	cfg, err := configutil.ReadConfig[Config](path)
	if os.IsNotExist(err) {
		slog.Warn("no config file found, using defaults", "path", path)
		return Config{}.withDefaults(), nil
	}
	if err != nil {
		return cfg, err
	}
	return cfg.withDefaults(), nil
}

// httpDump enables raw HTTP exchange dumps for browserless scrapers
// when a dump directory is configured.
func (c Config) httpDump() restyutil.InstrumentOutput {
	if c.HTTPDumpDir == "" {
		return nil
	}
	return restyutil.NewFilesystemOutput(c.HTTPDumpDir)
}

// publishPaths is what the git phase stages.
func (c Config) publishPaths() []string {
	return []string{c.DataDir, c.CalendarPath, c.FilmsPath}
}
