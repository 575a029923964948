package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/google/go-github/v66/github"
	"golang.org/x/time/rate"

	"github.com/varchasvakhare2022/Github-Stats-Analyzer/config"
	"github.com/varchasvakhare2022/Github-Stats-Analyzer/model"
	"github.com/varchasvakhare2022/Github-Stats-Analyzer/service"
)

func main() {
	var (
		username   = flag.String("user", "", "GitHub username to analyze")
		token      = flag.String("token", "", "GitHub Personal Access Token (overrides GITHUB_TOKEN env)")
		format     = flag.String("format", "table", "Output format: table, json")
		search     = flag.String("search", "", "Filter repositories by name or description substring")
		languageFl = flag.String("language", "", "Filter repositories by exact primary language")
		sortKey    = flag.String("sort", model.SortUpdated, "Sort repositories by: updated, stars, forks, name")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: statscli [options]\n\n")
		fmt.Fprintf(os.Stderr, "Fetches a GitHub user's profile and repositories and prints aggregate statistics.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  statscli -user octocat\n")
		fmt.Fprintf(os.Stderr, "  statscli -user octocat -sort stars -language Go\n")
		fmt.Fprintf(os.Stderr, "  statscli -user octocat -format json\n")
	}

	flag.Parse()

	if *format != "table" && *format != "json" {
		displayError(fmt.Sprintf("invalid format: %s (must be 'table' or 'json')", *format))
		os.Exit(1)
	}

	query := model.ViewQuery{Search: *search, Language: *languageFl, Sort: *sortKey}
	if !query.ValidSortKey() {
		displayError(fmt.Sprintf("invalid sort key: %s", *sortKey))
		os.Exit(1)
	}

	cfg := config.GetDefault()
	cfg.Github.Token = *token

	if cfg.Github.Token == "" {
		cfg.Github.Token = os.Getenv("GITHUB_TOKEN")
	}

	// the CLI is one shot, a permissive local limiter is enough: the
	// upstream quota itself is still honored through error classification
	rateLimiter := rate.NewLimiter(rate.Every(time.Hour), 5000)

	githubService := service.NewGithubService(*cfg, github.NewClient(nil), rateLimiter)
	reportService := service.NewReportService(*cfg, githubService)

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " Fetching profile and repositories..."
	s.Start()

	report, err := reportService.BuildReport(context.Background(), *username)
	s.Stop()

	if err != nil {
		displayError(model.NewAPIError(err).Message)
		os.Exit(1)
	}

	filtered := service.FilterRepositories(report.Repositories, query)

	if *format == "json" {
		if err := displayJSON(report, filtered); err != nil {
			displayError(fmt.Sprintf("unable to encode report: %v", err))
			os.Exit(1)
		}
		return
	}

	displayReport(report, filtered)
}

func displayError(message string) {
	red := color.New(color.FgRed, color.Bold)
	_, _ = red.Fprintf(os.Stderr, "Error: %s\n", message)
}
