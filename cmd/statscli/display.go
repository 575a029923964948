package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/varchasvakhare2022/Github-Stats-Analyzer/model"
	"github.com/varchasvakhare2022/Github-Stats-Analyzer/service"
)

func displayJSON(report *service.Report, filtered model.RepositoryCollection) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	return encoder.Encode(map[string]interface{}{
		"report":   report,
		"filtered": filtered,
	})
}

func displayReport(report *service.Report, filtered model.RepositoryCollection) {
	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen)

	_, _ = cyan.Println("\n" + strings.Repeat("=", 80))
	_, _ = cyan.Printf("  GitHub statistics for @%s\n", report.Login)
	_, _ = cyan.Println(strings.Repeat("=", 80))

	fmt.Println()
	_, _ = green.Println("PROFILE")
	fmt.Println(strings.Repeat("-", 80))

	table := newPlainTable()
	profile := report.Profile

	if profile.Name != "" {
		table.Append([]string{"Name", profile.Name})
	}
	table.Append([]string{"Username", profile.Login})
	if profile.Bio != "" {
		table.Append([]string{"Bio", truncate(profile.Bio, 60)})
	}
	if profile.Company != "" {
		table.Append([]string{"Company", profile.Company})
	}
	if profile.Location != "" {
		table.Append([]string{"Location", profile.Location})
	}
	if profile.Blog != "" {
		table.Append([]string{"Website", profile.Blog})
	}
	table.Append([]string{"Joined", profile.CreatedAt.Format("January 2, 2006")})
	table.Append([]string{"Followers", fmt.Sprintf("%d", profile.Followers)})
	table.Append([]string{"Following", fmt.Sprintf("%d", profile.Following)})

	if ratio, ok := profile.FollowRatio(); ok {
		table.Append([]string{"Following/Followers", fmt.Sprintf("%.2f", ratio)})
	} else {
		table.Append([]string{"Following/Followers", "N/A"})
	}

	table.Render()

	fmt.Println()
	_, _ = green.Println("REPOSITORY STATISTICS")
	fmt.Println(strings.Repeat("-", 80))

	table = newPlainTable()
	table.Append([]string{"Public Repositories", fmt.Sprintf("%d", profile.PublicRepos)})
	table.Append([]string{"Total Stars Received", service.HumanNumber(report.Aggregates.TotalStars)})
	table.Append([]string{"Total Forks Received", service.HumanNumber(report.Aggregates.TotalForks)})
	table.Append([]string{"Languages", languagesSummary(report.Aggregates.Languages)})
	table.Render()

	fmt.Println()
	_, _ = green.Printf("REPOSITORIES (%d shown of %d)\n", len(filtered), len(report.Repositories))
	fmt.Println(strings.Repeat("-", 80))

	table = tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Name", "Language", "Stars", "Forks", "Updated"})
	table.SetBorder(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, r := range filtered {
		language := r.Language
		if language == "" {
			language = "-"
		}

		table.Append([]string{
			r.Name,
			language,
			fmt.Sprintf("%d", r.Stars),
			fmt.Sprintf("%d", r.Forks),
			r.UpdatedAt.Format("2006-01-02"),
		})
	}

	table.Render()
	fmt.Println()
}

func newPlainTable() *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Field", "Value"})
	table.SetBorder(false)
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	return table
}

func languagesSummary(tally map[string]int) string {
	languages := make([]string, 0, len(tally))

	for language := range tally {
		languages = append(languages, language)
	}

	// most used first, name breaks ties so the output is deterministic
	sort.Slice(languages, func(i, j int) bool {
		if tally[languages[i]] != tally[languages[j]] {
			return tally[languages[i]] > tally[languages[j]]
		}
		return languages[i] < languages[j]
	})

	if len(languages) > 3 {
		languages = languages[:3]
	}

	if len(languages) == 0 {
		return "-"
	}

	return strings.Join(languages, ", ")
}

// truncate counts runes, not bytes, so multi-byte descriptions are never cut
// mid character
func truncate(s string, max int) string {
	runes := []rune(s)

	if len(runes) <= max {
		return s
	}

	return string(runes[:max-3]) + "..."
}
