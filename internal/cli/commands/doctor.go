package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/catalognav/internal/catalog"
	"github.com/leapstack-labs/catalognav/internal/cli/config"
	"github.com/leapstack-labs/catalognav/internal/cli/output"
	"github.com/leapstack-labs/catalognav/internal/extractor"
	"github.com/leapstack-labs/catalognav/internal/state"
	"github.com/leapstack-labs/catalognav/pkg/core"
	"github.com/spf13/cobra"
)

// DoctorOptions holds options for the doctor command.
type DoctorOptions struct {
	Format string // Output format: text, markdown, json
}

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	opts := &DoctorOptions{}
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the extraction tool, snapshot store and catalog",
		Long: `Run health checks against the configured extraction tool and the catalog it
reports.

The doctor command extracts a fresh catalog and reports:
- Catalog summary (databases, tables, fields, links)
- Health checks grouped by category (Tool, Snapshot, Catalog)
- Health score (0-100)
- Actionable recommendations

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # Run health check
  catalognav doctor

  # Output as JSON
  catalognav doctor --format json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")

	return cmd
}

// DoctorOutput is the JSON output for the doctor command.
type DoctorOutput struct {
	Summary         CatalogSummary `json:"summary"`
	HealthChecks    []HealthCheck  `json:"health_checks"`
	Score           int            `json:"score"`
	Recommendations []string       `json:"recommendations"`
	IssueCount      int            `json:"issue_count"`
}

// CatalogSummary contains catalog-level statistics.
type CatalogSummary struct {
	Databases     int `json:"databases"`
	Tables        int `json:"tables"`
	Fields        int `json:"fields"`
	Relationships int `json:"relationships"`
}

// HealthCheck represents a single health check result.
type HealthCheck struct {
	RuleID     string   `json:"rule_id"`
	Name       string   `json:"name"`
	Group      string   `json:"group"`
	Status     string   `json:"status"` // "pass", "warn", "error"
	IssueCount int      `json:"issue_count"`
	Details    []string `json:"details,omitempty"`
}

func runDoctor(cmd *cobra.Command, opts *DoctorOptions) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	logger := config.GetLogger(ctx)
	runner := runnerFromContext(ctx, cfg, logger)

	mode := output.Mode(cfg.OutputFormat)
	if opts.Format != "" {
		mode = output.Mode(opts.Format)
	}
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	checks := []HealthCheck{checkExtractorBinary(runner), checkSnapshotStore(ctx, cfg)}

	cache := catalog.New(runner, catalog.WithLogger(logger))
	cat, err := cache.Snapshot(ctx)
	extraction := HealthCheck{RuleID: "TL02", Name: "catalog-extraction", Group: "tool", Status: "pass"}
	if err != nil {
		extraction.Status = "error"
		extraction.IssueCount = 1
		extraction.Details = []string{err.Error()}
	}
	checks = append(checks, extraction)
	if cat != nil {
		checks = append(checks, checkCatalog(cat)...)
	}

	doctorOutput := buildDoctorOutput(cat, checks)

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(doctorOutput)
	case output.ModeYAML:
		return r.YAML(doctorOutput)
	case output.ModeMarkdown:
		return renderDoctorMarkdown(r, doctorOutput)
	default:
		return renderDoctorText(r, doctorOutput)
	}
}

func checkExtractorBinary(runner extractor.Runner) HealthCheck {
	check := HealthCheck{RuleID: "TL01", Name: "extractor-binary", Group: "tool", Status: "pass"}

	execRunner, ok := runner.(*extractor.ExecRunner)
	if !ok {
		return check
	}

	info, err := os.Stat(execRunner.Path())
	switch {
	case err != nil:
		check.Status = "error"
		check.Details = []string{fmt.Sprintf("%s: %v", execRunner.Path(), err)}
	case info.IsDir():
		check.Status = "error"
		check.Details = []string{execRunner.Path() + " is a directory"}
	case info.Mode().Perm()&0o111 == 0:
		check.Status = "error"
		check.Details = []string{execRunner.Path() + " is not executable"}
	}
	check.IssueCount = len(check.Details)
	return check
}

func checkSnapshotStore(ctx context.Context, cfg *config.Config) HealthCheck {
	check := HealthCheck{RuleID: "SN01", Name: "snapshot-store", Group: "snapshot", Status: "pass"}
	if !cfg.SnapshotEnabled() {
		return check
	}

	store, err := state.OpenStore(cfg.SnapshotPath)
	if err != nil {
		check.Status = "error"
		check.IssueCount = 1
		check.Details = []string{err.Error()}
		return check
	}
	defer func() { _ = store.Close() }()

	snap, err := store.Load(ctx)
	switch {
	case errors.Is(err, core.ErrNoSnapshot):
		// An empty store is filled by the next catalog read.
	case err != nil:
		check.Status = "warn"
		check.IssueCount = 1
		check.Details = []string{err.Error()}
	case time.Since(snap.FetchedAt) > 24*time.Hour:
		check.Status = "warn"
		check.IssueCount = 1
		check.Details = []string{fmt.Sprintf("snapshot %s was taken %s", snap.ID, snap.FetchedAt.Format(time.RFC3339))}
	}
	return check
}

// checkCatalog reports structural problems of a catalog snapshot.
func checkCatalog(cat *core.Catalog) []HealthCheck {
	dangling := HealthCheck{RuleID: "CT01", Name: "dangling-links", Group: "catalog"}
	dupTables := HealthCheck{RuleID: "CT02", Name: "duplicate-table-names", Group: "catalog"}
	noFields := HealthCheck{RuleID: "CT03", Name: "tables-without-fields", Group: "catalog"}
	dupDBs := HealthCheck{RuleID: "CT04", Name: "duplicate-database-names", Group: "catalog"}

	seenDB := make(map[string]bool)
	for _, db := range cat.Databases {
		if seenDB[db.Name] {
			dupDBs.Details = append(dupDBs.Details, fmt.Sprintf("database %q is listed more than once", db.Name))
		}
		seenDB[db.Name] = true

		seenTable := make(map[string]bool)
		for _, t := range db.Tables {
			if seenTable[t.Name] {
				dupTables.Details = append(dupTables.Details, fmt.Sprintf("%s.%s is listed more than once", db.Name, t.Name))
			}
			seenTable[t.Name] = true

			if len(t.Fields) == 0 {
				noFields.Details = append(noFields.Details, fmt.Sprintf("%s.%s declares no fields", db.Name, t.Name))
			}
		}

		for _, t := range db.Tables {
			for _, rel := range t.Relationships {
				if !seenTable[rel.TableName] {
					dangling.Details = append(dangling.Details,
						fmt.Sprintf("%s.%s link %q targets missing table %q", db.Name, t.Name, rel.LinkName, rel.TableName))
				}
			}
		}
	}

	checks := []HealthCheck{dangling, dupTables, noFields, dupDBs}
	for i := range checks {
		checks[i].IssueCount = len(checks[i].Details)
		checks[i].Status = "pass"
		if checks[i].IssueCount > 0 {
			checks[i].Status = "warn"
		}
	}
	return checks
}

func buildDoctorOutput(cat *core.Catalog, checks []HealthCheck) *DoctorOutput {
	summary := buildCatalogSummary(cat)

	sort.SliceStable(checks, func(i, j int) bool {
		if checks[i].Group != checks[j].Group {
			return checks[i].Group < checks[j].Group
		}
		return checks[i].RuleID < checks[j].RuleID
	})

	issues := 0
	for _, c := range checks {
		issues += c.IssueCount
	}

	return &DoctorOutput{
		Summary:         summary,
		HealthChecks:    checks,
		Score:           calculateHealthScore(checks, summary.Tables),
		Recommendations: generateRecommendations(checks),
		IssueCount:      issues,
	}
}

func buildCatalogSummary(cat *core.Catalog) CatalogSummary {
	var summary CatalogSummary
	if cat == nil {
		return summary
	}
	summary.Databases = len(cat.Databases)
	for _, db := range cat.Databases {
		summary.Tables += len(db.Tables)
		for _, t := range db.Tables {
			summary.Fields += len(t.Fields)
			summary.Relationships += len(t.Relationships)
		}
	}
	return summary
}

// calculateHealthScore computes a health score from 0-100.
// Errors count double, and larger catalogs soften the penalty per issue.
func calculateHealthScore(checks []HealthCheck, tableCount int) int {
	if len(checks) == 0 {
		return 100
	}

	score := 100.0

	basePenalty := 5.0
	if tableCount > 10 {
		basePenalty = 3.0
	}
	if tableCount > 50 {
		basePenalty = 2.0
	}
	if tableCount > 100 {
		basePenalty = 1.0
	}

	for _, check := range checks {
		switch check.Status {
		case "error":
			score -= float64(check.IssueCount) * basePenalty * 2
		case "warn":
			score -= float64(check.IssueCount) * basePenalty
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return int(score)
}

// generateRecommendations creates actionable recommendations based on findings.
func generateRecommendations(checks []HealthCheck) []string {
	var recommendations []string
	seen := make(map[string]bool)

	for _, check := range checks {
		if check.IssueCount == 0 {
			continue
		}

		rec := getRecommendation(check.RuleID)
		if rec != "" && !seen[rec] {
			recommendations = append(recommendations, rec)
			seen[rec] = true
		}
	}

	if len(recommendations) > 5 {
		recommendations = recommendations[:5]
	}

	return recommendations
}

// getRecommendation returns a recommendation for a specific rule.
func getRecommendation(ruleID string) string {
	switch ruleID {
	case "TL01":
		return "Set 'extractor' in catalognav.yaml or pass --extractor with the path of the extraction tool"
	case "TL02":
		return "Run the extraction tool by hand and fix the error it prints"
	case "SN01":
		return "Run 'catalognav refresh' or disable the snapshot with --no-snapshot"
	case "CT01":
		return "Links to missing tables cannot be followed; regenerate the catalog"
	case "CT02":
		return "Rename duplicate tables; only the first one can be browsed"
	case "CT03":
		return "Tables without fields cannot show records"
	case "CT04":
		return "Rename duplicate databases; only the first one can be browsed by name"
	default:
		return ""
	}
}

func renderDoctorText(r *output.Renderer, out *DoctorOutput) error {
	styles := r.Styles()

	r.Println("")
	r.Println(styles.Header.Render("catalognav Health Report"))
	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	r.Println("")

	r.Println(styles.Header.Render("Catalog Summary"))
	r.Printf("   Databases: %d | Tables: %d | Fields: %d | Links: %d\n",
		out.Summary.Databases, out.Summary.Tables, out.Summary.Fields, out.Summary.Relationships)
	r.Println("")

	r.Println(styles.Header.Render("Health Checks"))
	r.Println("")

	currentGroup := ""
	titleCaser := cases.Title(language.English)
	for _, check := range out.HealthChecks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println("   " + titleCaser.String(currentGroup))
			r.Println(styles.Muted.Render("   " + strings.Repeat("-", 40)))
		}

		icon := styles.Success.Render("✓")
		switch check.Status {
		case "warn":
			icon = styles.Warning.Render("!")
		case "error":
			icon = styles.Error.Render("✗")
		}

		status := fmt.Sprintf("%s %s: %s", icon, check.RuleID, check.Name)
		if check.IssueCount > 0 {
			status += fmt.Sprintf(" (%d issues)", check.IssueCount)
		}
		r.Println("   " + status)

		for i, detail := range check.Details {
			if i >= 3 {
				r.Println(styles.Muted.Render(fmt.Sprintf("       ... and %d more", len(check.Details)-3)))
				break
			}
			r.Println(styles.Muted.Render("       - " + detail))
		}
	}
	r.Println("")

	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	scoreStyle := styles.Success
	if out.Score < 70 {
		scoreStyle = styles.Warning
	}
	if out.Score < 50 {
		scoreStyle = styles.Error
	}
	r.Printf("   Health Score: %s\n", scoreStyle.Render(fmt.Sprintf("%d/100", out.Score)))
	r.Println("")

	if len(out.Recommendations) > 0 {
		r.Println(styles.Header.Render("Recommendations"))
		for i, rec := range out.Recommendations {
			r.Printf("   %d. %s\n", i+1, rec)
		}
		r.Println("")
	}

	return nil
}

func renderDoctorMarkdown(r *output.Renderer, out *DoctorOutput) error {
	r.Println("# catalognav Health Report")
	r.Println("")

	r.Println("## Catalog Summary")
	r.Println("")
	r.Printf("- **Databases**: %d\n", out.Summary.Databases)
	r.Printf("- **Tables**: %d\n", out.Summary.Tables)
	r.Printf("- **Fields**: %d\n", out.Summary.Fields)
	r.Printf("- **Links**: %d\n", out.Summary.Relationships)
	r.Println("")

	r.Println("## Health Checks")
	r.Println("")

	currentGroup := ""
	titleCaser := cases.Title(language.English)
	for _, check := range out.HealthChecks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println("### " + titleCaser.String(currentGroup))
			r.Println("")
		}

		status := "PASS"
		switch check.Status {
		case "warn":
			status = "WARN"
		case "error":
			status = "ERROR"
		}

		r.Printf("- **[%s]** %s: %s", status, check.RuleID, check.Name)
		if check.IssueCount > 0 {
			r.Printf(" (%d issues)", check.IssueCount)
		}
		r.Println("")

		for _, detail := range check.Details {
			r.Printf("  - %s\n", detail)
		}
	}
	r.Println("")

	r.Println("## Health Score")
	r.Println("")
	r.Printf("**%d/100**\n", out.Score)
	r.Println("")

	if len(out.Recommendations) > 0 {
		r.Println("## Recommendations")
		r.Println("")
		for i, rec := range out.Recommendations {
			r.Printf("%d. %s\n", i+1, rec)
		}
		r.Println("")
	}

	return nil
}
