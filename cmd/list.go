package cmd

import (
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/spf13/cobra"

	"go-drummer/catalog"
)

// listTemplates render one table each. Items arrive as .Items; the catalog
// is available as .Catalog.
var listTemplates = map[string]string{
	"genres": `{{range .Items}}{{.ID | printf "%-12s"}} {{.Name | printf "%-12s"}} {{.Preset.BPM}} bpm  {{len .Patterns}} patterns
{{end}}`,
	"patterns": `{{range .Items}}{{.ID | printf "%-20s"}} {{.Name | printf "%-18s"}} {{.Genre | printf "%-10s"}} {{.TimeSignature | toString | printf "%-5s"}} {{.Bars}} bar{{if gt .Bars 1}}s{{end}}{{if .BPM}}  {{.BPM}} bpm{{end}}
{{end}}`,
	"progressions": `{{range .Items}}{{.ID | printf "%-18s"}} {{.Name | printf "%-22s"}} {{.Bars}} bars  {{range $i, $s := .Steps}}{{if $i}} - {{end}}{{$s.Degree}}{{$s.Quality.Suffix}}{{end}}
{{end}}`,
	"artists": `{{range .Items}}{{.ID | printf "%-16s"}} {{.Name | printf "%-18s"}} {{.Genre | printf "%-8s"}} {{.Scale | printf "%-18s"}} over {{.Progression}}
{{end}}`,
	"scales": `{{range .Items}}{{.ID | printf "%-17s"}} {{.Name | printf "%-17s"}} {{.Intervals | join " "}}
{{end}}`,
	"grooves": `{{range .Items}}{{.ID | printf "%-22s"}} {{.Name | printf "%-22s"}} {{.Category | printf "%-7s"}} {{.BPM}} bpm  {{len .Steps}} steps
{{end}}`,
}

var listFormat string

var listCmd = &cobra.Command{
	Use:       "list [genres|patterns|progressions|artists|scales|grooves]",
	Short:     "Print the built-in tables",
	Long:      "Print the built-in tables. --format takes a Go template with sprig functions, applied to {{.Items}}.",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: tableNames(),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.Load()
		if err != nil {
			return err
		}
		return printTable(cmd.OutOrStdout(), cat, args[0], listFormat)
	},
}

func init() {
	listCmd.Flags().StringVarP(&listFormat, "format", "f", "", "template for the output")
	rootCmd.AddCommand(listCmd)
}

func tableNames() []string {
	names := make([]string, 0, len(listTemplates))
	for n := range listTemplates {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func tableItems(cat *catalog.Catalog, table string) any {
	switch table {
	case "genres":
		return cat.Genres
	case "patterns":
		items := make([]catalog.DrumPattern, 0, len(cat.Patterns))
		for _, id := range cat.PatternIDs() {
			items = append(items, cat.Patterns[id])
		}
		return items
	case "progressions":
		return cat.Progressions
	case "artists":
		return cat.Artists
	case "scales":
		return cat.Scales
	case "grooves":
		return cat.Grooves
	}
	return nil
}

func printTable(w io.Writer, cat *catalog.Catalog, table, format string) error {
	if !slices.Contains(tableNames(), table) {
		return fmt.Errorf("unknown table %q (want %s)", table, strings.Join(tableNames(), ", "))
	}
	if format == "" {
		format = listTemplates[table]
	} else if !strings.HasSuffix(format, "\n") {
		format += "\n"
	}
	tmpl, err := template.New(table).Funcs(sprig.TxtFuncMap()).Parse(format)
	if err != nil {
		return fmt.Errorf("parse template: %w", err)
	}
	return tmpl.Execute(w, map[string]any{"Items": tableItems(cat, table), "Catalog": cat})
}
