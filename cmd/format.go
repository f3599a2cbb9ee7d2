package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/sells-group/locality-cli/internal/model"
	"github.com/sells-group/locality-cli/internal/pipeline"
)

// formatStats writes amenity statistics as a table to w.
func formatStats(out io.Writer, rows []model.AmenitySliceStats) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TYPE\tRADIUS_KM\tCOUNT\tNEAREST_KM")
	_, _ = fmt.Fprintln(w, "----\t---------\t-----\t----------")

	for _, r := range rows {
		nearest := "-"
		if r.NearestKM != nil {
			nearest = strconv.FormatFloat(*r.NearestKM, 'f', 3, 64)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
			r.AmenityType,
			strconv.FormatFloat(r.RadiusKM, 'g', -1, 64),
			r.Count,
			nearest,
		)
	}
	_ = w.Flush()
}

// formatProjects writes a tabular list of projects to w.
func formatProjects(out io.Writer, projects []model.Project) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tSTATUS\tSOURCE\tPRECISION\tLAT\tLON\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t----\t------\t------\t---------\t---\t---\t-------")

	for _, p := range projects {
		name := p.Name
		if len(name) > 30 {
			name = name[:27] + "..."
		}
		lat, lon := "-", "-"
		if p.HasCoordinates() {
			lat = strconv.FormatFloat(*p.Latitude, 'f', 5, 64)
			lon = strconv.FormatFloat(*p.Longitude, 'f', 5, 64)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			truncateID(p.ID),
			name,
			p.GeocodingStatus,
			orDash(p.GeocodingSource),
			orDash(p.GeoPrecision),
			lat,
			lon,
			p.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

// formatBatchSummary writes batch counters to w.
func formatBatchSummary(out io.Writer, s *pipeline.BatchSummary) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Projects:\t%d\n", s.Total)
	_, _ = fmt.Fprintf(w, "Scored:\t%d\n", s.Succeeded)
	_, _ = fmt.Fprintf(w, "Unlocated:\t%d\n", s.Unlocated)
	_, _ = fmt.Fprintf(w, "Failed:\t%d\n", s.Failed)
	if s.Skipped > 0 {
		_, _ = fmt.Fprintf(w, "Skipped:\t%d\n", s.Skipped)
	}
	_ = w.Flush()
}

// writeJSON writes v to w as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
