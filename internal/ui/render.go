package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ngmaloney/prop-buddy/internal/models"
)

// UnknownSchool labels a matched catchment that carries no school name.
const UnknownSchool = "Unknown"

// RenderResult renders a search result as plain terminal text.
func RenderResult(r *models.SearchResult) string {
	if r == nil {
		return mutedStyle.Render("No result")
	}

	sections := []string{
		titleStyle.Render(r.Address.DisplayName),
		mutedStyle.Render(fmt.Sprintf("%s • %s", suburbLabel(r.Address.Suburb), r.Address.Coordinate)),
		sectionHeaderStyle.Render("SCHOOL ZONES"),
		renderZones(r.Zones),
		sectionHeaderStyle.Render("NEAREST STATION"),
		renderStation(r.Station),
		sectionHeaderStyle.Render("ANCESTRY"),
		renderAncestry(r.Ancestry, r.Address.Suburb),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func suburbLabel(s string) string {
	if s == "" {
		return "Suburb unknown"
	}
	return s
}

// SchoolName returns the zone's school, or UnknownSchool when blank.
func SchoolName(z *models.ZonePolygon) string {
	if z == nil || strings.TrimSpace(z.SchoolName) == "" {
		return UnknownSchool
	}
	return z.SchoolName
}

func renderZones(z models.ZoneMatchResult) string {
	line := func(label string, zone *models.ZonePolygon) string {
		if zone == nil {
			return labelStyle.Render(label+": ") + mutedStyle.Render("No zone found")
		}
		return labelStyle.Render(label+": ") + valueStyle.Render(SchoolName(zone))
	}
	return strings.Join([]string{
		line("Primary", z.Primary),
		line("Secondary", z.Secondary),
	}, "\n")
}

func renderStation(m *models.StationMatch) string {
	if m == nil {
		return mutedStyle.Render("No station found nearby")
	}
	return strings.Join([]string{
		valueStyle.Render(m.Station.Name),
		fmt.Sprintf("%.2f km away • %d m walk", m.DistanceKm, m.WalkingMeters),
		fmt.Sprintf("~%d min to CBD", m.ETAMinutesToCBD),
	}, "\n")
}

func renderAncestry(a *models.AncestryRecord, suburb string) string {
	if a == nil {
		return mutedStyle.Render(fmt.Sprintf("No ancestry data for %s", suburbLabel(suburb)))
	}

	lines := []string{
		labelStyle.Render(a.SuburbKey) + mutedStyle.Render(fmt.Sprintf(" (population %d)", a.TotalPopulation)),
	}
	for _, s := range a.Ancestries {
		lines = append(lines, fmt.Sprintf("  %-24s %5.1f%%", s.Group, s.Percent))
	}
	return strings.Join(lines, "\n")
}
