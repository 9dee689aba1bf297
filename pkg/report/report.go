package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/dimchansky/utfbom"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/gocarina/gocsv"
	"github.com/jung-kurt/gofpdf"

	"github.com/youssefjedidi/airport-operations-pipeline/pkg/model"
)

const chartTopN = 10

// Engine reads the accumulated turnaround log and produces summary
// statistics plus a ranked chart of the longest ground times.
type Engine struct {
	logger      log.Logger
	airportName string
}

func NewEngine(logger log.Logger, airportName string) *Engine {
	return &Engine{
		logger:      log.With(logger, "component", "report"),
		airportName: airportName,
	}
}

// Summary holds the aggregate statistics over the cleaned log.
type Summary struct {
	UniqueAircraft int
	AvgMinutes     float64
	Longest        model.Record
}

// Load reads the observation log. The reader skips a UTF BOM in case the
// file was round-tripped through a spreadsheet.
func Load(path string) ([]model.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("log file %s not found, run the monitor first to generate data", path)
		}
		return nil, err
	}
	defer f.Close()

	var records []model.Record
	if err := gocsv.Unmarshal(utfbom.SkipOnly(f), &records); err != nil {
		return nil, fmt.Errorf("parse observation log: %w", err)
	}
	return records, nil
}

// Clean sorts the records by log timestamp and keeps only the most recent
// entry per callsign, so an aircraft logged on many runs counts once with
// its latest dwell. Timestamp ties keep the later input record.
func Clean(records []model.Record) []model.Record {
	sorted := make([]model.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].LoggedAt.Before(sorted[j].LoggedAt)
	})

	lastIdx := make(map[string]int, len(sorted))
	for i, rec := range sorted {
		lastIdx[rec.Callsign] = i
	}

	cleaned := make([]model.Record, 0, len(lastIdx))
	for i, rec := range sorted {
		if lastIdx[rec.Callsign] == i {
			cleaned = append(cleaned, rec)
		}
	}
	return cleaned
}

// Analyze computes the aggregate statistics. Nil for an empty log.
func Analyze(records []model.Record) *Summary {
	if len(records) == 0 {
		return nil
	}

	sum := Summary{UniqueAircraft: len(records), Longest: records[0]}
	total := 0
	for _, rec := range records {
		total += rec.MinutesOnGround
		if rec.MinutesOnGround > sum.Longest.MinutesOnGround {
			sum.Longest = rec
		}
	}
	sum.AvgMinutes = float64(total) / float64(len(records))
	return &sum
}

// TopN returns the n records with the longest ground times, longest first.
func TopN(records []model.Record, n int) []model.Record {
	sorted := make([]model.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MinutesOnGround > sorted[j].MinutesOnGround
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// RenderChart draws a horizontal bar chart of the longest ground times.
func (e *Engine) RenderChart(records []model.Record, outPath string) error {
	top := TopN(records, chartTopN)
	if len(top) == 0 {
		return fmt.Errorf("no data available for visualization")
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, fmt.Sprintf("Top %d Longest Turnaround Times at %s", chartTopN, e.airportName), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	const (
		labelW  = 45.0
		barMaxW = 190.0
		barH    = 8.0
		barGap  = 4.0
		leftX   = 15.0
	)
	maxMinutes := top[0].MinutesOnGround
	if maxMinutes == 0 {
		maxMinutes = 1
	}

	pdf.SetFont("Arial", "", 10)
	pdf.SetFillColor(135, 206, 235) // sky blue
	y := pdf.GetY()
	for _, rec := range top {
		w := barMaxW * float64(rec.MinutesOnGround) / float64(maxMinutes)
		pdf.SetXY(leftX, y)
		pdf.CellFormat(labelW, barH, rec.Callsign, "", 0, "R", false, 0, "")
		pdf.Rect(leftX+labelW+2, y, w, barH, "F")
		pdf.SetXY(leftX+labelW+2+w, y)
		pdf.CellFormat(30, barH, fmt.Sprintf(" %d min", rec.MinutesOnGround), "", 0, "L", false, 0, "")
		y += barH + barGap
	}

	pdf.SetXY(leftX+labelW+2, y+2)
	pdf.SetFont("Arial", "I", 9)
	pdf.CellFormat(barMaxW, 6, "Time on Ground (Minutes)", "", 0, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Run loads, cleans, analyzes and renders in one pass, logging the summary.
func (e *Engine) Run(logPath, outPath string) error {
	records, err := Load(logPath)
	if err != nil {
		return err
	}

	cleaned := Clean(records)
	summary := Analyze(cleaned)
	if summary == nil {
		level.Warn(e.logger).Log("msg", "no data available for analysis")
		return nil
	}

	if err := e.RenderChart(cleaned, outPath); err != nil {
		return err
	}

	level.Info(e.logger).Log("msg", "report complete",
		"unique_aircraft", summary.UniqueAircraft,
		"avg_minutes", fmt.Sprintf("%.2f", summary.AvgMinutes),
		"longest_callsign", summary.Longest.Callsign,
		"longest_minutes", summary.Longest.MinutesOnGround,
		"longest_origin", summary.Longest.OriginCountry,
		"chart", outPath)
	return nil
}
