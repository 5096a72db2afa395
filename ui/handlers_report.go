package ui

import (
	"fmt"
	"net/http"
	"strings"

	"gopitch/internal/errors"
	"gopitch/models"
	"gopitch/ports"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/xuri/excelize/v2"
)

// handlePitchReport generates an on-demand feedback report for one pitch:
// stored analysis plus freshly generated investor feedback, rendered from
// markdown to HTML
func (s *Server) handlePitchReport(c *gin.Context) {
	userID, pitchID, ok := s.pitchRequest(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	pitch, err := s.pitches.GetPitch(ctx, userID, pitchID)
	if err != nil {
		respondError(c, err)
		return
	}

	pitchAnalysis, err := pitch.GetAnalysis()
	if err != nil {
		respondError(c, errors.Wrap(err, "failed to decode stored analysis"))
		return
	}
	if pitchAnalysis == nil {
		pitchAnalysis = models.PlaceholderAnalysis("no analysis stored")
	}

	feedback, err := s.investor.Respond(ctx, ports.InvestorRequest{
		Transcript: pitch.Transcript,
		Analysis:   pitchAnalysis,
		Persona:    c.Query("persona"),
	})
	if err != nil {
		s.logger.Warn("report feedback degraded: %v", err)
		feedback = models.InvestorResponse{
			Persona:  "encouraging",
			Message:  "Feedback is temporarily unavailable for this pitch.",
			Interest: "low",
		}
	}

	md := buildReportMarkdown(pitch, pitchAnalysis, feedback)

	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	rendered := markdown.ToHTML([]byte(md), p, renderer)

	c.Data(http.StatusOK, "text/html; charset=utf-8", rendered)
}

func buildReportMarkdown(pitch *models.Pitch, a *models.PitchAnalysis, feedback models.InvestorResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Pitch Report: %s\n\n", pitch.Title)
	if pitch.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", pitch.Description)
	}

	fmt.Fprintf(&b, "## Scores\n\n")
	fmt.Fprintf(&b, "- **Confidence:** %.1f / 100 (grade %s)\n", a.ConfidenceScore, a.Grade)
	fmt.Fprintf(&b, "- **Dominant emotion:** %s\n", a.Emotion.Dominant)
	fmt.Fprintf(&b, "- **Pace:** %.0f wpm\n", a.Linguistic.WordsPerMinute)
	fmt.Fprintf(&b, "- **Filler ratio:** %.1f%%\n", a.Linguistic.FillerRatio*100)
	if a.Degraded {
		fmt.Fprintf(&b, "- *Analysis degraded: %s*\n", a.DegradedReason)
	}

	fmt.Fprintf(&b, "\n## Investor feedback (%s)\n\n%s\n", feedback.Persona, feedback.Message)
	if len(feedback.Concerns) > 0 {
		fmt.Fprintf(&b, "\n**Concerns:** %s\n", strings.Join(feedback.Concerns, ", "))
	}

	if pitch.Transcript != "" {
		fmt.Fprintf(&b, "\n## Transcript\n\n%s\n", pitch.Transcript)
	}
	return b.String()
}

// handleExportPitches streams the caller's pitch history as a workbook
func (s *Server) handleExportPitches(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, errors.Unauthorized("not authenticated"))
		return
	}

	pitches, err := s.pitches.ListUserPitches(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Pitches"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Title", "Recorded", "Duration (s)", "Confidence", "Grade", "Emotion", "Transcript"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, pitch := range pitches {
		a, err := pitch.GetAnalysis()
		if err != nil || a == nil {
			a = models.PlaceholderAnalysis("no analysis stored")
		}

		values := []interface{}{
			pitch.Title,
			pitch.CreatedAt.Format("2006-01-02 15:04"),
			pitch.DurationSeconds,
			a.ConfidenceScore,
			a.Grade,
			a.Emotion.Dominant,
			truncate(pitch.Transcript, 200),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	c.Header("Content-Disposition", `attachment; filename="pitches.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		s.logger.Error("pitch export failed: %v", err)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
