// Package report renders a claim summary PDF for agency case files.
package report

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/signintech/gopdf"

	"insurance-claims-backend/internal/actor"
	"insurance-claims-backend/internal/claim"
	"insurance-claims-backend/internal/document"
	"insurance-claims-backend/internal/inforequest"
)

// Font paths tried in order; DejaVuSans ships with the service image.
var fontPaths = []string{
	"/usr/share/fonts/ttf-dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
}

type Service struct {
	claims    claim.Service
	documents document.Repository
	requests  inforequest.Repository
}

func NewService(claims claim.Service, documents document.Repository, requests inforequest.Repository) *Service {
	return &Service{claims: claims, documents: documents, requests: requests}
}

// ClaimSummary renders a one-page PDF for the claim. Visibility follows the
// same rules as the detail endpoint.
func (s *Service) ClaimSummary(ctx context.Context, a actor.Actor, claimID uuid.UUID) ([]byte, error) {
	c, err := s.claims.Get(ctx, a, claimID)
	if err != nil {
		return nil, err
	}
	docs, err := s.documents.ListByClaim(ctx, claimID)
	if err != nil {
		return nil, err
	}
	requests, err := s.requests.ListByClaim(ctx, claimID)
	if err != nil {
		return nil, err
	}

	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()

	fontLoaded := false
	var fontErr error
	for _, path := range fontPaths {
		if err := pdf.AddTTFFont("DejaVu", path); err == nil {
			fontLoaded = true
			break
		} else {
			fontErr = err
		}
	}
	if !fontLoaded {
		return nil, fmt.Errorf("failed to load PDF font, ensure ttf-dejavu is installed: %w", fontErr)
	}

	if err := pdf.SetFont("DejaVu", "", 20); err != nil {
		return nil, err
	}
	pdf.Cell(nil, "Insurance Claim Summary")
	pdf.Br(30)

	if err := pdf.SetFont("DejaVu", "", 12); err != nil {
		return nil, err
	}
	pdf.Cell(nil, fmt.Sprintf("Claim: %s", c.ID))
	pdf.Br(15)
	pdf.Cell(nil, fmt.Sprintf("Status: %s    Stage: %s", c.Status, c.Stage))
	pdf.Br(15)
	pdf.Cell(nil, fmt.Sprintf("Total amount: %.2f", c.TotalAmount))
	pdf.Br(15)
	if c.ClaimDate != nil {
		pdf.Cell(nil, fmt.Sprintf("Claim date: %s", c.ClaimDate.Format("02.01.2006")))
		pdf.Br(15)
	}
	pdf.Cell(nil, fmt.Sprintf("Generated: %s", time.Now().Format("02.01.2006 15:04")))
	pdf.Br(25)

	if c.Notes.Meta != nil {
		if err := pdf.SetFont("DejaVu", "", 14); err != nil {
			return nil, err
		}
		pdf.Cell(nil, "Claim details:")
		pdf.Br(15)
		if err := pdf.SetFont("DejaVu", "", 11); err != nil {
			return nil, err
		}
		for _, line := range metaLines(c.Notes.Meta) {
			pdf.Cell(nil, line)
			pdf.Br(12)
		}
		pdf.Br(10)
	}

	if c.Notes.Plain != "" {
		if err := pdf.SetFont("DejaVu", "", 14); err != nil {
			return nil, err
		}
		pdf.Cell(nil, "Notes:")
		pdf.Br(15)
		if err := pdf.SetFont("DejaVu", "", 11); err != nil {
			return nil, err
		}
		lines, _ := pdf.SplitText(c.Notes.Plain, 500)
		for _, l := range lines {
			pdf.Cell(nil, l)
			pdf.Br(12)
		}
		pdf.Br(10)
	}

	if err := pdf.SetFont("DejaVu", "", 14); err != nil {
		return nil, err
	}
	pdf.Cell(nil, fmt.Sprintf("Documents (%d):", len(docs)))
	pdf.Br(15)
	if err := pdf.SetFont("DejaVu", "", 11); err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		pdf.Cell(nil, "- none uploaded")
		pdf.Br(12)
	}
	for _, d := range docs {
		pdf.Cell(nil, fmt.Sprintf("- %s (%d bytes, %s)", d.FileName, d.SizeBytes, d.CreatedAt.Format("02.01.2006")))
		pdf.Br(12)
	}
	pdf.Br(10)

	if len(requests) > 0 {
		if err := pdf.SetFont("DejaVu", "", 14); err != nil {
			return nil, err
		}
		pdf.Cell(nil, fmt.Sprintf("Information requests (%d):", len(requests)))
		pdf.Br(15)
		if err := pdf.SetFont("DejaVu", "", 11); err != nil {
			return nil, err
		}
		for _, req := range requests {
			pdf.Cell(nil, fmt.Sprintf("- %s, %d field(s), %s", req.CreatedAt.Format("02.01.2006"), len(req.FormSchema), req.Status))
			pdf.Br(12)
		}
	}

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func metaLines(m *claim.NotesMeta) []string {
	var lines []string
	add := func(label, value string) {
		if value != "" {
			lines = append(lines, fmt.Sprintf("%s: %s", label, value))
		}
	}
	add("Category", m.Category)
	add("Benefit type", m.BenefitType)
	add("Cause of care", m.CareCause)
	add("Symptom onset", m.SymptomOnsetDate)
	add("Previous treatment", m.PreviousTreatment)
	add("Doctor/hospital history", m.DoctorHistory)
	add("Accident chronology", m.AccidentChronology)
	if m.AlcoholOrDrugs {
		lines = append(lines, "Alcohol/drug involvement: yes")
	}
	add("Death datetime", m.DeathDatetime)
	add("Death place", m.DeathPlace)
	add("Beneficiary notes", m.BeneficiaryNotes)
	return lines
}
