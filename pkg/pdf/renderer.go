package pdf

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/odvhub/odvhub-backend/internal/app/model"
)

// Renderer produces the summary document of an application's declarations.
type Renderer interface {
	Render(app *model.Application, payload *model.ApplicationPayload) ([]byte, error)
}

type fpdfRenderer struct {
	associationName string
}

func NewRenderer(associationName string) Renderer {
	return &fpdfRenderer{associationName: associationName}
}

func (r *fpdfRenderer) Render(app *model.Application, payload *model.ApplicationPayload) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetTitle(fmt.Sprintf("Membership application %s", app.Code), false)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.CellFormat(0, 10, r.associationName, "", 1, "C", false, 0, "")
	doc.SetFont("Helvetica", "", 12)
	doc.CellFormat(0, 8, "Membership application", "", 1, "C", false, 0, "")
	doc.Ln(4)

	doc.SetFont("Helvetica", "B", 11)
	doc.CellFormat(0, 7, fmt.Sprintf("Code: %s", app.Code), "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(0, 6, fmt.Sprintf("Category: %s", app.Type), "", 1, "L", false, 0, "")
	doc.CellFormat(0, 6, fmt.Sprintf("Submitted: %s", app.SubmittedAt.Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	doc.Ln(3)

	r.section(doc, "Applicant")
	r.field(doc, "Name", payload.FirstName+" "+payload.LastName)
	r.field(doc, "Tax code", payload.TaxCode)
	r.field(doc, "Born", payload.BirthDate+" in "+payload.BirthPlace)
	r.field(doc, "Address", fmt.Sprintf("%s, %s %s", payload.Address, payload.PostalCode, payload.City))
	r.field(doc, "Phone", payload.Phone)
	r.field(doc, "Email", payload.Email)

	if len(payload.Guardians) > 0 {
		r.section(doc, "Guardians")
		for _, g := range payload.Guardians {
			r.field(doc, string(g.Type), fmt.Sprintf("%s %s (%s) - %s", g.FirstName, g.LastName, g.TaxCode, g.Phone))
		}
	}

	if len(payload.Licenses) > 0 {
		r.section(doc, "Licenses")
		for _, l := range payload.Licenses {
			r.field(doc, l.Type, l.Number)
		}
	}

	if len(payload.Courses) > 0 {
		r.section(doc, "Courses")
		for _, c := range payload.Courses {
			r.field(doc, c.Name, fmt.Sprintf("%s %d", c.Provider, c.Year))
		}
	}

	r.section(doc, "Declarations")
	for _, line := range consentLines(app.Type, payload.Consents) {
		doc.SetFont("Helvetica", "", 9)
		doc.MultiCell(0, 5, "[x] "+line, "", "L", false)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf output: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *fpdfRenderer) section(doc *gofpdf.Fpdf, title string) {
	doc.Ln(2)
	doc.SetFont("Helvetica", "B", 11)
	doc.CellFormat(0, 7, title, "B", 1, "L", false, 0, "")
}

func (r *fpdfRenderer) field(doc *gofpdf.Fpdf, label, value string) {
	doc.SetFont("Helvetica", "B", 9)
	doc.CellFormat(40, 5, label, "", 0, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 9)
	doc.MultiCell(0, 5, value, "", "L", false)
}

func consentLines(appType model.ApplicationType, c model.ConsentSet) []string {
	if appType == model.ApplicationTypeJunior {
		return []string{
			"Accepts the association bylaws",
			"Acknowledges that volunteering is unpaid",
			"Acknowledges the duty to use the provided safety equipment",
			"Is aware of the risks connected to the association's activities",
			"Is aware of the civil liability implications of volunteering",
			"Consents to the processing of personal data",
			"Consents to the use of photo and video material",
			"A guardian accepts responsibility for the minor's participation",
		}
	}
	return []string{
		"Declares operational availability for the association's activities",
		"Declares having no criminal record",
		"Acknowledges that volunteering is unpaid",
		"Acknowledges the duty to use the provided safety equipment",
		"Accepts the association bylaws",
		"Is aware of the risks connected to the association's activities",
		"Is aware of the risks the activities may pose to third parties",
		"Is aware of the civil liability implications of volunteering",
		"Declares the truthfulness of the certifications provided",
		"Consents to the processing of personal data",
		"Consents to the use of photo and video material",
		"Accepts the internal rules of the association",
		"Declares the accuracy of the data provided",
	}
}
