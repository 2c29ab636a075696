package applicant

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/Abraxas-365/hojavida/internal/document"
)

// DocumentKeyPrefix names résumé objects: <identificacion>/hoja_vida_<millis>.pdf
const DocumentKeyPrefix = "hoja_vida"

const (
	notRegistered = "No registrado"
	notSpecified  = "No especificado"
)

// Colombia has no daylight saving time
var bogota = time.FixedZone("COT", -5*60*60)

// TemplateFields builds the substitution values of the résumé template. User
// supplied text is HTML-escaped; list blocks are prebuilt markup. LOGO_URL is
// left to the generator default.
func (a *Applicant) TemplateFields(now time.Time) document.TemplateContext {
	e := html.EscapeString

	docType := string(a.DocumentType)
	if docType == "" {
		docType = notSpecified
	}

	fields := document.TemplateContext{
		"NOMBRE_COMPLETO":   e(a.FullName()),
		"TIPO_ID":           e(docType),
		"IDENTIFICACION":    e(string(a.Identification)),
		"FECHA_NACIMIENTO":  e(formatDate(a.BirthDate)),
		"EDAD":              e(string(a.Age)),
		"CIUDAD_RESIDENCIA": e(a.Residence()),
		"TELEFONO":          e(string(a.Phone)),
		"CORREO":            e(string(a.Email)),
		"DIRECCION":         e(a.Address),
		"ESTADO_CIVIL":      e(a.MaritalStatus),
		"EPS":               e(a.EPS),
		"AFP":               e(a.AFP),
		"RH":                e(a.RH),
		"TALLA_PANTALON":    e(a.TrouserSize),
		"CAMISA_TALLA":      e(a.ShirtSize),
		"ZAPATOS_TALLA":     e(a.ShoeSize),
		"PHOTO_URL":         e(a.PhotoURL),

		"EDUCACION_LIST":      educationList(a.Education),
		"EXPERIENCIA_LIST":    experienceList(a.Experience),
		"FAMILIARES_LIST":     familyList(a.Family),
		"REFERENCIAS_LIST":    referenceList(a.References),
		"CONTACTO_EMERGENCIA": emergencyContact(a.EmergencyContact),
		"METAS":               goalsList(a.Goals),

		"FECHA_GENERACION": now.In(bogota).Format("02/01/2006, 15:04:05"),
	}

	s := a.Screening
	if s == nil {
		s = &Screening{}
	}
	fields["SEG_LLAMADOS"] = s.Warnings.YesNo()
	fields["SEG_DETALLE_LLAMADOS"] = e(s.WarningsDetail)
	fields["SEG_ACCIDENTE"] = s.WorkAccident.YesNo()
	fields["SEG_DETALLE_ACCIDENTE"] = e(s.WorkAccidentDetail)
	fields["SEG_ENFERMEDAD"] = s.SeriousIllness.YesNo()
	fields["SEG_DETALLE_ENFERMEDAD"] = e(s.SeriousIllnessInfo)
	fields["SEG_ALCOHOL"] = s.DrinksAlcohol.YesNo()
	fields["SEG_FRECUENCIA"] = e(s.AlcoholFrequency)
	fields["SEG_FAMILIAR"] = s.RelativeInCompany.YesNo()
	fields["SEG_DETALLE_FAMILIAR"] = e(s.RelativeInCompanyAt)
	fields["SEG_INFO_FALSA"] = s.FalseInformation.YesNo()
	fields["SEG_POLIGRAFO"] = s.AcceptsPolygraph.YesNo()
	fields["SEG_FORTALEZAS"] = e(s.Strengths)
	fields["SEG_MEJORAR"] = e(s.Improvements)
	fields["SEG_RESOLUCION"] = e(s.ProblemSolving)
	fields["SEG_OBSERVACIONES"] = e(s.Observations)

	return fields
}

// formatDate turns 2006-01-02 (optionally with a time part) into 02/01/2006
func formatDate(v string) string {
	if v == "" {
		return ""
	}
	if len(v) >= 10 {
		if t, err := time.Parse("2006-01-02", v[:10]); err == nil {
			return t.Format("02/01/2006")
		}
	}
	return v
}

// listHTML renders one block per item: "N. title" followed by the remaining
// non-empty values joined with " • ". The title is the first non-empty value.
func listHTML(rows [][]string) string {
	if len(rows) == 0 {
		return `<div class="list-item">` + notRegistered + `</div>`
	}

	var b strings.Builder
	for i, row := range rows {
		var lines []string
		for _, v := range row {
			if v = strings.TrimSpace(v); v != "" {
				lines = append(lines, html.EscapeString(v))
			}
		}

		title := fmt.Sprintf("Registro %d", i+1)
		var subtitle string
		if len(lines) > 0 {
			title = lines[0]
			subtitle = strings.Join(lines[1:], " • ")
		}

		fmt.Fprintf(&b, `<div class="list-item"><div class="list-item-title">%d. %s</div>`, i+1, title)
		if subtitle != "" {
			fmt.Fprintf(&b, `<div class="list-item-subtitle">%s</div>`, subtitle)
		}
		b.WriteString(`</div>`)
	}
	return b.String()
}

func educationList(items []Education) string {
	rows := make([][]string, len(items))
	for i, it := range items {
		rows[i] = []string{it.Institution, it.Program, it.Level, it.Modality, string(it.Year)}
	}
	return listHTML(rows)
}

func experienceList(items []Experience) string {
	rows := make([][]string, len(items))
	for i, it := range items {
		rows[i] = []string{it.Company, it.Position, string(it.TimeWorked), string(it.Salary), it.ReasonForExit}
	}
	return listHTML(rows)
}

func familyList(items []FamilyMember) string {
	rows := make([][]string, len(items))
	for i, it := range items {
		rows[i] = []string{it.FullName, it.Relationship, string(it.Age), it.Occupation}
	}
	return listHTML(rows)
}

func referenceList(items []Reference) string {
	rows := make([][]string, len(items))
	for i, it := range items {
		rows[i] = []string{it.FullName, it.Type, it.Phone, it.Occupation}
	}
	return listHTML(rows)
}

func emergencyContact(c *EmergencyContact) string {
	if c == nil || c.FullName == "" {
		return notRegistered
	}
	return html.EscapeString(c.FullName + " • " + c.Phone + " • " + c.Relationship)
}

func goalsList(g *Goals) string {
	if g == nil {
		g = &Goals{}
	}
	items := []struct{ label, value string }{
		{"Corto plazo", g.ShortTerm},
		{"Mediano plazo", g.MediumTerm},
		{"Largo plazo", g.LongTerm},
	}

	var b strings.Builder
	for i, it := range items {
		v := strings.TrimSpace(it.value)
		if v == "" {
			v = notSpecified
		} else {
			v = html.EscapeString(v)
		}
		fmt.Fprintf(&b, `<div class="list-item"><div class="list-item-title">%d. %s</div><div class="list-item-subtitle">%s</div></div>`, i+1, it.label, v)
	}
	return b.String()
}
