package applicant

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Abraxas-365/hojavida/pkg/kernel"
)

const (
	OriginWeb = "WEB"

	// MaxPhotoBytes is the upload limit for profile photos
	MaxPhotoBytes = 5 * 1024 * 1024
)

// Applicant is an aspirante and everything captured by the intake form
type Applicant struct {
	ID                kernel.ApplicantID    `db:"id_aspirante" json:"id_aspirante"`
	DocumentType      kernel.DocumentType   `db:"tipo_documento" json:"tipo_documento"`
	Identification    kernel.Identification `db:"identificacion" json:"identificacion"`
	FirstName         kernel.FirstName      `db:"primer_nombre" json:"primer_nombre"`
	MiddleName        string                `db:"segundo_nombre" json:"segundo_nombre"`
	LastName          kernel.LastName       `db:"primer_apellido" json:"primer_apellido"`
	SecondLastName    string                `db:"segundo_apellido" json:"segundo_apellido"`
	BirthDate         string                `db:"fecha_nacimiento" json:"fecha_nacimiento"`
	Age               Text                  `db:"edad" json:"edad"`
	IssueDepartment   string                `db:"departamento_expedicion" json:"departamento_expedicion"`
	IssueCity         string                `db:"ciudad_expedicion" json:"ciudad_expedicion"`
	IssueDate         string                `db:"fecha_expedicion" json:"fecha_expedicion"`
	MaritalStatus     string                `db:"estado_civil" json:"estado_civil"`
	Address           string                `db:"direccion_barrio" json:"direccion_barrio"`
	Department        string                `db:"departamento" json:"departamento"`
	City              string                `db:"ciudad" json:"ciudad"`
	Phone             kernel.Phone          `db:"telefono" json:"telefono"`
	Email             kernel.Email          `db:"correo_electronico" json:"correo_electronico"`
	EPS               string                `db:"eps" json:"eps"`
	AFP               string                `db:"afp" json:"afp"`
	RH                string                `db:"rh" json:"rh"`
	TrouserSize       string                `db:"talla_pantalon" json:"talla_pantalon"`
	ShirtSize         string                `db:"camisa_talla" json:"camisa_talla"`
	ShoeSize          string                `db:"zapatos_talla" json:"zapatos_talla"`
	PhotoKey          string                `db:"foto_gcs_path" json:"foto_gcs_path"`
	PhotoURL          string                `db:"foto_public_url" json:"foto_public_url"`
	DocumentKey       string                `db:"pdf_gcs_path" json:"pdf_gcs_path"`
	DocumentURL       string                `db:"pdf_public_url" json:"pdf_public_url"`
	Origin            string                `db:"origen_registro" json:"origen_registro"`
	RecruitmentSource string                `db:"medio_reclutamiento" json:"medio_reclutamiento"`
	Referrer          string                `db:"recomendador_aspirante" json:"recomendador_aspirante"`
	RegisteredAt      time.Time             `db:"fecha_registro" json:"fecha_registro"`

	Education        []Education       `db:"-" json:"-"`
	Experience       []Experience      `db:"-" json:"-"`
	Family           []FamilyMember    `db:"-" json:"-"`
	References       []Reference       `db:"-" json:"-"`
	EmergencyContact *EmergencyContact `db:"-" json:"-"`
	Goals            *Goals            `db:"-" json:"-"`
	Screening        *Screening        `db:"-" json:"-"`
}

type Education struct {
	Institution string `db:"institucion" json:"institucion"`
	Program     string `db:"programa" json:"programa"`
	Level       string `db:"nivel_escolaridad" json:"nivel_escolaridad"`
	Modality    string `db:"modalidad" json:"modalidad"`
	Year        Text   `db:"ano" json:"ano"`
	Finished    Text   `db:"finalizado" json:"finalizado"`
}

type Experience struct {
	Company       string `db:"empresa" json:"empresa"`
	Position      string `db:"cargo" json:"cargo"`
	TimeWorked    Text   `db:"tiempo_laborado" json:"tiempo_laborado"`
	Salary        Text   `db:"salario" json:"salario"`
	ReasonForExit string `db:"motivo_retiro" json:"motivo_retiro"`
	Duties        string `db:"funciones" json:"funciones"`
}

type FamilyMember struct {
	FullName     string `db:"nombre_completo" json:"nombre_completo"`
	Relationship string `db:"parentesco" json:"parentesco"`
	Age          Text   `db:"edad" json:"edad"`
	Occupation   string `db:"ocupacion" json:"ocupacion"`
	LivesWith    Text   `db:"conviven_juntos" json:"conviven_juntos"`
}

type Reference struct {
	Type           string `db:"tipo_referencia" json:"tipo_referencia"`
	FullName       string `db:"nombre_completo" json:"nombre_completo"`
	Phone          string `db:"telefono" json:"telefono"`
	Occupation     string `db:"ocupacion" json:"ocupacion"`
	Company        string `db:"empresa" json:"empresa"`
	Supervisor     string `db:"jefe_inmediato" json:"jefe_inmediato"`
	SupervisorRole string `db:"cargo_jefe" json:"cargo_jefe"`
}

type EmergencyContact struct {
	FullName     string `db:"nombre_completo" json:"nombre_completo"`
	Relationship string `db:"parentesco" json:"parentesco"`
	Phone        string `db:"telefono" json:"telefono"`
	Email        string `db:"correo_electronico" json:"correo_electronico"`
	Address      string `db:"direccion" json:"direccion"`
}

type Goals struct {
	ShortTerm  string `db:"meta_corto_plazo" json:"corto_plazo"`
	MediumTerm string `db:"meta_mediano_plazo" json:"mediano_plazo"`
	LongTerm   string `db:"meta_largo_plazo" json:"largo_plazo"`
}

// Screening holds the security interview answers (seguridad)
type Screening struct {
	Warnings            Flag   `db:"llamados_atencion" json:"llamados_atencion"`
	WarningsDetail      string `db:"detalle_llamados" json:"detalle_llamados"`
	WorkAccident        Flag   `db:"accidente_laboral" json:"accidente_laboral"`
	WorkAccidentDetail  string `db:"detalle_accidente" json:"detalle_accidente"`
	SeriousIllness      Flag   `db:"enfermedad_importante" json:"enfermedad_importante"`
	SeriousIllnessInfo  string `db:"detalle_enfermedad" json:"detalle_enfermedad"`
	DrinksAlcohol       Flag   `db:"consume_alcohol" json:"consume_alcohol"`
	AlcoholFrequency    string `db:"frecuencia_alcohol" json:"frecuencia_alcohol"`
	RelativeInCompany   Flag   `db:"familiar_en_empresa" json:"familiar_en_empresa"`
	RelativeInCompanyAt string `db:"detalle_familiar_empresa" json:"detalle_familiar_empresa"`
	FalseInformation    Flag   `db:"info_falsa" json:"info_falsa"`
	AcceptsPolygraph    Flag   `db:"acepta_poligrafo" json:"acepta_poligrafo"`
	Observations        string `db:"observaciones" json:"observaciones"`
	QualifiesForRole    Flag   `db:"califica_para_cargo" json:"califica_para_cargo"`
	Strengths           string `db:"fortalezas" json:"fortalezas"`
	Improvements        string `db:"aspectos_mejorar" json:"aspectos_mejorar"`
	ProblemSolving      string `db:"resolucion_problemas" json:"resolucion_problemas"`
}

// ============================================================================
// Domain Methods
// ============================================================================

// FullName joins the non-empty name parts
func (a *Applicant) FullName() string {
	parts := []string{string(a.FirstName), a.MiddleName, string(a.LastName), a.SecondLastName}
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

// Residence renders "city, department", or the department alone
func (a *Applicant) Residence() string {
	switch {
	case a.City != "" && a.Department != "":
		return a.City + ", " + a.Department
	case a.City != "":
		return a.City
	default:
		return a.Department
	}
}

// PruneEmpty drops child rows that carry nothing worth storing. Screening is
// always kept.
func (a *Applicant) PruneEmpty() {
	edu := a.Education[:0]
	for _, e := range a.Education {
		if e.Institution != "" || e.Program != "" {
			edu = append(edu, e)
		}
	}
	a.Education = edu

	exp := a.Experience[:0]
	for _, e := range a.Experience {
		if e.Company != "" || e.Position != "" {
			exp = append(exp, e)
		}
	}
	a.Experience = exp

	fam := a.Family[:0]
	for _, f := range a.Family {
		if f.FullName != "" {
			fam = append(fam, f)
		}
	}
	a.Family = fam

	refs := a.References[:0]
	for _, r := range a.References {
		if r.Type != "" {
			refs = append(refs, r)
		}
	}
	a.References = refs

	if a.EmergencyContact != nil && a.EmergencyContact.FullName == "" {
		a.EmergencyContact = nil
	}
	if a.Goals != nil && a.Goals.ShortTerm == "" && a.Goals.MediumTerm == "" && a.Goals.LongTerm == "" {
		a.Goals = nil
	}
	if a.Screening == nil {
		a.Screening = &Screening{}
	}
	if a.Origin == "" {
		a.Origin = OriginWeb
	}
}

// AttachDocument records the latest rendered résumé
func (a *Applicant) AttachDocument(key, url string) {
	a.DocumentKey = key
	a.DocumentURL = url
}

// ============================================================================
// Form value types
// ============================================================================

// Text is a form value the front end may send as a string, number or boolean
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*t = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(strings.TrimSpace(s))
	case len(data) > 0 && (data[0] == '{' || data[0] == '['):
		return fmt.Errorf("expected a scalar, got %s", data)
	default:
		*t = Text(data)
	}
	return nil
}

func (t Text) String() string { return string(t) }

// Flag is a yes/no answer. true, 1, "1" and "true" are yes; anything else,
// including absence, is no.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	v := strings.Trim(strings.TrimSpace(string(data)), `"`)
	*f = Flag(v == "true" || v == "1")
	return nil
}

func (f *Flag) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*f = false
	case bool:
		*f = Flag(v)
	case int64:
		*f = v == 1
	case []byte:
		s := string(v)
		*f = Flag(s == "t" || s == "true" || s == "1")
	case string:
		*f = Flag(v == "t" || v == "true" || v == "1")
	default:
		return fmt.Errorf("cannot scan %T into Flag", src)
	}
	return nil
}

func (f Flag) Value() (driver.Value, error) {
	return bool(f), nil
}

// YesNo renders the answer for printed forms
func (f Flag) YesNo() string {
	b := bool(f)
	return kernel.YesNo(&b)
}
