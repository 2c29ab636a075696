package applicant

import (
	"strings"

	"github.com/Abraxas-365/hojavida/pkg/kernel"
)

// ============================================================================
// Request DTOs
// ============================================================================

// RegisterRequest is the full intake form as posted by the front end
type RegisterRequest struct {
	DocumentType      string `json:"tipo_documento"`
	Identification    string `json:"identificacion" validate:"required,min=4,max=20"`
	FirstName         string `json:"primer_nombre" validate:"required"`
	MiddleName        string `json:"segundo_nombre"`
	LastName          string `json:"primer_apellido" validate:"required"`
	SecondLastName    string `json:"segundo_apellido"`
	BirthDate         string `json:"fecha_nacimiento" validate:"omitempty,datetime=2006-01-02"`
	Age               Text   `json:"edad" validate:"omitempty,numeric"`
	IssueDepartment   string `json:"departamento_expedicion"`
	IssueCity         string `json:"ciudad_expedicion"`
	IssueDate         string `json:"fecha_expedicion" validate:"omitempty,datetime=2006-01-02"`
	MaritalStatus     string `json:"estado_civil"`
	Address           string `json:"direccion_barrio"`
	Department        string `json:"departamento_residencia"`
	City              string `json:"ciudad_residencia"`
	Phone             string `json:"telefono"`
	Email             string `json:"correo_electronico" validate:"omitempty,email"`
	EPS               string `json:"eps"`
	AFP               string `json:"afp"`
	RH                string `json:"rh"`
	TrouserSize       Text   `json:"talla_pantalon"`
	ShirtSize         Text   `json:"camisa_talla"`
	ShoeSize          Text   `json:"zapatos_talla"`
	Origin            string `json:"origen_registro"`
	RecruitmentSource string `json:"medio_reclutamiento"`
	Referrer          string `json:"recomendador_aspirante"`
	PhotoURL          string `json:"foto_public_url"`
	PhotoKey          string `json:"foto_gcs_path"`

	Education        []Education       `json:"educacion"`
	Experience       []Experience      `json:"experiencia_laboral"`
	Family           []FamilyMember    `json:"familiares"`
	References       []Reference       `json:"referencias"`
	EmergencyContact *EmergencyContact `json:"contacto_emergencia"`
	Goals            *Goals            `json:"metas_personales"`
	Screening        *Screening        `json:"seguridad"`
}

// ToApplicant maps the form onto a new aggregate. Empty children are pruned.
func (r RegisterRequest) ToApplicant() *Applicant {
	a := &Applicant{
		DocumentType:      kernel.DocumentType(strings.TrimSpace(r.DocumentType)),
		Identification:    kernel.Identification(r.Identification).Normalize(),
		FirstName:         kernel.FirstName(strings.TrimSpace(r.FirstName)),
		MiddleName:        strings.TrimSpace(r.MiddleName),
		LastName:          kernel.LastName(strings.TrimSpace(r.LastName)),
		SecondLastName:    strings.TrimSpace(r.SecondLastName),
		BirthDate:         r.BirthDate,
		Age:               r.Age,
		IssueDepartment:   r.IssueDepartment,
		IssueCity:         r.IssueCity,
		IssueDate:         r.IssueDate,
		MaritalStatus:     r.MaritalStatus,
		Address:           r.Address,
		Department:        r.Department,
		City:              r.City,
		Phone:             kernel.Phone(r.Phone),
		Email:             kernel.Email(strings.TrimSpace(r.Email)),
		EPS:               r.EPS,
		AFP:               r.AFP,
		RH:                r.RH,
		TrouserSize:       string(r.TrouserSize),
		ShirtSize:         string(r.ShirtSize),
		ShoeSize:          string(r.ShoeSize),
		PhotoKey:          r.PhotoKey,
		PhotoURL:          r.PhotoURL,
		Origin:            r.Origin,
		RecruitmentSource: r.RecruitmentSource,
		Referrer:          r.Referrer,
		Education:         r.Education,
		Experience:        r.Experience,
		Family:            r.Family,
		References:        r.References,
		EmergencyContact:  r.EmergencyContact,
		Goals:             r.Goals,
		Screening:         r.Screening,
	}
	a.PruneEmpty()
	return a
}

// UploadPhotoRequest carries one multipart photo upload
type UploadPhotoRequest struct {
	Identification string
	FileName       string
	ContentType    string
	Data           []byte
}

// ============================================================================
// Response DTOs
// ============================================================================

type RegisterResponse struct {
	OK           bool               `json:"ok"`
	Success      bool               `json:"success"`
	Message      string             `json:"message"`
	ApplicantID  kernel.ApplicantID `json:"id_aspirante"`
	PDFURL       *string            `json:"pdf_url"`
	PDFGenerated bool               `json:"pdf_generated"`
	Warning      string             `json:"warning,omitempty"`
}

// LookupResponse is the applicant with every related block. Unknown
// identifications are answered with just {existe:false}.
type LookupResponse struct {
	Exists           bool              `json:"existe"`
	Applicant        *Applicant        `json:"aspirante"`
	Education        []Education       `json:"educacion"`
	Experience       []Experience      `json:"experiencia_laboral"`
	Family           []FamilyMember    `json:"familiares"`
	References       []Reference       `json:"referencias"`
	EmergencyContact *EmergencyContact `json:"contacto_emergencia"`
	Goals            *Goals            `json:"metas_personales"`
	Screening        *Screening        `json:"seguridad"`
}

// NewLookupResponse flattens an aggregate into the lookup shape
func NewLookupResponse(a *Applicant) *LookupResponse {
	if a == nil {
		return &LookupResponse{Exists: false}
	}
	return &LookupResponse{
		Exists:           true,
		Applicant:        a,
		Education:        nonNil(a.Education),
		Experience:       nonNil(a.Experience),
		Family:           nonNil(a.Family),
		References:       nonNil(a.References),
		EmergencyContact: a.EmergencyContact,
		Goals:            a.Goals,
		Screening:        a.Screening,
	}
}

type UploadPhotoResponse struct {
	OK        bool   `json:"ok"`
	PhotoKey  string `json:"foto_gcs_path"`
	PhotoURL  string `json:"foto_public_url"`
	Message   string `json:"message"`
	Signed    bool   `json:"signed"`
	Persisted bool   `json:"persisted"`
}

// DocumentResponse describes a freshly rendered résumé
type DocumentResponse struct {
	Identification kernel.Identification `json:"identificacion"`
	StorageKey     string                `json:"storage_key"`
	AccessURL      string                `json:"access_url"`
	SizeBytes      int64                 `json:"size_bytes"`
	PageCount      int                   `json:"page_count,omitempty"`
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
