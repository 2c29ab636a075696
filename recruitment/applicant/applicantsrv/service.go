package applicantsrv

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/Abraxas-365/hojavida/internal/document"
	"github.com/Abraxas-365/hojavida/internal/pdf"
	"github.com/Abraxas-365/hojavida/pkg/errx"
	"github.com/Abraxas-365/hojavida/pkg/kernel"
	"github.com/Abraxas-365/hojavida/pkg/logx"
	"github.com/Abraxas-365/hojavida/recruitment/applicant"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	msgRegistered      = "Hoja de vida registrada correctamente"
	msgPDFNotGenerated = "El PDF no se pudo generar, pero los datos fueron guardados correctamente"
	msgPhotoSigned     = "Signed URL generada"
	msgPhotoPublic     = "Archivo subido; fallback a URL pública"
)

var (
	whitespace  = regexp.MustCompile(`\s+`)
	unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_\-.]`)
)

// Service orchestrates applicant intake
type Service struct {
	repo      applicant.Repository
	generator applicant.DocumentGenerator
	publisher applicant.ObjectPublisher
	validate  *validator.Validate
	now       func() time.Time
}

// NewService creates a new applicant service
func NewService(repo applicant.Repository, generator applicant.DocumentGenerator, publisher applicant.ObjectPublisher) *Service {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Service{
		repo:      repo,
		generator: generator,
		publisher: publisher,
		validate:  v,
		now:       time.Now,
	}
}

// Register stores the intake form and renders the résumé. A rendering
// failure is reported in the response but never blocks the registration.
func (s *Service) Register(ctx context.Context, req applicant.RegisterRequest) (*applicant.RegisterResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	a := req.ToApplicant()
	if err := checkIdentification(a.Identification); err != nil {
		return nil, err
	}
	a.ID = kernel.NewApplicantID(uuid.NewString())

	log := logx.With("identificacion", a.Identification)
	log.Infof("Registering applicant (education=%d experience=%d family=%d references=%d)",
		len(a.Education), len(a.Experience), len(a.Family), len(a.References))

	var pdfURL *string
	artifact, genErr := s.generator.GenerateAndPublish(ctx, a.Identification.String(), a.TemplateFields(s.now()), applicant.DocumentKeyPrefix)
	if genErr != nil {
		log.Warnf("Résumé generation failed, saving without PDF: %v", genErr)
	} else {
		a.AttachDocument(artifact.StorageKey, artifact.AccessURL)
		pdfURL = &artifact.AccessURL
	}

	created, err := s.repo.Save(ctx, a)
	if err != nil {
		return nil, applicant.ErrSaveFailed(err).WithDetail("identificacion", a.Identification)
	}
	log.Infof("Applicant %s saved (created=%t, pdf=%t)", a.ID, created, genErr == nil)

	resp := &applicant.RegisterResponse{
		OK:           true,
		Success:      true,
		Message:      msgRegistered,
		ApplicantID:  a.ID,
		PDFURL:       pdfURL,
		PDFGenerated: genErr == nil,
	}
	if genErr != nil {
		resp.Warning = msgPDFNotGenerated
	}
	return resp, nil
}

// GetByIdentification returns the applicant with all related blocks, or
// {existe:false}
func (s *Service) GetByIdentification(ctx context.Context, identification string) (*applicant.LookupResponse, error) {
	id := kernel.Identification(identification).Normalize()
	if id == "" {
		return nil, applicant.ErrIdentificationRequired()
	}

	a, err := s.repo.GetByIdentification(ctx, id)
	if errx.IsCode(err, applicant.CodeApplicantNotFound) {
		return applicant.NewLookupResponse(nil), nil
	}
	if err != nil {
		return nil, applicant.ErrLookupFailed(err).WithDetail("identificacion", id)
	}
	return applicant.NewLookupResponse(a), nil
}

// UploadPhoto stores a profile photo under <identificacion>/<millis>_<name>
// and links it to the applicant when one exists
func (s *Service) UploadPhoto(ctx context.Context, req applicant.UploadPhotoRequest) (*applicant.UploadPhotoResponse, error) {
	id := kernel.Identification(req.Identification).Normalize()
	if id == "" {
		return nil, applicant.ErrIdentificationRequired()
	}
	if !id.IsPathSafe() {
		return nil, applicant.ErrInvalidIdentification().WithDetail("identificacion", id)
	}
	if len(req.Data) == 0 {
		return nil, applicant.ErrPhotoRequired()
	}
	if len(req.Data) > applicant.MaxPhotoBytes {
		return nil, applicant.ErrPhotoTooLarge().
			WithDetail("size_bytes", len(req.Data)).
			WithDetail("max_bytes", applicant.MaxPhotoBytes)
	}

	data, name, contentType, err := normalizePhoto(req.Data, req.FileName)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/%d_%s", id, s.now().UnixMilli(), name)
	artifact, err := s.publisher.PublishObject(ctx, document.Object{
		Key:         key,
		Data:        data,
		ContentType: contentType,
		Metadata: map[string]string{
			"subject-id":    id.String(),
			"original-name": req.FileName,
		},
	})
	if err != nil {
		return nil, applicant.ErrPhotoUploadFailed(err).WithDetail("storage_key", key)
	}

	persisted, err := s.repo.UpdatePhoto(ctx, id, artifact.StorageKey, artifact.AccessURL)
	if err != nil {
		return nil, applicant.ErrSaveFailed(err).WithDetail("storage_key", artifact.StorageKey)
	}

	msg := msgPhotoPublic
	if artifact.Signed {
		msg = msgPhotoSigned
	}
	return &applicant.UploadPhotoResponse{
		OK:        true,
		PhotoKey:  artifact.StorageKey,
		PhotoURL:  artifact.AccessURL,
		Message:   msg,
		Signed:    artifact.Signed,
		Persisted: persisted,
	}, nil
}

// RegenerateDocument renders the stored applicant again and records the new
// résumé reference
func (s *Service) RegenerateDocument(ctx context.Context, identification kernel.Identification) (*applicant.DocumentResponse, error) {
	id := identification.Normalize()
	a, err := s.repo.GetByIdentification(ctx, id)
	if err != nil {
		return nil, err
	}

	artifact, err := s.generator.GenerateAndPublish(ctx, id.String(), a.TemplateFields(s.now()), applicant.DocumentKeyPrefix)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateDocument(ctx, id, artifact.StorageKey, artifact.AccessURL); err != nil {
		return nil, err
	}

	return &applicant.DocumentResponse{
		Identification: id,
		StorageKey:     artifact.StorageKey,
		AccessURL:      artifact.AccessURL,
		SizeBytes:      artifact.SizeBytes,
		PageCount:      artifact.PageCount,
	}, nil
}

// ============================================================================
// Helpers
// ============================================================================

func checkIdentification(id kernel.Identification) error {
	if !id.IsValid() || !id.IsPathSafe() {
		return applicant.ErrInvalidIdentification().WithDetail("identificacion", id)
	}
	return nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return applicant.ErrInvalidRequest().WithDetail("reason", err.Error())
	}
	fields := make(map[string]any, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	return applicant.ErrValidationFailed().WithDetail("fields", fields)
}

// SafeFileName replaces whitespace with "_" and drops anything outside
// [A-Za-z0-9_-.]
func SafeFileName(name string) string {
	name = whitespace.ReplaceAllString(filepath.Base(name), "_")
	name = unsafeChars.ReplaceAllString(name, "")
	if strings.Trim(name, ".") == "" {
		return "foto"
	}
	return name
}

// normalizePhoto checks that data is a decodable image and picks the stored
// name and content type. GIFs are flattened to JPEG.
func normalizePhoto(data []byte, fileName string) ([]byte, string, string, error) {
	format, err := pdf.DetectImageFormat(data)
	if err != nil {
		return nil, "", "", applicant.ErrInvalidPhoto().WithDetail("reason", err.Error())
	}

	name := SafeFileName(fileName)
	switch format {
	case "jpeg", "png":
		return data, name, "image/" + format, nil
	case "gif":
		jpg, err := pdf.ConvertImageToJPEG(data)
		if err != nil {
			return nil, "", "", applicant.ErrInvalidPhoto().WithDetail("reason", err.Error())
		}
		return jpg, strings.TrimSuffix(name, filepath.Ext(name)) + ".jpg", "image/jpeg", nil
	default:
		return nil, "", "", applicant.ErrInvalidPhoto().WithDetail("format", format)
	}
}
