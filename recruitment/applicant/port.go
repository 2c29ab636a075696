package applicant

import (
	"context"

	"github.com/Abraxas-365/hojavida/internal/document"
	"github.com/Abraxas-365/hojavida/pkg/kernel"
)

// Repository persists applicants together with their related blocks
type Repository interface {
	// Save upserts by identification and replaces every child block in one
	// transaction. It sets a.ID to the stored id and reports whether the
	// applicant was new.
	Save(ctx context.Context, a *Applicant) (created bool, err error)

	// GetByIdentification loads the applicant and all children.
	// Returns ErrApplicantNotFound when absent.
	GetByIdentification(ctx context.Context, id kernel.Identification) (*Applicant, error)

	// UpdatePhoto stores the photo reference, reporting whether a row matched
	UpdatePhoto(ctx context.Context, id kernel.Identification, key, url string) (bool, error)

	// UpdateDocument stores the latest résumé reference
	UpdateDocument(ctx context.Context, id kernel.Identification, key, url string) error
}

// DocumentGenerator renders and publishes a résumé
type DocumentGenerator interface {
	GenerateAndPublish(ctx context.Context, subjectID string, fields document.TemplateContext, keyPrefix string) (*document.PublishedArtifact, error)
}

// ObjectPublisher stores arbitrary objects such as profile photos
type ObjectPublisher interface {
	PublishObject(ctx context.Context, obj document.Object) (*document.PublishedArtifact, error)
}
