package applicantinfra

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Abraxas-365/hojavida/pkg/kernel"
	"github.com/Abraxas-365/hojavida/recruitment/applicant"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"
)

type PostgresApplicantRepository struct {
	db *sqlx.DB
}

func NewPostgresApplicantRepository(db *sqlx.DB) applicant.Repository {
	return &PostgresApplicantRepository{db: db}
}

// Save upserts the applicant and replaces its children
func (r *PostgresApplicantRepository) Save(ctx context.Context, a *applicant.Applicant) (bool, error) {
	if a.ID.IsEmpty() {
		return false, errors.New("applicant id must be assigned before saving")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	// Photo and résumé references survive a resubmission that omits them
	query := `
		INSERT INTO hv_aspirante (
			id_aspirante, tipo_documento, identificacion, primer_nombre, segundo_nombre,
			primer_apellido, segundo_apellido, fecha_nacimiento, edad, departamento_expedicion,
			ciudad_expedicion, fecha_expedicion, estado_civil, direccion_barrio, departamento,
			ciudad, telefono, correo_electronico, eps, afp,
			rh, talla_pantalon, camisa_talla, zapatos_talla, foto_gcs_path,
			foto_public_url, pdf_gcs_path, pdf_public_url, origen_registro, medio_reclutamiento,
			recomendador_aspirante, fecha_registro
		) VALUES (
			$1, NULLIF($2, ''), $3, NULLIF($4, ''), NULLIF($5, ''),
			NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, '')::date, NULLIF($9, '')::integer, NULLIF($10, ''),
			NULLIF($11, ''), NULLIF($12, '')::date, NULLIF($13, ''), NULLIF($14, ''), NULLIF($15, ''),
			NULLIF($16, ''), NULLIF($17, ''), NULLIF($18, ''), NULLIF($19, ''), NULLIF($20, ''),
			NULLIF($21, ''), NULLIF($22, ''), NULLIF($23, ''), NULLIF($24, ''), NULLIF($25, ''),
			NULLIF($26, ''), NULLIF($27, ''), NULLIF($28, ''), $29, NULLIF($30, ''),
			NULLIF($31, ''), NOW()
		)
		ON CONFLICT (identificacion) DO UPDATE SET
			tipo_documento = EXCLUDED.tipo_documento,
			primer_nombre = EXCLUDED.primer_nombre,
			segundo_nombre = EXCLUDED.segundo_nombre,
			primer_apellido = EXCLUDED.primer_apellido,
			segundo_apellido = EXCLUDED.segundo_apellido,
			fecha_nacimiento = EXCLUDED.fecha_nacimiento,
			edad = EXCLUDED.edad,
			departamento_expedicion = EXCLUDED.departamento_expedicion,
			ciudad_expedicion = EXCLUDED.ciudad_expedicion,
			fecha_expedicion = EXCLUDED.fecha_expedicion,
			estado_civil = EXCLUDED.estado_civil,
			direccion_barrio = EXCLUDED.direccion_barrio,
			departamento = EXCLUDED.departamento,
			ciudad = EXCLUDED.ciudad,
			telefono = EXCLUDED.telefono,
			correo_electronico = EXCLUDED.correo_electronico,
			eps = EXCLUDED.eps,
			afp = EXCLUDED.afp,
			rh = EXCLUDED.rh,
			talla_pantalon = EXCLUDED.talla_pantalon,
			camisa_talla = EXCLUDED.camisa_talla,
			zapatos_talla = EXCLUDED.zapatos_talla,
			foto_gcs_path = COALESCE(EXCLUDED.foto_gcs_path, hv_aspirante.foto_gcs_path),
			foto_public_url = COALESCE(EXCLUDED.foto_public_url, hv_aspirante.foto_public_url),
			pdf_gcs_path = COALESCE(EXCLUDED.pdf_gcs_path, hv_aspirante.pdf_gcs_path),
			pdf_public_url = COALESCE(EXCLUDED.pdf_public_url, hv_aspirante.pdf_public_url),
			origen_registro = EXCLUDED.origen_registro,
			medio_reclutamiento = EXCLUDED.medio_reclutamiento,
			recomendador_aspirante = EXCLUDED.recomendador_aspirante,
			fecha_registro = NOW()
		RETURNING id_aspirante, (xmax = 0) AS inserted
	`

	var row struct {
		ID       string `db:"id_aspirante"`
		Inserted bool   `db:"inserted"`
	}
	err = tx.QueryRowxContext(ctx, query,
		a.ID, a.DocumentType, a.Identification, a.FirstName, a.MiddleName,
		a.LastName, a.SecondLastName, a.BirthDate, a.Age, a.IssueDepartment,
		a.IssueCity, a.IssueDate, a.MaritalStatus, a.Address, a.Department,
		a.City, a.Phone, a.Email, a.EPS, a.AFP,
		a.RH, a.TrouserSize, a.ShirtSize, a.ShoeSize, a.PhotoKey,
		a.PhotoURL, a.DocumentKey, a.DocumentURL, a.Origin, a.RecruitmentSource,
		a.Referrer,
	).StructScan(&row)
	if err != nil {
		return false, fmt.Errorf("upsert applicant: %w", err)
	}
	a.ID = kernel.NewApplicantID(row.ID)

	if !row.Inserted {
		if err := deleteChildren(ctx, tx, a.ID); err != nil {
			return false, err
		}
	}
	if err := insertChildren(ctx, tx, a); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return row.Inserted, nil
}

var childTables = []string{
	"hv_educacion",
	"hv_experiencia_laboral",
	"hv_familiares",
	"hv_referencias",
	"hv_contacto_emergencia",
	"hv_metas_personales",
	"hv_seguridad",
}

func deleteChildren(ctx context.Context, tx *sqlx.Tx, id kernel.ApplicantID) error {
	for _, table := range childTables {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE id_aspirante = $1`, id); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

func insertChildren(ctx context.Context, tx *sqlx.Tx, a *applicant.Applicant) error {
	for _, e := range a.Education {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO hv_educacion (id_aspirante, institucion, programa, nivel_escolaridad, modalidad, ano, finalizado)
			VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''))`,
			a.ID, e.Institution, e.Program, e.Level, e.Modality, e.Year, e.Finished)
		if err != nil {
			return fmt.Errorf("insert education: %w", err)
		}
	}

	for _, e := range a.Experience {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO hv_experiencia_laboral (id_aspirante, empresa, cargo, tiempo_laborado, salario, motivo_retiro, funciones)
			VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''))`,
			a.ID, e.Company, e.Position, e.TimeWorked, e.Salary, e.ReasonForExit, e.Duties)
		if err != nil {
			return fmt.Errorf("insert experience: %w", err)
		}
	}

	for _, f := range a.Family {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO hv_familiares (id_aspirante, nombre_completo, parentesco, edad, ocupacion, conviven_juntos)
			VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''))`,
			a.ID, f.FullName, f.Relationship, f.Age, f.Occupation, f.LivesWith)
		if err != nil {
			return fmt.Errorf("insert family member: %w", err)
		}
	}

	for _, ref := range a.References {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO hv_referencias (id_aspirante, tipo_referencia, empresa, jefe_inmediato, cargo_jefe, nombre_completo, telefono, ocupacion)
			VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''))`,
			a.ID, ref.Type, ref.Company, ref.Supervisor, ref.SupervisorRole, ref.FullName, ref.Phone, ref.Occupation)
		if err != nil {
			return fmt.Errorf("insert reference: %w", err)
		}
	}

	if c := a.EmergencyContact; c != nil {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO hv_contacto_emergencia (id_aspirante, nombre_completo, parentesco, telefono, correo_electronico, direccion)
			VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''))`,
			a.ID, c.FullName, c.Relationship, c.Phone, c.Email, c.Address)
		if err != nil {
			return fmt.Errorf("insert emergency contact: %w", err)
		}
	}

	if g := a.Goals; g != nil {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO hv_metas_personales (id_aspirante, meta_corto_plazo, meta_mediano_plazo, meta_largo_plazo)
			VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''))`,
			a.ID, g.ShortTerm, g.MediumTerm, g.LongTerm)
		if err != nil {
			return fmt.Errorf("insert goals: %w", err)
		}
	}

	s := a.Screening
	if s == nil {
		s = &applicant.Screening{}
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO hv_seguridad (
			id_aspirante, llamados_atencion, detalle_llamados, accidente_laboral, detalle_accidente,
			enfermedad_importante, detalle_enfermedad, consume_alcohol, frecuencia_alcohol,
			familiar_en_empresa, detalle_familiar_empresa, info_falsa, acepta_poligrafo,
			observaciones, califica_para_cargo, fortalezas, aspectos_mejorar, resolucion_problemas
		) VALUES (
			$1, $2, NULLIF($3, ''), $4, NULLIF($5, ''),
			$6, NULLIF($7, ''), $8, NULLIF($9, ''),
			$10, NULLIF($11, ''), $12, $13,
			NULLIF($14, ''), $15, NULLIF($16, ''), NULLIF($17, ''), NULLIF($18, '')
		)`,
		a.ID, s.Warnings, s.WarningsDetail, s.WorkAccident, s.WorkAccidentDetail,
		s.SeriousIllness, s.SeriousIllnessInfo, s.DrinksAlcohol, s.AlcoholFrequency,
		s.RelativeInCompany, s.RelativeInCompanyAt, s.FalseInformation, s.AcceptsPolygraph,
		s.Observations, s.QualifiesForRole, s.Strengths, s.Improvements, s.ProblemSolving,
	)
	if err != nil {
		return fmt.Errorf("insert screening: %w", err)
	}
	return nil
}

const selectApplicant = `
	SELECT
		id_aspirante,
		COALESCE(tipo_documento, '') AS tipo_documento,
		identificacion,
		COALESCE(primer_nombre, '') AS primer_nombre,
		COALESCE(segundo_nombre, '') AS segundo_nombre,
		COALESCE(primer_apellido, '') AS primer_apellido,
		COALESCE(segundo_apellido, '') AS segundo_apellido,
		COALESCE(to_char(fecha_nacimiento, 'YYYY-MM-DD'), '') AS fecha_nacimiento,
		COALESCE(edad::text, '') AS edad,
		COALESCE(departamento_expedicion, '') AS departamento_expedicion,
		COALESCE(ciudad_expedicion, '') AS ciudad_expedicion,
		COALESCE(to_char(fecha_expedicion, 'YYYY-MM-DD'), '') AS fecha_expedicion,
		COALESCE(estado_civil, '') AS estado_civil,
		COALESCE(direccion_barrio, '') AS direccion_barrio,
		COALESCE(departamento, '') AS departamento,
		COALESCE(ciudad, '') AS ciudad,
		COALESCE(telefono, '') AS telefono,
		COALESCE(correo_electronico, '') AS correo_electronico,
		COALESCE(eps, '') AS eps,
		COALESCE(afp, '') AS afp,
		COALESCE(rh, '') AS rh,
		COALESCE(talla_pantalon, '') AS talla_pantalon,
		COALESCE(camisa_talla, '') AS camisa_talla,
		COALESCE(zapatos_talla, '') AS zapatos_talla,
		COALESCE(foto_gcs_path, '') AS foto_gcs_path,
		COALESCE(foto_public_url, '') AS foto_public_url,
		COALESCE(pdf_gcs_path, '') AS pdf_gcs_path,
		COALESCE(pdf_public_url, '') AS pdf_public_url,
		origen_registro,
		COALESCE(medio_reclutamiento, '') AS medio_reclutamiento,
		COALESCE(recomendador_aspirante, '') AS recomendador_aspirante,
		fecha_registro
	FROM hv_aspirante
	WHERE identificacion = $1
	LIMIT 1
`

// GetByIdentification loads the applicant, then its child blocks concurrently
func (r *PostgresApplicantRepository) GetByIdentification(ctx context.Context, id kernel.Identification) (*applicant.Applicant, error) {
	var a applicant.Applicant
	err := r.db.GetContext(ctx, &a, selectApplicant, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, applicant.ErrApplicantNotFound().WithDetail("identificacion", id)
	}
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return r.db.SelectContext(gctx, &a.Education, `
			SELECT COALESCE(institucion, '') AS institucion, COALESCE(programa, '') AS programa,
				COALESCE(nivel_escolaridad, '') AS nivel_escolaridad, COALESCE(modalidad, '') AS modalidad,
				COALESCE(ano, '') AS ano, COALESCE(finalizado, '') AS finalizado
			FROM hv_educacion WHERE id_aspirante = $1 ORDER BY fecha_registro, id`, a.ID)
	})
	g.Go(func() error {
		return r.db.SelectContext(gctx, &a.Experience, `
			SELECT COALESCE(empresa, '') AS empresa, COALESCE(cargo, '') AS cargo,
				COALESCE(tiempo_laborado, '') AS tiempo_laborado, COALESCE(salario, '') AS salario,
				COALESCE(motivo_retiro, '') AS motivo_retiro, COALESCE(funciones, '') AS funciones
			FROM hv_experiencia_laboral WHERE id_aspirante = $1 ORDER BY fecha_registro, id`, a.ID)
	})
	g.Go(func() error {
		return r.db.SelectContext(gctx, &a.Family, `
			SELECT nombre_completo, COALESCE(parentesco, '') AS parentesco, COALESCE(edad, '') AS edad,
				COALESCE(ocupacion, '') AS ocupacion, COALESCE(conviven_juntos, '') AS conviven_juntos
			FROM hv_familiares WHERE id_aspirante = $1 ORDER BY fecha_registro, id`, a.ID)
	})
	g.Go(func() error {
		return r.db.SelectContext(gctx, &a.References, `
			SELECT tipo_referencia, COALESCE(nombre_completo, '') AS nombre_completo, COALESCE(telefono, '') AS telefono,
				COALESCE(ocupacion, '') AS ocupacion, COALESCE(empresa, '') AS empresa,
				COALESCE(jefe_inmediato, '') AS jefe_inmediato, COALESCE(cargo_jefe, '') AS cargo_jefe
			FROM hv_referencias WHERE id_aspirante = $1 ORDER BY fecha_registro, id`, a.ID)
	})
	g.Go(func() error {
		var c applicant.EmergencyContact
		found, err := getOptional(gctx, r.db, &c, `
			SELECT nombre_completo, COALESCE(parentesco, '') AS parentesco, COALESCE(telefono, '') AS telefono,
				COALESCE(correo_electronico, '') AS correo_electronico, COALESCE(direccion, '') AS direccion
			FROM hv_contacto_emergencia WHERE id_aspirante = $1 ORDER BY id LIMIT 1`, a.ID)
		if found {
			a.EmergencyContact = &c
		}
		return err
	})
	g.Go(func() error {
		var goals applicant.Goals
		found, err := getOptional(gctx, r.db, &goals, `
			SELECT COALESCE(meta_corto_plazo, '') AS meta_corto_plazo, COALESCE(meta_mediano_plazo, '') AS meta_mediano_plazo,
				COALESCE(meta_largo_plazo, '') AS meta_largo_plazo
			FROM hv_metas_personales WHERE id_aspirante = $1 ORDER BY id LIMIT 1`, a.ID)
		if found {
			a.Goals = &goals
		}
		return err
	})
	g.Go(func() error {
		var s applicant.Screening
		found, err := getOptional(gctx, r.db, &s, `
			SELECT llamados_atencion, COALESCE(detalle_llamados, '') AS detalle_llamados,
				accidente_laboral, COALESCE(detalle_accidente, '') AS detalle_accidente,
				enfermedad_importante, COALESCE(detalle_enfermedad, '') AS detalle_enfermedad,
				consume_alcohol, COALESCE(frecuencia_alcohol, '') AS frecuencia_alcohol,
				familiar_en_empresa, COALESCE(detalle_familiar_empresa, '') AS detalle_familiar_empresa,
				info_falsa, acepta_poligrafo, COALESCE(observaciones, '') AS observaciones,
				califica_para_cargo, COALESCE(fortalezas, '') AS fortalezas,
				COALESCE(aspectos_mejorar, '') AS aspectos_mejorar, COALESCE(resolucion_problemas, '') AS resolucion_problemas
			FROM hv_seguridad WHERE id_aspirante = $1 ORDER BY id LIMIT 1`, a.ID)
		if found {
			a.Screening = &s
		}
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load applicant %s children: %w", id, err)
	}
	return &a, nil
}

func getOptional(ctx context.Context, db *sqlx.DB, dest any, query string, args ...any) (bool, error) {
	err := db.GetContext(ctx, dest, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// UpdatePhoto stores the photo reference
func (r *PostgresApplicantRepository) UpdatePhoto(ctx context.Context, id kernel.Identification, key, url string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE hv_aspirante SET foto_gcs_path = $2, foto_public_url = $3 WHERE identificacion = $1`,
		id, key, url)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// UpdateDocument stores the latest résumé reference
func (r *PostgresApplicantRepository) UpdateDocument(ctx context.Context, id kernel.Identification, key, url string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE hv_aspirante SET pdf_gcs_path = $2, pdf_public_url = $3 WHERE identificacion = $1`,
		id, key, url)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return applicant.ErrApplicantNotFound().WithDetail("identificacion", id)
	}
	return nil
}
