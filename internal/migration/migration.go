package migration

import (
	"context"
	"fmt"

	"github.com/Abraxas-365/hojavida/pkg/logx"
	"github.com/jmoiron/sqlx"
)

// Step is one idempotent schema change
type Step struct {
	Name string
	SQL  string
}

// Steps is the ordered schema. Every statement must be safe to re-run.
var Steps = []Step{
	{Name: "001_applicants", SQL: `
		CREATE TABLE IF NOT EXISTS hv_aspirante (
			id_aspirante            TEXT PRIMARY KEY,
			tipo_documento          TEXT,
			identificacion          TEXT NOT NULL UNIQUE,
			primer_nombre           TEXT,
			segundo_nombre          TEXT,
			primer_apellido         TEXT,
			segundo_apellido        TEXT,
			fecha_nacimiento        DATE,
			edad                    INTEGER,
			departamento_expedicion TEXT,
			ciudad_expedicion       TEXT,
			fecha_expedicion        DATE,
			estado_civil            TEXT,
			direccion_barrio        TEXT,
			departamento            TEXT,
			ciudad                  TEXT,
			telefono                TEXT,
			correo_electronico      TEXT,
			eps                     TEXT,
			afp                     TEXT,
			rh                      TEXT,
			talla_pantalon          TEXT,
			camisa_talla            TEXT,
			zapatos_talla           TEXT,
			foto_gcs_path           TEXT,
			foto_public_url         TEXT,
			pdf_gcs_path            TEXT,
			pdf_public_url          TEXT,
			origen_registro         TEXT NOT NULL DEFAULT 'WEB',
			medio_reclutamiento     TEXT,
			recomendador_aspirante  TEXT,
			fecha_registro          TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
	{Name: "002_education", SQL: `
		CREATE TABLE IF NOT EXISTS hv_educacion (
			id                SERIAL PRIMARY KEY,
			id_aspirante      TEXT NOT NULL REFERENCES hv_aspirante(id_aspirante) ON DELETE CASCADE,
			institucion       TEXT,
			programa          TEXT,
			nivel_escolaridad TEXT,
			modalidad         TEXT,
			ano               TEXT,
			finalizado        TEXT,
			fecha_registro    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
	{Name: "003_experience", SQL: `
		CREATE TABLE IF NOT EXISTS hv_experiencia_laboral (
			id              SERIAL PRIMARY KEY,
			id_aspirante    TEXT NOT NULL REFERENCES hv_aspirante(id_aspirante) ON DELETE CASCADE,
			empresa         TEXT,
			cargo           TEXT,
			tiempo_laborado TEXT,
			salario         TEXT,
			motivo_retiro   TEXT,
			funciones       TEXT,
			fecha_registro  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
	{Name: "004_family", SQL: `
		CREATE TABLE IF NOT EXISTS hv_familiares (
			id              SERIAL PRIMARY KEY,
			id_aspirante    TEXT NOT NULL REFERENCES hv_aspirante(id_aspirante) ON DELETE CASCADE,
			nombre_completo TEXT NOT NULL,
			parentesco      TEXT,
			edad            TEXT,
			ocupacion       TEXT,
			conviven_juntos TEXT,
			fecha_registro  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
	{Name: "005_references", SQL: `
		CREATE TABLE IF NOT EXISTS hv_referencias (
			id              SERIAL PRIMARY KEY,
			id_aspirante    TEXT NOT NULL REFERENCES hv_aspirante(id_aspirante) ON DELETE CASCADE,
			tipo_referencia TEXT NOT NULL,
			empresa         TEXT,
			jefe_inmediato  TEXT,
			cargo_jefe      TEXT,
			nombre_completo TEXT,
			telefono        TEXT,
			ocupacion       TEXT,
			fecha_registro  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
	{Name: "006_emergency_contact", SQL: `
		CREATE TABLE IF NOT EXISTS hv_contacto_emergencia (
			id                 SERIAL PRIMARY KEY,
			id_aspirante       TEXT NOT NULL REFERENCES hv_aspirante(id_aspirante) ON DELETE CASCADE,
			nombre_completo    TEXT NOT NULL,
			parentesco         TEXT,
			telefono           TEXT,
			correo_electronico TEXT,
			direccion          TEXT
		)`},
	{Name: "007_goals", SQL: `
		CREATE TABLE IF NOT EXISTS hv_metas_personales (
			id                 SERIAL PRIMARY KEY,
			id_aspirante       TEXT NOT NULL REFERENCES hv_aspirante(id_aspirante) ON DELETE CASCADE,
			meta_corto_plazo   TEXT,
			meta_mediano_plazo TEXT,
			meta_largo_plazo   TEXT
		)`},
	{Name: "008_screening", SQL: `
		CREATE TABLE IF NOT EXISTS hv_seguridad (
			id                       SERIAL PRIMARY KEY,
			id_aspirante             TEXT NOT NULL REFERENCES hv_aspirante(id_aspirante) ON DELETE CASCADE,
			llamados_atencion        BOOLEAN,
			detalle_llamados         TEXT,
			accidente_laboral        BOOLEAN,
			detalle_accidente        TEXT,
			enfermedad_importante    BOOLEAN,
			detalle_enfermedad       TEXT,
			consume_alcohol          BOOLEAN,
			frecuencia_alcohol       TEXT,
			familiar_en_empresa      BOOLEAN,
			detalle_familiar_empresa TEXT,
			info_falsa               BOOLEAN,
			acepta_poligrafo         BOOLEAN,
			observaciones            TEXT,
			califica_para_cargo      BOOLEAN,
			fortalezas               TEXT,
			aspectos_mejorar         TEXT,
			resolucion_problemas     TEXT
		)`},
	{Name: "009_catalogs", SQL: `
		CREATE TABLE IF NOT EXISTS config_tipo_identificacion (
			descripcion TEXT PRIMARY KEY
		);
		CREATE TABLE IF NOT EXISTS config_departamentos (
			departamento TEXT NOT NULL,
			pais         TEXT NOT NULL DEFAULT 'Colombia',
			PRIMARY KEY (pais, departamento)
		);
		CREATE TABLE IF NOT EXISTS config_ciudades (
			ciudad       TEXT NOT NULL,
			departamento TEXT NOT NULL,
			pais         TEXT NOT NULL DEFAULT 'Colombia',
			PRIMARY KEY (pais, departamento, ciudad)
		);
		CREATE TABLE IF NOT EXISTS config_eps (
			eps TEXT PRIMARY KEY
		);
		CREATE TABLE IF NOT EXISTS config_pension (
			fondo TEXT PRIMARY KEY
		)`},
	{Name: "010_render_jobs", SQL: `
		CREATE TABLE IF NOT EXISTS render_jobs (
			id             TEXT PRIMARY KEY,
			identificacion TEXT NOT NULL,
			status         TEXT NOT NULL,
			attempt_count  INTEGER NOT NULL DEFAULT 0,
			max_attempts   INTEGER NOT NULL DEFAULT 3,
			storage_key    TEXT,
			access_url     TEXT,
			error_message  TEXT,
			error_details  JSONB,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			started_at     TIMESTAMPTZ,
			completed_at   TIMESTAMPTZ,
			failed_at      TIMESTAMPTZ,
			next_retry_at  TIMESTAMPTZ
		);
		CREATE INDEX IF NOT EXISTS idx_render_jobs_identificacion ON render_jobs (identificacion, created_at DESC)`},
	{Name: "011_child_indexes", SQL: `
		CREATE INDEX IF NOT EXISTS idx_hv_educacion_aspirante ON hv_educacion (id_aspirante);
		CREATE INDEX IF NOT EXISTS idx_hv_experiencia_aspirante ON hv_experiencia_laboral (id_aspirante);
		CREATE INDEX IF NOT EXISTS idx_hv_familiares_aspirante ON hv_familiares (id_aspirante);
		CREATE INDEX IF NOT EXISTS idx_hv_referencias_aspirante ON hv_referencias (id_aspirante)`},
}

// Apply runs every step inside one transaction
func Apply(ctx context.Context, db *sqlx.DB) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer tx.Rollback()

	for _, step := range Steps {
		if _, err := tx.ExecContext(ctx, step.SQL); err != nil {
			return fmt.Errorf("migration %s: %w", step.Name, err)
		}
		logx.Debugf("Applied migration %s", step.Name)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}
	logx.Infof("Schema up to date (%d steps)", len(Steps))
	return nil
}
