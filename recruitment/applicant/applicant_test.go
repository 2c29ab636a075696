package applicant

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterRequest_DecodesLooseFormValues(t *testing.T) {
	body := `{
		"identificacion": " 12345 ",
		"primer_nombre": "Ana",
		"primer_apellido": "Gómez",
		"edad": 31,
		"talla_pantalon": "10",
		"zapatos_talla": 37,
		"educacion": [{"institucion": "SENA", "ano": 2015}, {"modalidad": "Virtual"}],
		"experiencia_laboral": [{"empresa": "", "cargo": ""}],
		"familiares": [{"nombre_completo": "Luis", "edad": "60"}],
		"referencias": [{"nombre_completo": "Sin tipo"}],
		"contacto_emergencia": {"telefono": "300"},
		"metas_personales": {"corto_plazo": "", "mediano_plazo": "", "largo_plazo": ""},
		"seguridad": {"llamados_atencion": "1", "accidente_laboral": true, "consume_alcohol": 0, "info_falsa": "false"}
	}`

	var req RegisterRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	a := req.ToApplicant()

	assert.Equal(t, "12345", a.Identification.String())
	assert.Equal(t, Text("31"), a.Age)
	assert.Equal(t, "37", a.ShoeSize)
	assert.Equal(t, OriginWeb, a.Origin)

	require.Len(t, a.Education, 1)
	assert.Equal(t, Text("2015"), a.Education[0].Year)
	assert.Empty(t, a.Experience)
	assert.Len(t, a.Family, 1)
	assert.Empty(t, a.References)
	assert.Nil(t, a.EmergencyContact)
	assert.Nil(t, a.Goals)

	require.NotNil(t, a.Screening)
	assert.True(t, bool(a.Screening.Warnings))
	assert.True(t, bool(a.Screening.WorkAccident))
	assert.False(t, bool(a.Screening.DrinksAlcohol))
	assert.False(t, bool(a.Screening.FalseInformation))
}

func TestText_RejectsObjects(t *testing.T) {
	var v Text
	assert.Error(t, json.Unmarshal([]byte(`{"a":1}`), &v))
	require.NoError(t, json.Unmarshal([]byte(`null`), &v))
	assert.Equal(t, Text(""), v)
}

func TestFlag_Scan(t *testing.T) {
	var f Flag
	require.NoError(t, f.Scan(true))
	assert.True(t, bool(f))
	require.NoError(t, f.Scan(nil))
	assert.False(t, bool(f))
	require.NoError(t, f.Scan([]byte("t")))
	assert.True(t, bool(f))
	assert.Error(t, f.Scan(3.5))
}

func TestFullNameAndResidence(t *testing.T) {
	a := &Applicant{FirstName: "Ana", LastName: "Gómez", SecondLastName: "Ruiz"}
	assert.Equal(t, "Ana Gómez Ruiz", a.FullName())

	assert.Equal(t, "", a.Residence())
	a.Department = "Antioquia"
	assert.Equal(t, "Antioquia", a.Residence())
	a.City = "Medellín"
	assert.Equal(t, "Medellín, Antioquia", a.Residence())
}

func TestTemplateFields(t *testing.T) {
	a := &Applicant{
		Identification: "12345",
		FirstName:      "Ana",
		LastName:       "Gómez <b>",
		BirthDate:      "1994-03-07",
		Education: []Education{
			{Institution: "SENA", Program: "Logística", Year: "2015"},
			{Modality: "Virtual"},
		},
		EmergencyContact: &EmergencyContact{FullName: "Luis", Phone: "300", Relationship: "Padre"},
		Goals:            &Goals{ShortTerm: "Crecer"},
		Screening:        &Screening{AcceptsPolygraph: true},
	}
	now := time.Date(2025, 3, 1, 17, 30, 0, 0, time.UTC)

	f := a.TemplateFields(now)

	assert.Equal(t, "Ana Gómez &lt;b&gt;", f.Value("NOMBRE_COMPLETO"))
	assert.Equal(t, "No especificado", f.Value("TIPO_ID"))
	assert.Equal(t, "07/03/1994", f.Value("FECHA_NACIMIENTO"))
	assert.Equal(t, "01/03/2025, 12:30:00", f.Value("FECHA_GENERACION"))
	assert.Equal(t, "Sí", f.Value("SEG_POLIGRAFO"))
	assert.Equal(t, "No", f.Value("SEG_LLAMADOS"))
	assert.Equal(t, "Luis • 300 • Padre", f.Value("CONTACTO_EMERGENCIA"))
	assert.NotContains(t, f, "LOGO_URL")

	assert.Equal(t,
		`<div class="list-item"><div class="list-item-title">1. SENA</div><div class="list-item-subtitle">Logística • 2015</div></div>`+
			`<div class="list-item"><div class="list-item-title">2. Virtual</div></div>`,
		f.Value("EDUCACION_LIST"))
	assert.Equal(t, `<div class="list-item">No registrado</div>`, f.Value("EXPERIENCIA_LIST"))
	assert.Contains(t, f.Value("METAS"), "1. Corto plazo</div><div class=\"list-item-subtitle\">Crecer")
	assert.Contains(t, f.Value("METAS"), "3. Largo plazo</div><div class=\"list-item-subtitle\">No especificado")
}

func TestListHTML_UntitledRow(t *testing.T) {
	out := listHTML([][]string{{"", " "}})
	assert.Equal(t, `<div class="list-item"><div class="list-item-title">1. Registro 1</div></div>`, out)
}
