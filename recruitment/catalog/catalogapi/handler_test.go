package catalogapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Abraxas-365/hojavida/pkg/errx"
	"github.com/Abraxas-365/hojavida/recruitment/catalog"
	"github.com/Abraxas-365/hojavida/recruitment/catalog/catalogsrv"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedRepo map[catalog.Kind][]string

func (r fixedRepo) List(_ context.Context, q catalog.Query) ([]string, error) {
	if q.Kind == catalog.KindCity && q.Department != "Antioquia" {
		return nil, nil
	}
	return r[q.Kind], nil
}

func newApp() *fiber.App {
	svc := catalogsrv.NewService(fixedRepo{
		catalog.KindIdentificationType: {"Cédula de ciudadanía"},
		catalog.KindCity:               {"Medellín"},
		catalog.KindPension:            {"Porvenir"},
	})
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := errx.As(err); ok {
				return c.Status(e.HTTPStatus).JSON(e.ToHTTPResponse())
			}
			return c.SendStatus(fiber.StatusInternalServerError)
		},
	})
	RegisterRoutes(app, NewHandlers(svc))
	return app
}

func get(t *testing.T, app *fiber.App, path string) (int, string) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestCatalogRoutes(t *testing.T) {
	app := newApp()

	status, body := get(t, app, "/api/config/tipo-identificacion")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[{"descripcion":"Cédula de ciudadanía"}]`, body)

	status, body = get(t, app, "/api/config/pension")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[{"pension":"Porvenir"}]`, body)

	status, body = get(t, app, "/api/config/eps")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, body)
}

func TestCatalogRoutes_Cities(t *testing.T) {
	app := newApp()

	status, body := get(t, app, "/api/config/ciudades?departamento=Antioquia")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[{"ciudad":"Medellín"}]`, body)

	status, body = get(t, app, "/api/config/ciudades")
	assert.Equal(t, http.StatusBadRequest, status)
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &payload))
	assert.Equal(t, catalog.CodeDepartmentRequired, payload["code"])
}

func TestCatalogRoutes_UnknownKind(t *testing.T) {
	status, _ := get(t, newApp(), "/api/config/paises")
	assert.Equal(t, http.StatusNotFound, status)
}
