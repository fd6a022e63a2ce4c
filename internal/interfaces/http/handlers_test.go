package http_test

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/steel-pos/internal/application/dto"
	apihttp "github.com/tu-usuario/steel-pos/internal/interfaces/http"
)

// newTestApp arma la app con las rutas registradas. Los casos de este archivo
// cubren el rechazo temprano del handler, que no llega a tocar los casos de uso.
func newTestApp() *fiber.App {
	app := fiber.New()
	apihttp.Router(app, apihttp.RouterDeps{})
	return app
}

func TestCreateInvoice_CuerpoIlegible(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest("POST", "/api/invoices", strings.NewReader("{factura rota"))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "VALIDATION", body.Code)
	assert.Contains(t, body.Message, "cuerpo inválido")
}

func TestGetInvoice_IDInvalido(t *testing.T) {
	app := newTestApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/api/invoices/abc", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "VALIDATION", body.Code)
	assert.Equal(t, "id", body.Field)
}
