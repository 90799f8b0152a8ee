package ecoruta

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoruta/portal/internal/core/domain"
)

func TestResource_ListAcceptsBothShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		next bool
	}{
		{"bare array", `[{"id":1,"nombre":"Norte"},{"id":2,"nombre":"Sur"}]`, false},
		{"paginated", `{"count":2,"next":"http://x/?page=2","previous":null,"results":[{"id":1,"nombre":"Norte"},{"id":2,"nombre":"Sur"}]}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/localidades/", r.URL.Path)
				_, _ = io.WriteString(w, tt.body)
			}, Endpoints{})

			page, err := NewServices(f.api).Localidades.List(context.Background(), nil)
			require.NoError(t, err)
			assert.Equal(t, 2, page.Count)
			assert.Len(t, page.Results, 2)
			assert.Equal(t, "Sur", page.Results[1].Nombre)
			assert.Equal(t, tt.next, page.HasNext())
		})
	}
}

func TestSolicitudes_Actions(t *testing.T) {
	var paths []string
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path+"?"+r.URL.RawQuery)
		switch r.URL.Path {
		case "/solicitudes/9/registrar_recoleccion/":
			_, _ = io.WriteString(w, `{"id":9,"estado":"recolectada","puntos_otorgados":40}`)
		case "/solicitudes/reporte_usuario/":
			_, _ = io.WriteString(w, `{"total_solicitudes":3,"total_kilos_recolectados":12.5}`)
		default:
			_, _ = io.WriteString(w, `{"localidades":[]}`)
		}
	}, Endpoints{})
	svc := NewServices(f.api)
	ctx := context.Background()

	sol, err := svc.Solicitudes.RegistrarRecoleccion(ctx, 9, domain.RegistrarRecoleccion{PesoKg: 4, CumpleRequisitos: true})
	require.NoError(t, err)
	assert.Equal(t, domain.SolicitudRecolectada, sol.Estado)

	rep, err := svc.Solicitudes.ReporteUsuario(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), rep.TotalSolicitudes)

	raw, err := svc.Solicitudes.ReporteLocalidad(ctx, 5)
	require.NoError(t, err)
	assert.JSONEq(t, `{"localidades":[]}`, string(raw))

	assert.Equal(t, []string{
		"POST /solicitudes/9/registrar_recoleccion/?",
		"GET /solicitudes/reporte_usuario/?",
		"GET /solicitudes/reporte_localidad/?localidad=5",
	}, paths)
}

func TestNotificaciones_EnviarWhatsApp(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/notificaciones/4/enviar_whatsapp/", r.URL.Path)
		_, _ = io.WriteString(w, `{"data":{"status":"enviado"}}`)
	}, Endpoints{})

	status, err := NewServices(f.api).Notificaciones.EnviarWhatsApp(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, "enviado", status)
}

func TestServices_Lister(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	}, Endpoints{})
	svc := NewServices(f.api)

	assert.Contains(t, svc.ResourceNames(), "tipos-residuos")

	_, err := svc.Lister("facturas")
	assert.ErrorIs(t, err, domain.ErrUnknownResource)

	list, err := svc.Lister("recompensas")
	require.NoError(t, err)
	out, err := list(context.Background(), nil)
	require.NoError(t, err)
	assert.IsType(t, domain.Page[domain.Recompensa]{}, out)
}
