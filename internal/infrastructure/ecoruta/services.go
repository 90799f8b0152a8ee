package ecoruta

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"

	"github.com/ecoruta/portal/internal/core/domain"
)

// Solicitudes adds the pickup actions to the request collection.
type Solicitudes struct {
	*Resource[domain.Solicitud]
}

// RegistrarRecoleccion records a completed pickup. Company accounts only;
// points are computed by the backend.
func (s *Solicitudes) RegistrarRecoleccion(ctx context.Context, id int64, data domain.RegistrarRecoleccion) (*domain.Solicitud, error) {
	return s.one(ctx, http.MethodPost, itemPath(s.path, id, "registrar_recoleccion"), data)
}

// ReporteUsuario returns the summary of the current user.
func (s *Solicitudes) ReporteUsuario(ctx context.Context) (*domain.ReporteUsuario, error) {
	var raw json.RawMessage
	if err := s.api.Do(ctx, http.MethodGet, s.path+"reporte_usuario/", nil, nil, &raw); err != nil {
		return nil, err
	}
	var rep domain.ReporteUsuario
	if err := decodeBody(raw, &rep); err != nil {
		return nil, err
	}
	return &rep, nil
}

// ReporteLocalidad returns the per-zone report. The shape is owned by the
// backend and passed through untouched. localidad 0 means every zone.
func (s *Solicitudes) ReporteLocalidad(ctx context.Context, localidad int64) (json.RawMessage, error) {
	var q url.Values
	if localidad > 0 {
		q = url.Values{"localidad": {strconv.FormatInt(localidad, 10)}}
	}
	var raw json.RawMessage
	if err := s.api.Do(ctx, http.MethodGet, s.path+"reporte_localidad/", q, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Notificaciones adds WhatsApp delivery to the notification collection.
type Notificaciones struct {
	*Resource[domain.Notificacion]
}

type sendStatus struct {
	Status string `json:"status"`
}

func (n *Notificaciones) EnviarWhatsApp(ctx context.Context, id int64) (string, error) {
	var raw json.RawMessage
	if err := n.api.Do(ctx, http.MethodPost, itemPath(n.path, id, "enviar_whatsapp"), nil, nil, &raw); err != nil {
		return "", err
	}
	var st sendStatus
	if err := decodeBody(raw, &st); err != nil {
		return "", err
	}
	return st.Status, nil
}

// Services groups every resource of the backend.
type Services struct {
	Localidades    *Resource[domain.Localidad]
	TiposResiduos  *Resource[domain.TipoResiduo]
	Empresas       *Resource[domain.Empresa]
	Solicitudes    *Solicitudes
	Canjes         *Resource[domain.Canje]
	Notificaciones *Notificaciones
	Recompensas    *Resource[domain.Recompensa]
	Usuarios       *Resource[domain.User]

	listers map[string]Lister
}

// Lister lists a collection without knowing its item type.
type Lister func(ctx context.Context, query url.Values) (any, error)

func listerOf[T any](r *Resource[T]) Lister {
	return func(ctx context.Context, query url.Values) (any, error) {
		return r.List(ctx, query)
	}
}

func NewServices(api API) *Services {
	s := &Services{
		Localidades:    NewResource[domain.Localidad](api, "/localidades/"),
		TiposResiduos:  NewResource[domain.TipoResiduo](api, "/tipos-residuos/"),
		Empresas:       NewResource[domain.Empresa](api, "/empresas/"),
		Solicitudes:    &Solicitudes{NewResource[domain.Solicitud](api, "/solicitudes/")},
		Canjes:         NewResource[domain.Canje](api, "/canjes/"),
		Notificaciones: &Notificaciones{NewResource[domain.Notificacion](api, "/notificaciones/")},
		Recompensas:    NewResource[domain.Recompensa](api, "/recompensas/"),
		Usuarios:       NewResource[domain.User](api, "/usuarios/"),
	}
	s.listers = map[string]Lister{
		"localidades":    listerOf(s.Localidades),
		"tipos-residuos": listerOf(s.TiposResiduos),
		"empresas":       listerOf(s.Empresas),
		"solicitudes":    listerOf(s.Solicitudes.Resource),
		"canjes":         listerOf(s.Canjes),
		"notificaciones": listerOf(s.Notificaciones.Resource),
		"recompensas":    listerOf(s.Recompensas),
		"usuarios":       listerOf(s.Usuarios),
	}
	return s
}

// Lister returns the list function of a collection by name.
func (s *Services) Lister(name string) (Lister, error) {
	l, ok := s.listers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownResource, name)
	}
	return l, nil
}

// ResourceNames returns the collection names accepted by Lister, sorted.
func (s *Services) ResourceNames() []string {
	names := make([]string, 0, len(s.listers))
	for n := range s.listers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
