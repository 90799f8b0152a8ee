package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

// Localidad is a collection zone.
type Localidad struct {
	ID                     int64     `json:"id"`
	Nombre                 string    `json:"nombre"`
	DiaRecoleccionOrganico int       `json:"dia_recoleccion_organicos"`
	Activa                 bool      `json:"activa"`
	FechaCreacion          time.Time `json:"fecha_creacion,omitempty"`
	FechaActualizacion     time.Time `json:"fecha_actualizacion,omitempty"`
}

// TipoResiduo is a waste category.
type TipoResiduo struct {
	ID            int64     `json:"id"`
	Nombre        string    `json:"nombre"`
	Descripcion   string    `json:"descripcion,omitempty"`
	Categoria     string    `json:"categoria"`
	Subcategoria  string    `json:"subcategoria,omitempty"`
	Activo        bool      `json:"activo"`
	FechaCreacion time.Time `json:"fecha_creacion,omitempty"`
}

// TipoResiduoRef is the short form embedded in companies.
type TipoResiduoRef struct {
	ID        int64  `json:"id"`
	Nombre    string `json:"nombre"`
	Categoria string `json:"categoria"`
}

// Empresa is a collection company.
type Empresa struct {
	ID                 int64            `json:"id"`
	Nombre             string           `json:"nombre"`
	Telefono           string           `json:"telefono,omitempty"`
	Email              string           `json:"email,omitempty"`
	Direccion          string           `json:"direccion,omitempty"`
	Activa             bool             `json:"activa"`
	FechaCreacion      time.Time        `json:"fecha_creacion,omitempty"`
	FechaActualizacion time.Time        `json:"fecha_actualizacion,omitempty"`
	TiposResiduos      []TipoResiduoRef `json:"tipos_residuos,omitempty"`
}

// Request states as reported by the backend.
const (
	SolicitudPendiente   = "pendiente"
	SolicitudProgramada  = "programada"
	SolicitudRecolectada = "recolectada"
	SolicitudCancelada   = "cancelada"
)

// Solicitud is a pickup request.
type Solicitud struct {
	ID                  int64      `json:"id"`
	Usuario             int64      `json:"usuario"`
	TipoResiduo         int64      `json:"tipo_residuo"`
	Empresa             int64      `json:"empresa"`
	FechaSolicitud      time.Time  `json:"fecha_solicitud"`
	FechaProgramada     *time.Time `json:"fecha_programada,omitempty"`
	FechaRecoleccion    *time.Time `json:"fecha_recoleccion,omitempty"`
	Estado              string     `json:"estado"`
	EsProgramada        bool       `json:"es_programada"`
	Frecuencia          string     `json:"frecuencia,omitempty"`
	PesoKg              *float64   `json:"peso_kg,omitempty"`
	Observaciones       string     `json:"observaciones,omitempty"`
	CumpleRequisitos    *bool      `json:"cumple_requisitos,omitempty"`
	PuntosOtorgados     int64      `json:"puntos_otorgados"`
	NumeroTurno         *int       `json:"numero_turno,omitempty"`
	NotificacionEnviada bool       `json:"notificacion_enviada"`
}

// SolicitudCreate is the body used to request a pickup.
type SolicitudCreate struct {
	TipoResiduo     int64      `json:"tipo_residuo"`
	Empresa         int64      `json:"empresa"`
	FechaProgramada *time.Time `json:"fecha_programada,omitempty"`
	EsProgramada    bool       `json:"es_programada"`
	Frecuencia      string     `json:"frecuencia,omitempty"`
	Observaciones   string     `json:"observaciones,omitempty"`
}

// RegistrarRecoleccion is sent by a company when it completes a pickup.
type RegistrarRecoleccion struct {
	PesoKg           float64 `json:"peso_kg"`
	CumpleRequisitos bool    `json:"cumple_requisitos"`
}

// RecoleccionPorTipo is one row of the user report.
type RecoleccionPorTipo struct {
	TipoResiduo string  `json:"tipo_residuo"`
	TotalKilos  float64 `json:"total_kilos"`
	TotalPuntos int64   `json:"total_puntos"`
	Porcentaje  float64 `json:"porcentaje"`
}

// ReporteUsuario is the per-user summary shown on the client dashboard.
type ReporteUsuario struct {
	TotalSolicitudes     int64                `json:"total_solicitudes"`
	TotalKilos           float64              `json:"total_kilos_recolectados"`
	TotalPuntos          int64                `json:"total_puntos_acumulados"`
	SolicitudesPorEstado map[string]int64     `json:"solicitudes_por_estado"`
	RecoleccionPorTipo   []RecoleccionPorTipo `json:"recoleccion_por_tipo"`
	ProximaRecoleccion   *ProximaRecoleccion  `json:"proxima_recoleccion,omitempty"`
}

type ProximaRecoleccion struct {
	Fecha       string `json:"fecha"`
	TipoResiduo string `json:"tipo_residuo"`
}

// Canje is a points redemption.
type Canje struct {
	ID              int64      `json:"id"`
	Usuario         int64      `json:"usuario"`
	Tienda          int64      `json:"tienda"`
	PuntosCanjeados int64      `json:"puntos_canjeados"`
	MontoDescuento  float64    `json:"monto_descuento"`
	CodigoCanje     string     `json:"codigo_canje"`
	Usado           bool       `json:"usado"`
	FechaCanje      time.Time  `json:"fecha_canje"`
	FechaUso        *time.Time `json:"fecha_uso,omitempty"`
}

// CanjeCreate redeems points at a store.
type CanjeCreate struct {
	Tienda          int64   `json:"tienda"`
	PuntosCanjeados int64   `json:"puntos_canjeados"`
	MontoDescuento  float64 `json:"monto_descuento"`
}

// Recompensa is an entry of the rewards catalog.
type Recompensa struct {
	ID          int64  `json:"id"`
	Nombre      string `json:"nombre"`
	Descripcion string `json:"descripcion,omitempty"`
	Puntos      int64  `json:"puntos"`
	Activa      bool   `json:"activa"`
}

// Notificacion is a message addressed to a user.
type Notificacion struct {
	ID            int64      `json:"id"`
	Usuario       int64      `json:"usuario"`
	Titulo        string     `json:"titulo"`
	Mensaje       string     `json:"mensaje"`
	Tipo          string     `json:"tipo"`
	Leida         bool       `json:"leida"`
	FechaCreacion time.Time  `json:"fecha_creacion"`
	FechaLectura  *time.Time `json:"fecha_lectura,omitempty"`
}

// Page is a list response. The backend answers either with a paginated
// object or with a bare array depending on the endpoint; both decode here.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// pageFields mirrors Page without its UnmarshalJSON method.
type pageFields[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

func (p *Page[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*p = Page[T]{Count: len(items), Results: items}
		return nil
	}

	var out pageFields[T]
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return err
	}
	*p = Page[T](out)
	return nil
}

// HasNext reports whether another page is available.
func (p Page[T]) HasNext() bool { return p.Next != nil && *p.Next != "" }
