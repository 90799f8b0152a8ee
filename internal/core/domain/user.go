package domain

import "time"

// User models the authenticated actor as returned by the backend. It is a
// value object: the session replaces it wholesale and never merges fields.
type User struct {
	ID                  int64      `json:"id"`
	Email               string     `json:"email"`
	Nombre              string     `json:"nombre"`
	Apellido            string     `json:"apellido"`
	Rol                 Role       `json:"rol"`
	Telefono            string     `json:"telefono,omitempty"`
	Direccion           string     `json:"direccion,omitempty"`
	Empresa             *int64     `json:"empresa,omitempty"`
	Localidad           int64      `json:"localidad"`
	PuntosAcumulados    int64      `json:"puntos_acumulados"`
	FechaRegistro       time.Time  `json:"fecha_registro"`
	FechaUltimaConexion *time.Time `json:"fecha_ultima_conexion,omitempty"`
	Activo              bool       `json:"activo"`
}

// DisplayName joins first and last name, falling back to the email.
func (u User) DisplayName() string {
	switch {
	case u.Nombre != "" && u.Apellido != "":
		return u.Nombre + " " + u.Apellido
	case u.Nombre != "":
		return u.Nombre
	default:
		return u.Email
	}
}

// LoginCredentials is the body of the login endpoint.
type LoginCredentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterData is the body of the registration endpoint. Password2 is the
// confirmation the backend expects next to the password.
type RegisterData struct {
	Email     string `json:"email"     validate:"required,email"`
	Password  string `json:"password"  validate:"required"`
	Password2 string `json:"password2" validate:"required"`
	Nombre    string `json:"nombre"    validate:"required"`
	Apellido  string `json:"apellido"  validate:"required"`
	Rol       Role   `json:"rol"       validate:"omitempty,oneof=administrador usuario empresa_recolectora"`
	Telefono  string `json:"telefono,omitempty"`
	Direccion string `json:"direccion,omitempty"`
	Localidad int64  `json:"localidad" validate:"gte=0"`
	Empresa   *int64 `json:"empresa,omitempty"`
}

// Credentials returns the login credentials used for the auto-login that
// follows a successful registration.
func (r RegisterData) Credentials() LoginCredentials {
	return LoginCredentials{Email: r.Email, Password: r.Password}
}

// UserUpdate is a partial profile update. Nil fields are not sent.
type UserUpdate struct {
	Email     *string `json:"email,omitempty"`
	Nombre    *string `json:"nombre,omitempty"`
	Apellido  *string `json:"apellido,omitempty"`
	Telefono  *string `json:"telefono,omitempty"`
	Direccion *string `json:"direccion,omitempty"`
	Localidad *int64  `json:"localidad,omitempty"`
}

// Empty reports whether the update carries no field at all.
func (u UserUpdate) Empty() bool {
	return u.Email == nil && u.Nombre == nil && u.Apellido == nil &&
		u.Telefono == nil && u.Direccion == nil && u.Localidad == nil
}
